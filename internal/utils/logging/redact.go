package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const redactedValue = "[REDACTED]"

var sensitiveKeyParts = []string{"passphrase", "password", "secret", "nsec", "sk", "privkey"}

// RedactHook replaces the value of any field whose name looks like it holds
// key material or a passphrase.
type RedactHook struct {
	parts []string
}

func NewRedactHook(extra ...string) *RedactHook {
	parts := append([]string{}, sensitiveKeyParts...)
	for _, p := range extra {
		parts = append(parts, strings.ToLower(p))
	}

	return &RedactHook{parts: parts}
}

func (h *RedactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *RedactHook) Fire(e *logrus.Entry) error {
	for k := range e.Data {
		if h.sensitive(k) {
			e.Data[k] = redactedValue
		}
	}

	return nil
}

func (h *RedactHook) sensitive(key string) bool {
	key = strings.ToLower(key)

	for _, part := range h.parts {
		if key == part || (len(part) > 2 && strings.Contains(key, part)) {
			return true
		}
	}

	return false
}
