package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRedactHook(t *testing.T) {
	buf := &bytes.Buffer{}

	l := logrus.New()
	l.SetOutput(buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.AddHook(NewRedactHook())

	l.WithFields(logrus.Fields{
		"name":       "alice",
		"passphrase": "hunter2",
		"nsec":       "nsec1abc",
		"secretKey":  "deadbeef",
		"sk":         "cafe",
		"task":       "keep",
	}).Info("unlock")

	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "keep")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "nsec1abc")
	assert.NotContains(t, out, "deadbeef")
	assert.NotContains(t, out, "cafe")
}
