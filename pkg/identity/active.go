package identity

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tcfw/nostrkeys/internal/utils/logging"
	"github.com/tcfw/nostrkeys/pkg/notify"
	"github.com/tcfw/nostrkeys/pkg/signer"
)

// Selector tracks the active identity and keeps its signer installed in the
// slot. Activation never unlocks; the identity must already be unlocked.
type Selector struct {
	provider *signer.Provider
	slot     *signer.Slot
	topic    *notify.Topic[string]
	logger   *logrus.Entry

	mu sync.Mutex
}

func NewSelector(provider *signer.Provider, slot *signer.Slot) *Selector {
	return &Selector{
		provider: provider,
		slot:     slot,
		topic:    notify.NewTopic(""),
		logger:   logging.Entry(),
	}
}

// Activate installs a signer for name in the slot, replacing any previous
// one. It fails with ErrIdentityNotUnlocked if name is not unlocked.
func (s *Selector) Activate(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sig, err := s.provider.Create(name)
	if err != nil {
		return err
	}

	s.slot.Install(name, sig)
	s.logger.WithField("name", name).Debug("activated identity")

	s.topic.Publish(name)

	return nil
}

// Active returns the active identity name.
func (s *Selector) Active() (string, bool) {
	name, _, ok := s.slot.Current()
	return name, ok
}

// Subscribe calls fn with the active identity name, "" for none, now and on
// every change.
func (s *Selector) Subscribe(fn func(string)) func() {
	return s.topic.Subscribe(fn)
}

// Slot returns the slot signers are installed into.
func (s *Selector) Slot() *signer.Slot {
	return s.slot
}

// release clears the slot if name is the active identity.
func (s *Selector) release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, _, ok := s.slot.Current(); !ok || current != name {
		return
	}

	s.slot.Install("", nil)
	s.logger.WithField("name", name).Debug("released identity")

	s.topic.Publish("")
}
