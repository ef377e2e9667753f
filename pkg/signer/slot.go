package signer

import (
	"context"
	"sync"

	"github.com/nbd-wtf/go-nostr"
)

var _ Signer = (*Slot)(nil)

// Slot holds the one signer that the rest of the process signs with. It is
// itself a Signer that forwards to whatever is installed.
type Slot struct {
	mu     sync.RWMutex
	name   string
	signer Signer
}

func NewSlot() *Slot {
	return &Slot{}
}

// Install replaces the current signer.
func (s *Slot) Install(name string, signer Signer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.name = name
	s.signer = signer
}

// Current returns the installed signer and the identity it belongs to.
func (s *Slot) Current() (string, Signer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.name, s.signer, s.signer != nil
}

func (s *Slot) PublicKey(ctx context.Context) (string, error) {
	_, signer, ok := s.Current()
	if !ok {
		return "", ErrNoSigner
	}

	return signer.PublicKey(ctx)
}

func (s *Slot) SignEvent(ctx context.Context, tmpl EventTemplate) (*nostr.Event, error) {
	_, signer, ok := s.Current()
	if !ok {
		return nil, ErrNoSigner
	}

	return signer.SignEvent(ctx, tmpl)
}
