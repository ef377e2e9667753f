package signer

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSkHex = "67dea2ed018072d675f5415ecfaed7d2597555e202d85b3d65ea4e58d2d92ffa"
)

type mapKeys map[string]string

func (m mapKeys) Unlocked(name string) ([]byte, bool) {
	v, ok := m[name]
	if !ok {
		return nil, false
	}
	b, err := hex.DecodeString(v)
	if err != nil {
		return nil, false
	}
	return b, true
}

func TestPublicKeyMatchesGoNostr(t *testing.T) {
	p := NewProvider(mapKeys{"alice": testSkHex})

	s, err := p.Create("alice")
	require.NoError(t, err)

	pk, err := s.PublicKey(context.Background())
	require.NoError(t, err)

	want, err := nostr.GetPublicKey(testSkHex)
	require.NoError(t, err)
	assert.Equal(t, want, pk)

	again, err := s.PublicKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pk, again)
}

func TestSignEventVerifies(t *testing.T) {
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_signed"})
	p := NewProvider(mapKeys{"alice": testSkHex}, WithSignCounter(counter))

	s, err := p.Create("alice")
	require.NoError(t, err)

	tmpl := EventTemplate{
		Kind:      1,
		CreatedAt: nostr.Timestamp(1700000000),
		Tags:      nostr.Tags{{"t", "go"}},
		Content:   "hello",
	}

	evt, err := s.SignEvent(context.Background(), tmpl)
	require.NoError(t, err)

	pk, _ := s.PublicKey(context.Background())
	assert.Equal(t, pk, evt.PubKey)
	assert.Equal(t, tmpl.CreatedAt, evt.CreatedAt)
	assert.Equal(t, evt.GetID(), evt.ID)

	ok, err := evt.CheckSignature()
	require.NoError(t, err)
	assert.True(t, ok)

	evt.Content = "tampered"
	ok, _ = evt.CheckSignature()
	assert.False(t, ok)

	assert.Equal(t, float64(1), testutil.ToFloat64(counter))
}

func TestSignEventFillsCreatedAt(t *testing.T) {
	s, err := New(mustHex(t, testSkHex))
	require.NoError(t, err)

	evt, err := s.SignEvent(context.Background(), EventTemplate{Kind: 1})
	require.NoError(t, err)
	assert.NotZero(t, evt.CreatedAt)
	assert.NotNil(t, evt.Tags)
}

func TestSignEventDoesNotAliasTemplate(t *testing.T) {
	s, err := New(mustHex(t, testSkHex))
	require.NoError(t, err)

	tmpl := EventTemplate{Kind: 1, Tags: nostr.Tags{{"p", "x"}}}
	evt, err := s.SignEvent(context.Background(), tmpl)
	require.NoError(t, err)

	tmpl.Tags[0][1] = "y"
	assert.Equal(t, "x", evt.Tags[0][1])
}

func TestCancelledContext(t *testing.T) {
	s, err := New(mustHex(t, testSkHex))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.PublicKey(ctx)
	assert.Equal(t, context.Canceled, err)

	_, err = s.SignEvent(ctx, EventTemplate{})
	assert.Equal(t, context.Canceled, err)
}

func TestCreateNotUnlocked(t *testing.T) {
	p := NewProvider(mapKeys{})

	_, err := p.Create("bob")
	assert.True(t, errors.Is(err, ErrIdentityNotUnlocked))
}

func TestNewWipesInput(t *testing.T) {
	sk := mustHex(t, testSkHex)

	_, err := New(sk)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), sk)
}

func TestNewRejectsInvalidKey(t *testing.T) {
	_, err := New(make([]byte, 32))
	assert.Error(t, err)
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}

	return b
}
