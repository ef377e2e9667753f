package identity

import (
	"context"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/nostrkeys/pkg/signer"
	"github.com/tcfw/nostrkeys/pkg/storage"
)

func newTestManager(t *testing.T, opts ...ManagerOption) *Manager {
	t.Helper()

	opts = append([]ManagerOption{WithRegistryOptions(fastCodec)}, opts...)
	m, err := NewManager(storage.NewMemStore(), storage.NewSessionStore(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })

	return m
}

func TestManagerAlice(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	pk, err := m.Create("alice", "pw1")
	require.NoError(t, err)
	require.Len(t, m.List(), 1)

	_, err = m.Unlock("alice", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidPassphrase))

	sk, err := m.Unlock("alice", "pw1")
	require.NoError(t, err)
	assert.Len(t, sk, 32)

	again, err := m.Unlock("alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, sk, again)

	require.NoError(t, m.Activate("alice"))

	got, err := m.Signer().PublicKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, pk, got)

	got2, err := m.Signer().PublicKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, got2)

	ev, err := m.Signer().SignEvent(ctx, signer.EventTemplate{Kind: 1, Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, pk, ev.PubKey)

	ok, err := ev.CheckSignature()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManagerBobImport(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Import("bob", bobNsec, "pw2"))

	sk, err := m.Unlock("bob", "pw2")
	require.NoError(t, err)

	expected, err := nostr.GetPublicKey(bobHex)
	require.NoError(t, err)

	require.NoError(t, m.Activate("bob"))
	pk, err := m.Signer().PublicKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, pk)
	assert.Len(t, sk, 32)
}

func TestManagerActivateRequiresUnlock(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Create("alice", "pw")
	require.NoError(t, err)

	err = m.Activate("alice")
	assert.True(t, errors.Is(err, ErrIdentityNotUnlocked))

	_, ok := m.Selector.Active()
	assert.False(t, ok)

	_, err = m.Signer().PublicKey(context.Background())
	assert.Equal(t, signer.ErrNoSigner, err)
}

func TestManagerActivateSwitches(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Create("alice", "pw")
	require.NoError(t, err)
	require.NoError(t, m.Import("bob", bobNsec, "pw"))
	_, err = m.Unlock("alice", "pw")
	require.NoError(t, err)
	_, err = m.Unlock("bob", "pw")
	require.NoError(t, err)

	var seen []string
	cancel := m.Selector.Subscribe(func(name string) {
		seen = append(seen, name)
	})
	defer cancel()

	require.NoError(t, m.Activate("alice"))
	require.NoError(t, m.Activate("bob"))

	name, ok := m.Selector.Active()
	assert.True(t, ok)
	assert.Equal(t, "bob", name)
	assert.Equal(t, []string{"", "alice", "bob"}, seen)

	// a failed activation keeps the current signer
	assert.Error(t, m.Activate("ghost"))
	name, _ = m.Selector.Active()
	assert.Equal(t, "bob", name)
}

func TestManagerForgetKeepsSession(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, m.Import("bob", bobNsec, "pw"))
	_, err := m.Unlock("bob", "pw")
	require.NoError(t, err)
	require.NoError(t, m.Activate("bob"))

	require.NoError(t, m.Forget("bob"))
	require.NoError(t, m.Forget("bob"))
	assert.Empty(t, m.List())

	_, ok := m.Unlocked("bob")
	assert.True(t, ok)

	name, ok := m.Selector.Active()
	assert.True(t, ok)
	assert.Equal(t, "bob", name)
}

func TestManagerForgetLock(t *testing.T) {
	m := newTestManager(t, WithForgetPolicy(ForgetLock))

	require.NoError(t, m.Import("bob", bobNsec, "pw"))
	_, err := m.Unlock("bob", "pw")
	require.NoError(t, err)
	require.NoError(t, m.Activate("bob"))

	require.NoError(t, m.Forget("bob"))

	_, ok := m.Unlocked("bob")
	assert.False(t, ok)
	_, ok = m.Selector.Active()
	assert.False(t, ok)

	_, err = m.Signer().SignEvent(context.Background(), signer.EventTemplate{Kind: 1})
	assert.Equal(t, signer.ErrNoSigner, err)
}

func TestManagerAddThenUnlock(t *testing.T) {
	src := newTestManager(t)
	require.NoError(t, src.Import("bob", bobNsec, "pw"))
	enc := src.List()[0].Ncrypt

	m := newTestManager(t)
	require.NoError(t, m.Add("bob-copy", enc))

	_, ok := m.Unlocked("bob-copy")
	assert.False(t, ok)

	_, err := m.Unlock("bob-copy", "pw")
	require.NoError(t, err)
}

func TestManagerCloseEndsSession(t *testing.T) {
	m, err := NewManager(storage.NewMemStore(), storage.NewSessionStore(), WithRegistryOptions(fastCodec))
	require.NoError(t, err)

	require.NoError(t, m.Import("bob", bobNsec, "pw"))
	_, err = m.Unlock("bob", "pw")
	require.NoError(t, err)
	require.NoError(t, m.Activate("bob"))

	require.NoError(t, m.Close())

	_, ok := m.Selector.Active()
	assert.False(t, ok)
	_, ok = m.Unlocked("bob")
	assert.False(t, ok)
	assert.Len(t, m.List(), 1)
}

func TestManagerSharedSlotAndMetrics(t *testing.T) {
	slot := signer.NewSlot()
	metrics := NewMetrics(prometheus.NewRegistry())
	m := newTestManager(t, WithSlot(slot), WithMetrics(metrics))

	require.NoError(t, m.Import("bob", bobNsec, "pw"))
	_, err := m.Unlock("bob", "pw")
	require.NoError(t, err)
	require.NoError(t, m.Activate("bob"))

	_, err = slot.SignEvent(context.Background(), signer.EventTemplate{Kind: 1})
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Signatures))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Unlocks.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Mutations.WithLabelValues("import")))
}

func TestManagerReplaceDropsSession(t *testing.T) {
	m := newTestManager(t, WithRegistryOptions(WithDuplicatePolicy(DuplicateReplace)))
	ctx := context.Background()

	require.NoError(t, m.Import("bob", bobNsec, "pw"))
	_, err := m.Unlock("bob", "pw")
	require.NoError(t, err)
	require.NoError(t, m.Activate("bob"))

	pk, err := m.Create("bob", "pw2")
	require.NoError(t, err)
	require.Len(t, m.List(), 1)

	_, ok := m.Unlocked("bob")
	assert.False(t, ok)
	_, ok = m.Selector.Active()
	assert.False(t, ok)
	assert.True(t, errors.Is(m.Activate("bob"), ErrIdentityNotUnlocked))

	_, err = m.Unlock("bob", "pw2")
	require.NoError(t, err)
	require.NoError(t, m.Activate("bob"))

	got, err := m.Signer().PublicKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, pk, got)
}

func TestManagerForgetLockReportsSessionFailure(t *testing.T) {
	m := newTestManager(t, WithForgetPolicy(ForgetLock))

	require.NoError(t, m.Import("bob", bobNsec, "pw"))
	require.NoError(t, m.Close())

	err := m.Forget("bob")
	assert.True(t, errors.Is(err, ErrSessionLock))
	assert.Empty(t, m.List())
}
