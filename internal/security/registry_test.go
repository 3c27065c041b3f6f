package security

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kobuta23/telegram-minter/internal/model"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Open(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	return r
}

func TestGrantRevokeRoundTrip(t *testing.T) {
	r := newRegistry(t)
	actor := model.ActorID(10)

	require.NoError(t, r.Grant(actor, model.CapMint))
	require.True(t, r.HasCapability(actor, model.CapMint))

	require.NoError(t, r.Revoke(actor, model.CapMint))
	require.False(t, r.HasCapability(actor, model.CapMint))
}

func TestRevokeWithoutGrantPersists(t *testing.T) {
	r := newRegistry(t)
	require.NoError(t, r.Revoke(model.ActorID(99), model.CapCreate))
}

func TestAdminImpliesAll(t *testing.T) {
	r := newRegistry(t)
	actor := model.ActorID(11)
	require.NoError(t, r.Grant(actor, model.CapAdmin))

	for _, c := range []model.Capability{
		model.CapCreate, model.CapMint, model.CapMintAny,
		model.CapViewLogs, model.CapViewTokens, model.CapAdmin,
	} {
		require.True(t, r.HasCapability(actor, c), "admin must hold %s", c)
	}
	require.Len(t, r.Capabilities(actor), 6)
}

func TestBootstrapIfEmpty_FirstWriterWins(t *testing.T) {
	r := newRegistry(t)

	const racers = 8
	var wg sync.WaitGroup
	wins := make(chan model.ActorID, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			granted, err := r.BootstrapIfEmpty(model.ActorID(id))
			if err != nil {
				t.Error(err)
				return
			}
			if granted {
				wins <- model.ActorID(id)
			}
		}(int64(i + 1))
	}
	wg.Wait()
	close(wins)

	var winners []model.ActorID
	for w := range wins {
		winners = append(winners, w)
	}
	require.Len(t, winners, 1, "exactly one racer may bootstrap")
	require.True(t, r.HasCapability(winners[0], model.CapAdmin))
}

func TestBootstrapIfEmpty_NoopWhenPopulated(t *testing.T) {
	r := newRegistry(t)
	require.NoError(t, r.Grant(model.ActorID(1), model.CapMint))

	granted, err := r.BootstrapIfEmpty(model.ActorID(2))
	require.NoError(t, err)
	require.False(t, granted)
	require.False(t, r.HasCapability(model.ActorID(2), model.CapAdmin))
}

func TestSnapshotReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	r, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, r.Grant(model.ActorID(4), model.CapCreate, model.CapMint))
	require.NoError(t, r.WhitelistGroup(-100))

	reopened, err := Open(path)
	require.NoError(t, err)
	require.True(t, reopened.HasCapability(model.ActorID(4), model.CapCreate))
	require.True(t, reopened.HasCapability(model.ActorID(4), model.CapMint))
	require.True(t, reopened.IsWhitelisted(model.ActorID(0), -100))
}

func TestIsWhitelisted(t *testing.T) {
	r := newRegistry(t)
	require.False(t, r.IsWhitelisted(model.ActorID(1), 50))

	require.NoError(t, r.Grant(model.ActorID(1), model.CapViewTokens))
	require.True(t, r.IsWhitelisted(model.ActorID(1), 50))

	require.NoError(t, r.WhitelistGroup(50))
	require.True(t, r.IsWhitelisted(model.ActorID(2), 50))

	require.NoError(t, r.RemoveGroup(50))
	require.False(t, r.IsWhitelisted(model.ActorID(2), 50))
}
