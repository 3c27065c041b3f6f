package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kobuta23/telegram-minter/internal/model"
)

func newTrail(t *testing.T) (*Trail, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs.json")
	tr, err := Open(path)
	require.NoError(t, err)
	return tr, path
}

func TestAppendStampsEntries(t *testing.T) {
	tr, _ := newTrail(t)
	require.NoError(t, tr.Append(model.AuditEntry{Action: model.ActionCreate, ActorID: 1}))
	require.NoError(t, tr.Append(model.AuditEntry{Action: model.ActionMint, ActorID: 2}))

	all := tr.All()
	require.Len(t, all, 2)
	require.NotEmpty(t, all[0].ID)
	require.NotEmpty(t, all[1].ID)
	require.NotEqual(t, all[0].ID, all[1].ID)
	require.False(t, all[0].Timestamp.IsZero())
	// append order preserved, ULIDs sort with time
	require.LessOrEqual(t, all[0].ID, all[1].ID)
}

func TestQueriesNewestFirstWithLimit(t *testing.T) {
	tr, _ := newTrail(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, tr.Append(model.AuditEntry{
			Action:  model.ActionMint,
			ActorID: model.ActorID(i % 2),
			Token:   &model.TokenEvent{TokenID: int64(i)},
		}))
	}
	require.NoError(t, tr.Append(model.AuditEntry{Action: model.ActionAdmin, ActorID: 0}))

	mints := tr.ByAction(model.ActionMint, 3)
	require.Len(t, mints, 3)
	require.Equal(t, int64(4), mints[0].Token.TokenID)
	require.Equal(t, int64(3), mints[1].Token.TokenID)

	byActor := tr.ByActor(model.ActorID(1), 10)
	require.Len(t, byActor, 2)
	for _, e := range byActor {
		require.Equal(t, model.ActorID(1), e.ActorID)
	}

	tail := tr.Tail(2)
	require.Len(t, tail, 2)
	require.Equal(t, model.ActionAdmin, tail[0].Action)
}

func TestSnapshotReload(t *testing.T) {
	tr, path := newTrail(t)
	require.NoError(t, tr.Append(model.AuditEntry{
		Action:      model.ActionCreate,
		ActorID:     9,
		ActorHandle: "alice",
		Chat:        model.ChatContext{ChatID: -100, ChatTitle: "group"},
		Token:       &model.TokenEvent{TokenID: 3, TxRef: "0xabc"},
	}))

	reopened, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, 1, reopened.Len())
	got := reopened.All()[0]
	require.Equal(t, "alice", got.ActorHandle)
	require.Equal(t, int64(3), got.Token.TokenID)
	require.Equal(t, "0xabc", got.Token.TxRef)
}
