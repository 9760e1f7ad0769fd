package respond

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relayteam/roomsync/internal/model"
	"github.com/relayteam/roomsync/internal/store"
)

type stubNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (n *stubNotifier) NotifyError(_ string, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
}

func TestOnReplyMergesAgentMessage(t *testing.T) {
	t.Parallel()

	st := store.New("room-1", zap.NewNop())
	notifier := &stubNotifier{}
	c := NewCorrelator("room-1", st, notifier, zap.NewNop())

	agentID := uuid.NewString()
	c.OnReply(model.ReplyPayload{Message: "hi", AgentID: agentID}, "tx-1")

	msgs, _ := st.Snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.AuthorAgent, msgs[0].AuthorKind)
	assert.Equal(t, agentID, msgs[0].AgentAuthorID)
	assert.True(t, msgs[0].Pending, "reply is optimistic until its durable echo arrives")
	assert.NotEmpty(t, msgs[0].CorrelationKey)
	assert.Empty(t, notifier.texts)
}

func TestOnReplyDegradesBadIdentity(t *testing.T) {
	t.Parallel()

	st := store.New("room-1", zap.NewNop())
	c := NewCorrelator("room-1", st, &stubNotifier{}, zap.NewNop())

	c.OnReply(model.ReplyPayload{Message: "hi", AgentID: "not-a-uuid"}, "tx-2")

	msgs, _ := st.Snapshot()
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].AgentAuthorID)
	assert.True(t, msgs[0].Pending)
}

func TestOnReplyFailurePayloadOnlyNotifies(t *testing.T) {
	t.Parallel()

	st := store.New("room-1", zap.NewNop())
	notifier := &stubNotifier{}
	c := NewCorrelator("room-1", st, notifier, zap.NewNop())

	c.OnReply(model.ReplyPayload{Error: "model overloaded"}, "tx-3")

	assert.Equal(t, 0, st.Len())
	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "model overloaded")
}

func TestOnReplyEmptyMessageChangesNothing(t *testing.T) {
	t.Parallel()

	st := store.New("room-1", zap.NewNop())
	c := NewCorrelator("room-1", st, &stubNotifier{}, zap.NewNop())

	c.OnReply(model.ReplyPayload{Message: "   ", AgentID: uuid.NewString()}, "tx-4")

	assert.Equal(t, 0, st.Len())
}

func TestReplyEchoReconciles(t *testing.T) {
	t.Parallel()

	st := store.New("room-1", zap.NewNop())
	c := NewCorrelator("room-1", st, &stubNotifier{}, zap.NewNop())

	c.OnReply(model.ReplyPayload{Message: "hi", AgentID: uuid.NewString()}, "tx-5")

	msgs, _ := st.Snapshot()
	require.Len(t, msgs, 1)

	// The durable echo for the same reply arrives via the live channel and
	// flips the record to non-pending through normal reconciliation.
	echo := msgs[0]
	echo.ID = "srv-7"
	echo.Pending = false
	st.Upsert(echo)

	msgs, _ = st.Snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, "srv-7", msgs[0].ID)
	assert.False(t, msgs[0].Pending)
}
