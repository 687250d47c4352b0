package ws

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notegrove/notegrove/internal/ctxtr"
	"github.com/notegrove/notegrove/internal/entity"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []Message
	sendErr  error
}

func (c *fakeConn) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sendErr != nil {
		return c.sendErr
	}
	c.messages = append(c.messages, msg)

	return nil
}

func (c *fakeConn) received() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Message(nil), c.messages...)
}

type fakeMembers struct {
	byGroup map[uuid.UUID][]uuid.UUID
}

func (f *fakeMembers) ListGroupMemberIDs(_ context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	return f.byGroup[groupID], nil
}

func TestNoteUpdated_PayloadShaping(t *testing.T) {
	owner := uuid.New()
	note := entity.Note{ID: uuid.New(), Title: "n", OwnerID: &owner}

	registry := NewRegistry()
	svc := NewService(registry, &fakeMembers{})

	subscribed := &fakeConn{}
	unsubscribed := &fakeConn{}
	origin := &fakeConn{}

	registry.Add("sub", owner, subscribed)
	registry.Add("idx", owner, unsubscribed)
	registry.Add("origin", owner, origin)
	registry.Subscribe("sub", note.ID)

	ctx := ctxtr.WithSessionID(context.Background(), "origin")
	svc.NoteUpdated(ctx, note, "@@ patch @@")

	require.Len(t, subscribed.received(), 1)
	got := subscribed.received()[0]
	assert.Equal(t, EventNoteUpdated, got.Event)
	payload, ok := got.Data.(notePatchPayload)
	require.True(t, ok)
	assert.Equal(t, note.ID, payload.NoteID)
	assert.Equal(t, "@@ patch @@", payload.NotePatch)
	assert.True(t, payload.IsPatch)

	require.Len(t, unsubscribed.received(), 1)
	idx, ok := unsubscribed.received()[0].Data.(noteIndexPayload)
	require.True(t, ok)
	assert.Equal(t, note.IndexView(), idx.Note)

	assert.Empty(t, origin.received(), "originating session must not hear its own change")
}

func TestNoteUpdated_NoPatchFallsBackToIndex(t *testing.T) {
	owner := uuid.New()
	note := entity.Note{ID: uuid.New(), OwnerID: &owner}

	registry := NewRegistry()
	svc := NewService(registry, &fakeMembers{})

	subscribed := &fakeConn{}
	registry.Add("sub", owner, subscribed)
	registry.Subscribe("sub", note.ID)

	svc.NoteUpdated(context.Background(), note, "")

	require.Len(t, subscribed.received(), 1)
	_, ok := subscribed.received()[0].Data.(noteIndexPayload)
	assert.True(t, ok)
}

func TestNoteUpdated_GroupAudience(t *testing.T) {
	groupID := uuid.New()
	member1, member2, outsider := uuid.New(), uuid.New(), uuid.New()
	note := entity.Note{ID: uuid.New(), GroupID: &groupID}

	registry := NewRegistry()
	svc := NewService(registry, &fakeMembers{byGroup: map[uuid.UUID][]uuid.UUID{
		groupID: {member1, member2},
	}})

	c1, c2, c3 := &fakeConn{}, &fakeConn{}, &fakeConn{}
	registry.Add("s1", member1, c1)
	registry.Add("s2", member2, c2)
	registry.Add("s3", outsider, c3)

	svc.NoteUpdated(context.Background(), note, "")

	assert.Len(t, c1.received(), 1)
	assert.Len(t, c2.received(), 1)
	assert.Empty(t, c3.received())
}

func TestNoteUpdated_OrphanNoteHasNoAudience(t *testing.T) {
	note := entity.Note{ID: uuid.New()}

	registry := NewRegistry()
	svc := NewService(registry, &fakeMembers{})

	c := &fakeConn{}
	registry.Add("s", uuid.New(), c)

	svc.NoteUpdated(context.Background(), note, "")

	assert.Empty(t, c.received())
}

func TestPublish_SendFailureDoesNotPropagate(t *testing.T) {
	owner := uuid.New()
	note := entity.Note{ID: uuid.New(), OwnerID: &owner}

	registry := NewRegistry()
	svc := NewService(registry, &fakeMembers{})

	broken := &fakeConn{sendErr: errors.New("gone")}
	healthy := &fakeConn{}
	registry.Add("broken", owner, broken)
	registry.Add("healthy", owner, healthy)

	// Must not panic and must still deliver to the healthy session.
	svc.NoteUpdated(context.Background(), note, "")

	assert.Len(t, healthy.received(), 1)
}

func TestGroupUpdated_RoleShapedPerRecipient(t *testing.T) {
	group := entity.Group{ID: uuid.New(), Title: "team"}
	admin := entity.User{ID: uuid.New(), Groups: []entity.Membership{{GroupID: group.ID, Role: entity.RoleAdmin}}}
	reader := entity.User{ID: uuid.New(), Groups: []entity.Membership{{GroupID: group.ID, Role: entity.RoleReader}}}

	registry := NewRegistry()
	svc := NewService(registry, &fakeMembers{})

	adminConn, readerConn := &fakeConn{}, &fakeConn{}
	registry.Add("a", admin.ID, adminConn)
	registry.Add("r", reader.ID, readerConn)

	svc.GroupUpdated(context.Background(), group, []entity.User{admin, reader})

	require.Len(t, adminConn.received(), 1)
	require.Len(t, readerConn.received(), 1)

	adminPayload := adminConn.received()[0].Data.(groupUpdatedPayload)
	readerPayload := readerConn.received()[0].Data.(groupUpdatedPayload)

	assert.Equal(t, entity.RoleAdmin, adminPayload.Group.MyRole)
	assert.Equal(t, entity.RoleReader, readerPayload.Group.MyRole)
}

func TestRegistry_SubscribeReplacesPrior(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()
	registry.Add("s", userID, &fakeConn{})

	first, second := uuid.New(), uuid.New()
	registry.Subscribe("s", first)
	registry.Subscribe("s", second)

	sessions := registry.sessionsForUsers([]uuid.UUID{userID}, "")
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].SubscribedTo(second))
	assert.False(t, sessions[0].SubscribedTo(first))
}

func TestRegistry_RemoveDropsSession(t *testing.T) {
	registry := NewRegistry()
	userID := uuid.New()

	registry.Add("s", userID, &fakeConn{})
	require.Equal(t, 1, registry.Len())

	registry.Remove("s")
	assert.Equal(t, 0, registry.Len())
	assert.Empty(t, registry.sessionsForUsers([]uuid.UUID{userID}, ""))
}
