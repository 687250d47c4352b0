package groups

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notegrove/notegrove/internal/entity"
	"github.com/notegrove/notegrove/pkg/logger/slogx"
)

// --- fakes ---

type fakeGroupsRepo struct {
	groups  map[uuid.UUID]entity.Group
	invites map[string]entity.InviteCode
}

func newFakeGroupsRepo() *fakeGroupsRepo {
	return &fakeGroupsRepo{
		groups:  make(map[uuid.UUID]entity.Group),
		invites: make(map[string]entity.InviteCode),
	}
}

func (f *fakeGroupsRepo) CreateGroup(_ context.Context, title string) (entity.Group, error) {
	g := entity.Group{ID: uuid.New(), Title: title}
	f.groups[g.ID] = g

	return g, nil
}

func (f *fakeGroupsRepo) GetGroup(_ context.Context, id uuid.UUID) (entity.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return entity.Group{}, entity.ErrNotFound
	}

	return g, nil
}

func (f *fakeGroupsRepo) ListGroupsForUser(_ context.Context, groupIDs []uuid.UUID) ([]entity.Group, error) {
	var result []entity.Group
	for _, id := range groupIDs {
		if g, ok := f.groups[id]; ok {
			result = append(result, g)
		}
	}

	return result, nil
}

func (f *fakeGroupsRepo) UpdateGroupTitle(_ context.Context, id uuid.UUID, title string) error {
	g, ok := f.groups[id]
	if !ok {
		return entity.ErrNotFound
	}
	g.Title = title
	f.groups[id] = g

	return nil
}

func (f *fakeGroupsRepo) DeleteGroup(_ context.Context, id uuid.UUID) error {
	delete(f.groups, id)

	return nil
}

func (f *fakeGroupsRepo) CreateInviteCode(_ context.Context, code entity.InviteCode) error {
	f.invites[code.Code] = code

	return nil
}

func (f *fakeGroupsRepo) GetInviteCode(_ context.Context, groupID uuid.UUID, code string, at time.Time) (entity.InviteCode, error) {
	invite, ok := f.invites[code]
	if !ok || invite.GroupID != groupID || invite.Expired(at) {
		return entity.InviteCode{}, entity.ErrNotFound
	}

	return invite, nil
}

func (f *fakeGroupsRepo) DeleteExpiredInviteCodes(_ context.Context, groupID uuid.UUID, at time.Time) error {
	for code, invite := range f.invites {
		if invite.GroupID == groupID && invite.Expired(at) {
			delete(f.invites, code)
		}
	}

	return nil
}

type fakeUsersRepo struct {
	users      map[uuid.UUID]*entity.User
	membersErr error
}

func newFakeUsersRepo(users ...*entity.User) *fakeUsersRepo {
	f := &fakeUsersRepo{users: make(map[uuid.UUID]*entity.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}

	return f
}

func (f *fakeUsersRepo) GetUser(_ context.Context, id uuid.UUID) (entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return entity.User{}, entity.ErrNotFound
	}

	return *u, nil
}

func (f *fakeUsersRepo) ListGroupMembers(_ context.Context, groupID uuid.UUID) ([]entity.User, error) {
	if f.membersErr != nil {
		return nil, f.membersErr
	}

	var result []entity.User
	for _, u := range f.users {
		if _, ok := u.RoleIn(groupID); ok {
			result = append(result, *u)
		}
	}

	return result, nil
}

func (f *fakeUsersRepo) ListGroupMemberIDs(_ context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	members, _ := f.ListGroupMembers(context.Background(), groupID)

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}

	return ids, nil
}

func (f *fakeUsersRepo) AddMembership(_ context.Context, userID, groupID uuid.UUID, role entity.Role) error {
	u, ok := f.users[userID]
	if !ok {
		return entity.ErrNotFound
	}
	u.Groups = append(u.Groups, entity.Membership{GroupID: groupID, Role: role})

	return nil
}

type fakeNotesRepo struct {
	notes map[uuid.UUID]entity.Note
}

func newFakeNotesRepo() *fakeNotesRepo {
	return &fakeNotesRepo{notes: make(map[uuid.UUID]entity.Note)}
}

func (f *fakeNotesRepo) add(parentID, groupID *uuid.UUID) entity.Note {
	n := entity.Note{ID: uuid.New(), ParentID: parentID, GroupID: groupID}
	f.notes[n.ID] = n

	return n
}

func (f *fakeNotesRepo) ListNotesByGroup(_ context.Context, groupID uuid.UUID) ([]entity.Note, error) {
	var result []entity.Note
	for _, n := range f.notes {
		if n.GroupID != nil && *n.GroupID == groupID {
			result = append(result, n)
		}
	}

	return result, nil
}

func (f *fakeNotesRepo) DeleteNote(_ context.Context, id uuid.UUID) error {
	delete(f.notes, id)

	return nil
}

type fakeFilesRepo struct {
	files map[uuid.UUID]entity.File
}

func newFakeFilesRepo() *fakeFilesRepo {
	return &fakeFilesRepo{files: make(map[uuid.UUID]entity.File)}
}

func (f *fakeFilesRepo) add(noteID uuid.UUID) entity.File {
	file := entity.File{ID: uuid.New(), NoteID: noteID}
	f.files[file.ID] = file

	return file
}

func (f *fakeFilesRepo) ListFilesByNote(_ context.Context, noteID uuid.UUID) ([]entity.File, error) {
	var result []entity.File
	for _, file := range f.files {
		if file.NoteID == noteID {
			result = append(result, file)
		}
	}

	return result, nil
}

func (f *fakeFilesRepo) DeleteFile(_ context.Context, id uuid.UUID) error {
	delete(f.files, id)

	return nil
}

type fakeNotifier struct {
	groupUpdates  []uuid.UUID
	groupRemovals []uuid.UUID
	noteRemovals  []uuid.UUID
	fileRemovals  []uuid.UUID
}

func (f *fakeNotifier) GroupUpdated(_ context.Context, group entity.Group, _ []entity.User) {
	f.groupUpdates = append(f.groupUpdates, group.ID)
}

func (f *fakeNotifier) GroupRemoved(_ context.Context, groupID uuid.UUID, _ []uuid.UUID) {
	f.groupRemovals = append(f.groupRemovals, groupID)
}

func (f *fakeNotifier) NoteRemoved(_ context.Context, note entity.Note) {
	f.noteRemovals = append(f.noteRemovals, note.ID)
}

func (f *fakeNotifier) FileRemoved(_ context.Context, _ entity.Note, fileID uuid.UUID) {
	f.fileRemovals = append(f.fileRemovals, fileID)
}

type fakeTx struct{}

func (fakeTx) RunInTx(ctx context.Context, f func(context.Context) error) error {
	return f(ctx)
}

type fixture struct {
	uc       *Usecase
	repo     *fakeGroupsRepo
	users    *fakeUsersRepo
	notes    *fakeNotesRepo
	files    *fakeFilesRepo
	notifier *fakeNotifier
}

func newFixture(t *testing.T, users ...*entity.User) *fixture {
	t.Helper()

	f := &fixture{
		repo:     newFakeGroupsRepo(),
		users:    newFakeUsersRepo(users...),
		notes:    newFakeNotesRepo(),
		files:    newFakeFilesRepo(),
		notifier: &fakeNotifier{},
	}

	uc, err := New(NewOptions(f.repo, f.users, f.notes, f.files, f.notifier, fakeTx{}))
	require.NoError(t, err)
	f.uc = uc

	return f
}

func rolePtr(r entity.Role) *entity.Role { return &r }

// --- tests ---

func TestCreateGroup_CreatorBecomesAdmin(t *testing.T) {
	user := &entity.User{ID: uuid.New()}
	f := newFixture(t, user)

	group, err := f.uc.CreateGroup(context.Background(), user.ID, "team")
	require.NoError(t, err)

	role, ok := user.RoleIn(group.ID)
	require.True(t, ok)
	assert.Equal(t, entity.RoleAdmin, role)
	assert.Equal(t, []uuid.UUID{group.ID}, f.notifier.groupUpdates)
}

type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)

	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) warned() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, r := range h.records {
		if r.Level == slog.LevelWarn {
			return true
		}
	}

	return false
}

func TestCreateGroup_MemberListFailureLoggedNotFatal(t *testing.T) {
	admin := &entity.User{ID: uuid.New()}
	f := newFixture(t, admin)
	f.users.membersErr = errors.New("members unavailable")

	capture := &captureHandler{}
	prev := slogx.Default()
	slogx.SetDefault(slogx.New(capture))
	t.Cleanup(func() { slogx.SetDefault(prev) })

	group, err := f.uc.CreateGroup(context.Background(), admin.ID, "team")
	require.NoError(t, err, "fan-out trouble must not fail the mutation")
	assert.NotEqual(t, uuid.Nil, group.ID)

	assert.Empty(t, f.notifier.groupUpdates, "no event without a member list")
	assert.True(t, capture.warned(), "the failure must surface in the log")
}

func TestUpdateGroup_Permissions(t *testing.T) {
	admin := &entity.User{ID: uuid.New()}
	editor := &entity.User{ID: uuid.New()}
	outsider := &entity.User{ID: uuid.New()}
	f := newFixture(t, admin, editor, outsider)

	group, err := f.uc.CreateGroup(context.Background(), admin.ID, "team")
	require.NoError(t, err)
	require.NoError(t, f.users.AddMembership(context.Background(), editor.ID, group.ID, entity.RoleEditor))

	// A non-member cannot learn the group exists.
	_, err = f.uc.UpdateGroup(context.Background(), outsider.ID, group.ID, "x")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	// A member below admin is refused outright.
	_, err = f.uc.UpdateGroup(context.Background(), editor.ID, group.ID, "x")
	assert.ErrorIs(t, err, entity.ErrForbidden)

	renamed, err := f.uc.UpdateGroup(context.Background(), admin.ID, group.ID, "squad")
	require.NoError(t, err)
	assert.Equal(t, "squad", renamed.Title)
}

func TestGenerateInviteCode_RoleClamp(t *testing.T) {
	admin := &entity.User{ID: uuid.New()}
	f := newFixture(t, admin)

	group, err := f.uc.CreateGroup(context.Background(), admin.ID, "team")
	require.NoError(t, err)

	tests := []struct {
		name      string
		requested *entity.Role
		want      entity.Role
	}{
		{name: "default is reader", requested: nil, want: entity.RoleReader},
		{name: "editor stays editor", requested: rolePtr(entity.RoleEditor), want: entity.RoleEditor},
		{name: "admin clamps to editor", requested: rolePtr(entity.RoleAdmin), want: entity.RoleEditor},
		{name: "out of range clamps to reader", requested: rolePtr(entity.Role(9)), want: entity.RoleReader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invite, err := f.uc.GenerateInviteCode(context.Background(), admin.ID, group.ID, tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, invite.Role)
			assert.Len(t, invite.Code, 20)
		})
	}
}

func TestGenerateInviteCode_AdminOnly(t *testing.T) {
	admin := &entity.User{ID: uuid.New()}
	editor := &entity.User{ID: uuid.New()}
	f := newFixture(t, admin, editor)

	group, err := f.uc.CreateGroup(context.Background(), admin.ID, "team")
	require.NoError(t, err)
	require.NoError(t, f.users.AddMembership(context.Background(), editor.ID, group.ID, entity.RoleEditor))

	_, err = f.uc.GenerateInviteCode(context.Background(), editor.ID, group.ID, nil)
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestGenerateInviteCode_PrunesExpired(t *testing.T) {
	admin := &entity.User{ID: uuid.New()}
	f := newFixture(t, admin)

	group, err := f.uc.CreateGroup(context.Background(), admin.ID, "team")
	require.NoError(t, err)

	base := time.Now()
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	stale, err := f.uc.GenerateInviteCode(context.Background(), admin.ID, group.ID, nil)
	require.NoError(t, err)

	now = func() time.Time { return base.Add(2 * time.Hour) }

	_, err = f.uc.GenerateInviteCode(context.Background(), admin.ID, group.ID, nil)
	require.NoError(t, err)

	_, ok := f.repo.invites[stale.Code]
	assert.False(t, ok, "expired code pruned on next issue")
}

func TestJoinGroup(t *testing.T) {
	admin := &entity.User{ID: uuid.New()}
	joiner := &entity.User{ID: uuid.New()}
	f := newFixture(t, admin, joiner)

	group, err := f.uc.CreateGroup(context.Background(), admin.ID, "team")
	require.NoError(t, err)

	invite, err := f.uc.GenerateInviteCode(context.Background(), admin.ID, group.ID, rolePtr(entity.RoleEditor))
	require.NoError(t, err)

	// A wrong code never reveals anything beyond refusal.
	_, err = f.uc.JoinGroup(context.Background(), joiner.ID, group.ID, "nonsense")
	assert.ErrorIs(t, err, entity.ErrForbidden)

	joined, err := f.uc.JoinGroup(context.Background(), joiner.ID, group.ID, invite.Code)
	require.NoError(t, err)
	assert.Equal(t, group.ID, joined.ID)
	assert.Equal(t, entity.RoleEditor, joined.MyRole)

	role, ok := joiner.RoleIn(group.ID)
	require.True(t, ok)
	assert.Equal(t, entity.RoleEditor, role, "membership carries the code's role")

	// Redeeming again is redundant, not an error in disguise.
	_, err = f.uc.JoinGroup(context.Background(), joiner.ID, group.ID, invite.Code)
	assert.ErrorIs(t, err, entity.ErrAlreadyDone)
}

func TestJoinGroup_ExpiredCode(t *testing.T) {
	admin := &entity.User{ID: uuid.New()}
	joiner := &entity.User{ID: uuid.New()}
	f := newFixture(t, admin, joiner)

	group, err := f.uc.CreateGroup(context.Background(), admin.ID, "team")
	require.NoError(t, err)

	base := time.Now()
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	invite, err := f.uc.GenerateInviteCode(context.Background(), admin.ID, group.ID, nil)
	require.NoError(t, err)

	now = func() time.Time { return base.Add(time.Hour + time.Minute) }

	_, err = f.uc.JoinGroup(context.Background(), joiner.ID, group.ID, invite.Code)
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestDeleteGroup_PurgesNotesChildrenFirst(t *testing.T) {
	admin := &entity.User{ID: uuid.New()}
	f := newFixture(t, admin)

	group, err := f.uc.CreateGroup(context.Background(), admin.ID, "team")
	require.NoError(t, err)

	root := f.notes.add(nil, &group.ID)
	child := f.notes.add(&root.ID, &group.ID)
	grandchild := f.notes.add(&child.ID, &group.ID)
	file := f.files.add(grandchild.ID)

	require.NoError(t, f.uc.DeleteGroup(context.Background(), admin.ID, group.ID))

	assert.Empty(t, f.notes.notes)
	assert.Empty(t, f.files.files)
	assert.Equal(t, []uuid.UUID{grandchild.ID, child.ID, root.ID}, f.notifier.noteRemovals)
	assert.Equal(t, []uuid.UUID{file.ID}, f.notifier.fileRemovals)
	assert.Equal(t, []uuid.UUID{group.ID}, f.notifier.groupRemovals)

	_, err = f.repo.GetGroup(context.Background(), group.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestListGroups_ShapedWithOwnRole(t *testing.T) {
	admin := &entity.User{ID: uuid.New()}
	member := &entity.User{ID: uuid.New()}
	f := newFixture(t, admin, member)

	group, err := f.uc.CreateGroup(context.Background(), admin.ID, "team")
	require.NoError(t, err)
	require.NoError(t, f.users.AddMembership(context.Background(), member.ID, group.ID, entity.RoleReader))

	views, err := f.uc.ListGroups(context.Background(), member.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, entity.RoleReader, views[0].MyRole)
}
