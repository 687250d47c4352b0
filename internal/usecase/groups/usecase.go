package groups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/notegrove/notegrove/internal/entity"
	"github.com/notegrove/notegrove/pkg/logger/slogx"
	"github.com/notegrove/notegrove/pkg/randx"
)

const (
	inviteCodeLength = 20
	inviteCodeTTL    = time.Hour
)

// now is a seam for tests.
var now = time.Now

type groupsRepository interface {
	CreateGroup(ctx context.Context, title string) (entity.Group, error)
	GetGroup(ctx context.Context, id uuid.UUID) (entity.Group, error)
	ListGroupsForUser(ctx context.Context, groupIDs []uuid.UUID) ([]entity.Group, error)
	UpdateGroupTitle(ctx context.Context, id uuid.UUID, title string) error
	DeleteGroup(ctx context.Context, id uuid.UUID) error
	CreateInviteCode(ctx context.Context, code entity.InviteCode) error
	GetInviteCode(ctx context.Context, groupID uuid.UUID, code string, now time.Time) (entity.InviteCode, error)
	DeleteExpiredInviteCodes(ctx context.Context, groupID uuid.UUID, now time.Time) error
}

type usersRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (entity.User, error)
	ListGroupMembers(ctx context.Context, groupID uuid.UUID) ([]entity.User, error)
	ListGroupMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
	AddMembership(ctx context.Context, userID, groupID uuid.UUID, role entity.Role) error
}

type notesRepository interface {
	ListNotesByGroup(ctx context.Context, groupID uuid.UUID) ([]entity.Note, error)
	DeleteNote(ctx context.Context, id uuid.UUID) error
}

type filesRepository interface {
	ListFilesByNote(ctx context.Context, noteID uuid.UUID) ([]entity.File, error)
	DeleteFile(ctx context.Context, id uuid.UUID) error
}

type notifier interface {
	GroupUpdated(ctx context.Context, group entity.Group, members []entity.User)
	GroupRemoved(ctx context.Context, groupID uuid.UUID, memberIDs []uuid.UUID)
	NoteRemoved(ctx context.Context, note entity.Note)
	FileRemoved(ctx context.Context, note entity.Note, fileID uuid.UUID)
}

type transactor interface {
	RunInTx(ctx context.Context, f func(context.Context) error) error
}

//go:generate go run github.com/kazhuravlev/options-gen/cmd/options-gen@v0.55.2 -out-filename=usecase_options.gen.go -from-struct=Options
type Options struct {
	repo     groupsRepository `option:"mandatory" validate:"required"`
	users    usersRepository  `option:"mandatory" validate:"required"`
	notes    notesRepository  `option:"mandatory" validate:"required"`
	files    filesRepository  `option:"mandatory" validate:"required"`
	notifier notifier         `option:"mandatory" validate:"required"`
	tx       transactor       `option:"mandatory" validate:"required"`
}

type Usecase struct {
	Options
}

func New(opts Options) (*Usecase, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("validate groups usecase options: %v", err)
	}

	return &Usecase{Options: opts}, nil
}

// ListGroups returns the caller's groups shaped with their own role.
func (u *Usecase) ListGroups(ctx context.Context, userID uuid.UUID) ([]entity.GroupIndexView, error) {
	user, err := u.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usecase list groups: %w", err)
	}

	groups, err := u.repo.ListGroupsForUser(ctx, user.GroupIDs())
	if err != nil {
		return nil, fmt.Errorf("usecase list groups: %w", err)
	}

	views := make([]entity.GroupIndexView, 0, len(groups))
	for _, g := range groups {
		role, _ := user.RoleIn(g.ID)
		views = append(views, g.IndexView(role))
	}

	return views, nil
}

// CreateGroup creates a group with the caller as its admin.
func (u *Usecase) CreateGroup(ctx context.Context, userID uuid.UUID, title string) (entity.Group, error) {
	var group entity.Group

	err := u.tx.RunInTx(ctx, func(ctx context.Context) error {
		g, err := u.repo.CreateGroup(ctx, title)
		if err != nil {
			return err
		}

		if err := u.users.AddMembership(ctx, userID, g.ID, entity.RoleAdmin); err != nil {
			return err
		}

		group = g
		return nil
	})
	if err != nil {
		return entity.Group{}, fmt.Errorf("usecase create group: %w", err)
	}

	if members, err := u.users.ListGroupMembers(ctx, group.ID); err != nil {
		slogx.Warn(ctx, "list members for fan-out", slogx.GroupID(group.ID.String()), slogx.Err(err))
	} else {
		u.notifier.GroupUpdated(ctx, group, members)
	}

	slogx.Info(ctx, "group created", slogx.GroupID(group.ID.String()), slogx.UserID(userID.String()))

	return group, nil
}

// UpdateGroup renames a group. Admin only.
func (u *Usecase) UpdateGroup(ctx context.Context, userID, groupID uuid.UUID, title string) (entity.Group, error) {
	group, user, err := u.memberGroup(ctx, userID, groupID)
	if err != nil {
		return entity.Group{}, fmt.Errorf("usecase update group: %w", err)
	}

	if !group.AdministeredBy(&user) {
		return entity.Group{}, entity.ErrForbidden
	}

	if err := u.repo.UpdateGroupTitle(ctx, groupID, title); err != nil {
		return entity.Group{}, fmt.Errorf("usecase update group: %w", err)
	}
	group.Title = title

	if members, err := u.users.ListGroupMembers(ctx, groupID); err != nil {
		slogx.Warn(ctx, "list members for fan-out", slogx.GroupID(groupID.String()), slogx.Err(err))
	} else {
		u.notifier.GroupUpdated(ctx, group, members)
	}

	return group, nil
}

// DeleteGroup removes a group together with all of its notes. Notes
// go one at a time, children first, with their files, so removal
// events fire per note exactly as a direct delete would.
func (u *Usecase) DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	group, user, err := u.memberGroup(ctx, userID, groupID)
	if err != nil {
		return fmt.Errorf("usecase delete group: %w", err)
	}

	if !group.AdministeredBy(&user) {
		return entity.ErrForbidden
	}

	memberIDs, err := u.users.ListGroupMemberIDs(ctx, groupID)
	if err != nil {
		return fmt.Errorf("usecase delete group: %w", err)
	}

	notes, err := u.notes.ListNotesByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("usecase delete group: %w", err)
	}

	for _, note := range childrenFirst(notes) {
		if err := u.removeNote(ctx, note); err != nil {
			return fmt.Errorf("usecase delete group: %w", err)
		}
	}

	if err := u.repo.DeleteGroup(ctx, groupID); err != nil {
		return fmt.Errorf("usecase delete group: %w", err)
	}

	u.notifier.GroupRemoved(ctx, groupID, memberIDs)

	slogx.Info(ctx, "group removed", slogx.GroupID(groupID.String()), slogx.UserID(userID.String()))

	return nil
}

// GenerateInviteCode issues a time-limited join code. Only admins may
// invite, and a code can never grant the admin role: the requested
// role is clamped into the editor..reader range, defaulting to reader.
func (u *Usecase) GenerateInviteCode(ctx context.Context, userID, groupID uuid.UUID, role *entity.Role) (entity.InviteCode, error) {
	group, user, err := u.memberGroup(ctx, userID, groupID)
	if err != nil {
		return entity.InviteCode{}, fmt.Errorf("usecase generate invite: %w", err)
	}

	if !group.AdministeredBy(&user) {
		return entity.InviteCode{}, entity.ErrForbidden
	}

	granted := entity.RoleReader
	if role != nil {
		granted = *role
		if granted < entity.RoleEditor {
			granted = entity.RoleEditor
		}
		if granted > entity.RoleReader {
			granted = entity.RoleReader
		}
	}

	// Lazy pruning keeps the code list from growing without bound.
	if err := u.repo.DeleteExpiredInviteCodes(ctx, groupID, now()); err != nil {
		return entity.InviteCode{}, fmt.Errorf("usecase generate invite: %w", err)
	}

	code := entity.InviteCode{
		Code:       randx.String(inviteCodeLength),
		GroupID:    groupID,
		AuthorID:   userID,
		Role:       granted,
		ExpireDate: now().Add(inviteCodeTTL),
	}

	if err := u.repo.CreateInviteCode(ctx, code); err != nil {
		return entity.InviteCode{}, fmt.Errorf("usecase generate invite: %w", err)
	}

	return code, nil
}

// JoinGroup redeems an invite code for the caller and returns the
// group shaped with the freshly granted role.
func (u *Usecase) JoinGroup(ctx context.Context, userID, groupID uuid.UUID, code string) (entity.GroupIndexView, error) {
	user, err := u.users.GetUser(ctx, userID)
	if err != nil {
		return entity.GroupIndexView{}, fmt.Errorf("usecase join group: %w", err)
	}

	group, err := u.repo.GetGroup(ctx, groupID)
	if err != nil {
		return entity.GroupIndexView{}, fmt.Errorf("usecase join group: %w", err)
	}

	invite, err := u.repo.GetInviteCode(ctx, groupID, code, now())
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.GroupIndexView{}, fmt.Errorf("redeem invite code: %w", entity.ErrForbidden)
		}
		return entity.GroupIndexView{}, fmt.Errorf("usecase join group: %w", err)
	}

	if _, ok := user.RoleIn(groupID); ok {
		return entity.GroupIndexView{}, fmt.Errorf("join group: %w", entity.ErrAlreadyDone)
	}

	if err := u.users.AddMembership(ctx, userID, groupID, invite.Role); err != nil {
		return entity.GroupIndexView{}, fmt.Errorf("usecase join group: %w", err)
	}

	if members, err := u.users.ListGroupMembers(ctx, groupID); err != nil {
		slogx.Warn(ctx, "list members for fan-out", slogx.GroupID(groupID.String()), slogx.Err(err))
	} else {
		u.notifier.GroupUpdated(ctx, group, members)
	}

	slogx.Info(ctx, "user joined group",
		slogx.GroupID(groupID.String()),
		slogx.UserID(userID.String()),
	)

	return group.IndexView(invite.Role), nil
}

// memberGroup loads a group, hiding it from non-members.
func (u *Usecase) memberGroup(ctx context.Context, userID, groupID uuid.UUID) (entity.Group, entity.User, error) {
	user, err := u.users.GetUser(ctx, userID)
	if err != nil {
		return entity.Group{}, entity.User{}, err
	}

	group, err := u.repo.GetGroup(ctx, groupID)
	if err != nil {
		return entity.Group{}, entity.User{}, err
	}

	if _, ok := user.RoleIn(groupID); !ok {
		return entity.Group{}, entity.User{}, entity.ErrNotFound
	}

	return group, user, nil
}

func (u *Usecase) removeNote(ctx context.Context, note entity.Note) error {
	files, err := u.files.ListFilesByNote(ctx, note.ID)
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := u.files.DeleteFile(ctx, f.ID); err != nil {
			return err
		}
		u.notifier.FileRemoved(ctx, note, f.ID)
	}

	if err := u.notes.DeleteNote(ctx, note.ID); err != nil {
		return err
	}

	u.notifier.NoteRemoved(ctx, note)

	return nil
}

// childrenFirst orders notes so every note precedes its ancestors.
func childrenFirst(notes []entity.Note) []entity.Note {
	byID := make(map[uuid.UUID]entity.Note, len(notes))
	children := make(map[uuid.UUID][]uuid.UUID)
	for _, n := range notes {
		byID[n.ID] = n
	}
	for _, n := range notes {
		if n.ParentID != nil {
			if _, ok := byID[*n.ParentID]; ok {
				children[*n.ParentID] = append(children[*n.ParentID], n.ID)
				continue
			}
		}
	}

	var ordered []entity.Note
	visited := make(map[uuid.UUID]bool, len(notes))

	var visit func(id uuid.UUID)
	visit = func(id uuid.UUID) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, child := range children[id] {
			visit(child)
		}
		ordered = append(ordered, byID[id])
	}

	for _, n := range notes {
		if n.ParentID == nil {
			visit(n.ID)
			continue
		}
		if _, ok := byID[*n.ParentID]; !ok {
			visit(n.ID)
		}
	}

	return ordered
}
