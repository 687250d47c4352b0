package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/notegrove/notegrove/internal/entity"
)

// GetUser loads a user together with the group memberships driving
// visibility and edit checks.
func (r *Repo) GetUser(ctx context.Context, id uuid.UUID) (entity.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, user_name FROM users WHERE id = $1`, id)

	var u entity.User
	if err := row.Scan(&u.ID, &u.Email, &u.UserName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.User{}, entity.ErrNotFound
		}
		return entity.User{}, fmt.Errorf("get user: %v", err)
	}

	memberships, err := r.listMemberships(ctx, id)
	if err != nil {
		return entity.User{}, err
	}
	u.Groups = memberships

	return u, nil
}

func (r *Repo) listMemberships(ctx context.Context, userID uuid.UUID) ([]entity.Membership, error) {
	rows, err := r.db.Query(ctx,
		`SELECT group_id, role FROM user_groups WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %v", err)
	}
	defer rows.Close()

	var memberships []entity.Membership
	for rows.Next() {
		var m entity.Membership
		if err := rows.Scan(&m.GroupID, &m.Role); err != nil {
			return nil, fmt.Errorf("scan membership: %v", err)
		}
		memberships = append(memberships, m)
	}

	return memberships, rows.Err()
}

// ListGroupMembers returns every user of the group with their
// memberships populated, for role-shaped group payloads.
func (r *Repo) ListGroupMembers(ctx context.Context, groupID uuid.UUID) ([]entity.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.email, u.user_name, ug.role
		 FROM users u
		 JOIN user_groups ug ON ug.user_id = u.id
		 WHERE ug.group_id = $1`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list group members: %v", err)
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var u entity.User
		var role entity.Role
		if err := rows.Scan(&u.ID, &u.Email, &u.UserName, &role); err != nil {
			return nil, fmt.Errorf("scan group member: %v", err)
		}
		u.Groups = []entity.Membership{{GroupID: groupID, Role: role}}
		users = append(users, u)
	}

	return users, rows.Err()
}

// ListGroupMemberIDs returns the ids of the group's members, the
// involved-user set for group-owned notes.
func (r *Repo) ListGroupMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM user_groups WHERE group_id = $1`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group member ids: %v", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member id: %v", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *Repo) AddMembership(ctx context.Context, userID, groupID uuid.UUID, role entity.Role) error {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO user_groups (user_id, group_id, role) VALUES ($1, $2, $3)`,
		userID, groupID, role,
	); err != nil {
		return fmt.Errorf("add membership: %v", err)
	}

	return nil
}
