package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/notegrove/notegrove/internal/entity"
)

func (r *Repo) CreateGroup(ctx context.Context, title string) (entity.Group, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO groups (title) VALUES ($1)
		 RETURNING id, title, created_at, updated_at`,
		title,
	)

	var g entity.Group
	if err := row.Scan(&g.ID, &g.Title, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return entity.Group{}, fmt.Errorf("create group: %v", err)
	}

	return g, nil
}

func (r *Repo) GetGroup(ctx context.Context, id uuid.UUID) (entity.Group, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, title, created_at, updated_at FROM groups WHERE id = $1`, id)

	var g entity.Group
	if err := row.Scan(&g.ID, &g.Title, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Group{}, entity.ErrNotFound
		}
		return entity.Group{}, fmt.Errorf("get group: %v", err)
	}

	return g, nil
}

func (r *Repo) ListGroupsForUser(ctx context.Context, groupIDs []uuid.UUID) ([]entity.Group, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, created_at, updated_at FROM groups
		 WHERE id = ANY($1::uuid[]) ORDER BY created_at`,
		groupIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list groups for user: %v", err)
	}
	defer rows.Close()

	var groups []entity.Group
	for rows.Next() {
		var g entity.Group
		if err := rows.Scan(&g.ID, &g.Title, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %v", err)
		}
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

func (r *Repo) UpdateGroupTitle(ctx context.Context, id uuid.UUID, title string) error {
	if _, err := r.db.Exec(ctx,
		`UPDATE groups SET title = $2, updated_at = now() WHERE id = $1`,
		id, title,
	); err != nil {
		return fmt.Errorf("update group title: %v", err)
	}

	return nil
}

func (r *Repo) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete group: %v", err)
	}

	return nil
}

func (r *Repo) CreateInviteCode(ctx context.Context, code entity.InviteCode) error {
	if _, err := r.db.Exec(ctx,
		`INSERT INTO group_invite_codes (code, group_id, author_id, role, expire_date)
		 VALUES ($1, $2, $3, $4, $5)`,
		code.Code, code.GroupID, code.AuthorID, code.Role, code.ExpireDate,
	); err != nil {
		return fmt.Errorf("create invite code: %v", err)
	}

	return nil
}

// GetInviteCode looks up an unexpired code within the group.
func (r *Repo) GetInviteCode(ctx context.Context, groupID uuid.UUID, code string, now time.Time) (entity.InviteCode, error) {
	row := r.db.QueryRow(ctx,
		`SELECT code, group_id, author_id, role, expire_date
		 FROM group_invite_codes
		 WHERE group_id = $1 AND code = $2 AND expire_date > $3`,
		groupID, code, now,
	)

	var c entity.InviteCode
	if err := row.Scan(&c.Code, &c.GroupID, &c.AuthorID, &c.Role, &c.ExpireDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.InviteCode{}, entity.ErrNotFound
		}
		return entity.InviteCode{}, fmt.Errorf("get invite code: %v", err)
	}

	return c, nil
}

// DeleteExpiredInviteCodes lazily prunes a group's expired codes.
func (r *Repo) DeleteExpiredInviteCodes(ctx context.Context, groupID uuid.UUID, now time.Time) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM group_invite_codes WHERE group_id = $1 AND expire_date <= $2`,
		groupID, now,
	); err != nil {
		return fmt.Errorf("delete expired invite codes: %v", err)
	}

	return nil
}
