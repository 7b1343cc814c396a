package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/jmoiron/sqlx"
)

type groupsRepo struct {
	q sqlx.ExtContext
}

type groupRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *groupsRepo) GetGroupByName(ctx context.Context, name string) (domain.Group, error) {
	var row groupRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT id, name, created_at FROM permission_groups WHERE name = ?`, name)
	if err != nil {
		return domain.Group{}, mapNotFound(err)
	}

	caps, err := r.capabilities(ctx, row.ID)
	if err != nil {
		return domain.Group{}, err
	}

	return domain.Group{ID: row.ID, Name: row.Name, Capabilities: caps, CreatedAt: row.CreatedAt}, nil
}

func (r *groupsRepo) CreateGroup(ctx context.Context, g domain.Group) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO permission_groups (id, name, created_at) VALUES (?, ?, ?)`,
		g.ID, g.Name, g.CreatedAt.UTC(),
	)
	if err != nil {
		return mapConstraint(err)
	}
	return r.GrantCapabilities(ctx, g.ID, g.Capabilities)
}

func (r *groupsRepo) GrantCapabilities(ctx context.Context, groupID string, capabilities []string) error {
	for _, c := range capabilities {
		_, err := r.q.ExecContext(ctx,
			`INSERT OR IGNORE INTO group_capabilities (group_id, capability) VALUES (?, ?)`,
			groupID, c,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *groupsRepo) AddAccountToGroup(ctx context.Context, accountID, groupID string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO account_groups (account_id, group_id) VALUES (?, ?)`,
		accountID, groupID,
	)
	return err
}

func (r *groupsRepo) ListAccountGroups(ctx context.Context, accountID string) ([]domain.Group, error) {
	var rows []groupRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT g.id, g.name, g.created_at
		FROM permission_groups g
		JOIN account_groups ag ON ag.group_id = g.id
		WHERE ag.account_id = ?
		ORDER BY g.name`, accountID)
	if err != nil {
		return nil, err
	}

	groups := make([]domain.Group, 0, len(rows))
	for _, row := range rows {
		caps, err := r.capabilities(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		groups = append(groups, domain.Group{ID: row.ID, Name: row.Name, Capabilities: caps, CreatedAt: row.CreatedAt})
	}
	return groups, nil
}

func (r *groupsRepo) capabilities(ctx context.Context, groupID string) ([]string, error) {
	var caps []string
	err := sqlx.SelectContext(ctx, r.q, &caps,
		`SELECT capability FROM group_capabilities WHERE group_id = ? ORDER BY capability`, groupID)
	if err != nil {
		return nil, err
	}
	return caps, nil
}
