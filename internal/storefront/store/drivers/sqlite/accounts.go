package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/jmoiron/sqlx"
)

type accountsRepo struct {
	q sqlx.ExtContext
}

type accountRow struct {
	ID           string         `db:"id"`
	Email        string         `db:"email"`
	PasswordHash sql.NullString `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r accountRow) toDomain() domain.Account {
	return domain.Account{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: mapNullString(r.PasswordHash),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const selectAccount = `SELECT id, email, password_hash, created_at, updated_at FROM accounts`

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	var row accountRow
	if err := sqlx.GetContext(ctx, r.q, &row, selectAccount+` WHERE id = ?`, id); err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	var row accountRow
	if err := sqlx.GetContext(ctx, r.q, &row, selectAccount+` WHERE email = ?`, email); err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return row.toDomain(), nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := sqlx.NamedExecContext(ctx, r.q, `
		INSERT INTO accounts (id, email, password_hash, created_at, updated_at)
		VALUES (:id, :email, :password_hash, :created_at, :updated_at)`,
		accountRow{
			ID:           a.ID,
			Email:        a.Email,
			PasswordHash: mapStringNull(a.PasswordHash),
			CreatedAt:    a.CreatedAt.UTC(),
			UpdatedAt:    a.UpdatedAt.UTC(),
		})
	return mapConstraint(err)
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, accountID, hash string, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		mapStringNull(hash), at.UTC(), accountID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
