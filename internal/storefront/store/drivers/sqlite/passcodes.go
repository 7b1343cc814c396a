package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/domain"
	"github.com/jmoiron/sqlx"
)

type passcodesRepo struct {
	q sqlx.ExtContext
}

type passcodeRow struct {
	ID         string       `db:"id"`
	AccountID  string       `db:"account_id"`
	Code       string       `db:"code"`
	CreatedAt  time.Time    `db:"created_at"`
	ExpiresAt  time.Time    `db:"expires_at"`
	ConsumedAt sql.NullTime `db:"consumed_at"`
}

func (r *passcodesRepo) IssuePasscode(ctx context.Context, p domain.Passcode) error {
	_, err := sqlx.NamedExecContext(ctx, r.q, `
		INSERT INTO passcodes (id, account_id, code, created_at, expires_at)
		VALUES (:id, :account_id, :code, :created_at, :expires_at)`,
		passcodeRow{
			ID:        p.ID,
			AccountID: p.AccountID,
			Code:      p.Code,
			CreatedAt: p.CreatedAt.UTC(),
			ExpiresAt: p.ExpiresAt.UTC(),
		})
	return mapConstraint(err)
}

func (r *passcodesRepo) GetMostRecentPasscode(ctx context.Context, accountID string) (domain.Passcode, error) {
	var row passcodeRow
	err := sqlx.GetContext(ctx, r.q, &row, `
		SELECT id, account_id, code, created_at, expires_at, consumed_at
		FROM passcodes
		WHERE account_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, accountID)
	if err != nil {
		return domain.Passcode{}, mapNotFound(err)
	}

	p := domain.Passcode{
		ID:        row.ID,
		AccountID: row.AccountID,
		Code:      row.Code,
		CreatedAt: row.CreatedAt.UTC(),
		ExpiresAt: row.ExpiresAt.UTC(),
	}
	if row.ConsumedAt.Valid {
		at := row.ConsumedAt.Time.UTC()
		p.ConsumedAt = &at
	}
	return p, nil
}

func (r *passcodesRepo) ConsumePasscode(ctx context.Context, id string, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE passcodes SET consumed_at = ? WHERE id = ? AND consumed_at IS NULL`,
		at.UTC(), id,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *passcodesRepo) DeleteExpiredPasscodes(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM passcodes WHERE expires_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
