package sqlite

import "context"

// ExecRaw runs a statement outside the repositories, for schema tests.
func ExecRaw(ctx context.Context, s *Store, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}
