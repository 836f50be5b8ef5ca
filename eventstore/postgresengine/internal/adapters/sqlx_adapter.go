package adapters

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for *sqlx.DB.
type SQLXAdapter struct {
	db      *sqlx.DB
	replica *sqlx.DB
}

func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

func NewSQLXAdapterWithReplica(db *sqlx.DB, replica *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db, replica: replica}
}

func (s *SQLXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	return s.query(ctx, s.db, query)
}

func (s *SQLXAdapter) QueryReplica(ctx context.Context, query string) (DBRows, error) {
	if s.replica == nil {
		return s.query(ctx, s.db, query)
	}

	return s.query(ctx, s.replica, query)
}

func (s *SQLXAdapter) query(ctx context.Context, db *sqlx.DB, query string) (DBRows, error) {
	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &sqlRows{rows: rows.Rows}, nil
}

func (s *SQLXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &sqlResult{result: result}, nil
}
