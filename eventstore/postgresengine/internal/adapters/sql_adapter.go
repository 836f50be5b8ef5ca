package adapters

import (
	"context"
	"database/sql"
)

// SQLAdapter implements DBAdapter for *sql.DB, e.g. opened with the lib/pq driver.
type SQLAdapter struct {
	db      *sql.DB
	replica *sql.DB
}

func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

func NewSQLAdapterWithReplica(db *sql.DB, replica *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db, replica: replica}
}

func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	return s.query(ctx, s.db, query)
}

func (s *SQLAdapter) QueryReplica(ctx context.Context, query string) (DBRows, error) {
	if s.replica == nil {
		return s.query(ctx, s.db, query)
	}

	return s.query(ctx, s.replica, query)
}

func (s *SQLAdapter) query(ctx context.Context, db *sql.DB, query string) (DBRows, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &sqlRows{rows: rows}, nil
}

func (s *SQLAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &sqlResult{result: result}, nil
}
