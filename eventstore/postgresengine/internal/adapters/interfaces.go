package adapters

import "context"

// DBAdapter runs plain SQL strings on a primary and, optionally, a replica.
type DBAdapter interface {
	// Query reads from the primary.
	Query(ctx context.Context, query string) (DBRows, error)

	// QueryReplica reads from the replica, or from the primary when there is none.
	QueryReplica(ctx context.Context, query string) (DBRows, error)

	// Exec writes to the primary.
	Exec(ctx context.Context, query string) (DBResult, error)
}

type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type DBResult interface {
	RowsAffected() (int64, error)
}
