package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const operationCreateSchema = "create_schema"

var ErrCreatingSchemaFailed = errors.New("creating schema failed")

// Schema returns the DDL for the configured events and snapshots tables.
func (es EventStore) Schema() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
    sequence_number BIGSERIAL PRIMARY KEY,
    occurred_at     TIMESTAMP WITH TIME ZONE NOT NULL,
    event_type      TEXT NOT NULL,
    payload         JSONB NOT NULL,
    metadata        JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS %[1]s_event_type_idx ON %[1]s (event_type);
CREATE INDEX IF NOT EXISTS %[1]s_occurred_at_idx ON %[1]s (occurred_at);
CREATE INDEX IF NOT EXISTS %[1]s_payload_idx ON %[1]s USING gin (payload jsonb_path_ops);

CREATE TABLE IF NOT EXISTS %[2]s (
    projection_type TEXT NOT NULL,
    filter_hash     TEXT NOT NULL,
    sequence_number BIGINT NOT NULL,
    snapshot_data   JSONB NOT NULL,
    created_at      TIMESTAMP WITH TIME ZONE NOT NULL,
    PRIMARY KEY (projection_type, filter_hash)
);
`, es.eventTableName, es.snapshotTableName)
}

// CreateSchema runs Schema on the primary. It is idempotent.
func (es EventStore) CreateSchema(ctx context.Context) error {
	start := time.Now()
	_, err := es.db.Exec(ctx, es.Schema())
	es.logSQL(ctx, operationCreateSchema, es.Schema(), time.Since(start))

	if err != nil {
		es.logError(ctx, operationCreateSchema, err)
		return errors.Join(ErrCreatingSchemaFailed, err)
	}

	return nil
}
