package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

const (
	colProjectionType = "projection_type"
	colFilterHash     = "filter_hash"
	colSnapshotData   = "snapshot_data"
	colCreatedAt      = "created_at"
	excludedPrefix    = "EXCLUDED."
)

// SaveSnapshot upserts snapshot. An existing snapshot for the same projection type and
// filter hash is only replaced by one with a higher sequence number.
func (es EventStore) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	sqlQuery, buildErr := es.buildSaveSnapshotQuery(snapshot)
	if buildErr != nil {
		es.logError(ctx, operationSaveSnapshot, buildErr)
		return buildErr
	}

	start := time.Now()
	_, execErr := es.db.Exec(ctx, sqlQuery)
	es.logSQL(ctx, operationSaveSnapshot, sqlQuery, time.Since(start))

	if execErr != nil {
		es.logError(ctx, operationSaveSnapshot, execErr, logAttrProjectionType, snapshot.ProjectionType)
		es.incrementCounter(eventstore.MetricSnapshotOperations, operationSaveSnapshot, eventstore.StatusError)

		return errors.Join(eventstore.ErrSavingSnapshotFailed, execErr)
	}

	es.incrementCounter(eventstore.MetricSnapshotOperations, operationSaveSnapshot, eventstore.StatusSuccess)
	es.logInfo(ctx, logMsgSnapshotSaved, logAttrProjectionType, snapshot.ProjectionType)

	return nil
}

// LoadSnapshot returns the snapshot of projectionType built from filter, or nil without
// error when there is none.
func (es EventStore) LoadSnapshot(
	ctx context.Context,
	projectionType string,
	filter eventstore.Filter,
) (*eventstore.Snapshot, error) {

	sqlQuery, buildErr := es.buildLoadSnapshotQuery(projectionType, filter.Hash())
	if buildErr != nil {
		es.logError(ctx, operationLoadSnapshot, buildErr)
		return nil, buildErr
	}

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
	es.logSQL(ctx, operationLoadSnapshot, sqlQuery, time.Since(start))

	if queryErr != nil {
		es.logError(ctx, operationLoadSnapshot, queryErr, logAttrProjectionType, projectionType)
		es.incrementCounter(eventstore.MetricSnapshotOperations, operationLoadSnapshot, eventstore.StatusError)

		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, queryErr)
	}
	defer es.closeRows(ctx, rows)

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, err)
		}

		return nil, nil //nolint:nilnil // not found is not an error
	}

	snapshot := eventstore.Snapshot{}

	scanErr := rows.Scan(
		&snapshot.ProjectionType,
		&snapshot.FilterHash,
		&snapshot.SequenceNumber,
		&snapshot.DataJSON,
		&snapshot.CreatedAt,
	)
	if scanErr != nil {
		es.logError(ctx, operationLoadSnapshot, scanErr)
		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, scanErr)
	}

	es.incrementCounter(eventstore.MetricSnapshotOperations, operationLoadSnapshot, eventstore.StatusSuccess)

	return &snapshot, nil
}

// DeleteSnapshot removes the snapshot of projectionType built from filter, if any.
func (es EventStore) DeleteSnapshot(ctx context.Context, projectionType string, filter eventstore.Filter) error {
	sqlQuery, buildErr := es.buildDeleteSnapshotQuery(projectionType, filter.Hash())
	if buildErr != nil {
		es.logError(ctx, operationDeleteSnapshot, buildErr)
		return buildErr
	}

	start := time.Now()
	_, execErr := es.db.Exec(ctx, sqlQuery)
	es.logSQL(ctx, operationDeleteSnapshot, sqlQuery, time.Since(start))

	if execErr != nil {
		es.logError(ctx, operationDeleteSnapshot, execErr, logAttrProjectionType, projectionType)
		return errors.Join(eventstore.ErrDeletingSnapshotFailed, execErr)
	}

	es.logInfo(ctx, logMsgSnapshotDeleted, logAttrProjectionType, projectionType)

	return nil
}

func (es EventStore) buildSaveSnapshotQuery(snapshot eventstore.Snapshot) (string, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(es.snapshotTableName).
		Rows(goqu.Record{
			colProjectionType: snapshot.ProjectionType,
			colFilterHash:     snapshot.FilterHash,
			colSequenceNumber: snapshot.SequenceNumber,
			colSnapshotData:   goqu.L(castJsonb, string(snapshot.DataJSON)),
			colCreatedAt:      snapshot.CreatedAt,
		}).
		OnConflict(
			goqu.DoUpdate(
				colProjectionType+", "+colFilterHash,
				goqu.Record{
					colSequenceNumber: goqu.L(excludedPrefix + colSequenceNumber),
					colSnapshotData:   goqu.L(excludedPrefix + colSnapshotData),
					colCreatedAt:      goqu.L(excludedPrefix + colCreatedAt),
				},
			).Where(goqu.I(es.snapshotTableName + "." + colSequenceNumber).Lt(goqu.L(excludedPrefix + colSequenceNumber))),
		)

	sqlQuery, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (es EventStore) buildLoadSnapshotQuery(projectionType string, filterHash string) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.snapshotTableName).
		Select(colProjectionType, colFilterHash, colSequenceNumber, colSnapshotData, colCreatedAt).
		Where(goqu.Ex{colProjectionType: projectionType, colFilterHash: filterHash})

	sqlQuery, _, err := selectStmt.ToSQL()
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

func (es EventStore) buildDeleteSnapshotQuery(projectionType string, filterHash string) (string, error) {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(es.snapshotTableName).
		Where(goqu.Ex{colProjectionType: projectionType, colFilterHash: filterHash})

	sqlQuery, _, err := deleteStmt.ToSQL()
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}
