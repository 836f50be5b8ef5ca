// Package redissnapshots stores projection snapshots in Redis, next to any event store engine.
//
// A snapshot is one hash per projection type and filter hash. Saving is atomic and never
// replaces a snapshot with one of a lower sequence number.
package redissnapshots

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AntonStoeckl/fmodel-go/eventstore"
)

const (
	defaultKeyPrefix = "fmodel:snapshot:"

	fieldSequenceNumber = "sequence_number"
	fieldData           = "data"
	fieldCreatedAt      = "created_at"

	logMsgSnapshotSaved   = "snapshot saved"
	logMsgSnapshotSkipped = "snapshot skipped, a newer one exists"
	logAttrProjectionType = "projection_type"
	logAttrSequenceNumber = "sequence_number"
)

var (
	ErrNilRedisClient     = errors.New("redis client must not be nil")
	ErrEmptyKeyPrefix     = errors.New("key prefix must not be empty")
	ErrCorruptSnapshotRow = errors.New("stored snapshot is corrupt")
)

// saveIfNewer writes the snapshot unless the stored one has the same or a higher sequence number.
var saveIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'sequence_number')
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'sequence_number', ARGV[1], 'data', ARGV[2], 'created_at', ARGV[3])
if tonumber(ARGV[4]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[4])
end
return 1
`)

// Option configures a Store.
type Option func(*Store) error

// WithKeyPrefix sets the prefix of all snapshot keys.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) error {
		if prefix == "" {
			return ErrEmptyKeyPrefix
		}

		s.keyPrefix = prefix

		return nil
	}
}

// WithTTL lets snapshots expire after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) error {
		s.ttl = ttl
		return nil
	}
}

// WithLogger sets a logger for saved and skipped snapshots.
func WithLogger(logger eventstore.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// Store saves, loads and deletes snapshots in Redis.
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	logger    eventstore.Logger
}

func NewStore(client redis.UniversalClient, options ...Option) (*Store, error) {
	if client == nil {
		return nil, ErrNilRedisClient
	}

	s := &Store{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// SaveSnapshot stores snapshot unless one with the same or a higher sequence number exists.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	createdAt := snapshot.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	saved, err := saveIfNewer.Run(
		ctx,
		s.client,
		[]string{s.key(snapshot.ProjectionType, snapshot.FilterHash)},
		strconv.FormatUint(uint64(snapshot.SequenceNumber), 10),
		string(snapshot.DataJSON),
		createdAt.Format(time.RFC3339Nano),
		s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return errors.Join(eventstore.ErrSavingSnapshotFailed, err)
	}

	if s.logger != nil {
		msg := logMsgSnapshotSaved
		if saved == 0 {
			msg = logMsgSnapshotSkipped
		}

		s.logger.Debug(msg, logAttrProjectionType, snapshot.ProjectionType, logAttrSequenceNumber, snapshot.SequenceNumber)
	}

	return nil
}

// LoadSnapshot returns the snapshot of projectionType built from filter, nil if there is none.
func (s *Store) LoadSnapshot(
	ctx context.Context,
	projectionType string,
	filter eventstore.Filter,
) (*eventstore.Snapshot, error) {

	fields, err := s.client.HGetAll(ctx, s.key(projectionType, filter.Hash())).Result()
	if err != nil {
		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, err)
	}

	if len(fields) == 0 {
		return nil, nil //nolint:nilnil // not found is not an error
	}

	sequenceNumber, parseErr := strconv.ParseUint(fields[fieldSequenceNumber], 10, 64)
	if parseErr != nil {
		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, ErrCorruptSnapshotRow, parseErr)
	}

	createdAt, parseErr := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if parseErr != nil {
		return nil, errors.Join(eventstore.ErrLoadingSnapshotFailed, ErrCorruptSnapshotRow, parseErr)
	}

	return &eventstore.Snapshot{
		ProjectionType: projectionType,
		FilterHash:     filter.Hash(),
		SequenceNumber: eventstore.MaxSequenceNumberUint(sequenceNumber),
		DataJSON:       []byte(fields[fieldData]),
		CreatedAt:      createdAt,
	}, nil
}

// DeleteSnapshot removes the snapshot of projectionType built from filter, if any.
func (s *Store) DeleteSnapshot(ctx context.Context, projectionType string, filter eventstore.Filter) error {
	if err := s.client.Del(ctx, s.key(projectionType, filter.Hash())).Err(); err != nil {
		return errors.Join(eventstore.ErrDeletingSnapshotFailed, err)
	}

	return nil
}

func (s *Store) key(projectionType string, filterHash string) string {
	return s.keyPrefix + projectionType + ":" + filterHash
}
