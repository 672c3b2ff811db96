package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/snapshot"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/pkg/serialization"
)

// SnapshotSaver implements snapshot.Saver for PostgreSQL
type SnapshotSaver struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
	tableName  string
}

// NewSnapshotSaver creates a new PostgreSQL snapshot saver
func NewSnapshotSaver(pool *pgxpool.Pool, serializer *serialization.Serializer) *SnapshotSaver {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	return &SnapshotSaver{
		pool:       pool,
		serializer: serializer,
		tableName:  "link_snapshots",
	}
}

// Save stores a snapshot in PostgreSQL
func (s *SnapshotSaver) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if snap == nil {
		return snapshot.ErrInvalidSnapshotID
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	// Serialize the link set
	data, err := s.serializer.Serialize(snap.Links)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot links: %w", err)
	}

	metadataJSON, err := json.Marshal(snap.Metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, exercise_id, exercise_name, links, metadata, taken_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			links = EXCLUDED.links,
			metadata = EXCLUDED.metadata,
			taken_at = EXCLUDED.taken_at
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		snap.ID, snap.ExerciseID, snap.ExerciseName, data, metadataJSON, snap.TakenAt, snap.Version)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves a snapshot by ID
func (s *SnapshotSaver) Load(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	if id == "" {
		return nil, snapshot.ErrInvalidSnapshotID
	}

	query := fmt.Sprintf(`
		SELECT id, exercise_id, exercise_name, links, metadata, taken_at, version
		FROM %s
		WHERE id = $1
	`, s.tableName)

	return s.scanSnapshot(s.pool.QueryRow(ctx, query, id))
}

// LoadLatest retrieves the most recent snapshot for an exercise
func (s *SnapshotSaver) LoadLatest(ctx context.Context, exerciseID string) (*snapshot.Snapshot, error) {
	if exerciseID == "" {
		return nil, snapshot.ErrInvalidExerciseID
	}

	query := fmt.Sprintf(`
		SELECT id, exercise_id, exercise_name, links, metadata, taken_at, version
		FROM %s
		WHERE exercise_id = $1
		ORDER BY taken_at DESC
		LIMIT 1
	`, s.tableName)

	return s.scanSnapshot(s.pool.QueryRow(ctx, query, exerciseID))
}

// List retrieves snapshots based on filter criteria
func (s *SnapshotSaver) List(ctx context.Context, filter snapshot.Filter) ([]*snapshot.Snapshot, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query, args := s.buildListQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*snapshot.Snapshot
	for rows.Next() {
		snap, err := s.scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// Delete removes a snapshot by ID
func (s *SnapshotSaver) Delete(ctx context.Context, id string) error {
	if id == "" {
		return snapshot.ErrInvalidSnapshotID
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	result, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return snapshot.ErrSnapshotNotFound
	}
	return nil
}

// CreateTables creates the necessary database tables
func (s *SnapshotSaver) CreateTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(255) PRIMARY KEY,
			exercise_id VARCHAR(255) NOT NULL,
			exercise_name VARCHAR(255) NOT NULL DEFAULT '',
			links BYTEA NOT NULL,
			metadata JSONB,
			taken_at TIMESTAMP NOT NULL DEFAULT NOW(),
			version VARCHAR(50) NOT NULL DEFAULT '1.0'
		);

		CREATE INDEX IF NOT EXISTS idx_%s_exercise_id ON %s (exercise_id);
		CREATE INDEX IF NOT EXISTS idx_%s_taken_at ON %s (taken_at);
	`, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the database connection pool
func (s *SnapshotSaver) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *SnapshotSaver) scanSnapshot(row pgx.Row) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	var data []byte
	var metadataJSON []byte

	err := row.Scan(&snap.ID, &snap.ExerciseID, &snap.ExerciseName,
		&data, &metadataJSON, &snap.TakenAt, &snap.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, snapshot.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap.Links = []link.ExerciseLink{}
	if err := s.serializer.Deserialize(data, &snap.Links); err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot links: %w", err)
	}
	if err := json.Unmarshal(metadataJSON, &snap.Metadata); err != nil {
		return nil, fmt.Errorf("failed to deserialize metadata: %w", err)
	}
	return &snap, nil
}

// buildListQuery constructs the SQL query for listing snapshots
func (s *SnapshotSaver) buildListQuery(filter snapshot.Filter) (string, []interface{}) {
	query := fmt.Sprintf("SELECT id, exercise_id, exercise_name, links, metadata, taken_at, version FROM %s WHERE 1=1", s.tableName)
	args := make([]interface{}, 0)
	argCount := 0

	if filter.ExerciseID != "" {
		argCount++
		query += fmt.Sprintf(" AND exercise_id = $%d", argCount)
		args = append(args, filter.ExerciseID)
	}

	if filter.Since != nil {
		argCount++
		query += fmt.Sprintf(" AND taken_at > $%d", argCount)
		args = append(args, *filter.Since)
	}

	if filter.Before != nil {
		argCount++
		query += fmt.Sprintf(" AND taken_at < $%d", argCount)
		args = append(args, *filter.Before)
	}

	query += " ORDER BY taken_at DESC"

	if filter.Limit > 0 {
		argCount++
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filter.Limit)
	}

	if filter.Offset > 0 {
		argCount++
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filter.Offset)
	}

	return query, args
}
