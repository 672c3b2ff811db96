package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/snapshot"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/pkg/serialization"
	_ "modernc.org/sqlite"
)

// SnapshotSaver implements snapshot.Saver for SQLite
type SnapshotSaver struct {
	db         *sql.DB
	serializer *serialization.Serializer
	tableName  string
}

// NewSnapshotSaver creates a new SQLite snapshot saver
func NewSnapshotSaver(db *sql.DB, serializer *serialization.Serializer) *SnapshotSaver {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	return &SnapshotSaver{
		db:         db,
		serializer: serializer,
		tableName:  "link_snapshots",
	}
}

// WithTableName allows overriding the default table name with validation.
// Only alphanumeric and underscore are permitted to prevent SQL injection via identifiers.
func (s *SnapshotSaver) WithTableName(name string) *SnapshotSaver {
	if isSafeIdent(name) {
		s.tableName = name
	}
	return s
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
}

// Save stores a snapshot in SQLite
func (s *SnapshotSaver) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if snap == nil {
		return snapshot.ErrInvalidSnapshotID
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	data, err := s.serializer.Serialize(snap.Links)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot links: %w", err)
	}

	metadataJSON, err := json.Marshal(snap.Metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (id, exercise_id, exercise_name, links, metadata, taken_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		snap.ID, snap.ExerciseID, snap.ExerciseName, data, string(metadataJSON),
		snap.TakenAt.UnixNano(), snap.Version)
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
		WHERE id = ?
	`, s.tableName)

	return s.scanSnapshot(s.db.QueryRowContext(ctx, query, id))
}

// LoadLatest retrieves the most recent snapshot for an exercise
func (s *SnapshotSaver) LoadLatest(ctx context.Context, exerciseID string) (*snapshot.Snapshot, error) {
	if exerciseID == "" {
		return nil, snapshot.ErrInvalidExerciseID
	}

	query := fmt.Sprintf(`
		SELECT id, exercise_id, exercise_name, links, metadata, taken_at, version
		FROM %s
		WHERE exercise_id = ?
		ORDER BY taken_at DESC
		LIMIT 1
	`, s.tableName)

	return s.scanSnapshot(s.db.QueryRowContext(ctx, query, exerciseID))
}

// List retrieves snapshots based on filter criteria
func (s *SnapshotSaver) List(ctx context.Context, filter snapshot.Filter) ([]*snapshot.Snapshot, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query, args := s.buildListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
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

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return snapshot.ErrSnapshotNotFound
	}
	return nil
}

// CreateTables creates the necessary database tables
func (s *SnapshotSaver) CreateTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			exercise_id TEXT NOT NULL,
			exercise_name TEXT NOT NULL DEFAULT '',
			links BLOB NOT NULL,
			metadata TEXT,
			taken_at INTEGER NOT NULL,
			version TEXT NOT NULL DEFAULT '1.0'
		);

		CREATE INDEX IF NOT EXISTS idx_%s_exercise_id ON %s (exercise_id);
		CREATE INDEX IF NOT EXISTS idx_%s_taken_at ON %s (taken_at);
	`, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SnapshotSaver) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (s *SnapshotSaver) scanSnapshot(row scanner) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	var data []byte
	var metadataJSON string
	var takenAt int64

	err := row.Scan(&snap.ID, &snap.ExerciseID, &snap.ExerciseName,
		&data, &metadataJSON, &takenAt, &snap.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, snapshot.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap.TakenAt = time.Unix(0, takenAt)
	snap.Links = []link.ExerciseLink{}
	if err := s.serializer.Deserialize(data, &snap.Links); err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot links: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &snap.Metadata); err != nil {
		return nil, fmt.Errorf("failed to deserialize metadata: %w", err)
	}
	return &snap, nil
}

// buildListQuery constructs the SQL query for listing snapshots
func (s *SnapshotSaver) buildListQuery(filter snapshot.Filter) (string, []interface{}) {
	query := fmt.Sprintf("SELECT id, exercise_id, exercise_name, links, metadata, taken_at, version FROM %s WHERE 1=1", s.tableName)
	args := make([]interface{}, 0)

	if filter.ExerciseID != "" {
		query += " AND exercise_id = ?"
		args = append(args, filter.ExerciseID)
	}

	if filter.Since != nil {
		query += " AND taken_at > ?"
		args = append(args, filter.Since.UnixNano())
	}

	if filter.Before != nil {
		query += " AND taken_at < ?"
		args = append(args, filter.Before.UnixNano())
	}

	query += " ORDER BY taken_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	return query, args
}
