// Package postgres implements the link store and exercise catalog on
// PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/dto"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/similarity"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/pkg/serialization"
)

// Postgres error codes used for constraint mapping.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// exerciseAnnotations is the serialized portion of a catalog record: the
// classification tags and muscle assignments travel as one serializer blob.
type exerciseAnnotations struct {
	Types        []link.TypeTag                `json:"types" msgpack:"types"`
	MuscleGroups []link.MuscleGroupAssignment  `json:"muscle_groups" msgpack:"muscle_groups"`
}

// LinkStore implements the link store and exercise catalog for PostgreSQL
type LinkStore struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
}

// NewLinkStore creates a new PostgreSQL link store
func NewLinkStore(pool *pgxpool.Pool, serializer *serialization.Serializer) *LinkStore {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	return &LinkStore{pool: pool, serializer: serializer}
}

// CreateTables creates the necessary database tables
func (s *LinkStore) CreateTables(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS exercises (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			annotations BYTEA NOT NULL
		);

		CREATE TABLE IF NOT EXISTS exercise_links (
			id VARCHAR(255) PRIMARY KEY,
			source_exercise_id VARCHAR(255) NOT NULL REFERENCES exercises(id),
			target_exercise_id VARCHAR(255) NOT NULL REFERENCES exercises(id),
			link_type VARCHAR(20) NOT NULL,
			display_order INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_exercise_links_source
			ON exercise_links (source_exercise_id);
		CREATE INDEX IF NOT EXISTS idx_exercise_links_target
			ON exercise_links (target_exercise_id);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_exercise_links_active_unique
			ON exercise_links (source_exercise_id, target_exercise_id, link_type)
			WHERE is_active;
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// UpsertExercise writes a catalog record.
func (s *LinkStore) UpsertExercise(ctx context.Context, ex *link.Exercise) error {
	if ex == nil || ex.ID == "" {
		return link.ErrNilExercise
	}

	blob, err := s.serializer.Serialize(exerciseAnnotations{
		Types:        ex.Types,
		MuscleGroups: ex.MuscleGroups,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize exercise annotations: %w", err)
	}

	query := `
		INSERT INTO exercises (id, name, annotations)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			annotations = EXCLUDED.annotations
	`
	if _, err := s.pool.Exec(ctx, query, ex.ID, ex.Name, blob); err != nil {
		return fmt.Errorf("failed to upsert exercise: %w", err)
	}
	return nil
}

// GetExercise loads a catalog record.
func (s *LinkStore) GetExercise(ctx context.Context, exerciseID string) (*link.Exercise, error) {
	if exerciseID == "" {
		return nil, link.ErrInvalidExerciseID
	}

	var ex link.Exercise
	var blob []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, annotations FROM exercises WHERE id = $1`, exerciseID).
		Scan(&ex.ID, &ex.Name, &blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, link.ErrExerciseNotFound
		}
		return nil, fmt.Errorf("failed to load exercise: %w", err)
	}

	var annotations exerciseAnnotations
	if err := s.serializer.Deserialize(blob, &annotations); err != nil {
		return nil, fmt.Errorf("failed to deserialize exercise annotations: %w", err)
	}
	ex.Types = annotations.Types
	ex.MuscleGroups = annotations.MuscleGroups
	return &ex, nil
}

// ListExercises loads all catalog records.
func (s *LinkStore) ListExercises(ctx context.Context) ([]*link.Exercise, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, annotations FROM exercises ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	defer rows.Close()

	var out []*link.Exercise
	for rows.Next() {
		var ex link.Exercise
		var blob []byte
		if err := rows.Scan(&ex.ID, &ex.Name, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan exercise row: %w", err)
		}
		var annotations exerciseAnnotations
		if err := s.serializer.Deserialize(blob, &annotations); err != nil {
			return nil, fmt.Errorf("failed to deserialize exercise annotations: %w", err)
		}
		ex.Types = annotations.Types
		ex.MuscleGroups = annotations.MuscleGroups
		out = append(out, &ex)
	}
	return out, rows.Err()
}

// CreateLink inserts a new active link. Constraint violations are mapped to
// domain errors so callers see the same taxonomy as with other stores.
func (s *LinkStore) CreateLink(ctx context.Context, exerciseID string, req dto.CreateExerciseLinkRequest) (*link.ExerciseLink, error) {
	linkType, err := link.ParseType(req.LinkType)
	if err != nil {
		return nil, dto.NewStoreError(dto.StoreErrInvalid, fmt.Sprintf("unknown link type %q", req.LinkType), err)
	}

	created := &link.ExerciseLink{
		ID:               uuid.NewString(),
		SourceExerciseID: exerciseID,
		TargetExerciseID: req.TargetExerciseID,
		Type:             linkType,
		DisplayOrder:     req.DisplayOrder,
		IsActive:         true,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if err := created.Validate(); err != nil {
		return nil, dto.NewStoreError(dto.StoreErrInvalid, err.Error(), err)
	}

	query := `
		INSERT INTO exercise_links
			(id, source_exercise_id, target_exercise_id, link_type, display_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.pool.Exec(ctx, query,
		created.ID, created.SourceExerciseID, created.TargetExerciseID,
		created.Type.String(), created.DisplayOrder, created.IsActive,
		created.CreatedAt, created.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgForeignKeyViolation:
				return nil, link.ErrExerciseNotFound
			case pgUniqueViolation:
				return nil, dto.NewStoreError(dto.StoreErrInvalid, "link already exists", link.ErrDuplicateLink)
			}
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}
	return created, nil
}

// GetLinks returns the link snapshot for an exercise. IncludeDetails joins
// the target exercise's display name onto each link.
func (s *LinkStore) GetLinks(ctx context.Context, exerciseID string, query dto.LinkQuery) (*dto.ExerciseLinksResponse, error) {
	var name string
	err := s.pool.QueryRow(ctx, `SELECT name FROM exercises WHERE id = $1`, exerciseID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, link.ErrExerciseNotFound
		}
		return nil, fmt.Errorf("failed to load exercise: %w", err)
	}

	cols := `l.id, l.source_exercise_id, l.target_exercise_id, l.link_type,
	       l.display_order, l.is_active, l.created_at, l.updated_at`
	from := `FROM exercise_links l`
	if query.IncludeDetails {
		cols += `, COALESCE(t.name, '')`
		from += ` LEFT JOIN exercises t ON t.id = l.target_exercise_id`
	}
	sql := `SELECT ` + cols + ` ` + from + ` WHERE l.source_exercise_id = $1`
	args := []interface{}{exerciseID}
	if query.Type != nil {
		sql += ` AND l.link_type = $2`
		args = append(args, query.Type.String())
	}
	sql += ` ORDER BY l.link_type, l.display_order, l.created_at`

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []*link.ExerciseLink
	for rows.Next() {
		var l link.ExerciseLink
		var linkType string
		dest := []interface{}{&l.ID, &l.SourceExerciseID, &l.TargetExerciseID, &linkType,
			&l.DisplayOrder, &l.IsActive, &l.CreatedAt, &l.UpdatedAt}
		if query.IncludeDetails {
			dest = append(dest, &l.TargetName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan link row: %w", err)
		}
		parsed, err := link.ParseType(linkType)
		if err != nil {
			return nil, fmt.Errorf("corrupt link_type %q: %w", linkType, err)
		}
		l.Type = parsed
		links = append(links, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read link rows: %w", err)
	}

	resp := &dto.ExerciseLinksResponse{
		ExerciseID: exerciseID,
		Links:      links,
		TotalCount: len(links),
	}
	if query.IncludeDetails {
		resp.ExerciseName = name
	}
	return resp, nil
}

// GetSuggestedLinks ranks the rest of the catalog by muscle-group overlap
// among type-compatible exercises not already linked from the source.
func (s *LinkStore) GetSuggestedLinks(ctx context.Context, exerciseID string, count int) ([]*link.ExerciseLink, error) {
	if count <= 0 {
		return nil, nil
	}

	source, err := s.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	linked := make(map[string]bool)
	resp, err := s.GetLinks(ctx, exerciseID, dto.LinkQuery{})
	if err != nil {
		return nil, err
	}
	for _, l := range resp.Links {
		if l.IsActive {
			linked[l.TargetExerciseID] = true
		}
	}

	candidates, err := s.ListExercises(ctx)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		exercise *link.Exercise
		score    int
	}
	var scored []ranked
	for _, candidate := range candidates {
		if candidate.ID == source.ID || linked[candidate.ID] {
			continue
		}
		if len(similarity.SharedTypes(source, candidate)) == 0 {
			continue
		}
		scored = append(scored, ranked{candidate, similarity.MuscleGroupOverlap(source, candidate)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].exercise.Name < scored[j].exercise.Name
	})
	if len(scored) > count {
		scored = scored[:count]
	}

	now := time.Now().UTC()
	out := make([]*link.ExerciseLink, 0, len(scored))
	for i, r := range scored {
		out = append(out, &link.ExerciseLink{
			ID:               "suggested-" + r.exercise.ID,
			SourceExerciseID: exerciseID,
			TargetExerciseID: r.exercise.ID,
			TargetName:       r.exercise.Name,
			Type:             link.TypeAlternative,
			DisplayOrder:     i + 1,
			IsActive:         false, // proposals are not persisted edges
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}
	return out, nil
}

// UpdateLink rewrites a link's display order and active flag.
func (s *LinkStore) UpdateLink(ctx context.Context, exerciseID, linkID string, req dto.UpdateExerciseLinkRequest) (*link.ExerciseLink, error) {
	if linkID == "" {
		return nil, link.ErrInvalidLinkID
	}

	query := `
		UPDATE exercise_links
		SET display_order = $1, is_active = $2, updated_at = NOW()
		WHERE id = $3 AND source_exercise_id = $4
		RETURNING id, source_exercise_id, target_exercise_id, link_type,
		          display_order, is_active, created_at, updated_at
	`
	row := s.pool.QueryRow(ctx, query, req.DisplayOrder, req.IsActive, linkID, exerciseID)
	l, err := scanLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, link.ErrLinkNotFound
		}
		return nil, err
	}
	return l, nil
}

// DeleteLink removes a link.
func (s *LinkStore) DeleteLink(ctx context.Context, exerciseID, linkID string) error {
	if linkID == "" {
		return link.ErrInvalidLinkID
	}

	result, err := s.pool.Exec(ctx,
		`DELETE FROM exercise_links WHERE id = $1 AND source_exercise_id = $2`,
		linkID, exerciseID)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return link.ErrLinkNotFound
	}
	return nil
}

// Close closes the database connection pool
func (s *LinkStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func scanLink(row pgx.Row) (*link.ExerciseLink, error) {
	var l link.ExerciseLink
	var linkType string
	err := row.Scan(&l.ID, &l.SourceExerciseID, &l.TargetExerciseID, &linkType,
		&l.DisplayOrder, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan link row: %w", err)
	}
	parsed, err := link.ParseType(linkType)
	if err != nil {
		return nil, fmt.Errorf("corrupt link_type %q: %w", linkType, err)
	}
	l.Type = parsed
	return &l, nil
}
