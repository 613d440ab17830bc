package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seoentity/seoentity"
)

// Compile-time interface verification.
var _ seoentity.AnalysisService = (*AnalysisService)(nil)

const analysisColumns = "id, mode, source_url, text, content_hash, entities, category, highlighted, created_at"

// AnalysisService implements seoentity.AnalysisService using SQLite.
type AnalysisService struct {
	db *DB
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(db *DB) *AnalysisService {
	return &AnalysisService{db: db}
}

// CreateAnalysis stores a new analysis. A missing ID or timestamp is filled in.
func (s *AnalysisService) CreateAnalysis(ctx context.Context, a *seoentity.Analysis) error {
	if err := a.Validate(); err != nil {
		return err
	}

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	entities, err := json.Marshal(nonNilEntities(a.Entities))
	if err != nil {
		return fmt.Errorf("failed to encode entities: %w", err)
	}
	var category sql.NullString
	if a.Category != nil {
		b, err := json.Marshal(a.Category)
		if err != nil {
			return fmt.Errorf("failed to encode category: %w", err)
		}
		category = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (`+analysisColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, string(a.Mode), a.SourceURL, a.Text, a.ContentHash, string(entities), category,
		a.Highlighted, formatTime(a.CreatedAt))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return seoentity.Errorf(seoentity.ECONFLICT, "analysis %s already exists", a.ID)
	}
	return err
}

// FindAnalysisByID retrieves an analysis by ID.
func (s *AnalysisService) FindAnalysisByID(ctx context.Context, id string) (*seoentity.Analysis, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+analysisColumns+" FROM analyses WHERE id = ?", id)
	a, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return nil, seoentity.Errorf(seoentity.ENOTFOUND, "analysis not found")
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// FindAnalyses retrieves analyses matching the filter, newest first.
func (s *AnalysisService) FindAnalyses(ctx context.Context, filter seoentity.AnalysisFilter) ([]*seoentity.Analysis, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + analysisColumns + " FROM analyses WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.ContentHash != nil {
		query.WriteString(" AND content_hash = ?")
		args = append(args, *filter.ContentHash)
	}
	if filter.SourceURL != nil {
		query.WriteString(" AND source_url = ?")
		args = append(args, *filter.SourceURL)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*seoentity.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}

	return analyses, rows.Err()
}

// DeleteAnalysis permanently removes an analysis.
func (s *AnalysisService) DeleteAnalysis(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return seoentity.Errorf(seoentity.ENOTFOUND, "analysis not found")
	}

	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scanner) (*seoentity.Analysis, error) {
	var a seoentity.Analysis
	var mode, entities, createdAt string
	var category sql.NullString

	if err := row.Scan(&a.ID, &mode, &a.SourceURL, &a.Text, &a.ContentHash, &entities, &category,
		&a.Highlighted, &createdAt); err != nil {
		return nil, err
	}
	a.Mode = seoentity.InputMode(mode)

	if err := json.Unmarshal([]byte(entities), &a.Entities); err != nil {
		return nil, fmt.Errorf("failed to decode entities: %w", err)
	}
	if category.Valid {
		a.Category = &seoentity.Category{}
		if err := json.Unmarshal([]byte(category.String), a.Category); err != nil {
			return nil, fmt.Errorf("failed to decode category: %w", err)
		}
	}

	var err error
	if a.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &a, nil
}

func nonNilEntities(entities []seoentity.EnrichedEntity) []seoentity.EnrichedEntity {
	if entities == nil {
		return []seoentity.EnrichedEntity{}
	}
	return entities
}
