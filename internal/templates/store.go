package templates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/plinko/internal/models"
)

var ErrStoreUnavailable = errors.New("template store has no database")

// Store keeps named reward templates in Postgres and mirrors them to files
// under dir so they can be shared outside the service.
type Store struct {
	db  *sqlx.DB
	dir string
}

func NewStore(db *sqlx.DB, dir string) *Store {
	return &Store{db: db, dir: dir}
}

// Path returns the file path of a named template in the given format.
func (s *Store) Path(name string, format Format) string {
	ext := ".json"
	if format == FormatYAML {
		ext = ".yaml"
	}
	return filepath.Join(s.dir, name+ext)
}

// Save upserts a template. The file mirror is best effort.
func (s *Store) Save(ctx context.Context, name string, labels []string, createdBy string) error {
	if !ValidName(name) {
		return ErrInvalidName
	}
	if err := Validate(labels); err != nil {
		return err
	}
	if s.db != nil {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO reward_templates (name, labels, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			ON CONFLICT (name) DO UPDATE SET
				labels = EXCLUDED.labels,
				created_by = EXCLUDED.created_by,
				updated_at = NOW()
		`, name, pq.Array(labels), createdBy)
		if err != nil {
			return fmt.Errorf("save template %s: %w", name, err)
		}
	}
	if s.dir != "" {
		if err := SaveFile(s.Path(name, FormatJSON), labels); err != nil {
			log.Printf("[TEMPLATE] Failed to mirror template %s to disk: %v", name, err)
			if s.db == nil {
				return err
			}
		}
	}
	if s.db == nil && s.dir == "" {
		return ErrStoreUnavailable
	}
	return nil
}

// Get loads a template from the database, falling back to the file mirror.
func (s *Store) Get(ctx context.Context, name string) ([]string, error) {
	if !ValidName(name) {
		return nil, ErrInvalidName
	}
	if s.db != nil {
		var t models.RewardTemplate
		err := s.db.GetContext(ctx, &t, `SELECT name, labels, created_by, created_at, updated_at FROM reward_templates WHERE name=$1`, name)
		if err == nil {
			return []string(t.Labels), nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get template %s: %w", name, err)
		}
	}
	if s.dir == "" {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	labels, err := LoadFile(s.Path(name, FormatJSON))
	if errors.Is(err, ErrTemplateNotFound) {
		labels, err = LoadFile(s.Path(name, FormatYAML))
	}
	return labels, err
}

// List returns saved templates, most recently updated first.
func (s *Store) List(ctx context.Context) ([]models.RewardTemplate, error) {
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}
	var list []models.RewardTemplate
	err := s.db.SelectContext(ctx, &list, `SELECT name, labels, created_by, created_at, updated_at FROM reward_templates ORDER BY updated_at DESC LIMIT 200`)
	return list, err
}
