// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest records a convert run in the work directory so the
// images can be packaged again later without re-rasterizing.
package manifest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfread/internal/persist"
	"github.com/pdiddy/pdfread/internal/pipeline"
	"github.com/pdiddy/pdfread/pkg/types"
)

// DBFile is the manifest file name inside a work directory.
const DBFile = "manifest.db"

// ErrNoManifest is returned when a work directory holds no recorded run.
var ErrNoManifest = errors.New("no run manifest")

// Run describes how the images were produced.
type Run struct {
	Input     string               `json:"input" yaml:"input"`
	Format    string               `json:"format" yaml:"format"`
	Profile   string               `json:"profile" yaml:"profile"`
	Meta      types.Metadata       `json:"meta" yaml:"meta"`
	Config    types.PipelineConfig `json:"config" yaml:"config"`
	Pages     int                  `json:"pages" yaml:"pages"`
	Blank     int                  `json:"blank" yaml:"blank"`
	CreatedAt time.Time            `json:"created_at" yaml:"created_at"`
}

// Manifest is everything needed to package a work directory again.
type Manifest struct {
	Run    Run                   `json:"run" yaml:"run"`
	Index  []pipeline.IndexEntry `json:"index" yaml:"index"`
	TOC    []types.TOCEntry      `json:"toc" yaml:"toc"`
	Images []persist.Image       `json:"images" yaml:"images"`
}

// IndexMap rebuilds the page to image mapping.
func (m Manifest) IndexMap() *pipeline.IndexMap {
	return pipeline.IndexMapFrom(m.Index)
}

// WriteYAML dumps the manifest as YAML.
func (m Manifest) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// Store is the SQLite manifest of one work directory.
type Store struct {
	db *sql.DB
}

// Create opens or creates dir/manifest.db and its schema.
func Create(dir string) (*Store, error) {
	db, err := sql.Open("sqlite3", filepath.Join(dir, DBFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Open opens the manifest of an existing work directory.
func Open(dir string) (*Store, error) {
	if _, err := os.Stat(filepath.Join(dir, DBFile)); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w in %s", ErrNoManifest, dir)
		}
		return nil, err
	}
	return Create(dir)
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS run (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			input TEXT NOT NULL,
			format TEXT,
			profile TEXT,
			title TEXT,
			author TEXT,
			category TEXT,
			config TEXT,
			pages INTEGER,
			blank INTEGER,
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS page_index (
			page INTEGER PRIMARY KEY,
			image_index INTEGER NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS toc (
			seq INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			level INTEGER NOT NULL,
			page INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS images (
			image_index INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			width INTEGER,
			height INTEGER
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save replaces the recorded run with m.
func (s *Store) Save(ctx context.Context, m Manifest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"run", "page_index", "toc", "images"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	cfg, err := json.Marshal(m.Run.Config)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	created := m.Run.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO run (id, input, format, profile, title, author, category, config, pages, blank, created_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Run.Input, m.Run.Format, m.Run.Profile,
		m.Run.Meta.Title, m.Run.Meta.Author, m.Run.Meta.Category,
		string(cfg), m.Run.Pages, m.Run.Blank, created.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, e := range m.Index {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO page_index (page, image_index) VALUES (?, ?)`, e.Page, e.Index); err != nil {
			return fmt.Errorf("inserting page %d: %w", e.Page, err)
		}
	}
	for i, e := range m.TOC {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO toc (seq, title, level, page) VALUES (?, ?, ?, ?)`, i, e.Title, e.Level, e.Page); err != nil {
			return fmt.Errorf("inserting outline entry %q: %w", e.Title, err)
		}
	}
	for _, img := range m.Images {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO images (image_index, name, width, height) VALUES (?, ?, ?, ?)`,
			img.Index, img.Name, img.Width, img.Height); err != nil {
			return fmt.Errorf("inserting image %s: %w", img.Name, err)
		}
	}
	return tx.Commit()
}

// Load reads the recorded run.
func (s *Store) Load(ctx context.Context) (Manifest, error) {
	var (
		m       Manifest
		cfg     string
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT input, format, profile, title, author, category, config, pages, blank, created_at
		 FROM run WHERE id = 1`,
	).Scan(&m.Run.Input, &m.Run.Format, &m.Run.Profile,
		&m.Run.Meta.Title, &m.Run.Meta.Author, &m.Run.Meta.Category,
		&cfg, &m.Run.Pages, &m.Run.Blank, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrNoManifest
	}
	if err != nil {
		return m, fmt.Errorf("reading run: %w", err)
	}
	if err := json.Unmarshal([]byte(cfg), &m.Run.Config); err != nil {
		return m, fmt.Errorf("decoding config: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		m.Run.CreatedAt = t
	}

	if err := s.loadIndex(ctx, &m); err != nil {
		return m, err
	}
	if err := s.loadTOC(ctx, &m); err != nil {
		return m, err
	}
	if err := s.loadImages(ctx, &m); err != nil {
		return m, err
	}
	return m, nil
}

func (s *Store) loadIndex(ctx context.Context, m *Manifest) error {
	rows, err := s.db.QueryContext(ctx, `SELECT page, image_index FROM page_index ORDER BY image_index`)
	if err != nil {
		return fmt.Errorf("querying page index: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e pipeline.IndexEntry
		if err := rows.Scan(&e.Page, &e.Index); err != nil {
			return fmt.Errorf("scanning page index: %w", err)
		}
		m.Index = append(m.Index, e)
	}
	return rows.Err()
}

func (s *Store) loadTOC(ctx context.Context, m *Manifest) error {
	rows, err := s.db.QueryContext(ctx, `SELECT title, level, page FROM toc ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("querying outline: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e types.TOCEntry
		if err := rows.Scan(&e.Title, &e.Level, &e.Page); err != nil {
			return fmt.Errorf("scanning outline: %w", err)
		}
		m.TOC = append(m.TOC, e)
	}
	return rows.Err()
}

func (s *Store) loadImages(ctx context.Context, m *Manifest) error {
	rows, err := s.db.QueryContext(ctx, `SELECT image_index, name, width, height FROM images ORDER BY image_index`)
	if err != nil {
		return fmt.Errorf("querying images: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var img persist.Image
		if err := rows.Scan(&img.Index, &img.Name, &img.Width, &img.Height); err != nil {
			return fmt.Errorf("scanning images: %w", err)
		}
		m.Images = append(m.Images, img)
	}
	return rows.Err()
}
