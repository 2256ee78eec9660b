// Package export writes catalog snapshots to files and remote Datasette
// instances.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lepinkainen/literalura/internal/fileutil"
	"github.com/lepinkainen/literalura/internal/store"
	"gopkg.in/yaml.v3"
)

// Format is a snapshot file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var now = time.Now

// ErrFileExists is returned when an export target exists and overwrite is off.
var ErrFileExists = errors.New("export file already exists")

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Source lists the catalog contents.
type Source interface {
	ListAuthors(ctx context.Context) ([]store.Author, error)
	ListBooks(ctx context.Context) ([]store.Book, error)
}

// Snapshot is the full catalog at one point in time.
type Snapshot struct {
	ExportedAt time.Time      `json:"exported_at" yaml:"exported_at"`
	Authors    []store.Author `json:"authors" yaml:"authors"`
	Books      []store.Book   `json:"books" yaml:"books"`
}

// Take reads every author and book from src.
func Take(ctx context.Context, src Source) (*Snapshot, error) {
	authors, err := src.ListAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	books, err := src.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	if authors == nil {
		authors = []store.Author{}
	}
	if books == nil {
		books = []store.Book{}
	}
	return &Snapshot{ExportedAt: now().UTC().Truncate(time.Second), Authors: authors, Books: books}, nil
}

// Encode writes the snapshot to w.
func (s *Snapshot) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteFile encodes the snapshot into path, creating parent directories.
// An existing file is only replaced when overwrite is set.
func (s *Snapshot) WriteFile(path string, format Format, overwrite bool) error {
	var buf bytes.Buffer
	if err := s.Encode(&buf, format); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	written, err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644, overwrite)
	if err != nil {
		return err
	}
	if !written {
		return fmt.Errorf("%s: %w", path, ErrFileExists)
	}
	return nil
}
