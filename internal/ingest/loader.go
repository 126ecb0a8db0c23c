// Package ingest reads customer transaction statements from disk.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/model"
)

// Reader turns a statement stream into transactions.
type Reader interface {
	Read(ctx context.Context, r io.Reader) ([]model.Transaction, error)
}

// Loader picks a reader by file extension.
type Loader struct {
	readers  map[string]Reader
	detector *CategoryDetector
	logger   *slog.Logger
}

// NewLoader creates a loader for .csv, .ofx and .qfx files.
func NewLoader(logger *slog.Logger) (*Loader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	detector, err := NewCategoryDetector(DefaultPatterns())
	if err != nil {
		return nil, err
	}

	ofxReader := NewOFXReader(detector, logger)
	return &Loader{readers: map[string]Reader{
		".csv": NewCSVReader(detector),
		".ofx": ofxReader,
		".qfx": ofxReader,
	}, detector: detector, logger: logger}, nil
}

// WithAccount returns a loader whose CSV reader keeps only rows of account.
func (l *Loader) WithAccount(account string) *Loader {
	csvReader := NewCSVReader(l.detector)
	csvReader.Account = account

	readers := make(map[string]Reader, len(l.readers))
	for ext, r := range l.readers {
		readers[ext] = r
	}
	readers[".csv"] = csvReader

	return &Loader{readers: readers, detector: l.detector, logger: l.logger}
}

// Supports reports whether path has a known statement extension.
func (l *Loader) Supports(path string) bool {
	_, ok := l.readers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load reads the statement at path.
func (l *Loader) Load(ctx context.Context, path string) ([]model.Transaction, error) {
	reader, ok := l.readers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, common.InvalidInputf("unsupported statement format %q", filepath.Ext(path))
	}

	f, err := os.Open(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open statement: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.logger.Warn("Failed to close statement", "path", path, "error", closeErr)
		}
	}()

	transactions, err := reader.Read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
	}
	return transactions, nil
}
