package history

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/winrate/internal/domain/match"
	"github.com/okian/winrate/pkg/logger"
)

// FileLoader reads "<dir>/<playerID>_matches.csv" files.
type FileLoader struct {
	dir    string
	logger logger.Logger
}

// NewFileLoader creates a loader rooted at dir.
func NewFileLoader(dir string, opts ...Option) *FileLoader {
	o := newOptions(opts)
	return &FileLoader{dir: dir, logger: o.logger.With(logger.String("loader", SourceFile))}
}

// Load implements match.Loader.
func (l *FileLoader) Load(ctx context.Context, playerID string) (match.History, error) {
	if err := validatePlayerID(playerID); err != nil {
		return nil, loadError(SourceFile, playerID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, loadError(SourceFile, playerID, err)
	}

	path := filepath.Join(l.dir, playerID+fileNameSuffix)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, loadError(SourceFile, playerID, ErrPlayerNotFound)
		}
		l.logger.Error(ctx, "open history file failed", logger.String("path", path), logger.Error(err))
		return nil, loadError(SourceFile, playerID, errors.Join(ErrSourceUnavailable, err))
	}
	defer func() { _ = f.Close() }()

	h, err := DecodeCSV(f)
	if err != nil {
		return nil, loadError(SourceFile, playerID, err)
	}
	l.logger.Debug(ctx, "history loaded", logger.String("path", path), logger.Int("matches", h.Len()))
	return h, nil
}

// validatePlayerID rejects ids that are empty or could escape a directory or URL path segment.
func validatePlayerID(playerID string) error {
	id := strings.TrimSpace(playerID)
	switch {
	case id == "":
		return ErrInvalidPlayerID
	case id != playerID:
		return ErrInvalidPlayerID
	case strings.ContainsAny(id, `/\`), strings.Contains(id, ".."):
		return ErrInvalidPlayerID
	}
	return nil
}
