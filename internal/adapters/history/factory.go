package history

import (
	"fmt"
	"strings"

	"github.com/okian/winrate/internal/domain/match"
)

// Loader source names.
const (
	SourceFile   = "file"
	SourceHTTP   = "http"
	SourceMemory = "memory"
)

// Settings selects and configures a loader.
type Settings struct {
	Source string // "file" or "http"
	Dir    string // file source directory
	URL    string // http source base URL
}

// New builds the loader named by s.Source.
func New(s Settings, opts ...Option) (match.Loader, error) {
	switch strings.ToLower(strings.TrimSpace(s.Source)) {
	case SourceFile, "":
		dir := s.Dir
		if dir == "" {
			dir = "."
		}
		return NewFileLoader(dir, opts...), nil
	case SourceHTTP:
		return NewHTTPLoader(s.URL, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, s.Source)
	}
}
