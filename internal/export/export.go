// Package export writes every registered part to disk, one file per
// format, named after the part.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/marcuswu/spring-rail-vise/internal/kernel"
	"github.com/marcuswu/spring-rail-vise/internal/parts"
)

// Exporter is the part of kernel.Kernel needed to write files.
type Exporter interface {
	Export(s kernel.Solid, format kernel.Format, path string) error
}

// Path returns where part name is written in dir for the given format.
func Path(dir, name string, format kernel.Format) string {
	return filepath.Join(dir, name+format.Ext())
}

// All creates dir if needed and writes each part in reg in every format.
// Formats the backend cannot write are skipped with a warning. It
// returns the files written.
func All(e Exporter, reg *parts.Registry, dir string, formats ...kernel.Format) ([]string, error) {
	if len(formats) == 0 {
		formats = kernel.Formats
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	var written []string
	for _, entry := range reg.Entries() {
		for _, format := range formats {
			path := Path(dir, entry.Name, format)
			err := e.Export(entry.Solid, format, path)
			if errors.Is(err, kernel.ErrUnsupportedFormat) {
				log.Warn().Str("part", entry.Name).Stringer("format", format).Msg("format not supported by kernel, skipped")
				continue
			}
			if err != nil {
				return written, fmt.Errorf("export %s as %s: %w", entry.Name, format, err)
			}
			written = append(written, path)
		}
		log.Info().Str("part", entry.Name).Str("dir", dir).Msg("exported")
	}
	return written, nil
}
