// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hokarena/reward/pkg/core"
)

// ExportFileName builds "<episode>_<start>.json[.gz]" with path-hostile
// characters replaced.
func ExportFileName(ep core.Episode, compress bool) string {
	name := strings.NewReplacer(" ", "_", ":", "_", "/", "_", "\\", "_").Replace(ep.ExternalID)
	if name == "" {
		name = fmt.Sprintf("episode%d", ep.ID)
	}
	name = fmt.Sprintf("%s_%s.json", name, ep.StartTime.Format("20060102_150405"))
	if compress {
		name += ".gz"
	}
	return name
}

// exportJSON writes the episode data to a (gzipped) JSON file
func (b *Backend) exportJSON() error {
	record := b.buildExport()

	outputPath := filepath.Join(b.cfg.OutputDir, ExportFileName(record.Episode, b.cfg.CompressOutput))
	if err := WriteRecord(outputPath, record, b.cfg.CompressOutput); err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

func (b *Backend) buildExport() core.EpisodeRecord {
	record := core.EpisodeRecord{
		Episode:   *b.episode,
		EndFrame:  b.endFrame,
		Frames:    b.frames,
		Summaries: b.summaries,
	}
	if record.Frames == nil {
		record.Frames = []core.FrameReward{}
	}
	if record.Summaries == nil {
		record.Summaries = []core.EpisodeSummary{}
	}
	return record
}

// WriteRecord writes record to path, creating the parent directory.
func WriteRecord(path string, record core.EpisodeRecord, compress bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var w io.Writer = f
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if err := json.NewEncoder(w).Encode(record); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to close gzip writer: %w", err)
		}
	}
	return f.Close()
}

// ReadRecord reads a file written by WriteRecord. Gzip is detected by extension.
func ReadRecord(path string) (core.EpisodeRecord, error) {
	var record core.EpisodeRecord

	f, err := os.Open(path)
	if err != nil {
		return record, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return record, fmt.Errorf("failed to open gzip reader: %w", err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	if err := json.NewDecoder(r).Decode(&record); err != nil {
		return record, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return record, nil
}
