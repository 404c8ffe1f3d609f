// Package replay reads recorded episodes and feeds them through a dispatcher.
package replay

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hokarena/reward/internal/dispatcher"
	"github.com/hokarena/reward/pkg/streaming"
)

// MaxLineSize bounds a single envelope. Frame states of a full match run to
// several hundred kilobytes.
const MaxLineSize = 16 << 20

var gzipMagic = []byte{0x1f, 0x8b}

// Dispatcher routes replay events to handlers.
type Dispatcher interface {
	Dispatch(e dispatcher.Event) (any, error)
}

// Reader decodes newline-delimited envelopes.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
}

// NewReader wraps r. Gzip input is detected from its magic bytes.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	rd := &Reader{}

	magic, err := br.Peek(2)
	if err == nil && bytes.Equal(magic, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("error opening gzip stream: %w", err)
		}
		rd.closer = gz
		rd.scanner = bufio.NewScanner(gz)
	} else {
		rd.scanner = bufio.NewScanner(br)
	}
	rd.scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return rd, nil
}

// Next returns the next envelope, or io.EOF at the end of the stream.
// Blank lines are skipped.
func (r *Reader) Next() (streaming.Envelope, error) {
	for r.scanner.Scan() {
		r.line++
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var env streaming.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			return env, fmt.Errorf("line %d: error unmarshalling envelope: %w", r.line, err)
		}
		if env.Type == "" {
			return env, fmt.Errorf("line %d: envelope has no type", r.line)
		}
		// the scanner reuses its buffer
		env.Payload = append(json.RawMessage(nil), env.Payload...)
		return env, nil
	}
	if err := r.scanner.Err(); err != nil {
		return streaming.Envelope{}, fmt.Errorf("line %d: %w", r.line+1, err)
	}
	return streaming.Envelope{}, io.EOF
}

// Line is the number of the last line read.
func (r *Reader) Line() int {
	return r.line
}

// Close releases the decompressor, if any.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Stats summarizes one replay.
type Stats struct {
	Events int
	Failed int
}

// Play dispatches every envelope of r in order. Handler errors are logged and
// counted; decode errors and cancellation stop the replay.
func Play(ctx context.Context, r *Reader, d Dispatcher, logger *slog.Logger) (Stats, error) {
	var stats Stats
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		env, err := r.Next()
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			return stats, err
		}

		stats.Events++
		_, err = d.Dispatch(dispatcher.Event{
			Type:    env.Type,
			Payload: env.Payload,
			Seq:     r.Line(),
		})
		if err != nil {
			stats.Failed++
			logger.Warn("replay event failed", "line", r.Line(), "type", env.Type, "error", err)
		}
	}
}

// PlayFile opens path and plays it.
func PlayFile(ctx context.Context, path string, d Dispatcher, logger *slog.Logger) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("error opening replay: %w", err)
	}
	defer func() { _ = f.Close() }()

	r, err := NewReader(f)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", path, err)
	}
	defer func() { _ = r.Close() }()

	stats, err := Play(ctx, r, d, logger.With("file", path))
	if err != nil {
		return stats, fmt.Errorf("%s: %w", path, err)
	}
	return stats, nil
}
