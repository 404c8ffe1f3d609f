package replay

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hokarena/reward/internal/dispatcher"
	"github.com/hokarena/reward/pkg/streaming"
)

const stream = `{"type":"episode_start","payload":{"agents":[]}}

{"type":"frame","payload":{"frameNo":0}}
{"type":"frame","payload":{"frameNo":1}}
{"type":"episode_end","payload":{"frame_no":1,"terminated":true}}
`

type recorder struct {
	events []dispatcher.Event
	fail   string
}

func (r *recorder) Dispatch(e dispatcher.Event) (any, error) {
	r.events = append(r.events, e)
	if e.Type == r.fail {
		return nil, errors.New("rejected")
	}
	return nil, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestReader_Plain(t *testing.T) {
	r, err := NewReader(strings.NewReader(stream))
	require.NoError(t, err)

	var types []string
	for {
		env, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		types = append(types, env.Type)
	}

	assert.Equal(t, []string{
		streaming.TypeEpisodeStart,
		streaming.TypeFrame,
		streaming.TypeFrame,
		streaming.TypeEpisodeEnd,
	}, types)
	assert.NoError(t, r.Close())
}

func TestReader_Gzip(t *testing.T) {
	r, err := NewReader(bytes.NewReader(gzipped(t, stream)))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	env, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, streaming.TypeEpisodeStart, env.Type)
	assert.JSONEq(t, `{"agents":[]}`, string(env.Payload))
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bad json", "{not json}\n", "line 1"},
		{"missing type", `{"payload":{}}` + "\n", "no type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(strings.NewReader(tt.input))
			require.NoError(t, err)
			_, err = r.Next()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReader_LargeLine(t *testing.T) {
	big := strings.Repeat("a", 1<<20)
	input := `{"type":"frame","payload":{"blob":"` + big + `"}}` + "\n"

	r, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	env, err := r.Next()
	require.NoError(t, err)
	assert.Greater(t, len(env.Payload), 1<<20)
}

func TestPlay_DispatchesInOrder(t *testing.T) {
	r, err := NewReader(strings.NewReader(stream))
	require.NoError(t, err)

	rec := &recorder{fail: streaming.TypeEpisodeEnd}
	stats, err := Play(context.Background(), r, rec, discard())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Events)
	assert.Equal(t, 1, stats.Failed)
	require.Len(t, rec.events, 4)
	assert.Equal(t, 1, rec.events[0].Seq)
	assert.Equal(t, 3, rec.events[1].Seq)
	assert.JSONEq(t, `{"frameNo":1}`, string(rec.events[2].Payload))
}

func TestPlay_Cancelled(t *testing.T) {
	r, err := NewReader(strings.NewReader(stream))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	_, err = Play(ctx, r, rec, discard())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.events)
}

func TestPlayFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "episode.ndjson.gz")
	require.NoError(t, os.WriteFile(path, gzipped(t, stream), 0644))

	rec := &recorder{}
	stats, err := PlayFile(context.Background(), path, rec, discard())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Events)
	assert.Zero(t, stats.Failed)

	_, err = PlayFile(context.Background(), filepath.Join(dir, "missing"), rec, discard())
	assert.Error(t, err)
}
