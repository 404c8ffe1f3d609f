package streaming

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope(TypeEpisodeEnd, EpisodeEndPayload{FrameNo: 42, Terminated: true})
	require.NoError(t, err)
	assert.Equal(t, TypeEpisodeEnd, env.Type)

	line, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"episode_end","payload":{"frame_no":42,"terminated":true,"truncated":false}}`, string(line))

	var back Envelope
	require.NoError(t, json.Unmarshal(line, &back))
	var end EpisodeEndPayload
	require.NoError(t, json.Unmarshal(back.Payload, &end))
	assert.Equal(t, 42, end.FrameNo)
}
