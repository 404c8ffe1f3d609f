package episode

import (
	"log/slog"
	"sync"

	"github.com/hokarena/reward/pkg/core"
)

// Context holds the current episode and the last frame seen in it.
type Context struct {
	mu      sync.RWMutex
	episode *core.Episode
	frameNo int
	frames  int
}

// NewContext creates a Context with no episode loaded.
func NewContext() *Context {
	return &Context{frameNo: -1}
}

// GetEpisode returns the current episode, or nil between episodes.
func (c *Context) GetEpisode() *core.Episode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.episode
}

// SetEpisode starts a new episode and forgets the previous frame.
func (c *Context) SetEpisode(ep *core.Episode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.episode = ep
	c.frameNo = -1
	c.frames = 0
}

// Clear drops the current episode.
func (c *Context) Clear() {
	c.SetEpisode(nil)
}

// SetFrame records the frame currently being scored.
func (c *Context) SetFrame(frameNo int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frameNo = frameNo
	c.frames++
}

// Frame returns the last frame number and how many frames the episode has seen.
func (c *Context) Frame() (frameNo, frames int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frameNo, c.frames
}

// LogAttrs implements logging.AttrSource.
func (c *Context) LogAttrs() []slog.Attr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.episode == nil {
		return nil
	}
	attrs := []slog.Attr{slog.String("episode", c.episode.ExternalID)}
	if c.frameNo >= 0 {
		attrs = append(attrs, slog.Int("frame", c.frameNo))
	}
	return attrs
}
