// Package reward turns a stream of frame snapshots into per-frame reward
// breakdowns for one agent of a two-camp match.
//
// An Engine extracts raw term values for both camps, combines them into a
// zero-sum-leaning signal, applies a global time decay and reports every
// configured term together with the weighted total.
package reward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/hokarena/reward/internal/util"
	"github.com/hokarena/reward/pkg/core"
)

var (
	// ErrNotReset is returned by Evaluate before the first Reset.
	ErrNotReset = errors.New("reward engine not reset")
	// ErrUnknownKind is returned in strict mode for a weight naming no term.
	ErrUnknownKind = errors.New("unknown reward term")
)

// DefaultTimeScale is the frame count over which rewards decay by 0.6.
const DefaultTimeScale = 20000

// Config holds the static inputs of an engine.
type Config struct {
	Weights   map[string]float64
	TimeScale float64
	LevelExp  []float64
}

// DefaultWeights returns the stock term weights.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"hp_point":          4.0,
		"tower_hp_point":    10.0,
		"money":             0.5,
		"exp":               0.5,
		"ep_rate":           0.02,
		"death":             -1.0,
		"kill":              -0.5,
		"last_hit":          0.8,
		"forward":           0.05,
		"HurtToHero":        0.18,
		"BeHurtByHero":      -0.1,
		"HurtToOthers":      0.1,
		"enemy_Soldiers_hp": 0.18,
		"heal":              0.08,
		"skill_hit_count":   0.01,
	}
}

// DefaultConfig returns the stock weights, time scale and level table.
func DefaultConfig() Config {
	return Config{
		Weights:   DefaultWeights(),
		TimeScale: DefaultTimeScale,
		LevelExp:  DefaultLevelExp,
	}
}

// Identity names the agent an engine scores.
type Identity struct {
	Camp     core.Camp
	PlayerID int64
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	logger *slog.Logger
	meter  metric.Meter
	strict bool
}

// WithLogger sets the engine logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMeter overrides the global OTel meter.
func WithMeter(m metric.Meter) Option {
	return func(o *options) {
		o.meter = m
	}
}

// WithStrictValidation rejects malformed snapshots and unknown term names
// instead of tolerating them.
func WithStrictValidation() Option {
	return func(o *options) {
		o.strict = true
	}
}

// Engine scores frames for one agent. It is not safe for concurrent use;
// run one engine per agent slot.
type Engine struct {
	cfg    Config
	logger *slog.Logger
	strict bool

	combined *Table
	mainRaw  *Table
	enemyRaw *Table

	exp    ExpTable
	states map[core.Camp]*campState

	identity Identity
	ready    bool
	frames   int

	evaluated metric.Int64Counter
	sanitized metric.Int64Counter
}

// NewEngine builds an engine from cfg. The engine must be Reset before use.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.meter == nil {
		o.meter = meter()
	}

	if unknown := UnknownTerms(cfg.Weights); len(unknown) > 0 {
		if o.strict {
			return nil, fmt.Errorf("%w: %v", ErrUnknownKind, unknown)
		}
		o.logger.Warn("ignoring unknown reward terms", "terms", unknown)
	}

	table, err := NewTable(cfg.Weights)
	if err != nil {
		return nil, fmt.Errorf("building reward table: %w", err)
	}
	if cfg.LevelExp == nil {
		cfg.LevelExp = DefaultLevelExp
	}

	e := &Engine{
		cfg:      cfg,
		logger:   o.logger,
		strict:   o.strict,
		combined: table,
		mainRaw:  table.Clone(),
		enemyRaw: table.Clone(),
		states:   make(map[core.Camp]*campState, 2),
	}

	e.evaluated, err = o.meter.Int64Counter(
		"reward.frames.evaluated",
		metric.WithDescription("Total frames scored"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating evaluated counter: %w", err)
	}

	e.sanitized, err = o.meter.Int64Counter(
		"reward.values.sanitized",
		metric.WithDescription("Total non-finite term values replaced by zero"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sanitized counter: %w", err)
	}

	return e, nil
}

// Reset prepares the engine for a new episode scored for id. Calling it
// twice in a row is the same as calling it once.
func (e *Engine) Reset(id Identity) {
	e.identity = id
	e.combined.Clear()
	e.mainRaw.Clear()
	e.enemyRaw.Clear()
	for _, s := range e.states {
		s.reset()
	}
	e.exp = NewExpTable(e.cfg.LevelExp)
	e.frames = 0
	e.ready = true
}

// Identity returns the agent set by the last Reset.
func (e *Engine) Identity() Identity {
	return e.identity
}

// Frames returns the number of frames scored since the last Reset.
func (e *Engine) Frames() int {
	return e.frames
}

// Weights returns the configured weights keyed by canonical term name.
func (e *Engine) Weights() map[string]float64 {
	return e.combined.Weights()
}

func (e *Engine) state(c core.Camp) *campState {
	s, ok := e.states[c]
	if !ok {
		ns := newCampState()
		s = &ns
		e.states[c] = s
	}
	return s
}

// resolveCamps finds the scored hero by player id, falling back to the
// identity camp, and derives the enemy camp from the other hero.
func (e *Engine) resolveCamps(snap *core.FrameSnapshot) (*core.HeroState, core.Camp) {
	hero := snap.Hero(e.identity.PlayerID)
	if hero == nil {
		for i := range snap.Heroes {
			if snap.Heroes[i].Camp == e.identity.Camp {
				hero = &snap.Heroes[i]
				break
			}
		}
	}
	if hero == nil {
		return nil, core.CampUnknown
	}
	for i := range snap.Heroes {
		if other := &snap.Heroes[i]; other != hero && other.Camp != hero.Camp {
			return hero, other.Camp
		}
	}
	return hero, hero.Camp.Opponent()
}

func (e *Engine) zero(frameNo int) core.RewardBreakdown {
	b := core.RewardBreakdown{FrameNo: frameNo, Terms: make(map[string]float64, e.combined.Len())}
	e.combined.Each(func(en *Entry) {
		b.Terms[en.Kind.String()] = 0
	})
	return b
}

// Check returns the error Evaluate would reject snap with, without touching
// engine state.
func (e *Engine) Check(snap *core.FrameSnapshot) error {
	if !e.ready {
		return ErrNotReset
	}
	if e.strict {
		if err := snap.Validate(); err != nil {
			return fmt.Errorf("evaluating frame: %w", err)
		}
	}
	return nil
}

// Evaluate scores one frame. Every configured term is present in the result.
func (e *Engine) Evaluate(snap *core.FrameSnapshot) (core.RewardBreakdown, error) {
	if err := e.Check(snap); err != nil {
		return core.RewardBreakdown{}, err
	}
	if snap == nil {
		return e.zero(0), nil
	}

	hero, enemyCamp := e.resolveCamps(snap)
	if hero == nil {
		e.logger.Debug("scored hero absent", "frame", snap.FrameNo, "player", e.identity.PlayerID)
		return e.zero(snap.FrameNo), nil
	}

	mainView := CampView(snap, hero.Camp)
	mainView.Hero = hero
	enemyView := CampView(snap, enemyCamp)
	mainState, enemyState := e.state(hero.Camp), e.state(enemyCamp)

	e.combined.Shift()
	e.mainRaw.Shift()
	e.enemyRaw.Shift()

	mx := newExtraction(snap, mainView, mainState, e.exp)
	ex := newExtraction(snap, enemyView, enemyState, e.exp)
	e.mainRaw.Each(func(en *Entry) {
		en.Current = kinds[en.Kind].extract(mx)
	})
	e.enemyRaw.Each(func(en *Entry) {
		en.Current = 0
		if enemyView.Hero != nil {
			en.Current = kinds[en.Kind].extract(ex)
		}
	})

	c := &combination{
		frameNo:  snap.FrameNo,
		hero:     hero,
		balance:  mx.balance,
		recovery: max(0, mx.check),
		first:    !mainState.seen,
	}
	decay := Decay(snap.FrameNo, e.cfg.TimeScale)

	out := core.RewardBreakdown{FrameNo: snap.FrameNo, Terms: make(map[string]float64, e.combined.Len())}
	var sanitized int64
	e.combined.Each(func(en *Entry) {
		r := kinds[en.Kind].combine(c, e.mainRaw.Entry(en.Kind), e.enemyRaw.Entry(en.Kind))
		en.Current, en.Previous = r.cur, r.prev

		v := r.value * decay
		if !util.IsFinite(v) {
			sanitized++
			v = 0
		}
		en.Resolved = v
		out.Terms[en.Kind.String()] = v
		out.Total += en.Weight * v
	})
	if !util.IsFinite(out.Total) {
		sanitized++
		out.Total = 0
	}

	mainState.remember(mainView)
	if enemyView.Hero != nil {
		enemyState.remember(enemyView)
	}
	e.frames++

	ctx := context.Background()
	campAttr := metric.WithAttributes(attribute.String("camp", hero.Camp.String()))
	e.evaluated.Add(ctx, 1, campAttr)
	if sanitized > 0 {
		e.sanitized.Add(ctx, sanitized, campAttr)
		e.logger.Warn("replaced non-finite reward values", "frame", snap.FrameNo, "count", sanitized)
	}
	return out, nil
}
