/*
Package pinup is a library for driving a small e-paper weather display: it
fetches the current conditions, composes a frame from the shipped glyph
atlases and pushes it to a panel.
*/
package pinup

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/machinelevel/sp433-pinup-weather/battery"
	"github.com/machinelevel/sp433-pinup-weather/compose"
	"github.com/machinelevel/sp433-pinup-weather/panel"
	"github.com/machinelevel/sp433-pinup-weather/store"
	"github.com/machinelevel/sp433-pinup-weather/weather"
)

// State is the phase of the refresh cycle.
type State int

const (
	Idle State = iota
	Fetching
	Composing
	Pushing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Composing:
		return "composing"
	case Pushing:
		return "pushing"
	}
	return "unknown"
}

// Fetcher returns the current weather. Any error is treated as a failed
// fetch and the previous snapshot is kept.
type Fetcher interface {
	Fetch(context.Context) (*weather.Snapshot, error)
}

// Store persists the last good snapshot and the refresh history.
type Store interface {
	SaveSnapshot(*weather.Snapshot, time.Time) error
	Snapshot() (*weather.Snapshot, time.Time, error)
	AddRefresh(store.Refresh) error
}

type Pinup struct {
	glyphs  compose.Glyphs
	layout  compose.Layout
	fetcher Fetcher
	panel   panel.Panel
	battery battery.Reader
	store   Store
	stats   *Stats
	logger  *log.Logger
	now     func() time.Time

	// Owned by the refresh cycle
	snapshot *weather.Snapshot
	fetched  time.Time

	mu    sync.RWMutex
	state State
	frame *compose.Frame
}

type Option func(*Pinup)

// WithLayout overrides compose.DefaultLayout.
func WithLayout(l compose.Layout) Option {
	return func(p *Pinup) {
		p.layout = l
	}
}

// WithBattery sets the battery reader. Without one the gauge is drawn empty.
func WithBattery(r battery.Reader) Option {
	return func(p *Pinup) {
		p.battery = r
	}
}

func WithStore(s Store) Option {
	return func(p *Pinup) {
		p.store = s
	}
}

func WithStats(s *Stats) Option {
	return func(p *Pinup) {
		p.stats = s
	}
}

func withClock(now func() time.Time) Option {
	return func(p *Pinup) {
		p.now = now
	}
}

func New(glyphs compose.Glyphs, fetcher Fetcher, pnl panel.Panel, logger *log.Logger, options ...Option) *Pinup {
	p := &Pinup{
		glyphs:  glyphs,
		layout:  compose.DefaultLayout,
		fetcher: fetcher,
		panel:   pnl,
		logger:  logger,
		now:     time.Now,
	}
	for _, o := range options {
		o(p)
	}
	if p.stats == nil {
		p.stats = NewStats()
	}
	return p
}

func (p *Pinup) Stats() *Stats {
	return p.stats
}

// Seed loads the last good snapshot from the store, if there is one.
func (p *Pinup) Seed() error {
	if p.store == nil {
		return nil
	}
	s, fetched, err := p.store.Snapshot()
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}
	p.snapshot, p.fetched = s, fetched
	p.stats.fetched(fetched)
	p.logger.Printf("Seeded snapshot fetched at %s\n", fetched.Format(time.RFC3339))
	return nil
}

// Snapshot returns the snapshot the next frame will be drawn from.
func (p *Pinup) Snapshot() *weather.Snapshot {
	return p.snapshot
}

// State returns the current phase of the cycle.
func (p *Pinup) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// LastFrame returns the most recently composed frame, or nil.
func (p *Pinup) LastFrame() *compose.Frame {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frame
}

func (p *Pinup) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}

func (p *Pinup) setFrame(f *compose.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frame = f
}

func (p *Pinup) fetch(ctx context.Context) bool {
	s, err := p.fetcher.Fetch(ctx)
	if err != nil {
		p.stats.fetchFailures.Inc()
		p.logger.Printf("Fetch failed: %v\n", err)
		if p.snapshot != nil {
			p.logger.Printf("Reusing snapshot fetched at %s\n", p.fetched.Format(time.RFC3339))
		}
		return false
	}

	p.snapshot, p.fetched = s, p.now()
	p.stats.fetched(p.fetched)
	if s.Icon.Valid {
		if _, ok := compose.IconIndex(s.Icon.String); !ok {
			p.logger.Printf("No icon for code \"%s\"\n", s.Icon.String)
		}
	}
	if p.store != nil {
		if err := p.store.SaveSnapshot(s, p.fetched); err != nil {
			p.logger.Printf("Unable to save snapshot: %v\n", err)
		}
	}
	return true
}

func (p *Pinup) volts() (float64, float64) {
	if p.battery == nil {
		return 0, 0
	}
	v, err := p.battery.Volts()
	if err != nil {
		p.logger.Printf("Battery read failed: %v\n", err)
		return 0, 0
	}
	p.stats.volts.Set(v)
	return v, compose.BatteryFraction(v)
}

// Refresh runs one complete cycle. A failed fetch keeps the previous
// snapshot; only layout and panel errors are returned.
func (p *Pinup) Refresh(ctx context.Context) error {
	start := p.now()
	defer p.setState(Idle)

	p.setState(Fetching)
	stale := !p.fetch(ctx)

	p.setState(Composing)
	volts, fraction := p.volts()
	f, err := p.layout.Compose(p.snapshot, fraction, p.glyphs)
	if err != nil {
		return err
	}
	p.setFrame(f)

	p.setState(Pushing)
	if err := p.panel.Wait(ctx); err != nil {
		return err
	}
	if err := p.panel.Show(f); err != nil {
		return err
	}
	if err := p.panel.Refresh(); err != nil {
		return err
	}

	p.stats.refreshes.Inc()
	if p.store != nil {
		if err := p.store.AddRefresh(store.Refresh{At: start, Stale: stale, Volts: volts}); err != nil {
			p.logger.Printf("Unable to record refresh: %v\n", err)
		}
	}
	p.logger.Printf("Refreshed in %s\n", p.now().Sub(start))

	return nil
}
