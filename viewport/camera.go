// Package viewport implements the client-session camera: a single pan/zoom
// transform over the shared world coordinate space, plus the three-phase
// animation that re-centers the view on a target item.
package viewport

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"medboard-api/domain"
)

// State is the world-to-screen transform for one client session. A world
// point w maps to screen coordinates w*Zoom + (X, Y).
type State struct {
	X    float64
	Y    float64
	Zoom float64
}

// Bounds clamp the zoom factor at every phase boundary.
type Bounds struct {
	MinZoom float64
	MaxZoom float64
}

// DefaultBounds is the standard session zoom range.
var DefaultBounds = Bounds{MinZoom: 0.1, MaxZoom: 3.0}

func (b Bounds) clamp(zoom float64) float64 {
	if zoom < b.MinZoom {
		return b.MinZoom
	}
	if zoom > b.MaxZoom {
		return b.MaxZoom
	}
	return zoom
}

// Phase 1 zooms out to this fraction of the starting zoom before panning.
const zoomOutFactor = 0.3

// DefaultDuration applies when a center request carries no duration.
const DefaultDuration = 1600 * time.Millisecond

// Clock supplies wall-clock time; animations measure elapsed time against a
// start timestamp captured once per invocation, so total duration is
// wall-clock accurate regardless of frame rate.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// FrameScheduler schedules a callback for the next animation frame.
type FrameScheduler interface {
	Schedule(frame func())
}

// IntervalScheduler drives frames off a fixed interval, for hosts without a
// native animation-frame facility.
type IntervalScheduler struct {
	Interval time.Duration
}

func (s IntervalScheduler) Schedule(frame func()) {
	interval := s.Interval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	time.AfterFunc(interval, frame)
}

// Lookup resolves an item id against the session's current board contents.
type Lookup func(id string) (domain.BoardItem, bool)

// CameraConfig configures a session camera. Zero values fall back to
// sensible defaults except Lookup, which is required.
type CameraConfig struct {
	ScreenWidth  float64
	ScreenHeight float64
	Bounds       Bounds
	Clock        Clock
	Frames       FrameScheduler
	Lookup       Lookup
	Logger       *log.Logger
}

// Camera owns the viewport state for one client session. User gestures and
// animations both write the same state; during an animation the most recent
// CenterOn call wins (older frame callbacks retire once superseded).
type Camera struct {
	screenW float64
	screenH float64
	bounds  Bounds
	clock   Clock
	frames  FrameScheduler
	lookup  Lookup
	logger  *log.Logger

	mu    sync.Mutex
	state State
	gen   uint64
}

// NewCamera creates a camera at offset (0,0), zoom 1.
func NewCamera(cfg CameraConfig) *Camera {
	if cfg.ScreenWidth <= 0 {
		cfg.ScreenWidth = 1920
	}
	if cfg.ScreenHeight <= 0 {
		cfg.ScreenHeight = 1080
	}
	if cfg.Bounds == (Bounds{}) {
		cfg.Bounds = DefaultBounds
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	if cfg.Frames == nil {
		cfg.Frames = IntervalScheduler{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.StandardLogger()
	}
	return &Camera{
		screenW: cfg.ScreenWidth,
		screenH: cfg.ScreenHeight,
		bounds:  cfg.Bounds,
		clock:   cfg.Clock,
		frames:  cfg.Frames,
		lookup:  cfg.Lookup,
		logger:  cfg.Logger,
		state:   State{Zoom: 1},
	}
}

// State returns the current viewport state.
func (c *Camera) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState overwrites the viewport state, e.g. from a user pan/zoom gesture.
// It also supersedes any animation in flight.
func (c *Camera) SetState(s State) {
	c.mu.Lock()
	c.gen++
	c.state = s
	c.mu.Unlock()
}

// centerWorld returns the world point currently at the screen center.
func (c *Camera) centerWorld(s State) (float64, float64) {
	return (c.screenW/2 - s.X) / s.Zoom, (c.screenH/2 - s.Y) / s.Zoom
}

// offsetFor returns the translation that places world point (wx, wy) at the
// screen center for the given zoom.
func (c *Camera) offsetFor(wx, wy, zoom float64) (float64, float64) {
	return c.screenW/2 - wx*zoom, c.screenH/2 - wy*zoom
}

// CenterOn animates the viewport onto the item over three equal phases:
// zoom out around the current center, pan to the target, zoom in on it.
// An unknown id is a no-op; the request may have raced item-creation
// propagation. A newer CenterOn (or SetState) supersedes the animation:
// stale frame callbacks observe the generation bump and retire without
// writing.
func (c *Camera) CenterOn(id string, finalZoom float64, duration time.Duration) {
	item, ok := c.lookup(id)
	if !ok {
		c.logger.WithField("item", id).Debug("center: unknown item, skipping")
		return
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	targetX, targetY := item.Center()
	finalZoom = c.bounds.clamp(finalZoom)

	c.mu.Lock()
	c.gen++
	gen := c.gen
	start := c.state
	c.mu.Unlock()

	startCX, startCY := c.centerWorld(start)
	midZoom := c.bounds.clamp(start.Zoom * zoomOutFactor)
	startTime := c.clock.Now()

	var step func()
	step = func() {
		progress := float64(c.clock.Now().Sub(startTime)) / float64(duration)
		if progress > 1 {
			progress = 1
		}
		next := c.tweenState(start, startCX, startCY, targetX, targetY, midZoom, finalZoom, progress)

		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		c.state = next
		c.mu.Unlock()

		if progress < 1 {
			c.frames.Schedule(step)
		}
	}
	c.frames.Schedule(step)
}

// tweenState computes the viewport state at overall progress t in [0, 1],
// split into three equal phases with a quadratic ease-in-ease-out inside
// each phase.
func (c *Camera) tweenState(start State, startCX, startCY, targetX, targetY, midZoom, finalZoom, t float64) State {
	p := t * 3
	var zoom, cx, cy float64
	switch {
	case p < 1:
		// Zoom out around whatever is presently centered.
		zoom = lerp(start.Zoom, midZoom, easeInOut(p))
		cx, cy = startCX, startCY
	case p < 2:
		// Pan at the zoomed-out level.
		zoom = midZoom
		e := easeInOut(p - 1)
		cx = lerp(startCX, targetX, e)
		cy = lerp(startCY, targetY, e)
	default:
		// Zoom in, holding the target centered.
		zoom = c.bounds.clamp(lerp(midZoom, finalZoom, easeInOut(p-2)))
		cx, cy = targetX, targetY
	}
	x, y := c.offsetFor(cx, cy, zoom)
	return State{X: x, Y: y, Zoom: zoom}
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

// easeInOut is the symmetric quadratic curve: accelerate to the midpoint,
// decelerate after it.
func easeInOut(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	if t < 0.5 {
		return 2 * t * t
	}
	u := 1 - t
	return 1 - 2*u*u
}
