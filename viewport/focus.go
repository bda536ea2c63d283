package viewport

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"medboard-api/domain"
)

// How long a sub-element highlight pulse stays visible before self-clearing.
const highlightDisplayDuration = 2 * time.Second

// Highlighter is the render-layer hook for sub-element pulses. Highlight
// reports false when the sub-element is not present in the render tree.
type Highlighter interface {
	Highlight(itemID, subElement string) bool
	Clear(itemID, subElement string)
}

// FocusController is the client side of the focus pipeline: it resolves
// broadcast focus events against the local item collection, tracks the
// per-item selection flag, and drives the camera. Every failure mode is
// soft: logged and skipped, never propagated, so one malformed or
// late-arriving event cannot break the stream handler for later events.
type FocusController struct {
	camera      *Camera
	lookup      Lookup
	highlighter Highlighter
	logger      *log.Logger
	after       func(time.Duration, func())

	mu       sync.Mutex
	selected map[string]bool
}

// NewFocusController creates a controller driving the given camera. The
// highlighter may be nil when the host has no sub-element rendering.
func NewFocusController(camera *Camera, lookup Lookup, highlighter Highlighter, logger *log.Logger) *FocusController {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &FocusController{
		camera:      camera,
		lookup:      lookup,
		highlighter: highlighter,
		logger:      logger,
		after:       func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		selected:    make(map[string]bool),
	}
}

// HandleFocus processes one focus event. Unknown targets are dropped, not
// queued: callers needing create-then-focus reliability must wait for the
// creation event first.
func (f *FocusController) HandleFocus(ev domain.FocusEvent) {
	id := ev.TargetID()
	if id == "" {
		f.logger.Warn("focus event without item id")
		return
	}
	if _, ok := f.lookup(id); !ok {
		f.logger.WithField("item", id).Info("focus target not yet known, dropping")
		return
	}

	f.mu.Lock()
	f.selected[id] = true
	f.mu.Unlock()

	opts := ev.Options
	zoom := opts.Zoom
	if zoom <= 0 {
		zoom = defaultZoomFor(ev.SubElement)
	}
	duration := time.Duration(opts.Duration) * time.Millisecond
	if duration <= 0 {
		duration = DefaultDuration
	}

	f.camera.CenterOn(id, zoom, duration)

	// The highlight pulse starts only after the camera animation has fully
	// played out; pulsing a region that is still off-screen is useless.
	if ev.SubElement != "" && opts.Highlight && f.highlighter != nil {
		sub := ev.SubElement
		f.after(duration, func() {
			if !f.highlighter.Highlight(id, sub) {
				f.logger.WithFields(log.Fields{
					"item":        id,
					"sub_element": sub,
				}).Info("sub-element not rendered, skipping highlight")
				return
			}
			f.after(highlightDisplayDuration, func() {
				f.highlighter.Clear(id, sub)
			})
		})
	}
}

func defaultZoomFor(subElement string) float64 {
	if subElement != "" {
		return 1.5
	}
	return 1.0
}

// Selected reports whether the item is currently marked selected.
func (f *FocusController) Selected(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected[id]
}

// ClearSelection unmarks the item.
func (f *FocusController) ClearSelection(id string) {
	f.mu.Lock()
	delete(f.selected, id)
	f.mu.Unlock()
}
