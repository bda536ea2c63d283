package viewport

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"medboard-api/domain"
)

type fakeHighlighter struct {
	mu         sync.Mutex
	rendered   map[string]bool
	highlights []string
	clears     []string
}

func newFakeHighlighter(rendered ...string) *fakeHighlighter {
	m := make(map[string]bool, len(rendered))
	for _, r := range rendered {
		m[r] = true
	}
	return &fakeHighlighter{rendered: m}
}

func (f *fakeHighlighter) Highlight(itemID, subElement string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := itemID + "/" + subElement
	if !f.rendered[key] {
		return false
	}
	f.highlights = append(f.highlights, key)
	return true
}

func (f *fakeHighlighter) Clear(itemID, subElement string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears = append(f.clears, itemID+"/"+subElement)
}

type scheduledCall struct {
	delay time.Duration
	fn    func()
}

// captureAfter records timer callbacks instead of arming real timers.
func captureAfter(calls *[]scheduledCall) func(time.Duration, func()) {
	return func(d time.Duration, fn func()) {
		*calls = append(*calls, scheduledCall{delay: d, fn: fn})
	}
}

func testController(hl Highlighter, items ...domain.BoardItem) (*FocusController, *Camera, *fakeClock, *manualScheduler, *[]scheduledCall) {
	cam, clock, sched := testCamera(items...)
	fc := NewFocusController(cam, boardLookup(items...), hl, quietLogger())
	calls := &[]scheduledCall{}
	fc.after = captureAfter(calls)
	return fc, cam, clock, sched, calls
}

func focusEvent(id, sub string, opts domain.FocusOptions) domain.FocusEvent {
	return domain.FocusEvent{ItemID: id, ObjectID: id, SubElement: sub, Options: opts, Time: 1}
}

func TestHandleFocusCentersAndSelects(t *testing.T) {
	item := domain.BoardItem{ID: "a", X: 4260, Y: 60, Width: 440, Height: 380}
	fc, cam, clock, sched, _ := testController(nil, item)

	fc.HandleFocus(focusEvent("a", "", domain.FocusOptions{Zoom: 2.0, Duration: 900, Highlight: true}))
	require.True(t, fc.Selected("a"))

	for i := 0; i < 3; i++ {
		clock.advance(300 * time.Millisecond)
		sched.step()
	}
	require.InDelta(t, 2.0, cam.State().Zoom, 1e-9)
	cx, cy := centerOf(cam)
	require.InDelta(t, 4480, cx, 1e-6)
	require.InDelta(t, 250, cy, 1e-6)
}

func TestHandleFocusUnknownItemIsSoftFailure(t *testing.T) {
	fc, cam, _, sched, calls := testController(nil)
	before := cam.State()

	require.NotPanics(t, func() {
		fc.HandleFocus(focusEvent("ghost", "row-1", domain.FocusOptions{Highlight: true}))
	})
	require.Equal(t, before, cam.State())
	require.False(t, fc.Selected("ghost"))
	require.Empty(t, *calls, "no highlight scheduled for a missing item")
	require.Equal(t, 0, sched.pending())
}

func TestHandleFocusLegacyFieldNameResolves(t *testing.T) {
	item := domain.BoardItem{ID: "a", X: 0, Y: 0, Width: 100, Height: 100}
	fc, _, _, _, _ := testController(nil, item)

	fc.HandleFocus(domain.FocusEvent{ObjectID: "a", Options: domain.FocusOptions{Zoom: 1.0, Duration: 500}})
	require.True(t, fc.Selected("a"))
}

func TestHandleFocusHighlightAfterAnimation(t *testing.T) {
	item := domain.BoardItem{ID: "a", X: 0, Y: 0, Width: 100, Height: 100}
	hl := newFakeHighlighter("a/row-2")
	fc, _, _, _, calls := testController(hl, item)

	fc.HandleFocus(focusEvent("a", "row-2", domain.FocusOptions{Zoom: 1.5, Duration: 1200, Highlight: true}))

	// Exactly one pending timer, armed for the full animation duration.
	require.Len(t, *calls, 1)
	require.Equal(t, 1200*time.Millisecond, (*calls)[0].delay)
	require.Empty(t, hl.highlights, "highlight must not fire before the camera settles")

	(*calls)[0].fn()
	require.Equal(t, []string{"a/row-2"}, hl.highlights)

	// The pulse self-clears after the display duration.
	require.Len(t, *calls, 2)
	require.Equal(t, highlightDisplayDuration, (*calls)[1].delay)
	(*calls)[1].fn()
	require.Equal(t, []string{"a/row-2"}, hl.clears)
}

func TestHandleFocusHighlightDisabled(t *testing.T) {
	item := domain.BoardItem{ID: "a", X: 0, Y: 0, Width: 100, Height: 100}
	hl := newFakeHighlighter("a/row-2")
	fc, _, _, _, calls := testController(hl, item)

	fc.HandleFocus(focusEvent("a", "row-2", domain.FocusOptions{Zoom: 1.5, Duration: 1200, Highlight: false}))
	require.Empty(t, *calls)
}

func TestHandleFocusMissingSubElementSkipsQuietly(t *testing.T) {
	item := domain.BoardItem{ID: "a", X: 0, Y: 0, Width: 100, Height: 100}
	hl := newFakeHighlighter() // nothing rendered
	fc, _, _, _, calls := testController(hl, item)

	fc.HandleFocus(focusEvent("a", "row-9", domain.FocusOptions{Zoom: 1.5, Duration: 1200, Highlight: true}))
	require.Len(t, *calls, 1)

	require.NotPanics(t, func() { (*calls)[0].fn() })
	require.Empty(t, hl.highlights)
	require.Len(t, *calls, 1, "no clear timer when the highlight never fired")
}

func TestHandleFocusDefaultZoomDependsOnSubElement(t *testing.T) {
	item := domain.BoardItem{ID: "a", X: 0, Y: 0, Width: 100, Height: 100}

	// Whole-item focus with no zoom supplied lands at 1.0.
	fc, cam, clock, sched, _ := testController(nil, item)
	fc.HandleFocus(focusEvent("a", "", domain.FocusOptions{Duration: 900}))
	for i := 0; i < 3; i++ {
		clock.advance(300 * time.Millisecond)
		sched.step()
	}
	require.InDelta(t, 1.0, cam.State().Zoom, 1e-9)

	// Sub-element focus defaults tighter.
	fc, cam, clock, sched, _ = testController(newFakeHighlighter(), item)
	fc.HandleFocus(focusEvent("a", "row-1", domain.FocusOptions{Duration: 900, Highlight: false}))
	for i := 0; i < 3; i++ {
		clock.advance(300 * time.Millisecond)
		sched.step()
	}
	require.InDelta(t, 1.5, cam.State().Zoom, 1e-9)
}

func TestClearSelection(t *testing.T) {
	item := domain.BoardItem{ID: "a", X: 0, Y: 0, Width: 100, Height: 100}
	fc, _, _, _, _ := testController(nil, item)

	fc.HandleFocus(focusEvent("a", "", domain.FocusOptions{Zoom: 1, Duration: 100}))
	require.True(t, fc.Selected("a"))
	fc.ClearSelection("a")
	require.False(t, fc.Selected("a"))
}
