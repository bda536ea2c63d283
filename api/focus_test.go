package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"medboard-api/domain"
)

func doFocus(t *testing.T, bus *mockBroadcaster, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.POST("/api/focus", postFocus(bus, testLogger()))
	req := httptest.NewRequest(http.MethodPost, "/api/focus", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPostFocusRequiresItemID(t *testing.T) {
	bus := &mockBroadcaster{}
	rec := doFocus(t, bus, `{"subElement":"task-3"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(bus.Events()) != 0 {
		t.Fatal("nothing should be broadcast for a rejected request")
	}
}

func TestPostFocusAcceptsLegacyFieldName(t *testing.T) {
	bus := &mockBroadcaster{}
	rec := doFocus(t, bus, `{"objectId":"item-9"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}

	var resp focusResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.ItemID != "item-9" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	events := bus.Events()
	if len(events) != 1 || events[0].Name != domain.EventFocusRequested {
		t.Fatalf("unexpected events: %+v", events)
	}
	ev := events[0].Payload.(domain.FocusEvent)
	if ev.ItemID != "item-9" || ev.ObjectID != "item-9" {
		t.Fatalf("id not re-emitted under both names: %+v", ev)
	}
	if ev.Time == 0 {
		t.Fatal("missing server timestamp")
	}
}

func TestPostFocusPrefersCurrentFieldName(t *testing.T) {
	bus := &mockBroadcaster{}
	rec := doFocus(t, bus, `{"itemId":"item-1","objectId":"item-2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	ev := bus.Events()[0].Payload.(domain.FocusEvent)
	if ev.ItemID != "item-1" || ev.ObjectID != "item-1" {
		t.Fatalf("expected itemId to win, got %+v", ev)
	}
}

func TestPostFocusDefaultsWholeItem(t *testing.T) {
	bus := &mockBroadcaster{}
	doFocus(t, bus, `{"itemId":"item-1"}`)
	ev := bus.Events()[0].Payload.(domain.FocusEvent)
	want := domain.FocusOptions{Zoom: 1.0, Duration: 1600, Highlight: true, ScrollIntoView: true}
	if ev.Options != want {
		t.Fatalf("unexpected defaults: %+v", ev.Options)
	}
}

func TestPostFocusDefaultsSubElement(t *testing.T) {
	bus := &mockBroadcaster{}
	doFocus(t, bus, `{"itemId":"item-1","subElement":"task-3"}`)
	ev := bus.Events()[0].Payload.(domain.FocusEvent)
	if ev.SubElement != "task-3" {
		t.Fatalf("sub element lost: %+v", ev)
	}
	want := domain.FocusOptions{Zoom: 1.5, Duration: 1200, Highlight: true, ScrollIntoView: true}
	if ev.Options != want {
		t.Fatalf("unexpected sub-element defaults: %+v", ev.Options)
	}
}

func TestPostFocusCallerOverridesMerge(t *testing.T) {
	bus := &mockBroadcaster{}
	doFocus(t, bus, `{"itemId":"item-1","focusOptions":{"zoom":2.5,"highlight":false}}`)
	ev := bus.Events()[0].Payload.(domain.FocusEvent)
	want := domain.FocusOptions{Zoom: 2.5, Duration: 1600, Highlight: false, ScrollIntoView: true}
	if ev.Options != want {
		t.Fatalf("unexpected merged options: %+v", ev.Options)
	}
}
