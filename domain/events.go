package domain

// Event names broadcast to connected stream viewers.
const (
	EventBoardState     = "board-state"
	EventItemCreated    = "item-created"
	EventItemUpdated    = "item-updated"
	EventItemDeleted    = "item-deleted"
	EventZoneCleared    = "zone-cleared"
	EventFocusRequested = "focus-requested"
)

// FocusOptions tunes the viewport animation on the receiving client. The
// server fills every field with a default before broadcast, so viewers never
// see a partially specified set.
type FocusOptions struct {
	Zoom           float64 `json:"zoom"`
	Duration       int     `json:"duration"` // milliseconds
	Highlight      bool    `json:"highlight"`
	ScrollIntoView bool    `json:"scrollIntoView"`
}

// FocusEvent instructs every connected viewer to center its viewport on one
// item. The id is carried under both the current and the legacy field name;
// they always hold the same value.
type FocusEvent struct {
	ItemID     string       `json:"itemId"`
	ObjectID   string       `json:"objectId"`
	SubElement string       `json:"subElement,omitempty"`
	Options    FocusOptions `json:"focusOptions"`
	Time       int64        `json:"time"`
}

// TargetID returns the canonical item id, accepting either field name.
func (e FocusEvent) TargetID() string {
	if e.ItemID != "" {
		return e.ItemID
	}
	return e.ObjectID
}

// ItemDeletedEvent is the payload for item-deleted broadcasts.
type ItemDeletedEvent struct {
	ID string `json:"id"`
}

// ZoneClearedEvent is the payload for zone-cleared broadcasts.
type ZoneClearedEvent struct {
	Zone    string `json:"zone"`
	Removed int    `json:"removed"`
}
