package api

import (
	"github.com/bytedance/sonic"

	"medboard-api/domain"
)

const (
	postItemMaxSize  = 256 * 1024 // 256 KiB, typeData payloads included
	postFocusMaxSize = 16 * 1024  // 16 KiB
)

// POST /api/items/:type request body. X and Y are pointers so an explicit
// caller-supplied position (including zero) is distinguishable from an
// omitted one.
type createItemRequest struct {
	X        *float64               `json:"x"`
	Y        *float64               `json:"y"`
	Width    float64                `json:"width"`
	Height   float64                `json:"height"`
	TypeData sonic.NoCopyRawMessage `json:"typeData"`
}

// PATCH /api/items/:id request body; nil fields are left untouched.
type updateItemRequest struct {
	X        *float64               `json:"x"`
	Y        *float64               `json:"y"`
	Width    *float64               `json:"width"`
	Height   *float64               `json:"height"`
	TypeData sonic.NoCopyRawMessage `json:"typeData"`
}

// POST /api/focus request body. The item id is accepted under either the
// current or the legacy field name; the first non-empty one wins.
type focusRequest struct {
	ItemID     string             `json:"itemId"`
	ObjectID   string             `json:"objectId"`
	SubElement string             `json:"subElement"`
	Options    *focusOptionsPatch `json:"focusOptions"`
}

// Caller overrides for focus options; nil fields fall back to the
// sub-element-conditioned defaults.
type focusOptionsPatch struct {
	Zoom           *float64 `json:"zoom"`
	Duration       *int     `json:"duration"`
	Highlight      *bool    `json:"highlight"`
	ScrollIntoView *bool    `json:"scrollIntoView"`
}

// POST /api/focus response body.
type focusResponse struct {
	Success      bool                `json:"success"`
	ItemID       string              `json:"itemId"`
	SubElement   string              `json:"subElement,omitempty"`
	FocusOptions domain.FocusOptions `json:"focusOptions"`
}

// DELETE /api/zones/:name/items response body.
type clearZoneResponse struct {
	Zone    string `json:"zone"`
	Removed int    `json:"removed"`
}

type itemsResponse struct {
	Items []domain.BoardItem `json:"items"`
}
