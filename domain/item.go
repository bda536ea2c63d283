package domain

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// ItemType identifies a board item variant. The set is fixed; a type never
// changes after creation.
type ItemType string

const (
	TypeComponent ItemType = "component"
	TypeTodo      ItemType = "todo"
	TypeAgent     ItemType = "agent"
	TypeLabResult ItemType = "lab-result"
	TypeEHR       ItemType = "ehr"
	TypeText      ItemType = "text"
	TypeShape     ItemType = "shape"
	TypeSticky    ItemType = "sticky"
	TypeImage     ItemType = "image"
)

// ItemTypes lists every valid item type.
var ItemTypes = []ItemType{
	TypeComponent,
	TypeTodo,
	TypeAgent,
	TypeLabResult,
	TypeEHR,
	TypeText,
	TypeShape,
	TypeSticky,
	TypeImage,
}

// Valid reports whether t belongs to the fixed variant set.
func (t ItemType) Valid() bool {
	for _, v := range ItemTypes {
		if t == v {
			return true
		}
	}
	return false
}

// BoardItem represents a single positioned object on the shared board.
// Positions are expressed in world coordinates; width/height are the item's
// footprint in the same units. TypeData carries the variant-specific payload
// and is treated as opaque by the server.
type BoardItem struct {
	ID        string                 `json:"id"`
	Type      ItemType               `json:"type"`
	X         float64                `json:"x"`
	Y         float64                `json:"y"`
	Width     float64                `json:"width"`
	Height    float64                `json:"height"`
	TypeData  sonic.NoCopyRawMessage `json:"typeData,omitempty"`
	CreatedAt int64                  `json:"createdAt"`
	UpdatedAt int64                  `json:"updatedAt"`
}

// Center returns the item's world-space center point.
func (b BoardItem) Center() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Overlaps reports whether the two items' bounding boxes intersect.
// Non-overlap requires strict separation on at least one axis.
func (b BoardItem) Overlaps(o BoardItem) bool {
	if b.X+b.Width <= o.X || o.X+o.Width <= b.X {
		return false
	}
	if b.Y+b.Height <= o.Y || o.Y+o.Height <= b.Y {
		return false
	}
	return true
}

// NewItemID generates a unique item id from the creation time plus a random
// suffix. IDs are never reused.
func NewItemID(now time.Time) string {
	return fmt.Sprintf("item-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
