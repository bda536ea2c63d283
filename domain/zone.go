package domain

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
)

// Zone is a named, statically configured rectangle in world coordinates used
// to group and auto-pack items of certain types. Packing parameters are per
// zone; the configuration contract requires ColumnWidth/RowHeight to exceed
// the footprint of the item types the zone manages.
type Zone struct {
	Name         string     `json:"name"`
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Width        float64    `json:"width"`
	Height       float64    `json:"height"`
	ColumnWidth  float64    `json:"columnWidth"`
	RowHeight    float64    `json:"rowHeight"`
	Padding      float64    `json:"padding"`
	ManagedTypes []ItemType `json:"managedTypes"`
}

// Contains reports whether the world point (x, y) falls inside the zone's
// rectangle.
func (z Zone) Contains(x, y float64) bool {
	return x >= z.X && x < z.X+z.Width && y >= z.Y && y < z.Y+z.Height
}

// Manages reports whether items of type t are grid-managed within this zone.
func (z Zone) Manages(t ItemType) bool {
	for _, m := range z.ManagedTypes {
		if m == t {
			return true
		}
	}
	return false
}

// MaxCols is the number of grid columns that fit in the zone.
func (z Zone) MaxCols() int {
	if z.ColumnWidth <= 0 {
		return 0
	}
	return int(z.Width / z.ColumnWidth)
}

// MaxRows is the number of grid rows that fit in the zone.
func (z Zone) MaxRows() int {
	if z.RowHeight <= 0 {
		return 0
	}
	return int(z.Height / z.RowHeight)
}

// ZoneTable is the static zone configuration, loaded once at process start.
type ZoneTable []Zone

// ByName returns the zone with the given name.
func (zt ZoneTable) ByName(name string) (Zone, bool) {
	for _, z := range zt {
		if z.Name == name {
			return z, true
		}
	}
	return Zone{}, false
}

// ZoneFor returns the first zone managing items of type t. Item types not
// managed by any zone are placed freeform.
func (zt ZoneTable) ZoneFor(t ItemType) (Zone, bool) {
	for _, z := range zt {
		if z.Manages(t) {
			return z, true
		}
	}
	return Zone{}, false
}

// DefaultZones ships the built-in zone layout: a task zone for agent
// outputs, TODO lists and lab results, and a patient-record zone.
func DefaultZones() ZoneTable {
	return ZoneTable{
		{
			Name:         "tasks",
			X:            4200,
			Y:            0,
			Width:        2000,
			Height:       2100,
			ColumnWidth:  560,
			RowHeight:    490,
			Padding:      60,
			ManagedTypes: []ItemType{TypeAgent, TypeTodo, TypeLabResult},
		},
		{
			Name:         "records",
			X:            0,
			Y:            2400,
			Width:        3200,
			Height:       1500,
			ColumnWidth:  820,
			RowHeight:    700,
			Padding:      50,
			ManagedTypes: []ItemType{TypeEHR},
		},
	}
}

// LoadZones reads a zone table from a JSON file.
func LoadZones(path string) (ZoneTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var zones ZoneTable
	if err := sonic.Unmarshal(data, &zones); err != nil {
		return nil, fmt.Errorf("parse zones %s: %w", path, err)
	}
	for _, z := range zones {
		if z.Name == "" {
			return nil, fmt.Errorf("parse zones %s: zone without a name", path)
		}
		for _, t := range z.ManagedTypes {
			if !t.Valid() {
				return nil, fmt.Errorf("parse zones %s: zone %s manages unknown type %q", path, z.Name, t)
			}
		}
	}
	return zones, nil
}
