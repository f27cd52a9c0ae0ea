package model

import "github.com/google/uuid"

// StockPreset represents a reusable stock bar definition.
type StockPreset struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	LengthMM float64 `json:"length_mm"`
	PriceEUR float64 `json:"price_eur"` // Per bar; 0 when unknown
}

// NewStockPreset creates a new StockPreset with a generated ID.
func NewStockPreset(name string, lengthMM, priceEUR float64) StockPreset {
	return StockPreset{
		ID:       uuid.New().String()[:8],
		Name:     name,
		LengthMM: lengthMM,
		PriceEUR: priceEUR,
	}
}

// ProfileGroup is a named set of profiles commonly nested together.
type ProfileGroup struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Profiles []string `json:"profiles"`
}

// NewProfileGroup creates a new ProfileGroup with a generated ID.
func NewProfileGroup(name string, profiles ...string) ProfileGroup {
	return ProfileGroup{
		ID:       uuid.New().String()[:8],
		Name:     name,
		Profiles: profiles,
	}
}

// Inventory holds the saved stock presets and profile groups.
type Inventory struct {
	Stocks []StockPreset  `json:"stocks"`
	Groups []ProfileGroup `json:"groups"`
}

// DefaultInventory returns an inventory populated with common mill lengths.
func DefaultInventory() Inventory {
	return Inventory{
		Stocks: []StockPreset{
			NewStockPreset("Bar 6m", 6000, 0),
			NewStockPreset("Bar 12m", 12000, 0),
			NewStockPreset("Bar 15m", 15000, 0),
		},
		Groups: []ProfileGroup{
			NewProfileGroup("Beams", "IPE200", "IPE300", "IPE400", "IPE500", "IPE600"),
			NewProfileGroup("Columns", "HEA200", "HEA220", "HEB300", "HEM340"),
			NewProfileGroup("Hollow sections", "RHS100x50x4", "SHS80x80x5", "CHS168.3x5"),
		},
	}
}

// StockLengths returns the preset bar lengths in ascending order of
// definition, for use as engine stock lengths.
func (inv *Inventory) StockLengths() []float64 {
	lengths := make([]float64, len(inv.Stocks))
	for i, s := range inv.Stocks {
		lengths[i] = s.LengthMM
	}
	return lengths
}

// FindStockByName returns a pointer to the first preset with the given name, or nil.
func (inv *Inventory) FindStockByName(name string) *StockPreset {
	for i := range inv.Stocks {
		if inv.Stocks[i].Name == name {
			return &inv.Stocks[i]
		}
	}
	return nil
}

// FindGroupByName returns a pointer to the first group with the given name, or nil.
func (inv *Inventory) FindGroupByName(name string) *ProfileGroup {
	for i := range inv.Groups {
		if inv.Groups[i].Name == name {
			return &inv.Groups[i]
		}
	}
	return nil
}
