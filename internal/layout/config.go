package layout

import "fmt"

// Config holds the layout constants. Coordinates are in screen units with
// y growing downward, so older ages get smaller y values.
type Config struct {
	// AnchorAge is the age placed at y=0.
	AnchorAge int `toml:"anchor_age" json:"anchor_age"`

	// VerticalSpacing is the distance between consecutive ages.
	VerticalSpacing float64 `toml:"vertical_spacing" json:"vertical_spacing"`

	// HorizontalSpacing is the distance between subject columns.
	HorizontalSpacing float64 `toml:"horizontal_spacing" json:"horizontal_spacing"`

	// TierLabelX is the x position of the school tier markers.
	TierLabelX float64 `toml:"tier_label_x" json:"tier_label_x"`

	// AgeLabelX is the x position of the age markers.
	AgeLabelX float64 `toml:"age_label_x" json:"age_label_x"`

	// RootOffset is how far above the highest age row the occupation sits.
	RootOffset float64 `toml:"root_offset" json:"root_offset"`

	AgeMarkers        bool `toml:"age_markers" json:"age_markers"`
	Root              bool `toml:"root" json:"root"`
	PrerequisiteEdges bool `toml:"prerequisite_edges" json:"prerequisite_edges"`
}

// DefaultConfig returns the standard layout.
func DefaultConfig() Config {
	return Config{
		AnchorAge:         18,
		VerticalSpacing:   80,
		HorizontalSpacing: 200,
		TierLabelX:        -300,
		AgeLabelX:         -150,
		RootOffset:        200,
		AgeMarkers:        true,
		Root:              true,
		PrerequisiteEdges: false,
	}
}

// Validate checks that the spacings produce a usable layout.
func (c Config) Validate() error {
	if c.VerticalSpacing <= 0 {
		return fmt.Errorf("layout: vertical spacing must be > 0, got %v", c.VerticalSpacing)
	}
	if c.HorizontalSpacing <= 0 {
		return fmt.Errorf("layout: horizontal spacing must be > 0, got %v", c.HorizontalSpacing)
	}
	if c.RootOffset < 0 {
		return fmt.Errorf("layout: root offset must be >= 0, got %v", c.RootOffset)
	}
	return nil
}
