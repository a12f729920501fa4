package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// OutfitImage is a single view of a preset garment. On input the client may
// embed the picture as a data URI in Data; after upload only URL survives.
type OutfitImage struct {
	ID            string `json:"id"`
	URL           string `json:"url,omitempty"`
	Data          string `json:"data,omitempty"`
	MIMEType      string `json:"mimeType,omitempty"`
	Angle         string `json:"angle,omitempty"`
	VariationName string `json:"variationName,omitempty"`
	Swatch        string `json:"swatch,omitempty"`
}

// PresetOutfit is a curated trend entry users can pick a garment from.
type PresetOutfit struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Images         []OutfitImage `json:"images"`
	MainImageIndex int           `json:"mainImageIndex"`
}

// Validate checks the invariants every stored outfit must hold.
func (o PresetOutfit) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return errors.New("catalog: outfit name is required")
	}
	if len(o.Images) == 0 {
		return errors.New("catalog: outfit needs at least one image")
	}
	if o.MainImageIndex < 0 || o.MainImageIndex >= len(o.Images) {
		return fmt.Errorf("catalog: main image index %d out of range", o.MainImageIndex)
	}
	return nil
}
