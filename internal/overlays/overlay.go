package overlays

import (
	"fmt"
	"image/color"
	"sort"
)

// Palette is an ordered list of gradient stops, evenly spaced top to bottom
type Palette []color.RGBA

// Registry manages the named gradient palettes available to the overlay
type Registry struct {
	palettes map[string]Palette
}

// Preset palette names
const (
	Classic  = "classic"
	Vignette = "vignette"
	Flat     = "flat"
)

// NewRegistry creates a registry holding the preset palettes
func NewRegistry() *Registry {
	r := &Registry{
		palettes: make(map[string]Palette),
	}

	black := color.RGBA{A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	r.Register(Classic, Palette{black, white, black})
	r.Register(Vignette, Palette{white, black, black, black, white})
	r.Register(Flat, Palette{{R: 128, G: 128, B: 128, A: 255}})

	return r
}

// Register adds or replaces a palette
func (r *Registry) Register(name string, p Palette) {
	r.palettes[name] = p
}

// Get retrieves a palette by name
func (r *Registry) Get(name string) (Palette, bool) {
	p, ok := r.palettes[name]
	return p, ok
}

// Lookup is Get with an error naming the available palettes
func (r *Registry) Lookup(name string) (Palette, error) {
	p, ok := r.palettes[name]
	if !ok || len(p) == 0 {
		return nil, fmt.Errorf("unknown palette %q (available: %v)", name, r.List())
	}
	return p, nil
}

// List returns all registered palette names in sorted order
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.palettes))
	for name := range r.palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
