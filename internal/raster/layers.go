package raster

import (
	"math"

	"rasterscope/internal/geo"
)

// Layer is one loaded raster in the display stack
type Layer struct {
	Name    string
	Sampler *Sampler
	Visible bool
}

// Layers is the ordered display stack. Layers are drawn in order, so later
// layers paint over earlier ones. It is append-only apart from Clear.
type Layers struct {
	layers []*Layer
}

// Append takes ownership of a fully loaded sampler and adds it as a visible
// layer, returning its index. A nil sampler is ignored and -1 returned.
func (l *Layers) Append(name string, s *Sampler) int {
	if s == nil {
		return -1
	}
	l.layers = append(l.layers, &Layer{Name: name, Sampler: s, Visible: true})
	return len(l.layers) - 1
}

// Len returns the number of layers
func (l *Layers) Len() int {
	return len(l.layers)
}

// At returns the layer at index i, nil if out of range
func (l *Layers) At(i int) *Layer {
	if i < 0 || i >= len(l.layers) {
		return nil
	}
	return l.layers[i]
}

// SetVisible toggles a layer. It returns false for an invalid index.
func (l *Layers) SetVisible(i int, visible bool) bool {
	layer := l.At(i)
	if layer == nil {
		return false
	}
	layer.Visible = visible
	return true
}

// Visible reports whether layer i exists and is visible
func (l *Layers) Visible(i int) bool {
	layer := l.At(i)
	return layer != nil && layer.Visible
}

// VisibleLayers returns the visible layers in draw order, bottom first
func (l *Layers) VisibleLayers() []*Layer {
	visible := make([]*Layer, 0, len(l.layers))
	for _, layer := range l.layers {
		if layer.Visible {
			visible = append(visible, layer)
		}
	}
	return visible
}

// Clear removes every layer
func (l *Layers) Clear() {
	l.layers = nil
}

// SampleAt returns the value under a lon/lat from the topmost visible
// layer whose extent contains the point and whose sample is finite, along
// with that layer's index. With no hit it returns NaN and -1.
func (l *Layers) SampleAt(lon, lat float64) (float64, int) {
	for i := len(l.layers) - 1; i >= 0; i-- {
		layer := l.layers[i]
		if !layer.Visible || !layer.Sampler.Extent().Contains(lon, lat) {
			continue
		}
		v := layer.Sampler.SampleAtGeo(lon, lat)
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, i
		}
	}
	return math.NaN(), -1
}

// Extent returns the union of the visible layers' extents
func (l *Layers) Extent() geo.Extent {
	var e geo.Extent
	for _, layer := range l.layers {
		if layer.Visible {
			e = e.Union(layer.Sampler.Extent())
		}
	}
	return e
}
