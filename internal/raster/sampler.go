package raster

import (
	"image"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"rasterscope/internal/colormap"
	"rasterscope/internal/debug"
	"rasterscope/internal/geo"
)

// DefaultImageCacheSize is the number of display images kept per sampler
const DefaultImageCacheSize = 4

// KindGeneric is the dataset kind of rasters without a known physical quantity
const KindGeneric = "generic"

type imageKey struct {
	preset colormap.Preset
	min    float64
	max    float64
}

// Sampler owns one decoded grid and its placement in world space. It is
// immutable once loaded except for the display range and image cache, and
// must only be used from one goroutine at a time.
type Sampler struct {
	grid   Grid
	extent geo.Extent
	gt     GeoTransform
	useGT  bool
	kind   string

	dataRange Range
	hasData   bool

	calibrations map[string]Range
	pinned       *Range

	cacheSize int
	images    *lru.Cache[imageKey, *image.RGBA]
	builds    int
}

// Option configures a Sampler
type Option func(*Sampler)

// WithKind sets the dataset kind used to look up calibration ranges
func WithKind(kind string) Option {
	return func(s *Sampler) {
		s.kind = kind
	}
}

// WithCalibrations sets fixed display ranges per dataset kind
func WithCalibrations(calibrations map[string]Range) Option {
	return func(s *Sampler) {
		s.calibrations = calibrations
	}
}

// WithImageCacheSize bounds the number of cached display images
func WithImageCacheSize(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.cacheSize = n
		}
	}
}

// NewSampler creates a sampler over grid placed at extent. gt is optional;
// when it is north-up it drives index lookups, otherwise lookups fall back
// to linear interpolation across extent.
func NewSampler(grid Grid, extent geo.Extent, gt *GeoTransform, opts ...Option) *Sampler {
	s := &Sampler{kind: KindGeneric, cacheSize: DefaultImageCacheSize}
	for _, opt := range opts {
		opt(s)
	}
	s.Load(grid, extent, gt)
	return s
}

// Load replaces the sampler contents and drops every cached image
func (s *Sampler) Load(grid Grid, extent geo.Extent, gt *GeoTransform) {
	s.grid = grid
	s.extent = extent
	s.gt = GeoTransform{}
	s.useGT = false
	s.pinned = nil
	s.builds = 0

	if gt != nil {
		if gt.NorthUp() {
			s.gt = *gt
			s.useGT = true
			if !extent.Valid() && grid.Valid() {
				s.extent = gt.Extent(grid.Width, grid.Height)
			}
		} else {
			debug.Warn("geotransform has rotation terms, sampling by extent",
				"gt", gt[:])
		}
	}

	s.dataRange, s.hasData = grid.ValueRange()

	if s.cacheSize <= 0 {
		s.cacheSize = DefaultImageCacheSize
	}
	s.images, _ = lru.New[imageKey, *image.RGBA](s.cacheSize)
}

// Width returns the grid width in cells
func (s *Sampler) Width() int {
	return s.grid.Width
}

// Height returns the grid height in cells
func (s *Sampler) Height() int {
	return s.grid.Height
}

// Extent returns the geographic placement of the grid
func (s *Sampler) Extent() geo.Extent {
	return s.extent
}

// Kind returns the dataset kind
func (s *Sampler) Kind() string {
	return s.kind
}

// UsesGeoTransform reports whether index lookups use the geotransform
func (s *Sampler) UsesGeoTransform() bool {
	return s.useGT
}

// Renderable reports whether the grid and extent are usable
func (s *Sampler) Renderable() bool {
	return s.grid.Valid() && s.extent.Valid()
}

// ValueAt returns the raw value at (col, row), NaN outside the grid
func (s *Sampler) ValueAt(col, row int) float64 {
	return s.grid.At(col, row)
}

// ValueRange returns the min/max over finite values. ok is false when the
// grid has no finite value.
func (s *Sampler) ValueRange() (min, max float64, ok bool) {
	return s.dataRange.Min, s.dataRange.Max, s.hasData
}

// DisplayRange returns the range used for colorization: a pinned range,
// else the calibration for the sampler's kind, else the data range.
func (s *Sampler) DisplayRange() (Range, bool) {
	if s.pinned != nil {
		return *s.pinned, true
	}
	if r, ok := s.calibrations[s.kind]; ok {
		return r, true
	}
	return s.dataRange, s.hasData
}

// SetDisplayRange pins the colorization range; nil unpins it
func (s *Sampler) SetDisplayRange(r *Range) {
	if r == nil {
		s.pinned = nil
		return
	}
	pinned := *r
	s.pinned = &pinned
}

// Index returns the nearest-neighbor cell for a lon/lat. ok is false when
// the point falls outside the grid.
func (s *Sampler) Index(lon, lat float64) (col, row int, ok bool) {
	if !s.Renderable() || !s.extent.Contains(lon, lat) {
		return 0, 0, false
	}

	var fx, fy float64
	if s.useGT {
		fx, fy = s.gt.Pixel(lon, lat)
	} else {
		fx = (lon - s.extent.MinLon) / s.extent.Width() * float64(s.grid.Width)
		fy = (s.extent.MaxLat - lat) / s.extent.Height() * float64(s.grid.Height)
	}
	// the east and south edges belong to the last cell
	fx = clampEdge(fx, s.grid.Width)
	fy = clampEdge(fy, s.grid.Height)

	fx, fy = math.Floor(fx), math.Floor(fy)
	if !(fx >= 0 && fx < float64(s.grid.Width) && fy >= 0 && fy < float64(s.grid.Height)) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}

// edgeTolerance absorbs rounding when a max-edge coordinate maps to
// exactly n cells.
const edgeTolerance = 1e-9

func clampEdge(f float64, n int) float64 {
	if f >= float64(n) && f <= float64(n)+edgeTolerance {
		return float64(n) - 0.5
	}
	return f
}

// SampleAtGeo returns the nearest-neighbor value at a lon/lat, NaN when
// the point falls outside the grid.
func (s *Sampler) SampleAtGeo(lon, lat float64) float64 {
	col, row, ok := s.Index(lon, lat)
	if !ok {
		return math.NaN()
	}
	return s.grid.At(col, row)
}

// DisplayImage returns the colorized grid for a preset. Images are built
// once per (preset, display range) and cached.
func (s *Sampler) DisplayImage(p colormap.Preset) *image.RGBA {
	r, _ := s.DisplayRange()
	key := imageKey{preset: p, min: r.Min, max: r.Max}
	if img, ok := s.images.Get(key); ok {
		return img
	}

	img := s.buildImage(p, r)
	s.images.Add(key, img)
	return img
}

// Builds returns how many full colorization passes have run
func (s *Sampler) Builds() int {
	return s.builds
}

func (s *Sampler) buildImage(p colormap.Preset, r Range) *image.RGBA {
	if !s.grid.Valid() {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}

	s.builds++
	w, h := s.grid.Width, s.grid.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for row := 0; row < h; row++ {
		src := s.grid.Values[row*w : (row+1)*w]
		dst := img.Pix[ImageRow(row, h)*img.Stride:]
		for col, v := range src {
			c := colormap.MapValue(v, r.Min, r.Max, p)
			dst[4*col+0] = c.R
			dst[4*col+1] = c.G
			dst[4*col+2] = c.B
			dst[4*col+3] = c.A
		}
	}

	debug.Log("built %dx%d display image (%s, %.3g..%.3g)", w, h, p, r.Min, r.Max)
	return img
}

// ImagePixel returns the display image pixel covering a lon/lat when the
// image is stretched over the extent. ok is false outside the extent.
func (s *Sampler) ImagePixel(lon, lat float64) (x, y int, ok bool) {
	if !s.Renderable() || !s.extent.Contains(lon, lat) {
		return 0, 0, false
	}

	w, h := s.grid.Width, s.grid.Height
	col := int(math.Floor((lon - s.extent.MinLon) / s.extent.Width() * float64(w)))
	row := int(math.Floor((s.extent.MaxLat - lat) / s.extent.Height() * float64(h)))
	col = min(max(col, 0), w-1)
	row = min(max(row, 0), h-1)
	return col, ImageRow(row, h), true
}

// ColorAt returns the display color at a lon/lat for a preset, or
// Transparent outside the extent.
func (s *Sampler) ColorAt(lon, lat float64, p colormap.Preset) colormap.RGBA {
	x, y, ok := s.ImagePixel(lon, lat)
	if !ok {
		return colormap.Transparent
	}
	c := s.DisplayImage(p).RGBAAt(x, y)
	return colormap.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
