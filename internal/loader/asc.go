package loader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"rasterscope/internal/geo"
	"rasterscope/internal/raster"
)

var (
	ErrMalformedHeader = errors.New("malformed ESRI ASCII header")
	ErrMalformedData   = errors.New("malformed ESRI ASCII data")
)

// maxCells bounds the allocation for a single grid
const maxCells = 1 << 28

// cancelCheckInterval is how many values are parsed between context checks
const cancelCheckInterval = 1 << 16

// Header is the key/value preamble of an ESRI ASCII grid
type Header struct {
	Cols     int
	Rows     int
	XLL      float64
	YLL      float64
	CellSize float64
	// Center is set when the origin was given as xllcenter/yllcenter
	Center    bool
	NoData    float64
	HasNoData bool
}

// Extent returns the geographic rectangle covered by the grid cells
func (h Header) Extent() geo.Extent {
	minLon, minLat := h.XLL, h.YLL
	if h.Center {
		minLon -= h.CellSize / 2
		minLat -= h.CellSize / 2
	}
	return geo.Extent{
		MinLon: minLon,
		MinLat: minLat,
		MaxLon: minLon + float64(h.Cols)*h.CellSize,
		MaxLat: minLat + float64(h.Rows)*h.CellSize,
	}
}

// GeoTransform returns the north-up transform for the grid
func (h Header) GeoTransform() raster.GeoTransform {
	return raster.NorthUpTransform(h.Extent(), h.Cols, h.Rows)
}

func (h Header) validate() error {
	switch {
	case h.Cols <= 0 || h.Rows <= 0:
		return fmt.Errorf("%w: ncols=%d nrows=%d", ErrMalformedHeader, h.Cols, h.Rows)
	case h.Cols > maxCells/h.Rows:
		return fmt.Errorf("%w: %dx%d grid too large", ErrMalformedHeader, h.Cols, h.Rows)
	case !(h.CellSize > 0) || math.IsInf(h.CellSize, 0):
		return fmt.Errorf("%w: cellsize %v", ErrMalformedHeader, h.CellSize)
	case math.IsNaN(h.XLL) || math.IsNaN(h.YLL):
		return fmt.Errorf("%w: missing origin", ErrMalformedHeader)
	}
	return nil
}

// ParseASC reads an ESRI ASCII grid. Rows are stored north first, which is
// also the order of raster.Grid. Values are returned raw; decoding into
// physical units happens in the caller.
func ParseASC(ctx context.Context, r io.Reader) (Header, raster.Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)

	h := Header{Cols: -1, Rows: -1, XLL: math.NaN(), YLL: math.NaN()}
	var first string
	for scanner.Scan() {
		key := strings.ToLower(scanner.Text())
		if !isHeaderKey(key) {
			first = scanner.Text()
			break
		}
		if !scanner.Scan() {
			return h, raster.Grid{}, fmt.Errorf("%w: %s has no value", ErrMalformedHeader, key)
		}
		if err := h.set(key, scanner.Text()); err != nil {
			return h, raster.Grid{}, err
		}
	}
	if err := scanner.Err(); err != nil {
		return h, raster.Grid{}, fmt.Errorf("read header: %w", err)
	}
	if err := h.validate(); err != nil {
		return h, raster.Grid{}, err
	}
	if first == "" {
		return h, raster.Grid{}, fmt.Errorf("%w: no values", ErrMalformedData)
	}

	grid := raster.NewGrid(h.Cols, h.Rows)
	n := len(grid.Values)
	i := 0
	token := first
	for {
		if i >= n {
			return h, raster.Grid{}, fmt.Errorf("%w: more than %d values", ErrMalformedData, n)
		}
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return h, raster.Grid{}, fmt.Errorf("%w: value %d: %q", ErrMalformedData, i, token)
		}
		grid.Values[i] = v
		i++

		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return h, raster.Grid{}, err
			}
		}
		if !scanner.Scan() {
			break
		}
		token = scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		return h, raster.Grid{}, fmt.Errorf("read values: %w", err)
	}
	if i != n {
		return h, raster.Grid{}, fmt.Errorf("%w: got %d values, want %d", ErrMalformedData, i, n)
	}

	return h, grid, nil
}

func isHeaderKey(key string) bool {
	switch key {
	case "ncols", "nrows", "xllcorner", "xllcenter", "yllcorner", "yllcenter", "cellsize", "nodata_value":
		return true
	}
	return false
}

func (h *Header) set(key, value string) error {
	if key == "ncols" || key == "nrows" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s %q", ErrMalformedHeader, key, value)
		}
		if key == "ncols" {
			h.Cols = n
		} else {
			h.Rows = n
		}
		return nil
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%w: %s %q", ErrMalformedHeader, key, value)
	}
	switch key {
	case "xllcorner":
		h.XLL = v
	case "xllcenter":
		h.XLL, h.Center = v, true
	case "yllcorner":
		h.YLL = v
	case "yllcenter":
		h.YLL, h.Center = v, true
	case "cellsize":
		h.CellSize = v
	case "nodata_value":
		h.NoData, h.HasNoData = v, true
	}
	return nil
}
