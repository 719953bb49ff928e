package loader

import (
	"math"
	"strings"

	"rasterscope/internal/raster"
)

// KindLST is MODIS land surface temperature, stored as Kelvin/0.02
const KindLST = "lst"

const (
	lstScale     = 0.02
	lstOffset    = -273.15
	lstRawMax    = 65535
	lstMinC      = -80.0
	lstMaxC      = 80.0
	genericLimit = 1e6
)

// DetectKind infers the dataset kind from a file name
func DetectKind(name string) string {
	if strings.Contains(name, "LST_Day_1km") || strings.Contains(name, "LST_Night_1km") {
		return KindLST
	}
	return raster.KindGeneric
}

// DecodeValue converts a raw cell into physical units, returning NaN for
// missing or implausible samples.
func DecodeValue(kind string, raw float64, h Header) float64 {
	if math.IsNaN(raw) || (h.HasNoData && raw == h.NoData) {
		return math.NaN()
	}

	switch kind {
	case KindLST:
		if raw == 0 || raw > lstRawMax {
			return math.NaN()
		}
		c := raw*lstScale + lstOffset
		if c < lstMinC || c > lstMaxC {
			return math.NaN()
		}
		return c

	default:
		if math.IsInf(raw, 0) || math.Abs(raw) > genericLimit {
			return math.NaN()
		}
		return raw
	}
}

func decodeGrid(kind string, grid raster.Grid, h Header) {
	for i, v := range grid.Values {
		grid.Values[i] = DecodeValue(kind, v, h)
	}
}
