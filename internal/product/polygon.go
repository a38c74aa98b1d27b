package product

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// ErrBadLatLon reports an unparsable LAT...LON block.
var ErrBadLatLon = errors.New("malformed LAT...LON block")

const (
	latLonPrefix  = "LAT...LON"
	latLonIndent  = "      "
	pairsPerLine  = 4
	aleutianLat   = 50.0
	hundredthsDeg = 100.0
)

// canonical converts a point to hundredth-degree integers. Longitudes are
// reported as positive degrees west; Aleutian longitudes east of 180 become
// 360 minus the longitude.
func canonical(p domain.LatLon) (int, int) {
	lon := p.Lon
	switch {
	case p.Lat > aleutianLat && lon > 0:
		lon = 360 - lon
	case lon < 0:
		lon = -lon
	}
	return int(math.Round(p.Lat * hundredthsDeg)), int(math.Round(lon * hundredthsDeg))
}

// EncodeLatLon renders one LAT...LON block per polygon, four pairs per line.
// A closing point equal to the first is not repeated.
func EncodeLatLon(polys [][]domain.LatLon) string {
	blocks := make([]string, 0, len(polys))
	for _, poly := range polys {
		pts := poly
		if n := len(pts); n > 1 && pts[0] == pts[n-1] {
			pts = pts[:n-1]
		}
		if len(pts) == 0 {
			continue
		}
		var b strings.Builder
		b.WriteString(latLonPrefix)
		for i, p := range pts {
			if i > 0 && i%pairsPerLine == 0 {
				b.WriteString("\n" + latLonIndent)
			}
			lat, lon := canonical(p)
			fmt.Fprintf(&b, " %d %d", lat, lon)
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n")
}

// DecodeLatLon parses LAT...LON blocks back into points in the western
// hemisphere, one slice per block.
func DecodeLatLon(text string) ([][]domain.LatLon, error) {
	var (
		out  [][]domain.LatLon
		nums []int
	)
	flush := func() error {
		if nums == nil {
			return nil
		}
		if len(nums)%2 != 0 {
			return fmt.Errorf("%w: odd number of values", ErrBadLatLon)
		}
		poly := make([]domain.LatLon, 0, len(nums)/2)
		for i := 0; i < len(nums); i += 2 {
			poly = append(poly, domain.LatLon{
				Lat: float64(nums[i]) / hundredthsDeg,
				Lon: -float64(nums[i+1]) / hundredthsDeg,
			})
		}
		out = append(out, poly)
		nums = nil
		return nil
	}

	for _, field := range strings.Fields(text) {
		if field == latLonPrefix {
			if err := flush(); err != nil {
				return nil, err
			}
			nums = []int{}
			continue
		}
		if nums == nil {
			return nil, fmt.Errorf("%w: %q before %s", ErrBadLatLon, field, latLonPrefix)
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadLatLon, field)
		}
		nums = append(nums, n)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// CAPPolygon renders a polygon as CAP "lat,lon lat,lon ..." closed on its first point.
func CAPPolygon(poly []domain.LatLon) string {
	if len(poly) == 0 {
		return ""
	}
	pts := poly
	if pts[0] != pts[len(pts)-1] {
		pts = append(append([]domain.LatLon(nil), pts...), pts[0])
	}
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = strconv.FormatFloat(p.Lat, 'f', 2, 64) + "," + strconv.FormatFloat(p.Lon, 'f', 2, 64)
	}
	return strings.Join(parts, " ")
}
