package geoproj

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/golang/geo/s2"
)

// The World Geographic Reference System (georef) identifies a point by a
// 15-degree tile, an optional 1-degree sub-cell and an optional run of
// decimal minute digits. See
// https://en.wikipedia.org/wiki/World_Geographic_Reference_System

const georefTile = 15    // tile size in degrees
const georefMaxLat = 89  // highest whole degree of latitude
const georefMaxPrec = 11 // finest precision, 1e-9 minutes
const georefBase = 10    // base for the minute digits
const georefBaseLen = 4  // length of the letter prefix
const georefLonOrig = -180 / georefTile
const georefLatOrig = -90 / georefTile

// GeorefInvalid is the sentinel produced for NaN coordinates. Decoding
// accepts any string beginning case-insensitively with "INV".
const GeorefInvalid = "INVALID"

const georefDigits = "0123456789"
const georefLonTile = "ABCDEFGHJKLMNPQRSTUVWXYZ" // I and O are skipped
const georefLatTile = "ABCDEFGHJKLM"
const georefDegrees = "ABCDEFGHJKLMNPQ"

// ToGeoref encodes a geodetic point, in degrees, as a georef string.
//
// prec selects the granularity and is clamped to [-1, 11], with 1 promoted
// to 2 (a single minutes digit is not part of the grammar): -1 is the
// 15-degree tile (e.g. NK), 0 the 1-degree cell (NKLN), 2 whole minutes
// (NKLN2438), 3 tenths of a minute, and so on. The string length is
// 4 + 2*prec, or 2 for prec -1.
//
// A latitude outside [-90, 90] is an error. A NaN latitude or longitude
// yields the sentinel GeorefInvalid.
func ToGeoref(lat, lon float64, prec int) (string, error) {
	if math.Abs(lat) > 90 {
		return "", fmt.Errorf("latitude %v not in [-90, 90]", lat)
	}
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return GeorefInvalid, nil
	}
	lon = angNormalize(lon) // lon in [-180, 180)
	if prec < -1 {
		prec = -1
	} else if prec > georefMaxPrec {
		prec = georefMaxPrec
	}
	if prec == 1 { // disallow prec 1
		prec = 2
	}

	ilon := int(math.Floor(lon))
	lon -= float64(ilon)
	ilat := int(math.Floor(lat))
	if ilat > georefMaxLat {
		ilat = georefMaxLat
	}
	lat -= float64(ilat)
	// shift to the grid origin so the divisions below stay non-negative
	ilon -= georefLonOrig * georefTile
	ilat -= georefLatOrig * georefTile

	n := 2
	if prec >= 0 {
		n = georefBaseLen + 2*prec
	}
	buf := make([]byte, n)
	buf[0] = georefLonTile[ilon/georefTile]
	buf[1] = georefLatTile[ilat/georefTile]
	if prec >= 0 {
		buf[2] = georefDegrees[ilon%georefTile]
		buf[3] = georefDegrees[ilat%georefTile]
		if prec > 0 {
			// A fractional part that rounded up to exactly 1 would
			// spill into the next cell; this also covers lat = 90.
			eps := math.Nextafter(1, 2) - 1
			if lon == 1 {
				lon -= eps / 2
			}
			if lat == 1 {
				lat -= eps / 2
			}
			mult := math.Pow(georefBase, float64(prec-2)) * 60
			x := uint64(math.Floor(mult * lon))
			y := uint64(math.Floor(mult * lat))
			for c := prec - 1; c >= 0; c-- {
				buf[georefBaseLen+c] = georefDigits[x%georefBase]
				x /= georefBase
				buf[georefBaseLen+c+prec] = georefDigits[y%georefBase]
				y /= georefBase
			}
		}
	}
	return string(buf), nil
}

// ToGeorefLatLng encodes an s2 point as a georef string.
func ToGeorefLatLng(ll s2.LatLng, prec int) (string, error) {
	return ToGeoref(ll.Lat.Degrees(), ll.Lng.Degrees(), prec)
}

// FromGeoref decodes a georef string, case-insensitively, into degrees.
// With centerp false the south-west corner of the denoted cell is returned,
// otherwise the cell center. prec reports the precision encoded in the
// string length.
//
// A string beginning with "INV" decodes to NaN latitude and longitude; prec
// is meaningless in that case. Any other malformed input is an error naming
// the offending part.
func FromGeoref(georef string, centerp bool) (lat, lon float64, prec int, err error) {
	lat, lon, prec, _, err = decodeGeoref(georef, centerp)
	return lat, lon, prec, err
}

// GeorefCell decodes a georef string into the geographic cell it denotes,
// along with the encoded precision. The sentinel decodes to an empty
// rectangle.
func GeorefCell(georef string) (s2.Rect, int, error) {
	lat, lon, prec, unit, err := decodeGeoref(georef, false)
	if err != nil {
		return s2.Rect{}, 0, err
	}
	if math.IsNaN(lat) {
		return s2.EmptyRect(), prec, nil
	}
	size := georefTile / unit
	rect := s2.RectFromLatLng(s2.LatLngFromDegrees(lat, lon))
	return rect.AddPoint(s2.LatLngFromDegrees(lat+size, lon+size)), prec, nil
}

// decodeGeoref is the shared decoder; unit is the number of cells per tile
// along each axis before the centerp doubling.
func decodeGeoref(georef string, centerp bool) (lat, lon float64, prec int, unit float64, err error) {
	n := len(georef)
	if n >= 3 && strings.EqualFold(georef[:3], "INV") {
		return math.NaN(), math.NaN(), 0, 1, nil
	}
	if n < 2 {
		return 0, 0, 0, 0, fmt.Errorf("georef %q must have at least 2 characters", georef)
	}
	prec = (2+n-georefBaseLen)/2 - 1

	k := georefLookup(georefLonTile, georef[0])
	if k < 0 {
		return 0, 0, 0, 0, fmt.Errorf("bad longitude tile letter %q in georef %q", georef[0], georef)
	}
	lon1 := float64(k + georefLonOrig)
	k = georefLookup(georefLatTile, georef[1])
	if k < 0 {
		return 0, 0, 0, 0, fmt.Errorf("bad latitude tile letter %q in georef %q", georef[1], georef)
	}
	lat1 := float64(k + georefLatOrig)
	unit = 1
	if n > 2 {
		unit *= georefTile
		k = georefLookup(georefDegrees, georef[2])
		if k < 0 {
			return 0, 0, 0, 0, fmt.Errorf("bad longitude degree letter %q in georef %q", georef[2], georef)
		}
		lon1 = lon1*georefTile + float64(k)
		if n < 4 {
			return 0, 0, 0, 0, fmt.Errorf("missing latitude degree letter in georef %q", georef)
		}
		k = georefLookup(georefDegrees, georef[3])
		if k < 0 {
			return 0, 0, 0, 0, fmt.Errorf("bad latitude degree letter %q in georef %q", georef[3], georef)
		}
		lat1 = lat1*georefTile + float64(k)
		if prec > 0 {
			for i := georefBaseLen; i < n; i++ {
				if !isdigit(georef[i]) {
					return 0, 0, 0, 0, fmt.Errorf("non digits in trailing portion of georef %q", georef[georefBaseLen:])
				}
			}
			if n%2 != 0 {
				return 0, 0, 0, 0, fmt.Errorf("georef must end with an even number of digits %q", georef[georefBaseLen:])
			}
			if prec == 1 {
				return 0, 0, 0, 0, fmt.Errorf("georef needs at least 4 digits for minutes %q", georef[georefBaseLen:])
			}
			for i := 0; i < prec; i++ {
				m := georefBase
				if i == 0 {
					// the leading digit of each coordinate is
					// tens of minutes, so it runs 0-5
					m = 6
				}
				unit *= float64(m)
				x := int(georef[georefBaseLen+i] - '0')
				y := int(georef[georefBaseLen+i+prec] - '0')
				if i == 0 && (x >= m || y >= m) {
					return 0, 0, 0, 0, fmt.Errorf("minutes terms in georef must be less than 60 %q", georef[georefBaseLen:])
				}
				lon1 = float64(m)*lon1 + float64(x)
				lat1 = float64(m)*lat1 + float64(y)
			}
		}
	}
	if centerp {
		unit *= 2
		lat1 = 2*lat1 + 1
		lon1 = 2*lon1 + 1
	}
	return georefTile * lat1 / unit, georefTile * lon1 / unit, prec, unit, nil
}

// georefLookup finds the index of a letter in an alphabet, ignoring case.
func georefLookup(alphabet string, c byte) int {
	return strings.IndexByte(alphabet, byte(unicode.ToUpper(rune(c))))
}

func isdigit(b byte) bool {
	return b >= '0' && b <= '9'
}
