package submission

import (
	"strconv"
	"strings"
)

// Coordinate is the structured geolocation value emitted into submission
// records.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ParseCoordinate parses a manually typed "lat, lon" string. Latitude must be
// within [-90,90] and longitude within [-180,180].
func ParseCoordinate(raw string) (Coordinate, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return Coordinate{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Coordinate{}, false
	}
	return Coordinate{Lat: lat, Lon: lon}, true
}

// coordinateFromValue recognizes previously captured structured coordinates
// in the shapes widgets and decoders produce.
func coordinateFromValue(value any) (Coordinate, bool) {
	switch v := value.(type) {
	case Coordinate:
		return v, true
	case *Coordinate:
		if v != nil {
			return *v, true
		}
	case map[string]any:
		lat, latOK := floatFrom(v["lat"])
		lon, lonOK := floatFrom(v["lon"])
		if latOK && lonOK && lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180 {
			return Coordinate{Lat: lat, Lon: lon}, true
		}
	}
	return Coordinate{}, false
}

func floatFrom(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
