// Package polyline implements Google's Encoded Polyline Algorithm Format,
// grounded on original_source/include/polylineencoder/polylineencoder.h, for
// the "-g" geometry flag (spec §6, SPEC_FULL §5.4). Only encoding of an
// already-known coordinate sequence is in scope; fetching shape points from
// a router stays out of scope (spec §1).
package polyline

import "strings"

// precision is the fixed 1e5 scale factor the Google algorithm uses.
const precision = 1e5

// Point is a geodetic coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Encode returns the Google polyline-algorithm string for an ordered
// sequence of points.
func Encode(points []Point) string {
	var b strings.Builder
	prevLat, prevLng := 0, 0
	for _, p := range points {
		lat := round(p.Lat * precision)
		lng := round(p.Lng * precision)
		encodeSigned(&b, lat-prevLat)
		encodeSigned(&b, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return b.String()
}

func round(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return int(v - 0.5)
}

// encodeSigned appends one coordinate delta using the algorithm's
// zig-zag-then-base64-like 5-bit chunk encoding.
func encodeSigned(b *strings.Builder, delta int) {
	shifted := delta << 1
	if delta < 0 {
		shifted = ^shifted
	}
	for shifted >= 0x20 {
		b.WriteByte(byte((0x20|(shifted&0x1f))+63))
		shifted >>= 5
	}
	b.WriteByte(byte(shifted + 63))
}

// Decode parses a polyline-algorithm string back into its coordinate
// sequence; used by tests to round-trip Encode.
func Decode(s string) []Point {
	var points []Point
	lat, lng := 0, 0
	i := 0
	for i < len(s) {
		dlat, next := decodeSigned(s, i)
		i = next
		dlng, next2 := decodeSigned(s, i)
		i = next2
		lat += dlat
		lng += dlng
		points = append(points, Point{Lat: float64(lat) / precision, Lng: float64(lng) / precision})
	}
	return points
}

func decodeSigned(s string, i int) (int, int) {
	result := 0
	shift := uint(0)
	for {
		c := int(s[i]) - 63
		i++
		result |= (c & 0x1f) << shift
		shift += 5
		if c < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), i
	}
	return result >> 1, i
}
