package polyline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeKnownExample(t *testing.T) {
	// Google's own documented example: https://developers.google.com/maps/documentation/utilities/polylinealgorithm
	points := []Point{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", Encode(points))
}

func TestEncodeEmpty(t *testing.T) {
	assert.Equal(t, "", Encode(nil))
}

func TestRoundTrip(t *testing.T) {
	points := []Point{
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: 48.857, Lng: 2.3530},
		{Lat: 48.8, Lng: 2.4},
	}
	encoded := Encode(points)
	decoded := Decode(encoded)
	require.Len(t, decoded, len(points))
	for i := range points {
		assert.InDelta(t, points[i].Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, points[i].Lng, decoded[i].Lng, 1e-5)
	}
}

func TestEncodeSingleNegativeDelta(t *testing.T) {
	points := []Point{{Lat: 0, Lng: 0}, {Lat: -1, Lng: -1}}
	encoded := Encode(points)
	decoded := Decode(encoded)
	require.Len(t, decoded, 2)
	assert.InDelta(t, -1.0, decoded[1].Lat, 1e-5)
	assert.InDelta(t, -1.0, decoded[1].Lng, 1e-5)
}
