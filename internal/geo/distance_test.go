package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceSamePointIsZero(t *testing.T) {
	points := []Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 18.9220, Longitude: 72.8347},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 89.9, Longitude: -179.9},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, Distance(p, p))
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	pairs := [][2]Point{
		{{18.9220, 72.8347}, {18.9400, 72.8353}},
		{{19.0550, 72.8350}, {19.0539, 72.8307}},
		{{51.5074, -0.1278}, {40.7128, -74.0060}},
		{{-33.8688, 151.2093}, {35.6762, 139.6503}},
	}
	for _, pair := range pairs {
		assert.InDelta(t, Distance(pair[0], pair[1]), Distance(pair[1], pair[0]), 1e-9)
	}
}

func TestDistanceKnownValues(t *testing.T) {
	d := Distance(Point{18.9220, 72.8347}, Point{18.9400, 72.8353})
	assert.InDelta(t, 2.0, d, 0.1)

	d = Distance(Point{19.0550, 72.8350}, Point{19.0539, 72.8307})
	assert.InDelta(t, 0.47, d, 0.05)

	// London to New York is roughly 5570 km.
	d = Distance(Point{51.5074, -0.1278}, Point{40.7128, -74.0060})
	assert.InDelta(t, 5570, d, 10)
}

func TestDistanceRoundsToThreeDecimals(t *testing.T) {
	d := Distance(Point{18.9220, 72.8347}, Point{18.9400, 72.8353})
	assert.Equal(t, Round(d, 3), d)
}

func TestPointValid(t *testing.T) {
	assert.True(t, Point{Latitude: 90, Longitude: -180}.Valid())
	assert.False(t, Point{Latitude: 90.1, Longitude: 0}.Valid())
	assert.False(t, Point{Latitude: 0, Longitude: 180.5}.Valid())
}
