package directions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePolyline(t *testing.T) {
	// Reference example from the encoded polyline algorithm docs:
	// (38.5, -120.2), (40.7, -120.95), (43.252, -126.453).
	points := DecodePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@")

	require.Len(t, points, 3)
	assert.InDelta(t, -120.2, points[0][0], 1e-9)
	assert.InDelta(t, 38.5, points[0][1], 1e-9)
	assert.InDelta(t, -120.95, points[1][0], 1e-9)
	assert.InDelta(t, 40.7, points[1][1], 1e-9)
	assert.InDelta(t, -126.453, points[2][0], 1e-9)
	assert.InDelta(t, 43.252, points[2][1], 1e-9)
}

func TestDecodePolylineEmpty(t *testing.T) {
	assert.Empty(t, DecodePolyline(""))
}
