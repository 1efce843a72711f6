package directions

// DecodePolyline decodes Google's encoded polyline format into a list of
// [lng, lat] pairs.
func DecodePolyline(encoded string) [][]float64 {
	points := make([][]float64, 0, len(encoded)/4)
	var lat, lng int64
	index := 0

	for index < len(encoded) {
		dlat, next := decodeVarint(encoded, index)
		index = next
		lat += dlat

		dlng, next := decodeVarint(encoded, index)
		index = next
		lng += dlng

		points = append(points, []float64{float64(lng) / 1e5, float64(lat) / 1e5})
	}
	return points
}

func decodeVarint(encoded string, index int) (int64, int) {
	var result int64
	var shift uint
	for index < len(encoded) {
		b := int64(encoded[index]) - 63
		index++
		result |= (b & 0x1F) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), index
	}
	return result >> 1, index
}
