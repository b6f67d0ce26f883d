package staticmap

import "math"

// Web-mercator projection in world pixel coordinates: the world spans
// tileSize*2^zoom pixels in each axis at a given zoom.

func worldSize(zoom int) float64 {
	return tileSize * math.Exp2(float64(zoom))
}

func lonToX(lon float64, zoom int) float64 {
	return (lon + 180) / 360 * worldSize(zoom)
}

func latToY(lat float64, zoom int) float64 {
	// clamp to the mercator cutoff so poles stay finite
	lat = math.Max(-85.05112878, math.Min(85.05112878, lat))
	rad := lat * math.Pi / 180
	return (1 - math.Log(math.Tan(rad)+1/math.Cos(rad))/math.Pi) / 2 * worldSize(zoom)
}
