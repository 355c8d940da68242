package georef

// Projector converts between the projected grid and WGS84 degrees. Both
// directions use (x, y) axis order, so longitude comes before latitude.
// Implementations must be safe for concurrent use.
type Projector interface {
	ToLonLat(x, y float64) (lon, lat float64)
	FromLonLat(lon, lat float64) (x, y float64)
}

// GridToGeographic projects g with proj. The projector answers in
// (lon, lat) order; the result is reordered into GeoCoord{Lat, Lon}.
func GridToGeographic(proj Projector, g GridCoord) GeoCoord {
	lon, lat := proj.ToLonLat(g.X, g.Y)
	return GeoCoord{Lat: lat, Lon: lon}
}

// GeographicToGrid is the inverse of GridToGeographic.
func GeographicToGrid(proj Projector, c GeoCoord) GridCoord {
	x, y := proj.FromLonLat(c.Lon, c.Lat)
	return GridCoord{X: x, Y: y}
}
