package grid

import (
	"fmt"
	"math"
)

var (
	latitudeNames  = []string{"lat", "latitude"}
	longitudeNames = []string{"lon", "longitude"}
)

// Nearest returns the (y, x) index of the grid cell closest to (lat, lon),
// measured as Euclidean distance in degrees. lats and lons are row-major
// arrays of nx columns.
func Nearest(lats, lons []float64, nx int, lat, lon float64) (y, x int) {
	lon = normalizeLongitude(lon)
	best, bestIdx := math.Inf(1), 0
	for i := range lats {
		dLat := lats[i] - lat
		dLon := normalizeLongitude(lons[i]) - lon
		d := math.Sqrt(dLat*dLat + dLon*dLon)
		if d < best {
			best, bestIdx = d, i
		}
	}
	return bestIdx / nx, bestIdx % nx
}

// normalizeLongitude maps lon into (-180, 180].
func normalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon > 180 {
		lon -= 360
	} else if lon <= -180 {
		lon += 360
	}
	return lon
}

// Point is the grid column nearest a target coordinate.
type Point struct {
	ds        *Dataset
	Y, X      int
	Latitude  float64
	Longitude float64
}

// Point locates the column nearest (lat, lon) using the dataset's 2-D
// latitude and longitude variables.
func (d *Dataset) Point(lat, lon float64) (*Point, error) {
	latName, err := d.findVariable(latitudeNames)
	if err != nil {
		return nil, err
	}
	lonName, err := d.findVariable(longitudeNames)
	if err != nil {
		return nil, err
	}

	lengths := d.Lengths(latName)
	if len(lengths) != 2 {
		return nil, fmt.Errorf("%s has %d dimensions, expected 2", latName, len(lengths))
	}
	lats, err := d.Read(latName)
	if err != nil {
		return nil, err
	}
	lons, err := d.Read(lonName)
	if err != nil {
		return nil, err
	}
	if len(lats) == 0 || len(lats) != len(lons) {
		return nil, fmt.Errorf("latitude and longitude sizes differ (%d, %d)", len(lats), len(lons))
	}

	nx := lengths[1]
	y, x := Nearest(lats, lons, nx, lat, lon)
	return &Point{
		ds:        d,
		Y:         y,
		X:         x,
		Latitude:  lats[y*nx+x],
		Longitude: normalizeLongitude(lons[y*nx+x]),
	}, nil
}

// Column returns the profile of variable at time index t.
func (p *Point) Column(variable string, t int) ([]float64, error) {
	return Column(p.ds, variable, t, p.Y, p.X)
}

// Column returns the vertical profile of a (time, level, y, x) variable at
// one grid cell and time step, in the file's level order.
func Column(ds *Dataset, variable string, t, y, x int) ([]float64, error) {
	lengths := ds.Lengths(variable)
	if len(lengths) != 4 {
		return nil, fmt.Errorf("%s has %d dimensions, expected (time, level, y, x)", variable, len(lengths))
	}
	nz, ny, nx := lengths[1], lengths[2], lengths[3]
	if y < 0 || y >= ny || x < 0 || x >= nx {
		return nil, fmt.Errorf("grid index (%d, %d) out of range for %s", y, x, variable)
	}

	slab, err := ds.ReadRecord(variable, t)
	if err != nil {
		return nil, err
	}
	out := make([]float64, nz)
	for z := 0; z < nz; z++ {
		out[z] = slab[(z*ny+y)*nx+x]
	}
	return out, nil
}

// Levels returns the vertical coordinate of a (time, level, y, x) variable.
func Levels(ds *Dataset, variable string) (name string, values []float64, err error) {
	dims := ds.Dimensions(variable)
	if len(dims) != 4 {
		return "", nil, fmt.Errorf("%s has %d dimensions, expected (time, level, y, x)", variable, len(dims))
	}
	values, err = ds.Read(dims[1])
	return dims[1], values, err
}

func (d *Dataset) findVariable(names []string) (string, error) {
	for _, name := range names {
		if d.HasVariable(name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("none of %v in dataset", names)
}
