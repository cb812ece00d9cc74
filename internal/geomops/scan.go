package geomops

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// point3D is the JSON wire shape for a single LineString3D vertex.
type point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Scan implements sql.Scanner, deserializing a LineString3D stored as a
// JSON array column (spec §9 redesign note: geometry is kept as plain
// coordinate data rather than a PostGIS-specific binary type, so the
// sqlite and postgres backends share one column encoding).
func (l *LineString3D) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("LineString3D: cannot scan non-byte value")
		}
	}
	if len(bytes) == 0 {
		*l = nil
		return nil
	}

	var pts []point3D
	if err := json.Unmarshal(bytes, &pts); err != nil {
		return err
	}
	out := make(LineString3D, len(pts))
	for i, p := range pts {
		out[i] = Point3D{X: p.X, Y: p.Y, Z: p.Z}
	}
	*l = out
	return nil
}

// Value implements driver.Valuer.
func (l LineString3D) Value() (driver.Value, error) {
	pts := make([]point3D, len(l))
	for i, p := range l {
		pts[i] = point3D{X: p.X, Y: p.Y, Z: p.Z}
	}
	return json.Marshal(pts)
}
