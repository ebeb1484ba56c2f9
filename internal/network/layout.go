package network

import "math"

// Layout geometry of the published figure.
const (
	StartAngle  = 120.0 // degrees, first node position
	NodeRadius  = 1.0
	LabelRadius = 1.35
)

// Placement is a node's position on the circle plus the derived label
// geometry.
type Placement struct {
	Angle          float64 // degrees, as assigned (may be negative)
	X, Y           float64 // node position at NodeRadius
	LabelX, LabelY float64 // label anchor at LabelRadius
	LabelRotation  float64 // degrees, normalized to [0, 360)
	AlignRight     bool    // true on the left half of the circle
}

// CircularLayout assigns n equally spaced positions clockwise from
// StartAngle: angle_i = start - i*360/n.
func CircularLayout(n int, startAngle float64) []Placement {
	out := make([]Placement, n)
	if n == 0 {
		return out
	}
	step := 360.0 / float64(n)
	for i := range out {
		angle := startAngle - float64(i)*step
		rad := angle * math.Pi / 180
		rot, right := RadialLabel(angle)
		out[i] = Placement{
			Angle:         angle,
			X:             NodeRadius * math.Cos(rad),
			Y:             NodeRadius * math.Sin(rad),
			LabelX:        LabelRadius * math.Cos(rad),
			LabelY:        LabelRadius * math.Sin(rad),
			LabelRotation: rot,
			AlignRight:    right,
		}
	}
	return out
}

// RadialLabel derives the rotation and alignment that keep a label at the
// given angle readable: on the left half of the circle (normalized angle
// strictly between 90 and 270 degrees) the text is flipped by 180 degrees
// and right-aligned so it never renders upside-down and always extends away
// from the circle. The routine is generic to any radial diagram.
func RadialLabel(angle float64) (rotation float64, alignRight bool) {
	norm := normalizeDeg(angle)
	if norm > 90 && norm < 270 {
		return normalizeDeg(norm + 180), true
	}
	return norm, false
}

// normalizeDeg maps an angle to [0, 360).
func normalizeDeg(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
