package geom

import "math"

// SnapAngleDegrees returns atan2(dx, dy) between from and to in degrees,
// normalized to [0, 360). Zero points straight down the y axis.
func SnapAngleDegrees(from, to Vec2) float64 {
	deg := math.Atan2(to.X-from.X, to.Y-from.Y) * 180 / math.Pi
	for deg >= 360 {
		deg -= 360
	}
	for deg < 0 {
		deg += 360
	}
	return deg
}

// Sector returns which of the eight 45 degree arcs angle falls in. Sector 0
// covers [337.5, 360) and [0, 22.5); the rest follow clockwise.
func Sector(angle float64) int {
	switch {
	case angle >= 337.5 || angle < 22.5:
		return 0
	case angle < 67.5:
		return 1
	case angle < 112.5:
		return 2
	case angle < 157.5:
		return 3
	case angle < 202.5:
		return 4
	case angle < 247.5:
		return 5
	case angle < 292.5:
		return 6
	default:
		return 7
	}
}

// AxisSnap locks current onto the axis or diagonal through last that matches
// angle. Vertical sectors freeze x, horizontal ones freeze y and the
// diagonals move y by the horizontal distance.
func AxisSnap(angle float64, last, current Vec2) Vec2 {
	dx := current.X - last.X
	out := current
	switch Sector(angle) {
	case 0, 4:
		out.X = last.X
	case 1, 5:
		out.Y = last.Y + dx
	case 2, 6:
		out.Y = last.Y
	case 3, 7:
		out.Y = last.Y - dx
	}
	return out
}
