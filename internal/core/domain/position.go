package domain

// ScrollPositionKey is the fixed persistence key for the viewport position.
const ScrollPositionKey = "livepreview.scroll-position"

// ScrollPosition is a pair of viewport offsets.
// X is the horizontal offset in columns, Y the vertical offset in lines.
type ScrollPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Clamp bounds the position to [0, maxX] x [0, maxY].
// Negative maxima are treated as zero.
func (p ScrollPosition) Clamp(maxX, maxY int) ScrollPosition {
	return ScrollPosition{X: clampInt(p.X, maxX), Y: clampInt(p.Y, maxY)}
}

func clampInt(v, upper int) int {
	if upper < 0 {
		upper = 0
	}
	if v < 0 {
		return 0
	}
	if v > upper {
		return upper
	}
	return v
}
