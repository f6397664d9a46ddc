package transport

const (
	DefaultSegments = 20
	floorDB         = -80.0
)

// Level maps a power reading in dB onto [0,1] linearly over [-80, 0].
func Level(db float64) float64 {
	return clamp01((db - floorDB) / -floorDB)
}

// LitSegments counts the lit segments of an n-segment column. Segment i,
// counted from the bottom, is lit when i/n < level.
func LitSegments(level float64, n int) int {
	lit := 0
	for i := 0; i < n; i++ {
		if float64(i)/float64(n) < level {
			lit++
		}
	}
	return lit
}

// Meter holds the latest left/right levels.
type Meter struct {
	n      int
	levels [2]float64
}

func NewMeter(n int) *Meter {
	if n <= 0 {
		n = DefaultSegments
	}
	return &Meter{n: n}
}

func (m *Meter) Set(left, right float64) {
	m.levels = [2]float64{clamp01(left), clamp01(right)}
}

func (m *Meter) Levels() (left, right float64) {
	return m.levels[0], m.levels[1]
}

func (m *Meter) Len() int { return m.n }

// Segments returns the lit state of channel ch, bottom first.
func (m *Meter) Segments(ch int) []bool {
	out := make([]bool, m.n)
	if ch < 0 || ch > 1 {
		return out
	}
	lit := LitSegments(m.levels[ch], m.n)
	for i := 0; i < lit; i++ {
		out[i] = true
	}
	return out
}
