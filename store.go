package eink

// store keeps the per pixel freshness planes: the color last committed to the
// surface, the color callers asked for, and when the committed color was
// written.
type store struct {
	width, height int
	committed     []uint8
	requested     []uint8
	at            []Tick
	stamped       []bool // committed at least once
}

func newStore(width, height int, c uint8) *store {
	n := width * height
	s := &store{
		width:     width,
		height:    height,
		committed: make([]uint8, n),
		requested: make([]uint8, n),
		at:        make([]Tick, n),
		stamped:   make([]bool, n),
	}
	for i := 0; i < n; i++ {
		s.committed[i] = c
		s.requested[i] = c
	}
	return s
}

func (s *store) bounds() Rectangle {
	return Rectangle{Width: s.width, Height: s.height}
}

// index returns the plane offset of (x, y).
func (s *store) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return 0, false
	}
	return y*s.width + x, true
}

func (s *store) setRequested(x, y int, c uint8) {
	if i, ok := s.index(x, y); ok {
		s.requested[i] = c
	}
}

func (s *store) fillRequested(r Rectangle, c uint8) {
	r = r.Clip(s.width, s.height)
	if r.Empty() {
		return
	}
	for y := r.Top; y < r.Bottom(); y++ {
		row := s.requested[y*s.width+r.Left : y*s.width+r.Right()]
		for i := range row {
			row[i] = c
		}
	}
}

func (s *store) read(i int) (committed, requested uint8, at Tick, stamped bool) {
	return s.committed[i], s.requested[i], s.at[i], s.stamped[i]
}

func (s *store) commit(i int, c uint8, at Tick) {
	s.committed[i] = c
	s.at[i] = at
	s.stamped[i] = true
}
