package layout

// markerArena records, per lane boundary, the last vertical position at which
// the boundary was visually occupied. For N participants there are 2N+1
// markers along the horizontal path: even indices are boundaries (left of the
// first participant, between each pair, right of the last), odd indices are
// participant centers. Participant p owns center marker 2p+1 and is flanked
// by boundary markers 2p and 2p+2. Participants hold indices into the arena,
// never direct references, so the "shared by neighbors" relationship stays
// explicit.
type markerArena struct {
	ys []float64
}

// addParticipant grows the arena by one participant's worth of markers.
// The first participant contributes its left boundary as well.
func (a *markerArena) addParticipant() {
	if len(a.ys) == 0 {
		a.ys = append(a.ys, 0)
	}
	a.ys = append(a.ys, 0, 0)
}

// between returns the marker indices an element passing horizontally between
// participants pa and pb would cross: everything strictly between them plus
// the boundary markers facing the gap. Order of pa/pb does not matter.
func (a *markerArena) between(pa, pb int) []int {
	lo, hi := pa, pb
	if lo > hi {
		lo, hi = hi, lo
	}
	var idx []int
	for i := 2*lo + 2; i <= 2*hi; i++ {
		idx = append(idx, i)
	}
	return idx
}

// beside returns the markers a directed (found/lost) message occupies: the
// participant's center marker plus the boundary facing the off-diagram side.
func (a *markerArena) beside(p int, d sideLeftRight) []int {
	if d == sideLeft {
		return []int{2 * p, 2*p + 1}
	}
	return []int{2*p + 1, 2*p + 2}
}

// all returns every marker index.
func (a *markerArena) all() []int {
	idx := make([]int, len(a.ys))
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// maxShortfall returns how far the cursor must still advance so that every
// given marker is at least gap units above it. The maximum is taken over all
// markers in one pass so the advance is applied exactly once.
func (a *markerArena) maxShortfall(idx []int, cursor, gap float64) float64 {
	need := 0.0
	for _, i := range idx {
		if short := gap - (cursor - a.ys[i]); short > need {
			need = short
		}
	}
	return need
}

// stamp records y as the new occupied position of every given marker.
func (a *markerArena) stamp(idx []int, y float64) {
	for _, i := range idx {
		a.ys[i] = y
	}
}

// shiftAll moves every marker by dy, preserving relative spacing state across
// an explicit vertical gap.
func (a *markerArena) shiftAll(dy float64) {
	for i := range a.ys {
		a.ys[i] += dy
	}
}

// sideLeftRight distinguishes the two off-diagram directions internally.
type sideLeftRight int

const (
	sideLeft sideLeftRight = iota
	sideRight
)
