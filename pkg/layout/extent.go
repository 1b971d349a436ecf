package layout

import "github.com/matzehuels/seqgen/pkg/errors"

// extentStack tracks one horizontal Extent per open nesting level. The bottom
// entry is the implicit page level used to size the title frame; every open
// control frame pushes another entry on top.
type extentStack struct {
	stack []Extent
}

// open pushes a fresh, empty extent.
func (s *extentStack) open() {
	s.stack = append(s.stack, Extent{})
}

// extend merges the coordinates into the top-of-stack extent.
func (s *extentStack) extend(xs ...float64) {
	s.stack[len(s.stack)-1].Add(xs...)
}

// close pops and returns the top extent. A frame that closes without any
// recorded extent has undefined width, which is an authoring error.
func (s *extentStack) close() (Extent, error) {
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	if top.Empty() {
		return Extent{}, errors.New(errors.ErrCodeEmptyFrame, "frame closed without content, width is undefined")
	}
	return top, nil
}

// depth returns the number of open levels, including the page level.
func (s *extentStack) depth() int { return len(s.stack) }
