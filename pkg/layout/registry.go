package layout

import "github.com/matzehuels/seqgen/pkg/errors"

// activationRecord is an open activation bar on a participant's lifeline.
// The record owns the bookkeeping (start y and horizontal offset); the
// Activation element only receives the final geometry.
type activationRecord struct {
	bar Activation
	dx  float64
	y   float64
}

// participant is the registry's view of one declared lifeline.
type participant struct {
	index    int
	name     string
	lifeline Lifeline
	centerX  float64

	// activations is a LIFO stack; it must be empty at the end of layout.
	activations []*activationRecord
}

func (p *participant) active() bool { return len(p.activations) > 0 }

func (p *participant) top() *activationRecord {
	return p.activations[len(p.activations)-1]
}

// registry is the ordered collection of declared participants. Horizontal
// positions are assigned once at declaration time: each lifeline starts at
// the previous one's right edge plus the spacing in effect.
type registry struct {
	doc     resolver
	byName  map[string]*participant
	order   []*participant
	endX    float64
	width   float64
	spacing float64
}

type resolver interface {
	NewLifeline(label string) Lifeline
}

func newRegistry(doc resolver, width, spacing float64) *registry {
	return &registry{
		doc:     doc,
		byName:  make(map[string]*participant),
		width:   width,
		spacing: spacing,
	}
}

// declare registers a new participant and assigns its lifeline geometry.
// widthOverride and spacingOverride replace the registry defaults for this
// participant when positive.
func (r *registry) declare(name, text string, widthOverride, spacingOverride float64) (*participant, error) {
	if _, ok := r.byName[name]; ok {
		return nil, errors.New(errors.ErrCodeDuplicateParticipant, "participant already exists: %s", name)
	}

	width := r.width
	if widthOverride > 0 {
		width = widthOverride
	}
	spacing := r.spacing
	if spacingOverride > 0 {
		spacing = spacingOverride
	}

	x := 0.0
	if len(r.order) > 0 {
		x = r.endX + spacing
	}

	lifeline := r.doc.NewLifeline(text)
	lifeline.SetBounds(x, width)

	p := &participant{
		index:    len(r.order),
		name:     name,
		lifeline: lifeline,
		centerX:  x + width/2,
	}
	r.byName[name] = p
	r.order = append(r.order, p)
	r.endX = x + width

	return p, nil
}

// lookup resolves a participant by name.
func (r *registry) lookup(name string) (*participant, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownParticipant, "unknown participant: %s", name)
	}
	return p, nil
}
