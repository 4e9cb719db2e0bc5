package faults

import (
	"fmt"
	"math"
)

const (
	// DefaultLengthFraction is the subsection length as a fraction of down-dip width.
	DefaultLengthFraction = 0.5
	// DefaultMinSubsections is the floor on subsections per parent.
	DefaultMinSubsections = 2
)

// IDAllocator hands out contiguous subsection ids.
// A single allocator is threaded through every subsectioning call of a run.
type IDAllocator struct {
	next int
}

// NewIDAllocator creates an allocator whose first id is start
func NewIDAllocator(start int) *IDAllocator {
	return &IDAllocator{next: start}
}

// Next returns the next free id and advances the allocator
func (a *IDAllocator) Next() int {
	id := a.next
	a.next++
	return id
}

// Peek returns the next free id without consuming it
func (a *IDAllocator) Peek() int {
	return a.next
}

// Subdivide splits parent into equal-length subsections no longer than maxLength km.
// At least minCount subsections are produced even when the trace is shorter than
// minCount*maxLength; this is a hard floor on the count, so the subsections shrink.
// Ids are taken from alloc in trace order.
func Subdivide(parent FaultSection, maxLength float64, minCount int, alloc *IDAllocator) ([]Subsection, error) {
	if len(parent.Trace) < 2 {
		return nil, fmt.Errorf("%w: parent %d (%s) trace has %d points", ErrInvalidGeometry, parent.ID, parent.Name, len(parent.Trace))
	}
	traceLength := parent.Trace.Length()
	if traceLength <= 0 || math.IsNaN(traceLength) {
		return nil, fmt.Errorf("%w: parent %d (%s) has zero-length trace", ErrInvalidGeometry, parent.ID, parent.Name)
	}
	if parent.DownDipWidth <= 0 || math.IsNaN(parent.DownDipWidth) || math.IsInf(parent.DownDipWidth, 0) {
		return nil, fmt.Errorf("%w: parent %d (%s) has undefined down-dip width %v", ErrInvalidGeometry, parent.ID, parent.Name, parent.DownDipWidth)
	}
	if maxLength <= 0 || math.IsNaN(maxLength) {
		return nil, fmt.Errorf("%w: parent %d (%s) max subsection length %v", ErrInvalidGeometry, parent.ID, parent.Name, maxLength)
	}
	if minCount < 1 {
		minCount = 1
	}

	count := int(math.Ceil(traceLength / maxLength))
	if count < minCount {
		count = minCount
	}

	traces, err := parent.Trace.Split(count)
	if err != nil {
		return nil, fmt.Errorf("%w: parent %d (%s): %v", ErrInvalidGeometry, parent.ID, parent.Name, err)
	}

	subs := make([]Subsection, 0, count)
	for i, tr := range traces {
		orig, reduced := areas(tr.Length(), parent.DownDipWidth, parent.Aseismicity)
		subs = append(subs, Subsection{
			ID:           alloc.Next(),
			ParentID:     parent.ID,
			ParentName:   parent.Name,
			Name:         fmt.Sprintf("%s, Subsection %d", parent.Name, i),
			Index:        i,
			Trace:        tr,
			Dip:          parent.Dip,
			DownDipWidth: parent.DownDipWidth,
			SlipRate:     parent.SlipRate,
			Rake:         parent.Rake,
			Aseismicity:  parent.Aseismicity,
			AreaOriginal: orig,
			AreaReduced:  reduced,
		})
	}
	return subs, nil
}

// SubdivideAll subdivides every parent in order with maxLength = downDipWidth * lengthFraction.
// It stops at the first parent with invalid geometry.
func SubdivideAll(parents []FaultSection, lengthFraction float64, minCount int, alloc *IDAllocator) ([]Subsection, error) {
	all := make([]Subsection, 0, len(parents)*minCount)
	for _, p := range parents {
		subs, err := Subdivide(p, p.DownDipWidth*lengthFraction, minCount, alloc)
		if err != nil {
			return nil, err
		}
		all = append(all, subs...)
	}
	return all, nil
}
