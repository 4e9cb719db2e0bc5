package faults

import (
	"fmt"
)

// ParentInfo summarises the subsections contributed by one parent.
type ParentInfo struct {
	ID    int
	Name  string
	First int // first subsection id
	Count int
}

// SectionList is the immutable subsection collection for a run.
// Ids are contiguous, so lookups by id are slice indexing.
type SectionList struct {
	base     int
	sections []Subsection
	parents  []ParentInfo
	parentIx map[int]int // parent id -> index into parents
	grids    map[int]*DownDipGrid
}

// NewSectionList validates that subs have contiguous, parent-ordered ids and indexes them.
// Grids are attached to the parents they were built for.
func NewSectionList(subs []Subsection, grids ...*DownDipGrid) (*SectionList, error) {
	l := &SectionList{
		sections: subs,
		parentIx: make(map[int]int),
		grids:    make(map[int]*DownDipGrid),
	}
	if len(subs) == 0 {
		return l, nil
	}
	l.base = subs[0].ID

	for i := range subs {
		s := &subs[i]
		if s.ID != l.base+i {
			return nil, fmt.Errorf("%w: index %d has id %d, expected %d", ErrNonContiguousIDs, i, s.ID, l.base+i)
		}
		ix, seen := l.parentIx[s.ParentID]
		if !seen {
			l.parentIx[s.ParentID] = len(l.parents)
			l.parents = append(l.parents, ParentInfo{ID: s.ParentID, Name: s.ParentName, First: s.ID, Count: 1})
			continue
		}
		if ix != len(l.parents)-1 {
			return nil, fmt.Errorf("%w: parent %d subsections are interleaved with another parent at id %d", ErrNonContiguousIDs, s.ParentID, s.ID)
		}
		l.parents[ix].Count++
	}

	for _, g := range grids {
		if g == nil {
			continue
		}
		if _, ok := l.parentIx[g.ParentID]; !ok {
			return nil, fmt.Errorf("%w: grid parent %d has no subsections", ErrUnknownSection, g.ParentID)
		}
		l.grids[g.ParentID] = g
	}
	return l, nil
}

// Len returns the number of subsections
func (l *SectionList) Len() int {
	return len(l.sections)
}

// SafeID returns the first id not used by this list
func (l *SectionList) SafeID() int {
	return l.base + len(l.sections)
}

// Get returns the subsection with the given id
func (l *SectionList) Get(id int) (*Subsection, error) {
	ix := id - l.base
	if ix < 0 || ix >= len(l.sections) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSection, id)
	}
	return &l.sections[ix], nil
}

// Section returns the subsection with the given id; it panics on an unknown id.
// Use it only with ids that came from this list.
func (l *SectionList) Section(id int) *Subsection {
	return &l.sections[id-l.base]
}

// ParentOf returns the parent id of subsection id
func (l *SectionList) ParentOf(id int) int {
	return l.sections[id-l.base].ParentID
}

// All returns every subsection in id order. The slice must not be modified.
func (l *SectionList) All() []Subsection {
	return l.sections
}

// Parents returns parent summaries in subsection-id order
func (l *SectionList) Parents() []ParentInfo {
	return l.parents
}

// Parent returns the summary for a parent id
func (l *SectionList) Parent(parentID int) (ParentInfo, bool) {
	ix, ok := l.parentIx[parentID]
	if !ok {
		return ParentInfo{}, false
	}
	return l.parents[ix], true
}

// ParentSectionIDs returns the subsection ids of a parent in trace order.
func (l *SectionList) ParentSectionIDs(parentID int) []int {
	p, ok := l.Parent(parentID)
	if !ok {
		return nil
	}
	ids := make([]int, p.Count)
	for i := range ids {
		ids[i] = p.First + i
	}
	return ids
}

// Grid returns the down-dip grid backing a parent, or nil for trace-based parents.
func (l *SectionList) Grid(parentID int) *DownDipGrid {
	return l.grids[parentID]
}

// IsGridParent reports whether parentID is a down-dip grid
func (l *SectionList) IsGridParent(parentID int) bool {
	_, ok := l.grids[parentID]
	return ok
}

// Grids returns every attached grid
func (l *SectionList) Grids() []*DownDipGrid {
	out := make([]*DownDipGrid, 0, len(l.grids))
	for _, p := range l.parents {
		if g, ok := l.grids[p.ID]; ok {
			out = append(out, g)
		}
	}
	return out
}
