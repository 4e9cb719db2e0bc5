package rupture

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrEmptyCluster is returned when a cluster has no subsections
	ErrEmptyCluster = errors.New("cluster has no subsections")
	// ErrBadJump is returned when a jump does not leave from the named cluster or land on the new one
	ErrBadJump = errors.New("jump does not join the given clusters")
)

// Cluster is an ordered run of subsections from one parent.
type Cluster struct {
	ParentID int
	Sections []int
}

// NewCluster creates a cluster; the section slice is copied.
func NewCluster(parentID int, sections ...int) Cluster {
	return Cluster{ParentID: parentID, Sections: slices.Clone(sections)}
}

// First returns the first subsection id
func (c Cluster) First() int { return c.Sections[0] }

// Last returns the last subsection id
func (c Cluster) Last() int { return c.Sections[len(c.Sections)-1] }

// Len returns the number of subsections
func (c Cluster) Len() int { return len(c.Sections) }

// Contains reports whether id is in the cluster
func (c Cluster) Contains(id int) bool {
	return slices.Contains(c.Sections, id)
}

// Jump joins two clusters of a rupture at a connection.
type Jump struct {
	From        int // subsection id
	To          int // subsection id
	FromCluster int // arena index
	ToCluster   int // arena index
	Distance    float64
}

// ClusterRupture is a candidate or accepted rupture: clusters joined by jumps.
//
// Clusters live in an arena addressed by index. The primary strand is the
// ordered chain grown from the first cluster; each splay is a further chain
// that branches off a cluster already in the rupture. parent maps every
// non-root cluster index to the index of the cluster it jumped from.
//
// A ClusterRupture is never mutated after construction. Extend and Splay return
// new values that share no slices with the receiver.
type ClusterRupture struct {
	clusters []Cluster
	parent   []int // -1 for the root
	jumps    []Jump
	primary  []int
	splays   [][]int
}

// New starts a rupture from a single cluster
func New(c Cluster) (*ClusterRupture, error) {
	if len(c.Sections) == 0 {
		return nil, ErrEmptyCluster
	}
	return &ClusterRupture{
		clusters: []Cluster{NewCluster(c.ParentID, c.Sections...)},
		parent:   []int{-1},
		primary:  []int{0},
	}, nil
}

func (r *ClusterRupture) clone() *ClusterRupture {
	out := &ClusterRupture{
		clusters: slices.Clone(r.clusters),
		parent:   slices.Clone(r.parent),
		jumps:    slices.Clone(r.jumps),
		primary:  slices.Clone(r.primary),
		splays:   make([][]int, len(r.splays)),
	}
	for i, s := range r.splays {
		out.splays[i] = slices.Clone(s)
	}
	return out
}

func (r *ClusterRupture) attach(fromCluster, fromSection, toSection int, distance float64, c Cluster) (*ClusterRupture, int, error) {
	if len(c.Sections) == 0 {
		return nil, 0, ErrEmptyCluster
	}
	if fromCluster < 0 || fromCluster >= len(r.clusters) || !r.clusters[fromCluster].Contains(fromSection) || c.First() != toSection {
		return nil, 0, fmt.Errorf("%w: %d->%d", ErrBadJump, fromSection, toSection)
	}
	out := r.clone()
	ix := len(out.clusters)
	out.clusters = append(out.clusters, NewCluster(c.ParentID, c.Sections...))
	out.parent = append(out.parent, fromCluster)
	out.jumps = append(out.jumps, Jump{
		From:        fromSection,
		To:          toSection,
		FromCluster: fromCluster,
		ToCluster:   ix,
		Distance:    distance,
	})
	return out, ix, nil
}

// Extend appends cluster c to the end of the primary strand, jumping from the last
// subsection of the current last cluster. c must start at toSection.
func (r *ClusterRupture) Extend(toSection int, distance float64, c Cluster) (*ClusterRupture, error) {
	last := r.primary[len(r.primary)-1]
	out, ix, err := r.attach(last, r.clusters[last].Last(), toSection, distance, c)
	if err != nil {
		return nil, err
	}
	out.primary = append(out.primary, ix)
	return out, nil
}

// Splay starts a new branch at cluster index fromCluster, jumping from fromSection.
func (r *ClusterRupture) Splay(fromCluster, fromSection, toSection int, distance float64, c Cluster) (*ClusterRupture, error) {
	out, ix, err := r.attach(fromCluster, fromSection, toSection, distance, c)
	if err != nil {
		return nil, err
	}
	out.splays = append(out.splays, []int{ix})
	return out, nil
}

// Cluster returns the cluster at arena index i
func (r *ClusterRupture) Cluster(i int) Cluster {
	return r.clusters[i]
}

// Parent returns the arena index of the cluster that i jumped from, or -1 for the root.
func (r *ClusterRupture) Parent(i int) int {
	return r.parent[i]
}

// Primary returns the clusters of the primary strand in order
func (r *ClusterRupture) Primary() []Cluster {
	out := make([]Cluster, len(r.primary))
	for i, ix := range r.primary {
		out[i] = r.clusters[ix]
	}
	return out
}

// Splays returns each splay's clusters in order
func (r *ClusterRupture) Splays() [][]Cluster {
	out := make([][]Cluster, len(r.splays))
	for i, s := range r.splays {
		out[i] = make([]Cluster, len(s))
		for j, ix := range s {
			out[i][j] = r.clusters[ix]
		}
	}
	return out
}

// NumSplays returns the number of splays
func (r *ClusterRupture) NumSplays() int {
	return len(r.splays)
}

// Jumps returns every jump in the order they were added
func (r *ClusterRupture) Jumps() []Jump {
	return r.jumps
}

// NumClusters returns the number of clusters, splays included
func (r *ClusterRupture) NumClusters() int {
	return len(r.clusters)
}

// FirstCluster returns the root cluster
func (r *ClusterRupture) FirstCluster() Cluster {
	return r.clusters[r.primary[0]]
}

// LastCluster returns the last cluster of the primary strand
func (r *ClusterRupture) LastCluster() Cluster {
	return r.clusters[r.primary[len(r.primary)-1]]
}

// Sections returns the flattened ordered subsection ids: the primary strand
// followed by each splay.
func (r *ClusterRupture) Sections() []int {
	n := 0
	for _, c := range r.clusters {
		n += len(c.Sections)
	}
	out := make([]int, 0, n)
	for _, ix := range r.primary {
		out = append(out, r.clusters[ix].Sections...)
	}
	for _, s := range r.splays {
		for _, ix := range s {
			out = append(out, r.clusters[ix].Sections...)
		}
	}
	return out
}

// PrimarySections returns the ordered subsection ids of the primary strand only.
func (r *ClusterRupture) PrimarySections() []int {
	var out []int
	for _, ix := range r.primary {
		out = append(out, r.clusters[ix].Sections...)
	}
	return out
}

// NumSections returns the total subsection count
func (r *ClusterRupture) NumSections() int {
	n := 0
	for _, c := range r.clusters {
		n += len(c.Sections)
	}
	return n
}

// ContainsParent reports whether any cluster belongs to parentID
func (r *ClusterRupture) ContainsParent(parentID int) bool {
	for _, c := range r.clusters {
		if c.ParentID == parentID {
			return true
		}
	}
	return false
}

// ContainsSection reports whether subsection id is in the rupture
func (r *ClusterRupture) ContainsSection(id int) bool {
	for _, c := range r.clusters {
		if c.Contains(id) {
			return true
		}
	}
	return false
}

// ParentIDs returns the distinct parent ids in cluster order
func (r *ClusterRupture) ParentIDs() []int {
	out := make([]int, 0, len(r.clusters))
	for _, c := range r.clusters {
		if !slices.Contains(out, c.ParentID) {
			out = append(out, c.ParentID)
		}
	}
	return out
}

// Key identifies the rupture by its subsection set, independent of order.
func (r *ClusterRupture) Key() string {
	return KeyOf(r.Sections())
}

// KeyOf returns the order-independent key of a subsection list
func KeyOf(ids []int) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	var b strings.Builder
	for i, id := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// String renders the rupture as parent[sections] groups joined by jumps
func (r *ClusterRupture) String() string {
	var b strings.Builder
	for i, c := range r.Primary() {
		if i > 0 {
			b.WriteString(" -> ")
		}
		fmt.Fprintf(&b, "%d%v", c.ParentID, c.Sections)
	}
	for _, s := range r.Splays() {
		b.WriteString(" | splay ")
		for i, c := range s {
			if i > 0 {
				b.WriteString(" -> ")
			}
			fmt.Fprintf(&b, "%d%v", c.ParentID, c.Sections)
		}
	}
	return b.String()
}
