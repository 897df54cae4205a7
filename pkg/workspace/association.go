// Root/reference association: a many-to-many edge set stored in one
// bidirectional index. Entities never point at each other.
package workspace

import "sort"

// Edge links a root to a reference.
type Edge struct {
	RootID string
	RefID  string
}

// Links is the bidirectional edge index owned by a workspace. Each
// (root, reference) pair appears at most once.
type Links struct {
	byRoot map[string]map[string]struct{}
	byRef  map[string]map[string]struct{}
	n      int
}

// NewLinks returns an empty index.
func NewLinks() *Links {
	return &Links{
		byRoot: make(map[string]map[string]struct{}),
		byRef:  make(map[string]map[string]struct{}),
	}
}

// Add inserts the edge. Reports false if it was already present.
func (l *Links) Add(rootID, refID string) bool {
	if l.Has(rootID, refID) {
		return false
	}
	if l.byRoot[rootID] == nil {
		l.byRoot[rootID] = make(map[string]struct{})
	}
	if l.byRef[refID] == nil {
		l.byRef[refID] = make(map[string]struct{})
	}
	l.byRoot[rootID][refID] = struct{}{}
	l.byRef[refID][rootID] = struct{}{}
	l.n++
	return true
}

// Remove deletes the edge. Reports false if it was absent.
func (l *Links) Remove(rootID, refID string) bool {
	if !l.Has(rootID, refID) {
		return false
	}
	delete(l.byRoot[rootID], refID)
	if len(l.byRoot[rootID]) == 0 {
		delete(l.byRoot, rootID)
	}
	delete(l.byRef[refID], rootID)
	if len(l.byRef[refID]) == 0 {
		delete(l.byRef, refID)
	}
	l.n--
	return true
}

// Has reports whether the edge exists.
func (l *Links) Has(rootID, refID string) bool {
	_, ok := l.byRoot[rootID][refID]
	return ok
}

// RefsOf returns the references linked to a root, sorted.
func (l *Links) RefsOf(rootID string) []string {
	return sortedKeys(l.byRoot[rootID])
}

// RootsOf returns the roots linked to a reference, sorted.
func (l *Links) RootsOf(refID string) []string {
	return sortedKeys(l.byRef[refID])
}

// DropRoot removes every edge of a root and returns how many were removed.
func (l *Links) DropRoot(rootID string) int {
	n := 0
	for _, ref := range l.RefsOf(rootID) {
		if l.Remove(rootID, ref) {
			n++
		}
	}
	return n
}

// DropRef removes every edge of a reference and returns how many were removed.
func (l *Links) DropRef(refID string) int {
	n := 0
	for _, root := range l.RootsOf(refID) {
		if l.Remove(root, refID) {
			n++
		}
	}
	return n
}

// Len returns the number of edges.
func (l *Links) Len() int { return l.n }

// Edges returns every edge sorted by root then reference.
func (l *Links) Edges() []Edge {
	out := make([]Edge, 0, l.n)
	for _, root := range sortedKeys(l.byRoot) {
		for _, ref := range sortedKeys(l.byRoot[root]) {
			out = append(out, Edge{RootID: root, RefID: ref})
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
