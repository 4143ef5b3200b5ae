package collector

// Entry is one name→id pair in fetch order.
type Entry struct {
	Name string
	ID   int64
}

// Mapping is the accumulated name→id result of a collection run.
// Iteration order follows fetch order. Names are assumed unique upstream;
// when they are not, the last occurrence wins and the original position in
// the order is kept.
//
// A Mapping is owned by a single run and is not safe for concurrent use.
type Mapping struct {
	ids   map[string]int64
	order []string
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{
		ids: make(map[string]int64),
	}
}

// Set records a name→id pair. Existing names are overwritten in place
// (last-write-wins) without changing their position.
func (m *Mapping) Set(name string, id int64) {
	if _, seen := m.ids[name]; !seen {
		m.order = append(m.order, name)
	}
	m.ids[name] = id
}

// Get returns the id for a name.
func (m *Mapping) Get(name string) (int64, bool) {
	id, ok := m.ids[name]
	return id, ok
}

// Len returns the number of unique names collected.
func (m *Mapping) Len() int {
	return len(m.order)
}

// Entries returns all pairs in fetch order.
func (m *Mapping) Entries() []Entry {
	entries := make([]Entry, 0, len(m.order))
	for _, name := range m.order {
		entries = append(entries, Entry{Name: name, ID: m.ids[name]})
	}
	return entries
}

// Sample returns up to n pairs from the front of the fetch order.
// A non-positive n yields an empty slice.
func (m *Mapping) Sample(n int) []Entry {
	if n < 0 {
		n = 0
	}
	if n > len(m.order) {
		n = len(m.order)
	}
	entries := make([]Entry, 0, n)
	for _, name := range m.order[:n] {
		entries = append(entries, Entry{Name: name, ID: m.ids[name]})
	}
	return entries
}

// Equal reports whether two mappings hold the same pairs, ignoring order.
func (m *Mapping) Equal(other *Mapping) bool {
	if other == nil || len(m.ids) != len(other.ids) {
		return false
	}
	for name, id := range m.ids {
		otherID, ok := other.ids[name]
		if !ok || otherID != id {
			return false
		}
	}
	return true
}
