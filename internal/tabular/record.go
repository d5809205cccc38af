package tabular

// =============================================================================
// HEADER SET
// =============================================================================

// Header is the ordered set of column names read from the first row.
// Duplicate names are allowed; lookups resolve to the last occurrence.
type Header struct {
	names []string
	index map[string]int
}

func newHeader(names []string) *Header {
	h := &Header{
		names: names,
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		h.index[name] = i
	}
	return h
}

// Names returns a copy of the column names in file order.
func (h *Header) Names() []string {
	return append([]string(nil), h.names...)
}

// Len returns the number of columns, duplicates included.
func (h *Header) Len() int {
	return len(h.names)
}

// Index returns the position of the named column.
func (h *Header) Index(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}

// Contains reports whether the named column is present.
func (h *Header) Contains(name string) bool {
	_, ok := h.index[name]
	return ok
}

// ContainsAll reports whether every named column is present.
func (h *Header) ContainsAll(names ...string) bool {
	for _, name := range names {
		if !h.Contains(name) {
			return false
		}
	}
	return true
}

// =============================================================================
// RECORD
// =============================================================================

// Record is a single parsed data row.
//
// A column is "set" when the header names it and the row is long enough to
// hold a value for it. A set value may still be empty.
type Record struct {
	header     *Header
	values     []string
	terminated bool
}

// Get returns the value of the named column and whether it is set.
func (r *Record) Get(name string) (string, bool) {
	i, ok := r.header.Index(name)
	if !ok || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

// IsSet reports whether the named column has a value in this row.
func (r *Record) IsSet(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Value returns the value of the named column, or "" when it is not set.
func (r *Record) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// Values returns a copy of the raw values in column order.
func (r *Record) Values() []string {
	return append([]string(nil), r.values...)
}

// Len returns the number of values in the row.
func (r *Record) Len() int {
	return len(r.values)
}

// Terminated reports whether the record was followed by a line terminator.
// Only the last record of a stream can be unterminated.
func (r *Record) Terminated() bool {
	return r.terminated
}
