package domain

// Entry is a single validated form value.
type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Record is an ordered mapping of field name to validated value.
// Order follows the form schema.
type Record []Entry

// Get returns the value stored under name.
func (r Record) Get(name string) (string, bool) {
	for _, e := range r {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// With returns a copy of r with name set to value. An existing entry keeps
// its position; a new entry is appended.
func (r Record) With(name, value string) Record {
	out := r.Clone()
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Entry{Name: name, Value: value})
}

// Clone returns an independent copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// Equal reports whether both records hold the same entries in the same order.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}
