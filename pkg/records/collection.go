package records

// Collection is a thin ordered sequence of records.
type Collection []*Record

// Len returns the number of records.
func (c Collection) Len() int { return len(c) }

// Append returns the collection with r added at the end.
func (c Collection) Append(r *Record) Collection { return append(c, r) }

// Maps converts the collection to plain maps, losing field order.
func (c Collection) Maps() []map[string]any {
	out := make([]map[string]any, len(c))
	for i, r := range c {
		out[i] = r.Map()
	}
	return out
}

// IsSequence reports whether data is a sequence of keyed mappings, i.e.
// something the optimizer can treat as records. It is the precondition gate
// consulted before any transformation runs; callers feeding anything else get
// an empty result rather than an error.
//
// Accepted shapes: Collection, []*Record, []map[string]any, and []any whose
// elements are all *Record or map[string]any. Empty slices qualify.
func IsSequence(data any) bool {
	switch d := data.(type) {
	case Collection, []*Record, []map[string]any:
		return true
	case []any:
		for _, el := range d {
			switch el.(type) {
			case *Record, map[string]any:
			default:
				return false
			}
		}
		return true
	default:
		return false
	}
}

// AsCollection converts any accepted record-sequence shape into a Collection.
// The second result is false when data is not a record sequence. Maps are
// converted with FromMap; records are referenced as-is (the optimizer clones
// before mutating).
func AsCollection(data any) (Collection, bool) {
	switch d := data.(type) {
	case Collection:
		return d, true
	case []*Record:
		return Collection(d), true
	case []map[string]any:
		out := make(Collection, len(d))
		for i, m := range d {
			out[i] = FromMap(m)
		}
		return out, true
	case []any:
		out := make(Collection, 0, len(d))
		for _, el := range d {
			switch e := el.(type) {
			case *Record:
				out = append(out, e)
			case map[string]any:
				out = append(out, FromMap(e))
			default:
				return nil, false
			}
		}
		return out, true
	default:
		return nil, false
	}
}
