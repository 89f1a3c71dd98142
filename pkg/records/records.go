// Package records defines the in-memory record model shared by the rule
// engine and the surrounding tooling.
//
// A Record is an *ordered* mapping from field name to value. Field order is
// load-bearing for this project: the optimizer's final reordering step and
// the "natural insertion order" contract both require that a record remembers
// the order in which fields were set, which a plain Go map cannot do. The
// implementation is backed by wk8/go-ordered-map so that Set on an existing
// field keeps its position while Set on a new field appends it.
//
// Values are dynamically typed: string, number, bool, slice, map, or nested
// combinations thereof (the shapes produced by decoding JSON).
package records

import (
	"sort"

	json "github.com/goccy/go-json"
	"github.com/mohae/deepcopy"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is one ordered field -> value mapping; the unit of transformation.
type Record struct {
	om *orderedmap.OrderedMap[string, any]
}

// New returns an empty record.
func New() *Record {
	return &Record{om: orderedmap.New[string, any]()}
}

// FromMap builds a record from a plain map. Go maps have no iteration order,
// so fields are inserted in sorted key order to keep the result deterministic.
func FromMap(m map[string]any) *Record {
	r := &Record{om: orderedmap.New[string, any](orderedmap.WithCapacity[string, any](len(m)))}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.om.Set(k, m[k])
	}
	return r
}

// Set stores value under field. An existing field keeps its position; a new
// field is appended after all current fields.
func (r *Record) Set(field string, value any) {
	r.om.Set(field, value)
}

// Get returns the value stored under field, or nil when absent.
func (r *Record) Get(field string) any {
	v, _ := r.om.Get(field)
	return v
}

// Lookup returns the value stored under field and whether it is present.
func (r *Record) Lookup(field string) (any, bool) {
	return r.om.Get(field)
}

// Has reports whether field is present.
func (r *Record) Has(field string) bool {
	_, ok := r.om.Get(field)
	return ok
}

// Delete removes field and reports whether it was present.
func (r *Record) Delete(field string) bool {
	_, ok := r.om.Delete(field)
	return ok
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return r.om.Len()
}

// Fields returns the field names in record order. The returned slice is a
// snapshot; mutating the record afterwards does not affect it.
func (r *Record) Fields() []string {
	out := make([]string, 0, r.om.Len())
	for p := r.om.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Clone returns a deep copy of the record: field order is preserved and
// composite values (slices, maps) are copied so that mutating the clone never
// leaks into the original.
func (r *Record) Clone() *Record {
	out := &Record{om: orderedmap.New[string, any](orderedmap.WithCapacity[string, any](r.om.Len()))}
	for p := r.om.Oldest(); p != nil; p = p.Next() {
		out.om.Set(p.Key, deepcopy.Copy(p.Value))
	}
	return out
}

// Map returns the record as a plain map. Field order is lost; use Fields to
// retain it.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, r.om.Len())
	for p := r.om.Oldest(); p != nil; p = p.Next() {
		out[p.Key] = p.Value
	}
	return out
}

// Reorder rearranges fields to match the given order: listed fields first, in
// list order, then any remaining fields after them in their original relative
// order (a stable sort where missing fields rank last). Unknown names in the
// order list are ignored. Applying the same order twice is a no-op.
func (r *Record) Reorder(order []string) {
	if len(order) == 0 || r.om.Len() == 0 {
		return
	}
	rank := make(map[string]int, len(order))
	for i, f := range order {
		if _, seen := rank[f]; !seen {
			rank[f] = i
		}
	}
	fields := r.Fields()
	sort.SliceStable(fields, func(i, j int) bool {
		ri, iok := rank[fields[i]]
		rj, jok := rank[fields[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok:
			return true
		case jok:
			return false
		default:
			return false
		}
	})
	rebuilt := orderedmap.New[string, any](orderedmap.WithCapacity[string, any](len(fields)))
	for _, f := range fields {
		v, _ := r.om.Get(f)
		rebuilt.Set(f, v)
	}
	r.om = rebuilt
}

// MarshalJSON encodes the record as a JSON object whose keys appear in record
// order.
func (r *Record) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	first := true
	for p := r.om.Oldest(); p != nil; p = p.Next() {
		if !first {
			buf = append(buf, ',')
		}
		first = false
		k, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}

// UnmarshalJSON decodes a JSON object into the record, preserving the key
// order of the document.
func (r *Record) UnmarshalJSON(data []byte) error {
	om := orderedmap.New[string, any]()
	if err := om.UnmarshalJSON(data); err != nil {
		return err
	}
	r.om = om
	return nil
}
