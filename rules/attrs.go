package rules

import (
	"reflect"

	"dario.cat/mergo"
)

// AttributeStore is a generic string-keyed bag of arbitrary values. It is the
// side channel for run parameters that do not belong to a single field rule.
// Absence is never an error: Get returns nil and Has returns false for
// unknown keys.
type AttributeStore struct {
	attrs map[string]any
}

func (s *AttributeStore) init() {
	if s.attrs == nil {
		s.attrs = map[string]any{}
	}
}

// Set stores value under key, replacing any previous value.
func (s *AttributeStore) Set(key string, value any) {
	s.init()
	s.attrs[key] = value
}

// SetAll stores every key/value pair from m, replacing existing values.
func (s *AttributeStore) SetAll(m map[string]any) {
	s.init()
	for k, v := range m {
		s.attrs[k] = v
	}
}

// Merge folds m into the store with existing keys winning over incoming
// ones. Presence decides, not value: a key holding "" or 0 still wins.
// Incoming keys are filtered first because mergo treats zero values as
// absent, which would let incoming values clobber them.
func (s *AttributeStore) Merge(m map[string]any) error {
	s.init()
	incoming := make(map[string]any, len(m))
	for k, v := range m {
		if _, exists := s.attrs[k]; !exists {
			incoming[k] = v
		}
	}
	return mergo.Merge(&s.attrs, incoming)
}

// Append pushes one item onto the list stored under key. A missing key starts
// a new list; a non-list value is replaced by a list seeded with that value.
func (s *AttributeStore) Append(key string, item any) {
	s.init()
	switch cur := s.attrs[key].(type) {
	case nil:
		s.attrs[key] = []any{item}
	case []any:
		s.attrs[key] = append(cur, item)
	default:
		s.attrs[key] = []any{cur, item}
	}
}

// Get returns the value stored under key, or nil when absent.
func (s *AttributeStore) Get(key string) any {
	return s.attrs[key]
}

// Has reports whether key is present.
func (s *AttributeStore) Has(key string) bool {
	_, ok := s.attrs[key]
	return ok
}

// RemoveItem filters the given item out of the list stored under key and
// reassigns the filtered list. It is a no-op when the key is absent or not
// list-valued. Items compare by reflect.DeepEqual so composite values (maps,
// slices) are removable too.
func (s *AttributeStore) RemoveItem(key string, item any) {
	list, ok := s.attrs[key].([]any)
	if !ok {
		return
	}
	out := list[:0]
	for _, el := range list {
		if reflect.DeepEqual(el, item) {
			continue
		}
		out = append(out, el)
	}
	s.attrs[key] = out
}
