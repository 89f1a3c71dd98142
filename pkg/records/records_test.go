package records

import (
	"reflect"
	"testing"
)

/*
TestRecord_SetPreservesOrder verifies that newly set fields append at the end
while updating an existing field keeps its original position.
*/
func TestRecord_SetPreservesOrder(t *testing.T) {
	r := New()
	r.Set("a", 1)
	r.Set("b", 2)
	r.Set("c", 3)
	r.Set("b", 20) // update in place

	want := []string{"a", "b", "c"}
	if got := r.Fields(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Fields() = %v; want %v", got, want)
	}
	if got := r.Get("b"); got != 20 {
		t.Fatalf("Get(b) = %v; want 20", got)
	}
}

/*
TestRecord_GetAbsent verifies that absent fields read as nil without error and
that Lookup distinguishes nil values from absence.
*/
func TestRecord_GetAbsent(t *testing.T) {
	r := New()
	r.Set("present", nil)

	if got := r.Get("missing"); got != nil {
		t.Fatalf("Get(missing) = %v; want nil", got)
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Fatalf("Lookup(missing) reported present")
	}
	if _, ok := r.Lookup("present"); !ok {
		t.Fatalf("Lookup(present) reported absent despite nil value")
	}
}

/*
TestRecord_CloneIsDeep verifies that Clone copies composite values so that
mutating a clone's nested slice does not leak into the original.
*/
func TestRecord_CloneIsDeep(t *testing.T) {
	r := New()
	r.Set("tags", []any{"a", "b"})
	r.Set("n", 1)

	c := r.Clone()
	c.Set("n", 2)
	c.Get("tags").([]any)[0] = "mutated"

	if got := r.Get("n"); got != 1 {
		t.Fatalf("original n = %v after clone mutation; want 1", got)
	}
	if got := r.Get("tags").([]any)[0]; got != "a" {
		t.Fatalf("original tags[0] = %v after clone mutation; want a", got)
	}
	if !reflect.DeepEqual(c.Fields(), r.Fields()) {
		t.Fatalf("clone field order %v != original %v", c.Fields(), r.Fields())
	}
}

/*
TestRecord_Delete verifies removal semantics and the reported presence flag.
*/
func TestRecord_Delete(t *testing.T) {
	r := New()
	r.Set("a", 1)
	if !r.Delete("a") {
		t.Fatalf("Delete(a) = false; want true")
	}
	if r.Delete("a") {
		t.Fatalf("second Delete(a) = true; want false")
	}
	if r.Len() != 0 {
		t.Fatalf("Len() = %d; want 0", r.Len())
	}
}

/*
TestRecord_Reorder verifies that listed fields come first in list order,
unlisted fields keep their relative order after them, and that reordering is
idempotent.
*/
func TestRecord_Reorder(t *testing.T) {
	r := New()
	r.Set("c", 3)
	r.Set("a", 1)
	r.Set("x", 24)
	r.Set("b", 2)

	r.Reorder([]string{"a", "b", "missing"})
	want := []string{"a", "b", "c", "x"}
	if got := r.Fields(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after Reorder: %v; want %v", got, want)
	}

	r.Reorder([]string{"a", "b", "missing"})
	if got := r.Fields(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Reorder not idempotent: %v; want %v", got, want)
	}
}

/*
TestRecord_JSONRoundTrip verifies that marshaling preserves field order and
that unmarshaling restores the document's key order.
*/
func TestRecord_JSONRoundTrip(t *testing.T) {
	r := New()
	r.Set("z", "last?")
	r.Set("a", float64(1))

	b, err := r.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if got, want := string(b), `{"z":"last?","a":1}`; got != want {
		t.Fatalf("MarshalJSON = %s; want %s", got, want)
	}

	var back Record
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if got := back.Fields(); !reflect.DeepEqual(got, []string{"z", "a"}) {
		t.Fatalf("unmarshaled order = %v; want [z a]", got)
	}
}

/*
TestFromMap_Deterministic verifies that building from a plain map always yields
sorted field order, making downstream output reproducible.
*/
func TestFromMap_Deterministic(t *testing.T) {
	m := map[string]any{"b": 2, "a": 1, "c": 3}
	for i := 0; i < 10; i++ {
		r := FromMap(m)
		if got := r.Fields(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
			t.Fatalf("FromMap order = %v; want [a b c]", got)
		}
	}
}

/*
TestIsSequence enumerates accepted and rejected input shapes for the
record-sequence precondition gate.
*/
func TestIsSequence(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want bool
	}{
		{"collection", Collection{New()}, true},
		{"record slice", []*Record{New()}, true},
		{"map slice", []map[string]any{{"a": 1}}, true},
		{"any slice of maps", []any{map[string]any{"a": 1}}, true},
		{"empty any slice", []any{}, true},
		{"scalar slice", []any{1, 2, 3}, false},
		{"string", "nope", false},
		{"nil", nil, false},
		{"flat map", map[string]any{"a": 1}, false},
	}
	for _, tc := range cases {
		if got := IsSequence(tc.in); got != tc.want {
			t.Errorf("%s: IsSequence = %v; want %v", tc.name, got, tc.want)
		}
	}
}

/*
TestAsCollection_MixedAnySlice verifies conversion of a mixed []any of records
and maps, and rejection once a non-record element appears.
*/
func TestAsCollection_MixedAnySlice(t *testing.T) {
	r := New()
	r.Set("id", 1)
	in := []any{r, map[string]any{"id": 2}}

	col, ok := AsCollection(in)
	if !ok || col.Len() != 2 {
		t.Fatalf("AsCollection ok=%v len=%d; want true, 2", ok, col.Len())
	}
	if col[0] != r {
		t.Fatalf("first element not referenced as-is")
	}

	if _, ok := AsCollection([]any{r, "scalar"}); ok {
		t.Fatalf("AsCollection accepted a scalar element")
	}
}

func BenchmarkRecord_CloneSmall(b *testing.B) {
	r := New()
	r.Set("name", "John Doe")
	r.Set("age", 25)
	r.Set("tags", []any{"x", "y"})

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = r.Clone()
	}
}
