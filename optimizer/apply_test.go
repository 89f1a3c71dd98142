package optimizer

import (
	"reflect"
	"testing"

	"recordopt/rules"
)

/*
TestApplyRule_Coercions tables the per-kind dispatch: conditional coercions
leave non-matching values unchanged, unconditional ones always convert.
*/
func TestApplyRule_Coercions(t *testing.T) {
	cases := []struct {
		name string
		rule rules.Rule
		in   any
		want any
	}{
		{"string from int", rules.Rule{Kind: rules.KindString}, 25, "25"},
		{"string from string", rules.Rule{Kind: rules.KindString}, "x", "x"},
		{"string from float", rules.Rule{Kind: rules.KindString}, 3.5, "3.5"},
		{"string from nil", rules.Rule{Kind: rules.KindString}, nil, ""},

		{"integer from string", rules.Rule{Kind: rules.KindInteger}, "25", int64(25)},
		{"integer from float string", rules.Rule{Kind: rules.KindInteger}, "42.0", int64(42)},
		{"integer from float", rules.Rule{Kind: rules.KindInteger}, float64(7), int64(7)},
		{"integer from junk", rules.Rule{Kind: rules.KindInteger}, "abc", "abc"},
		{"integer from bool", rules.Rule{Kind: rules.KindInteger}, true, true},
		{"integer from nil", rules.Rule{Kind: rules.KindInteger}, nil, nil},

		{"double from string", rules.Rule{Kind: rules.KindDouble}, "3.14", 3.14},
		{"double from int", rules.Rule{Kind: rules.KindDouble}, 2, float64(2)},
		{"double from junk", rules.Rule{Kind: rules.KindDouble}, "x1", "x1"},

		{"bool from string", rules.Rule{Kind: rules.KindBool}, "true", true},
		{"bool from one", rules.Rule{Kind: rules.KindBool}, 1, true},
		{"bool from zero", rules.Rule{Kind: rules.KindBool}, 0, false},

		{"array wraps scalar", rules.Rule{Kind: rules.KindArray}, "x", []any{"x"}},
		{"array keeps slice", rules.Rule{Kind: rules.KindArray}, []any{1, 2}, []any{1, 2}},
		{"array from nil", rules.Rule{Kind: rules.KindArray}, nil, []any{}},

		{"object keeps map", rules.Rule{Kind: rules.KindObject}, map[string]any{"a": 1}, map[string]any{"a": 1}},
		{"object indexes slice", rules.Rule{Kind: rules.KindObject}, []any{"a", "b"}, map[string]any{"0": "a", "1": "b"}},
		{"object wraps scalar", rules.Rule{Kind: rules.KindObject}, 5, map[string]any{"scalar": 5}},
	}
	for _, tc := range cases {
		res := ApplyRule(tc.rule, "f", tc.in)
		if res.Key != "f" || res.RemovedKey != "" {
			t.Errorf("%s: Result key/removed = %q/%q; want f/empty", tc.name, res.Key, res.RemovedKey)
		}
		if !reflect.DeepEqual(res.Value, tc.want) {
			t.Errorf("%s: value = %#v; want %#v", tc.name, res.Value, tc.want)
		}
	}
}

/*
TestApplyRule_StringIdempotent verifies that reapplying the string coercion to
its own output changes nothing.
*/
func TestApplyRule_StringIdempotent(t *testing.T) {
	r := rules.Rule{Kind: rules.KindString}
	for _, in := range []any{25, "already", 3.5, true, nil, []any{1, "a"}} {
		once := ApplyRule(r, "f", in).Value
		twice := ApplyRule(r, "f", once).Value
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("string not idempotent for %#v: %#v != %#v", in, once, twice)
		}
	}
}

/*
TestApplyRule_JSON covers encode (always serializes), decode (only valid JSON
is replaced), and the invalid-JSON pass-through invariant.
*/
func TestApplyRule_JSON(t *testing.T) {
	enc := ApplyRule(rules.Rule{Kind: rules.KindJSONEncode}, "f", map[string]any{"a": 1})
	if enc.Value != `{"a":1}` {
		t.Fatalf("json_encode = %#v; want {\"a\":1}", enc.Value)
	}

	dec := ApplyRule(rules.Rule{Kind: rules.KindJSONDecode}, "f", `{"a":1}`)
	if want := map[string]any{"a": float64(1)}; !reflect.DeepEqual(dec.Value, want) {
		t.Fatalf("json_decode = %#v; want %#v", dec.Value, want)
	}

	for _, notJSON := range []any{"{broken", "", "plain text", 12, nil} {
		res := ApplyRule(rules.Rule{Kind: rules.KindJSONDecode}, "f", notJSON)
		if !reflect.DeepEqual(res.Value, notJSON) {
			t.Errorf("json_decode changed non-JSON input %#v -> %#v", notJSON, res.Value)
		}
	}
}

/*
TestApplyRule_SlugListDate exercises the text-shaped rules.
*/
func TestApplyRule_SlugListDate(t *testing.T) {
	slug := ApplyRule(rules.Rule{Kind: rules.KindSlug, Delimiter: "-"}, "f", "Hello World!")
	if slug.Value != "hello-world" {
		t.Fatalf("slug = %#v; want hello-world", slug.Value)
	}
	under := ApplyRule(rules.Rule{Kind: rules.KindSlug, Delimiter: "_"}, "f", "Go 1.24 Rocks")
	if under.Value != "go_124_rocks" {
		t.Fatalf("slug _ = %#v; want go_124_rocks", under.Value)
	}

	list := ApplyRule(rules.Rule{Kind: rules.KindList}, "f", `["a","b","c"]`)
	if list.Value != "a,b,c" {
		t.Fatalf("list = %#v; want a,b,c", list.Value)
	}
	mixed := ApplyRule(rules.Rule{Kind: rules.KindList}, "f", `[1,"two",true]`)
	if mixed.Value != "1,two,true" {
		t.Fatalf("list mixed = %#v; want 1,two,true", mixed.Value)
	}
	// Valid JSON that is not a sequence passes through.
	obj := ApplyRule(rules.Rule{Kind: rules.KindList}, "f", `{"a":1}`)
	if obj.Value != `{"a":1}` {
		t.Fatalf("list on object = %#v; want unchanged", obj.Value)
	}

	date := rules.Rule{Kind: rules.KindDate, FromFormat: rules.DefaultDateFormat, ToFormat: "02.01.2006"}
	ok := ApplyRule(date, "f", "2024-03-05 10:00:00")
	if ok.Value != "05.03.2024" {
		t.Fatalf("date = %#v; want 05.03.2024", ok.Value)
	}
	bad := ApplyRule(date, "f", "not a date")
	if bad.Value != "not a date" {
		t.Fatalf("unparsable date changed: %#v", bad.Value)
	}
}

/*
TestApplyRule_ReplaceAndStrip exercises the replacement rules and tag
stripping, including strict-equality semantics for replace-by-default.
*/
func TestApplyRule_ReplaceAndStrip(t *testing.T) {
	set := ApplyRule(rules.Rule{Kind: rules.KindReplaceValue, NewValue: "fixed"}, "f", "anything")
	if set.Value != "fixed" {
		t.Fatalf("replace_value = %#v; want fixed", set.Value)
	}

	byNew := rules.Rule{Kind: rules.KindReplaceValueByNew, Default: 0, NewValue: -1}
	if got := ApplyRule(byNew, "f", 0).Value; got != -1 {
		t.Fatalf("replace on matching default = %#v; want -1", got)
	}
	if got := ApplyRule(byNew, "f", 5).Value; got != 5 {
		t.Fatalf("replace on non-matching value = %#v; want 5", got)
	}
	// Strict: a float 0.0 is not the int default 0.
	if got := ApplyRule(byNew, "f", 0.0).Value; got != 0.0 {
		t.Fatalf("replace crossed types: %#v", got)
	}

	txt := ApplyRule(rules.Rule{Kind: rules.KindReplaceText, Target: "World", Replacement: "Go"}, "f", "Hello World World")
	if txt.Value != "Hello Go Go" {
		t.Fatalf("replace_text = %#v", txt.Value)
	}

	strip := ApplyRule(rules.Rule{Kind: rules.KindStripTags, AllowedTags: []string{"b"}}, "f", "<p>Hi <b>there</b></p>")
	if strip.Value != "Hi <b>there</b>" {
		t.Fatalf("strip_tags = %#v", strip.Value)
	}
}

/*
TestApplyRule_NormalizeModifyUnknown covers the normalize cleanup, the modify
callback (including the nil-callback no-op degradation), and the unknown-tag
pass-through.
*/
func TestApplyRule_NormalizeModifyUnknown(t *testing.T) {
	norm := ApplyRule(rules.Rule{Kind: rules.KindNormalize}, "f", "  padded text  ")
	if norm.Value != "padded text" {
		t.Fatalf("normalize = %#v; want %q", norm.Value, "padded text")
	}

	mod := ApplyRule(rules.Rule{Kind: rules.KindModify, Fn: func(field string, v any) any {
		return field + ":" + v.(string)
	}}, "name", "x")
	if mod.Value != "name:x" {
		t.Fatalf("modify = %#v; want name:x", mod.Value)
	}

	noop := ApplyRule(rules.Rule{Kind: rules.KindModify}, "f", "kept")
	if noop.Value != "kept" {
		t.Fatalf("modify with nil callback changed value: %#v", noop.Value)
	}

	unknown := ApplyRule(rules.Rule{Kind: rules.Kind("mystery")}, "f", 42)
	if unknown.Value != 42 {
		t.Fatalf("unknown kind changed value: %#v", unknown.Value)
	}
}

/*
TestSlugifyAndIsJSON covers the exported helpers directly.
*/
func TestSlugifyAndIsJSON(t *testing.T) {
	if got := Slugify("Hello World!", "-"); got != "hello-world" {
		t.Fatalf("Slugify = %q; want hello-world", got)
	}
	if got := Slugify("  Spaced   Out  ", ""); got != "spaced-out" {
		t.Fatalf("Slugify default delim = %q; want spaced-out", got)
	}
	if got := Slugify("čistý útvar", "-"); got != "ist-tvar" {
		t.Fatalf("Slugify non-ascii = %q; want ist-tvar", got)
	}

	for s, want := range map[string]bool{
		`{"a":1}`: true,
		`[1,2]`:   true,
		`"str"`:   true,
		`42`:      true,
		`{bad`:    false,
		``:        false,
		`  `:      false,
	} {
		if got := IsJSON(s); got != want {
			t.Errorf("IsJSON(%q) = %v; want %v", s, got, want)
		}
	}
}
