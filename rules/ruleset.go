package rules

import (
	"fmt"
	"sort"
)

// RuleSet is the declarative configuration for one optimizer run. Builders
// are chainable: each registers at most one rule (or structural operation)
// and returns the receiver.
//
// A field holds at most one rule at a time; the last registration wins. The
// set is built once, passed to Optimize, and must not be mutated while a run
// is in flight.
type RuleSet struct {
	AttributeStore

	rules    map[string]Rule
	renames  map[string]string
	addKeys  map[string]any
	removes  []string
	sortKeys []string
	derives  []Derive
	distinct []string

	// increment counts derive-rule registrations, starting at 1. Derive rules
	// apply in registration order; the counter only ever grows.
	increment int

	err error
}

// New returns an empty rule set.
func New() *RuleSet {
	return &RuleSet{
		rules:     map[string]Rule{},
		renames:   map[string]string{},
		increment: 1,
	}
}

// --- rule registry ------------------------------------------------------------

// HasRule reports whether field has a registered rule.
func (rs *RuleSet) HasRule(field string) bool {
	_, ok := rs.rules[field]
	return ok
}

// GetRule returns the rule tag registered for field. Fields without a rule
// yield ErrNoRule; callers should guard with HasRule.
func (rs *RuleSet) GetRule(field string) (Kind, error) {
	r, ok := rs.rules[field]
	if !ok {
		return "", fmt.Errorf("rules: %w: %q", ErrNoRule, field)
	}
	return r.Kind, nil
}

// Rules returns a copy of the field -> tag mapping.
func (rs *RuleSet) Rules() map[string]Kind {
	out := make(map[string]Kind, len(rs.rules))
	for f, r := range rs.rules {
		out[f] = r.Kind
	}
	return out
}

// Rule returns the full typed rule for field, for executor dispatch.
func (rs *RuleSet) Rule(field string) (Rule, bool) {
	r, ok := rs.rules[field]
	return r, ok
}

// SetRule registers kind for field with zero-value parameters, replacing any
// previous rule on that field.
func (rs *RuleSet) SetRule(field string, kind Kind) *RuleSet {
	rs.rules[field] = Rule{Kind: kind}
	return rs
}

// SetRules registers every field -> kind pair from m.
func (rs *RuleSet) SetRules(m map[string]Kind) *RuleSet {
	for f, k := range m {
		rs.SetRule(f, k)
	}
	return rs
}

func (rs *RuleSet) put(field string, r Rule) *RuleSet {
	rs.rules[field] = r
	return rs
}

// Err returns the first validation error recorded by a builder, if any.
// Optimize refuses to run a set with a pending error.
func (rs *RuleSet) Err() error {
	return rs.err
}

// Increment returns the derive-rule registration counter. It starts at 1 and
// only grows.
func (rs *RuleSet) Increment() int {
	return rs.increment
}

// --- type coercion builders ---------------------------------------------------

// String coerces the field to its string representation.
func (rs *RuleSet) String(field string) *RuleSet { return rs.put(field, Rule{Kind: KindString}) }

// Integer coerces numeric-looking values to int64; anything else is left
// unchanged.
func (rs *RuleSet) Integer(field string) *RuleSet { return rs.put(field, Rule{Kind: KindInteger}) }

// Double coerces numeric-looking values to float64; anything else is left
// unchanged.
func (rs *RuleSet) Double(field string) *RuleSet { return rs.put(field, Rule{Kind: KindDouble}) }

// Bool coerces the field to a boolean.
func (rs *RuleSet) Bool(field string) *RuleSet { return rs.put(field, Rule{Kind: KindBool}) }

// Array wraps non-sequence values in a single-element sequence.
func (rs *RuleSet) Array(field string) *RuleSet { return rs.put(field, Rule{Kind: KindArray}) }

// Object converts the field to a keyed mapping.
func (rs *RuleSet) Object(field string) *RuleSet { return rs.put(field, Rule{Kind: KindObject}) }

// JSONEncode replaces the field with its JSON-serialized form.
func (rs *RuleSet) JSONEncode(field string) *RuleSet { return rs.put(field, Rule{Kind: KindJSONEncode}) }

// JSONDecode replaces syntactically valid JSON strings with their decoded
// structure; invalid JSON passes through unchanged.
func (rs *RuleSet) JSONDecode(field string) *RuleSet { return rs.put(field, Rule{Kind: KindJSONDecode}) }

// --- parameterized builders ---------------------------------------------------

// Slug lowercases the field, strips characters outside [A-Za-z0-9\s], and
// joins whitespace runs with delimiter. The default delimiter is "-".
func (rs *RuleSet) Slug(field string, delimiter ...string) *RuleSet {
	d := "-"
	if len(delimiter) > 0 && delimiter[0] != "" {
		d = delimiter[0]
	}
	return rs.put(field, Rule{Kind: KindSlug, Delimiter: d})
}

// List interprets a JSON-encoded array value as a comma-joined string.
func (rs *RuleSet) List(field string) *RuleSet { return rs.put(field, Rule{Kind: KindList}) }

// DefaultDateFormat is the layout assumed for date values when no explicit
// source layout is given.
const DefaultDateFormat = "2006-01-02 15:04:05"

// Date reparses the field from fromFormat (DefaultDateFormat when omitted)
// and reformats it with toFormat. Unparsable values pass through unchanged.
func (rs *RuleSet) Date(field, toFormat string, fromFormat ...string) *RuleSet {
	from := DefaultDateFormat
	if len(fromFormat) > 0 && fromFormat[0] != "" {
		from = fromFormat[0]
	}
	return rs.put(field, Rule{Kind: KindDate, FromFormat: from, ToFormat: toFormat})
}

// SetValue always overwrites the field with the given constant.
func (rs *RuleSet) SetValue(field string, value any) *RuleSet {
	return rs.put(field, Rule{Kind: KindReplaceValue, NewValue: value})
}

// ReplaceValue overwrites the field with newValue only when its current value
// strictly equals defaultValue.
func (rs *RuleSet) ReplaceValue(field string, defaultValue, newValue any) *RuleSet {
	return rs.put(field, Rule{Kind: KindReplaceValueByNew, Default: defaultValue, NewValue: newValue})
}

// ReplaceText substring-replaces target with replacement in string values.
func (rs *RuleSet) ReplaceText(field, target, replacement string) *RuleSet {
	return rs.put(field, Rule{Kind: KindReplaceText, Target: target, Replacement: replacement})
}

// StripTags removes markup tags from string values, keeping only the listed
// tags when a whitelist is given.
func (rs *RuleSet) StripTags(field string, allowed ...string) *RuleSet {
	return rs.put(field, Rule{Kind: KindStripTags, AllowedTags: allowed})
}

// Normalize cleans string values: unicode NFC normalization, non-breaking
// spaces folded to plain spaces, and surrounding whitespace trimmed.
func (rs *RuleSet) Normalize(field string) *RuleSet { return rs.put(field, Rule{Kind: KindNormalize}) }

// Modify invokes fn with (field, currentValue) and adopts its return value.
func (rs *RuleSet) Modify(field string, fn ModifyFunc) *RuleSet {
	return rs.put(field, Rule{Kind: KindModify, Fn: fn})
}

// --- structural operations ----------------------------------------------------

// RenameKey renames field to newName. Renames are not field rules: they are
// resolved in a separate pass after all field rewrites, against the record's
// field names current at that point.
func (rs *RuleSet) RenameKey(field, newName string) *RuleSet {
	rs.renames[field] = newName
	return rs
}

// RenameOf returns the registered new name for field, if any.
func (rs *RuleSet) RenameOf(field string) (string, bool) {
	n, ok := rs.renames[field]
	return n, ok
}

// AddKeys merges the given fixed key/value pairs into every record,
// overwriting same-named fields. An empty mapping records a validation error
// that Optimize surfaces; it is the one eagerly-validated builder.
func (rs *RuleSet) AddKeys(keys map[string]any) *RuleSet {
	if len(keys) == 0 {
		if rs.err == nil {
			rs.err = fmt.Errorf("rules: %w", ErrEmptyAddKeys)
		}
		return rs
	}
	if rs.addKeys == nil {
		rs.addKeys = make(map[string]any, len(keys))
	}
	for k, v := range keys {
		rs.addKeys[k] = v
	}
	return rs
}

// AddedKeys returns the constant pairs from AddKeys as a sorted (field,
// value) sequence so that insertion order is deterministic.
func (rs *RuleSet) AddedKeys() ([]string, map[string]any) {
	if len(rs.addKeys) == 0 {
		return nil, nil
	}
	fields := make([]string, 0, len(rs.addKeys))
	for k := range rs.addKeys {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields, rs.addKeys
}

// AddKeyUseItem registers a derive rule: fn receives the whole current record
// and its result is stored under newField. Derive rules apply in registration
// order; each call advances the increment counter.
func (rs *RuleSet) AddKeyUseItem(newField string, fn DeriveFunc) *RuleSet {
	rs.derives = append(rs.derives, Derive{Field: newField, Fn: fn})
	rs.increment++
	return rs
}

// Derives returns the registered derive rules in registration order.
func (rs *RuleSet) Derives() []Derive {
	return rs.derives
}

// RemoveKeys deletes the listed fields from every record, after all other
// per-record operations except the final reorder.
func (rs *RuleSet) RemoveKeys(fields ...string) *RuleSet {
	rs.removes = append(rs.removes, fields...)
	return rs
}

// RemovedKeys returns the accumulated removal list.
func (rs *RuleSet) RemovedKeys() []string {
	return rs.removes
}

// SortByKeys reorders every output record's fields to match the given order;
// fields not listed sort to the end in their original relative order.
func (rs *RuleSet) SortByKeys(fields ...string) *RuleSet {
	rs.sortKeys = append(rs.sortKeys[:0], fields...)
	return rs
}

// SortKeys returns the configured field order, or nil when no reorder was
// requested.
func (rs *RuleSet) SortKeys() []string {
	return rs.sortKeys
}

// Distinct collapses duplicate records sharing the same values for the listed
// key fields, keeping the last occurrence. It runs once per batch after all
// per-record operations.
func (rs *RuleSet) Distinct(fields ...string) *RuleSet {
	rs.distinct = append(rs.distinct[:0], fields...)
	return rs
}

// DistinctKeys returns the de-duplication key fields, or nil when disabled.
func (rs *RuleSet) DistinctKeys() []string {
	return rs.distinct
}
