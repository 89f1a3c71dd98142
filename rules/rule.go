// Package rules holds the declarative configuration surface of the record
// optimizer: the rule vocabulary, the typed per-field rule payloads, and the
// RuleSet builder that callers chain to describe a transformation.
//
// Earlier designs of this kind of engine flatten every rule parameter into a
// shared attribute map under synthetic keys. Here each rule is a typed entry
// keyed by field name, derive rules are an ordered list, and renames live in
// their own table; the shared AttributeStore remains available for caller
// parameters but carries no rule state.
package rules

import (
	"errors"

	"recordopt/pkg/records"
)

// Kind identifies a rule. It is the tag vocabulary consumed by the executor.
type Kind string

const (
	KindString     Kind = "string"
	KindInteger    Kind = "integer"
	KindDouble     Kind = "double"
	KindBool       Kind = "bool"
	KindArray      Kind = "array"
	KindObject     Kind = "object"
	KindJSONEncode Kind = "json_encode"
	KindJSONDecode Kind = "json_decode"
	KindSlug       Kind = "slug"
	KindList       Kind = "list"
	KindDate       Kind = "date"
	// KindReplaceValue unconditionally overwrites the field with a constant.
	KindReplaceValue Kind = "replace_value"
	// KindReplaceValueByNew overwrites only when the current value strictly
	// equals the configured default.
	KindReplaceValueByNew Kind = "replace_value_by_new"
	KindReplaceText       Kind = "replace_text"
	KindStripTags         Kind = "strip_tags"
	KindNormalize         Kind = "normalize"
	KindModify            Kind = "modify"
)

// ModifyFunc rewrites a single field value; it receives the field name and
// the current value and returns the replacement.
type ModifyFunc func(field string, value any) any

// DeriveFunc computes a new field's value from the whole current record.
type DeriveFunc func(rec *records.Record) any

// Rule is the typed payload attached to one field. Only the parameters of its
// Kind are meaningful; the rest stay zero.
type Rule struct {
	Kind Kind

	// Delimiter joins whitespace runs for KindSlug.
	Delimiter string

	// FromFormat / ToFormat are Go time layouts for KindDate.
	FromFormat string
	ToFormat   string

	// Target / Replacement drive KindReplaceText substring replacement.
	Target      string
	Replacement string

	// Default is the compared-against value for KindReplaceValueByNew;
	// NewValue is the constant written by both replace kinds.
	Default  any
	NewValue any

	// AllowedTags is the whitelist for KindStripTags; empty strips everything.
	AllowedTags []string

	// Fn is the callback for KindModify.
	Fn ModifyFunc
}

// Derive pairs a target field with the function that computes it.
type Derive struct {
	Field string
	Fn    DeriveFunc
}

// Result is the transient outcome of applying one rule to one field of one
// record: the (possibly renamed) key, the new value, and an optional key the
// executor must remove from the record. It is consumed immediately and never
// persisted.
type Result struct {
	Key        string
	Value      any
	RemovedKey string
}

var (
	// ErrNoRule is returned by GetRule for fields without a registered rule;
	// guard with HasRule.
	ErrNoRule = errors.New("no rule registered for field")

	// ErrEmptyAddKeys is recorded when AddKeys receives an empty mapping.
	ErrEmptyAddKeys = errors.New("AddKeys requires a non-empty mapping")
)
