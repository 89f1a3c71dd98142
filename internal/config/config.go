// Package config defines the JSON-serializable configuration model for the
// recordopt CLI: where records come from, which rules to apply, and where the
// optimized batch goes.
//
// Design goals:
//
//  1. Stability: changes should be additive and backwards-compatible.
//  2. Clarity: Go field names mirror the JSON structure of run files.
//  3. Minimalism: decoding is plain JSON, with a light Options helper for
//     typed access to rule-specific settings.
//
// Example (trimmed):
//
//	{
//	  "job":    "users-cleanup",
//	  "source": { "kind": "file", "file": { "path": "users.json" } },
//	  "rules": [
//	    { "kind": "integer", "field": "age" },
//	    { "kind": "slug", "field": "title", "options": { "delimiter": "-" } },
//	    { "kind": "sort", "options": { "fields": ["name", "age"] } }
//	  ],
//	  "output": { "kind": "file", "file": { "path": "users.out.json" } }
//	}
package config

// Run describes one full optimization run decoded from a run file.
type Run struct {
	// Job names the run; it labels metrics and log lines.
	Job string `json:"job"`

	// Source describes where input records come from.
	Source Source `json:"source"`

	// Rules lists the declarative rules compiled into a RuleSet, in order.
	// Callback-based rules (modify, derived fields) are API-only and cannot
	// be expressed here.
	Rules []RuleSpec `json:"rules"`

	// Output describes where the optimized records are written.
	Output Output `json:"output"`

	// Metrics selects an optional metrics backend.
	Metrics Metrics `json:"metrics"`
}

// Source identifies the record source. Kinds: "file", "sqlite".
type Source struct {
	Kind   string   `json:"kind"`
	File   File     `json:"file"`
	SQLite DBConfig `json:"sqlite"`
}

// Output identifies the record sink. Kinds: "file", "sqlite", "postgres".
type Output struct {
	Kind     string   `json:"kind"`
	File     File     `json:"file"`
	SQLite   DBConfig `json:"sqlite"`
	Postgres DBConfig `json:"postgres"`
}

// File holds options for the "file" source/output kind: a JSON array of
// records on disk.
type File struct {
	Path string `json:"path"`
}

// DBConfig configures a database source or sink.
type DBConfig struct {
	// DSN is the driver connection string (file path or URL for SQLite,
	// postgresql://... for Postgres).
	DSN string `json:"dsn"`

	// Table is the table read from or written to.
	Table string `json:"table"`

	// Query optionally overrides the generated SELECT when reading.
	Query string `json:"query"`

	// Columns optionally fixes the column set written by a sink; when empty
	// the first record's fields are used.
	Columns []string `json:"columns"`
}

// Metrics selects a metrics backend. Kinds: "" / "none", "pushgateway".
type Metrics struct {
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
}

// RuleSpec is one declarative rule. Kind selects the rule; Field names the
// record field it applies to (structural rules such as "add_keys", "sort",
// "remove_keys" and "distinct" have no field). Options is interpreted per
// kind.
type RuleSpec struct {
	Kind    string  `json:"kind"`
	Field   string  `json:"field"`
	Options Options `json:"options"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without a third-party configuration library. It performs only minimal type
// coercion and returns the provided default when a key is absent or of an
// unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Value returns the raw value for key, or nil when absent.
func (o Options) Value(key string) any {
	return o[key]
}

// Strings returns the []string value for key when the value is an array of
// strings; non-string elements are ignored. Missing keys return nil.
func (o Options) Strings(key string) []string {
	v, ok := o[key]
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		if s, ok := el.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Map returns the object value for key, or nil when missing or not an
// object.
func (o Options) Map(key string) map[string]any {
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}
