package optimizer

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"recordopt/internal/sanitize"
	"recordopt/rules"
)

// ApplyRule applies one rule to one field value and returns the transient
// Result: the (possibly renamed) output key, the new value, and an optional
// key for the executor to delete. It is a pure function; rules that do not
// apply to the value at hand return it unchanged.
func ApplyRule(r rules.Rule, field string, value any) rules.Result {
	switch r.Kind {
	case rules.KindString:
		return result(field, stringify(value))

	case rules.KindInteger:
		if i, ok := toInt64(value); ok {
			return result(field, i)
		}

	case rules.KindDouble:
		if f, ok := toFloat64(value); ok {
			return result(field, f)
		}

	case rules.KindBool:
		return result(field, cast.ToBool(value))

	case rules.KindArray:
		return result(field, toArray(value))

	case rules.KindObject:
		return result(field, toObject(value))

	case rules.KindJSONEncode:
		if b, err := json.Marshal(value); err == nil {
			return result(field, string(b))
		}

	case rules.KindJSONDecode:
		if s, ok := value.(string); ok && IsJSON(s) {
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				return result(field, decoded)
			}
		}

	case rules.KindSlug:
		return result(field, Slugify(stringify(value), r.Delimiter))

	case rules.KindList:
		if s, ok := value.(string); ok && IsJSON(s) {
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				if seq, ok := decoded.([]any); ok {
					parts := make([]string, len(seq))
					for i, el := range seq {
						parts[i] = stringify(el)
					}
					return result(field, strings.Join(parts, ","))
				}
			}
		}

	case rules.KindDate:
		switch t := value.(type) {
		case time.Time:
			return result(field, t.Format(r.ToFormat))
		case string:
			if ts, err := time.Parse(r.FromFormat, t); err == nil {
				return result(field, ts.Format(r.ToFormat))
			}
		}

	case rules.KindStripTags:
		if s, ok := value.(string); ok {
			return result(field, sanitize.StripTags(s, r.AllowedTags))
		}

	case rules.KindReplaceValue:
		return result(field, r.NewValue)

	case rules.KindReplaceValueByNew:
		if strictEqual(value, r.Default) {
			return result(field, r.NewValue)
		}

	case rules.KindReplaceText:
		if s, ok := value.(string); ok {
			return result(field, strings.ReplaceAll(s, r.Target, r.Replacement))
		}

	case rules.KindNormalize:
		if s, ok := value.(string); ok {
			return result(field, normalizeText(s))
		}

	case rules.KindModify:
		if r.Fn != nil {
			return result(field, r.Fn(field, value))
		}
	}

	// Unrecognized kind, nil callback, or a value the rule does not apply to:
	// pass through unchanged.
	return result(field, value)
}

func result(key string, value any) rules.Result {
	return rules.Result{Key: key, Value: value}
}

// stringify renders a value the way the string coercion rule does: fast paths
// for the common scalar types, fmt-style fallback for everything else.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339)
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	// Composite values: JSON is the least surprising textual form.
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return ""
}

// toInt64 coerces numeric-looking values only: numbers, and strings that
// parse as integers or whole-ish floats. Everything else reports false.
func toInt64(v any) (int64, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		if i, err := cast.ToInt64E(v); err == nil {
			return i, true
		}
		return 0, false
	case string:
		if i, err := cast.ToInt64E(v); err == nil {
			return i, true
		}
		// "42.0"-style inputs: accept via float parse, truncating.
		if f, err := cast.ToFloat64E(v); err == nil {
			return int64(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// toFloat64 mirrors toInt64 for the double coercion.
func toFloat64(v any) (float64, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, string:
		if f, err := cast.ToFloat64E(v); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// toArray wraps scalars in a single-element sequence; sequences and keyed
// mappings are already collections and pass through.
func toArray(v any) any {
	if v == nil {
		return []any{}
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v
	default:
		return []any{v}
	}
}

// toObject converts the value into a keyed mapping: mappings pass through,
// sequences become index-keyed maps, scalars land under "scalar".
func toObject(v any) any {
	if v == nil {
		return map[string]any{}
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return v
	case reflect.Slice, reflect.Array:
		out := make(map[string]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[strconv.Itoa(i)] = rv.Index(i).Interface()
		}
		return out
	default:
		return map[string]any{"scalar": v}
	}
}

// strictEqual compares like the replace-by-default rule demands: same dynamic
// type and deep-equal value. 0 does not equal 0.0, and "0" equals neither.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return reflect.DeepEqual(a, b)
}
