package config

import (
	"fmt"

	"recordopt/rules"
)

// CompileRules turns the declarative rule list into an executable RuleSet.
// Specs apply in list order, so later rules on the same field win, matching
// the builder API. Unknown kinds fail compilation; use ValidateRun first for
// a full report instead of the first error.
func CompileRules(specs []RuleSpec) (*rules.RuleSet, error) {
	rs := rules.New()
	for i, spec := range specs {
		if err := compileRule(rs, spec); err != nil {
			return nil, fmt.Errorf("config: rules[%d]: %w", i, err)
		}
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return rs, nil
}

// newScratchSet gives the linter a throwaway set to compile specs against.
func newScratchSet() *rules.RuleSet { return rules.New() }

func compileRule(rs *rules.RuleSet, spec RuleSpec) error {
	needField := func() error {
		if spec.Field == "" {
			return fmt.Errorf("%s rule requires a field", spec.Kind)
		}
		return nil
	}

	switch spec.Kind {
	case "string":
		if err := needField(); err != nil {
			return err
		}
		rs.String(spec.Field)
	case "integer":
		if err := needField(); err != nil {
			return err
		}
		rs.Integer(spec.Field)
	case "double":
		if err := needField(); err != nil {
			return err
		}
		rs.Double(spec.Field)
	case "bool":
		if err := needField(); err != nil {
			return err
		}
		rs.Bool(spec.Field)
	case "array":
		if err := needField(); err != nil {
			return err
		}
		rs.Array(spec.Field)
	case "object":
		if err := needField(); err != nil {
			return err
		}
		rs.Object(spec.Field)
	case "json_encode":
		if err := needField(); err != nil {
			return err
		}
		rs.JSONEncode(spec.Field)
	case "json_decode":
		if err := needField(); err != nil {
			return err
		}
		rs.JSONDecode(spec.Field)
	case "list":
		if err := needField(); err != nil {
			return err
		}
		rs.List(spec.Field)
	case "normalize":
		if err := needField(); err != nil {
			return err
		}
		rs.Normalize(spec.Field)

	case "slug":
		if err := needField(); err != nil {
			return err
		}
		rs.Slug(spec.Field, spec.Options.String("delimiter", "-"))

	case "date":
		if err := needField(); err != nil {
			return err
		}
		to := spec.Options.String("to_format", "")
		if to == "" {
			return fmt.Errorf("date rule requires options.to_format")
		}
		rs.Date(spec.Field, to, spec.Options.String("from_format", ""))

	case "set_value":
		if err := needField(); err != nil {
			return err
		}
		rs.SetValue(spec.Field, spec.Options.Value("value"))

	case "replace_value":
		if err := needField(); err != nil {
			return err
		}
		rs.ReplaceValue(spec.Field, spec.Options.Value("default"), spec.Options.Value("new"))

	case "replace_text":
		if err := needField(); err != nil {
			return err
		}
		rs.ReplaceText(spec.Field, spec.Options.String("target", ""), spec.Options.String("replacement", ""))

	case "strip_tags":
		if err := needField(); err != nil {
			return err
		}
		rs.StripTags(spec.Field, spec.Options.Strings("allowed")...)

	case "rename":
		if err := needField(); err != nil {
			return err
		}
		to := spec.Options.String("to", "")
		if to == "" {
			return fmt.Errorf("rename rule requires options.to")
		}
		rs.RenameKey(spec.Field, to)

	case "add_keys":
		keys := spec.Options.Map("keys")
		if len(keys) == 0 {
			return fmt.Errorf("add_keys rule requires a non-empty options.keys object")
		}
		rs.AddKeys(keys)

	case "remove_keys":
		fields := spec.Options.Strings("fields")
		if len(fields) == 0 {
			return fmt.Errorf("remove_keys rule requires options.fields")
		}
		rs.RemoveKeys(fields...)

	case "sort":
		fields := spec.Options.Strings("fields")
		if len(fields) == 0 {
			return fmt.Errorf("sort rule requires options.fields")
		}
		rs.SortByKeys(fields...)

	case "distinct":
		fields := spec.Options.Strings("fields")
		if len(fields) == 0 {
			return fmt.Errorf("distinct rule requires options.fields")
		}
		rs.Distinct(fields...)

	default:
		return fmt.Errorf("unknown rule kind %q", spec.Kind)
	}
	return nil
}
