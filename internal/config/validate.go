// Package config provides configuration models and helpers for recordopt
// runs.
//
// This file adds a lightweight linter for Run values. It performs static
// checks over a decoded Run and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or in tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding worth surfacing that does not block
	// the run by itself.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "source.kind",
// "rules[1].options.to_format"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error where one is expected.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidateRun performs static validation of a Run without mutating it.
// Callers decide whether warnings are fatal.
func ValidateRun(r Run) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels metrics and log lines",
		})
	}
	issues = append(issues, validateSource(r.Source)...)
	issues = append(issues, validateRules(r.Rules)...)
	issues = append(issues, validateOutput(r.Output)...)
	issues = append(issues, validateMetrics(r.Metrics)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue
	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{SeverityError, "source.file.path", "file source requires a path"})
		}
	case "sqlite":
		issues = append(issues, validateDB("source.sqlite", s.SQLite, true)...)
	case "":
		issues = append(issues, Issue{SeverityError, "source.kind", "source kind is required (file, sqlite)"})
	default:
		issues = append(issues, Issue{SeverityError, "source.kind", fmt.Sprintf("unknown source kind %q", s.Kind)})
	}
	return issues
}

func validateOutput(o Output) []Issue {
	var issues []Issue
	switch o.Kind {
	case "file":
		if strings.TrimSpace(o.File.Path) == "" {
			issues = append(issues, Issue{SeverityError, "output.file.path", "file output requires a path"})
		}
	case "sqlite":
		issues = append(issues, validateDB("output.sqlite", o.SQLite, false)...)
	case "postgres":
		issues = append(issues, validateDB("output.postgres", o.Postgres, false)...)
	case "":
		issues = append(issues, Issue{SeverityError, "output.kind", "output kind is required (file, sqlite, postgres)"})
	default:
		issues = append(issues, Issue{SeverityError, "output.kind", fmt.Sprintf("unknown output kind %q", o.Kind)})
	}
	return issues
}

func validateDB(path string, db DBConfig, reading bool) []Issue {
	var issues []Issue
	if strings.TrimSpace(db.DSN) == "" {
		issues = append(issues, Issue{SeverityError, path + ".dsn", "dsn is required"})
	}
	if strings.TrimSpace(db.Table) == "" && (!reading || strings.TrimSpace(db.Query) == "") {
		issues = append(issues, Issue{SeverityError, path + ".table", "table (or query, for sources) is required"})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
		return nil
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			return []Issue{{SeverityWarning, "metrics.pushgateway_url", "pushgateway backend selected without a URL; the default localhost gateway will be used"}}
		}
		return nil
	default:
		return []Issue{{SeverityError, "metrics.backend", fmt.Sprintf("unknown metrics backend %q", m.Backend)}}
	}
}

// validateRules reuses the rule compiler so the linter and the runtime agree
// on what a valid spec is: every compile error becomes one Issue.
func validateRules(specs []RuleSpec) []Issue {
	var issues []Issue
	for i, spec := range specs {
		if err := compileOne(spec); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("rules[%d]", i),
				Message:  err.Error(),
			})
		}
	}
	if len(specs) == 0 {
		issues = append(issues, Issue{SeverityWarning, "rules", "no rules configured; records will pass through unchanged"})
	}
	return issues
}

// compileOne checks a single spec against a scratch rule set.
func compileOne(spec RuleSpec) error {
	return compileRule(newScratchSet(), spec)
}
