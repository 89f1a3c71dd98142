// Package optimizer executes a RuleSet against a batch of records, producing
// a new record sequence. It is the single synchronous engine behind the
// declarative rule surface in recordopt/rules.
//
// Design goals:
//   - Input is never mutated: every output record starts as a deep clone.
//   - One pass per record, with a fixed operation order: field rules, then
//     renames, then constant keys, then derive rules, then removals, then the
//     final reorder. Batch-level de-duplication runs last.
//   - Failure policy is silent pass-through: coercions that do not apply,
//     unparsable dates, and invalid JSON leave the field unchanged. The only
//     fatal conditions were already recorded on the RuleSet (its validation
//     error); a non-record-sequence input yields an empty result, not an
//     error.
package optimizer

import (
	"strings"

	"github.com/zeebo/xxh3"

	"recordopt/pkg/records"
	"recordopt/rules"
)

// Stats summarizes one Optimize run. Counters are best-effort observability
// data, not part of the transformation contract.
type Stats struct {
	RecordsIn     int
	RecordsOut    int
	RulesApplied  int
	FieldsRenamed int
	FieldsAdded   int
	FieldsRemoved int
	Duplicates    int
}

// Optimizer applies rule sets to record batches. The zero value is ready to
// use. It is not safe for concurrent Optimize calls on one instance (a run
// overwrites the previous run's stats); create one per goroutine if needed.
type Optimizer struct {
	stats Stats
}

// New returns a fresh optimizer.
func New() *Optimizer {
	return &Optimizer{}
}

// Stats returns the counters collected by the most recent Optimize call.
func (o *Optimizer) Stats() Stats {
	return o.stats
}

// Optimize transforms data according to rs and returns the new sequence.
//
// data may be a records.Collection, []*records.Record, []map[string]any, or
// an []any of those element types; anything else yields an empty collection
// and no error. A rule set carrying a builder validation error (see
// RuleSet.Err) fails the whole call. A nil rule set passes records through
// as clones.
func (o *Optimizer) Optimize(data any, rs *rules.RuleSet) (records.Collection, error) {
	o.stats = Stats{}
	if rs == nil {
		rs = rules.New()
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}

	in, ok := records.AsCollection(data)
	if !ok {
		return records.Collection{}, nil
	}
	o.stats.RecordsIn = in.Len()

	out := make(records.Collection, 0, in.Len())
	for _, rec := range in {
		out = append(out, o.transform(rec, rs))
	}

	if keys := rs.DistinctKeys(); len(keys) > 0 {
		before := out.Len()
		out = distinctRecords(out, keys)
		o.stats.Duplicates = before - out.Len()
	}

	o.stats.RecordsOut = out.Len()
	return out, nil
}

// Optimize runs rs against data with a throwaway Optimizer.
func Optimize(data any, rs *rules.RuleSet) (records.Collection, error) {
	return New().Optimize(data, rs)
}

// transform produces the output record for one input record. The input is
// cloned first; all steps below mutate the clone only.
func (o *Optimizer) transform(rec *records.Record, rs *rules.RuleSet) *records.Record {
	out := rec.Clone()

	// 1. Per-field rules, over a snapshot of the current field names.
	for _, f := range out.Fields() {
		r, ok := rs.Rule(f)
		if !ok {
			continue
		}
		res := ApplyRule(r, f, out.Get(f))
		out.Set(res.Key, res.Value)
		if res.RemovedKey != "" && res.RemovedKey != res.Key {
			out.Delete(res.RemovedKey)
		}
		o.stats.RulesApplied++
	}

	// 2. Renames, resolved against the field names current after step 1.
	for _, f := range out.Fields() {
		newName, ok := rs.RenameOf(f)
		if !ok || newName == f {
			continue
		}
		v, ok := out.Lookup(f)
		if !ok {
			continue
		}
		out.Set(newName, v)
		out.Delete(f)
		o.stats.FieldsRenamed++
	}

	// 3. Constant keys, overwriting same-named fields.
	addFields, addVals := rs.AddedKeys()
	for _, f := range addFields {
		out.Set(f, addVals[f])
		o.stats.FieldsAdded++
	}

	// 4. Derive rules in registration order, each seeing the record as left
	// by the previous one.
	for _, d := range rs.Derives() {
		if d.Fn == nil {
			continue
		}
		out.Set(d.Field, d.Fn(out))
		o.stats.FieldsAdded++
	}

	// 5. Removals.
	for _, f := range rs.RemovedKeys() {
		if out.Delete(f) {
			o.stats.FieldsRemoved++
		}
	}

	// 6. Final field reorder.
	if keys := rs.SortKeys(); len(keys) > 0 {
		out.Reorder(keys)
	}

	return out
}

// distinctRecords collapses records sharing the same values for the key
// fields, keeping the last occurrence at its position. Records missing any
// key field pass through untouched. Keys are compared by a 64-bit xxh3
// signature of the joined stringified values.
func distinctRecords(in records.Collection, keys []string) records.Collection {
	keyOf := func(r *records.Record) (uint64, bool) {
		var b strings.Builder
		for _, k := range keys {
			v, ok := r.Lookup(k)
			if !ok {
				return 0, false
			}
			if b.Len() > 0 {
				b.WriteByte(0x1f)
			}
			b.WriteString(stringify(v))
		}
		return xxh3.HashString(b.String()), true
	}

	winners := make(map[uint64]int, in.Len())
	for i, r := range in {
		if k, ok := keyOf(r); ok {
			winners[k] = i
		}
	}

	out := make(records.Collection, 0, in.Len())
	for i, r := range in {
		k, ok := keyOf(r)
		if !ok || winners[k] == i {
			out = append(out, r)
		}
	}
	return out
}
