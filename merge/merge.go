// Package merge combines finalized schemas built over disjoint record
// populations and groups similar ones. Accumulator-level merging lives on
// infer.Inferrer; this package works on the immutable results.
package merge

import (
	"github.com/fieldprint/fieldprint/infer"
)

// Schemas unions the path sets of a and b and re-resolves every field from
// the merged counts. The result's record count is the sum of both inputs'.
// Inputs must share a granularity; a's thresholds are applied to the
// result. Neither input is mutated. Associative and commutative aside from
// which examples survive truncation.
func Schemas(a, b *infer.InferredSchema) *infer.InferredSchema {
	if a == nil && b == nil {
		return nil
	}
	if a != nil && b == nil {
		return copySchema(a)
	}
	if a == nil && b != nil {
		return copySchema(b)
	}

	res := &infer.InferredSchema{
		RecordCount:          a.RecordCount + b.RecordCount,
		Fields:               make(map[string]*infer.FieldSchema, max(len(a.Fields), len(b.Fields))),
		MinFieldFrequency:    a.MinFieldFrequency,
		FormatMatchThreshold: a.FormatMatchThreshold,
		MaxExamples:          a.MaxExamples,
		DetectFormats:        a.DetectFormats,
	}

	visited := make(map[string]struct{}, len(a.Fields))
	for path, af := range a.Fields {
		visited[path] = struct{}{}
		f := af.Clone()
		if bf, in := b.Fields[path]; in {
			mergeCounts(f, bf, a.MaxExamples)
		}
		f.Resolve(res.RecordCount, res.DetectFormats, res.FormatMatchThreshold)
		res.Fields[path] = f
	}

	for path, bf := range b.Fields {
		if _, in := visited[path]; in {
			continue
		}
		f := bf.Clone()
		f.Resolve(res.RecordCount, res.DetectFormats, res.FormatMatchThreshold)
		res.Fields[path] = f
	}

	return res
}

// mergeCounts folds b's retained counts into f. Derived fields are stale
// afterwards until Resolve runs.
func mergeCounts(f, b *infer.FieldSchema, maxExamples int) {
	f.Occurrences += b.Occurrences
	f.Nulls += b.Nulls
	for k, n := range b.TypeCounts {
		f.TypeCounts[k] += n
	}
	if b.Numeric != nil {
		if f.Numeric == nil {
			f.Numeric = &infer.NumericStats{}
		}
		f.Numeric.Combine(b.Numeric)
	}
	for _, e := range b.Examples {
		if len(f.Examples) >= maxExamples {
			break
		}
		dup := false
		for _, have := range f.Examples {
			if have == e {
				dup = true
				break
			}
		}
		if !dup {
			f.Examples = append(f.Examples, e)
		}
	}
	for name, n := range b.FormatMatches {
		if f.FormatMatches == nil {
			f.FormatMatches = make(map[string]uint64, len(b.FormatMatches))
		}
		f.FormatMatches[name] += n
	}
	f.StringCount += b.StringCount
}

func copySchema(s *infer.InferredSchema) *infer.InferredSchema {
	c := *s
	c.Fields = make(map[string]*infer.FieldSchema, len(s.Fields))
	for path, f := range s.Fields {
		c.Fields[path] = f.Clone()
	}
	return &c
}
