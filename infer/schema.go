package infer

// FieldSchema is the resolved description of one field path. The raw
// counts are retained alongside the derived fields so finalized schemas
// from disjoint record sets can still be merged without losing frequency,
// required, or format semantics.
type FieldSchema struct {
	Path     string `json:"path"`
	Type     Kind   `json:"type"`
	Mixed    []Kind `json:"mixed,omitempty"`
	Nullable bool   `json:"nullable"`
	Required bool   `json:"required"`
	Format   string `json:"format,omitempty"`

	Numeric  *NumericStats `json:"numeric,omitempty"`
	Examples []any         `json:"examples,omitempty"`

	Occurrences   uint64            `json:"occurrences"`
	Nulls         uint64            `json:"nulls"`
	TypeCounts    map[Kind]uint64   `json:"typeCounts"`
	FormatMatches map[string]uint64 `json:"formatMatches,omitempty"`
	StringCount   uint64            `json:"stringCount"`
}

// Resolve recomputes the derived classification from the retained counts.
// Deterministic for a given count set, so re-resolving after a merge keeps
// the commutativity of accumulation.
func (f *FieldSchema) Resolve(recordCount uint64, detectFormats bool, formatThreshold float64) {
	f.Type, f.Mixed = resolveKinds(f.TypeCounts)
	f.Nullable = f.Nulls > 0
	f.Required = recordCount > 0 && f.Occurrences == recordCount && f.Nulls == 0

	f.Format = ""
	if detectFormats && f.StringCount > 0 {
		cleared := ""
		n := 0
		for name, matches := range f.FormatMatches {
			if float64(matches)/float64(f.StringCount) >= formatThreshold {
				cleared = name
				n++
			}
		}
		// ambiguous or mixed formats stay unannotated
		if n == 1 {
			f.Format = cleared
		}
	}
}

// InferredSchema is the immutable result of Finalize. The thresholds it
// was resolved with ride along so merges of finalized schemas can apply
// the same rules.
type InferredSchema struct {
	RecordCount uint64                  `json:"recordCount"`
	Fields      map[string]*FieldSchema `json:"fields"`

	MinFieldFrequency    float64 `json:"minFieldFrequency"`
	FormatMatchThreshold float64 `json:"formatMatchThreshold"`
	MaxExamples          int     `json:"maxExamples"`
	DetectFormats        bool    `json:"detectFormats"`
}

func fieldSchemaFromProfile(p *FieldProfile) *FieldSchema {
	c := p.clone()
	return &FieldSchema{
		Path:          c.Path,
		Numeric:       c.Numeric,
		Examples:      c.Examples,
		Occurrences:   c.Occurrences,
		Nulls:         c.Nulls,
		TypeCounts:    c.TypeCounts,
		FormatMatches: c.FormatMatches,
		StringCount:   c.StringCount,
	}
}

// Clone deep-copies a field schema, counts included.
func (f *FieldSchema) Clone() *FieldSchema {
	c := *f
	c.Mixed = append([]Kind(nil), f.Mixed...)
	c.Numeric = f.Numeric.clone()
	c.Examples = append([]any(nil), f.Examples...)
	c.TypeCounts = make(map[Kind]uint64, len(f.TypeCounts))
	for k, n := range f.TypeCounts {
		c.TypeCounts[k] = n
	}
	if f.FormatMatches != nil {
		c.FormatMatches = make(map[string]uint64, len(f.FormatMatches))
		for name, n := range f.FormatMatches {
			c.FormatMatches[name] = n
		}
	}
	return &c
}
