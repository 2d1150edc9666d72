package infer

import (
	"github.com/fieldprint/fieldprint/format"
)

// NumericStats tracks the range and running mean of numeric observations.
// The mean is updated incrementally instead of from a raw sum so precision
// holds up across very large or merged counts.
type NumericStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Count uint64  `json:"count"`
}

func (s *NumericStats) observe(x float64) {
	if s.Count == 0 {
		s.Min = x
		s.Max = x
	} else {
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
	}
	s.Count++
	s.Mean += (x - s.Mean) / float64(s.Count)
}

// Combine folds another stats value in; the merged mean is the
// count-weighted combination of the two means.
func (s *NumericStats) Combine(o *NumericStats) {
	if o == nil || o.Count == 0 {
		return
	}
	if s.Count == 0 {
		*s = *o
		return
	}
	if o.Min < s.Min {
		s.Min = o.Min
	}
	if o.Max > s.Max {
		s.Max = o.Max
	}
	total := s.Count + o.Count
	s.Mean = s.Mean*(float64(s.Count)/float64(total)) + o.Mean*(float64(o.Count)/float64(total))
	s.Count = total
}

func (s *NumericStats) clone() *NumericStats {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// FieldProfile accumulates per-path statistics during inference.
type FieldProfile struct {
	Path          string            `json:"path"`
	Occurrences   uint64            `json:"occurrences"`
	Nulls         uint64            `json:"nulls"`
	TypeCounts    map[Kind]uint64   `json:"typeCounts"`
	Numeric       *NumericStats     `json:"numeric,omitempty"`
	Examples      []any             `json:"examples,omitempty"`
	FormatMatches map[string]uint64 `json:"formatMatches,omitempty"`
	StringCount   uint64            `json:"stringCount"`
}

func newFieldProfile(path string) *FieldProfile {
	return &FieldProfile{
		Path:       path,
		TypeCounts: make(map[Kind]uint64),
	}
}

func (p *FieldProfile) observeNull() {
	p.Occurrences++
	p.Nulls++
}

func (p *FieldProfile) observeBool(b bool, cfg *Config) {
	p.Occurrences++
	p.TypeCounts[KindBool]++
	p.addExample(b, cfg)
}

func (p *FieldProfile) observeInt(i int64, cfg *Config) {
	p.Occurrences++
	p.TypeCounts[KindInteger]++
	p.numeric().observe(float64(i))
	p.addExample(i, cfg)
}

func (p *FieldProfile) observeFloat(f float64, cfg *Config) {
	p.Occurrences++
	p.TypeCounts[KindNumber]++
	p.numeric().observe(f)
	p.addExample(f, cfg)
}

func (p *FieldProfile) observeString(s string, cfg *Config) {
	p.Occurrences++
	p.TypeCounts[KindString]++
	p.StringCount++
	if cfg.DetectFormats {
		if name, ok := format.Detect(s); ok {
			if p.FormatMatches == nil {
				p.FormatMatches = make(map[string]uint64)
			}
			p.FormatMatches[name]++
		}
	}
	p.addExample(s, cfg)
}

// observeContainer records the presence of an array or object at this path.
// Children are profiled separately under their own paths.
func (p *FieldProfile) observeContainer(k Kind) {
	p.Occurrences++
	p.TypeCounts[k]++
}

func (p *FieldProfile) numeric() *NumericStats {
	if p.Numeric == nil {
		p.Numeric = &NumericStats{}
	}
	return p.Numeric
}

// addExample keeps up to MaxExamples distinct scalar values in insertion
// order. Containers never reach here.
func (p *FieldProfile) addExample(v any, cfg *Config) {
	if !cfg.CollectExamples || len(p.Examples) >= cfg.MaxExamples {
		return
	}
	for _, e := range p.Examples {
		if e == v {
			return
		}
	}
	p.Examples = append(p.Examples, v)
}

// Merge folds other into p without mutating other. Counts sum, ranges take
// elementwise min/max, the mean is recombined by weight, and examples union
// up to maxExamples with p's own examples surviving first on overflow.
func (p *FieldProfile) Merge(other *FieldProfile, maxExamples int) {
	p.Occurrences += other.Occurrences
	p.Nulls += other.Nulls
	for k, n := range other.TypeCounts {
		p.TypeCounts[k] += n
	}
	if other.Numeric != nil {
		p.numeric().Combine(other.Numeric)
	}
	for _, e := range other.Examples {
		if len(p.Examples) >= maxExamples {
			break
		}
		dup := false
		for _, have := range p.Examples {
			if have == e {
				dup = true
				break
			}
		}
		if !dup {
			p.Examples = append(p.Examples, e)
		}
	}
	for name, n := range other.FormatMatches {
		if p.FormatMatches == nil {
			p.FormatMatches = make(map[string]uint64)
		}
		p.FormatMatches[name] += n
	}
	p.StringCount += other.StringCount
}

func (p *FieldProfile) clone() *FieldProfile {
	c := newFieldProfile(p.Path)
	c.Occurrences = p.Occurrences
	c.Nulls = p.Nulls
	for k, n := range p.TypeCounts {
		c.TypeCounts[k] = n
	}
	c.Numeric = p.Numeric.clone()
	c.Examples = append([]any(nil), p.Examples...)
	if p.FormatMatches != nil {
		c.FormatMatches = make(map[string]uint64, len(p.FormatMatches))
		for name, n := range p.FormatMatches {
			c.FormatMatches[name] = n
		}
	}
	c.StringCount = p.StringCount
	return c
}
