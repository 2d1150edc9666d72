package infer

import (
	"math"
	"sort"

	"github.com/valyala/fastjson"
)

// Stats reports progress counters for one Inferrer. Valid to read in
// either state.
type Stats struct {
	RecordsSubmitted uint64 `json:"recordsSubmitted"`
	RecordsSampled   uint64 `json:"recordsSampled"`
	ParseFailures    uint64 `json:"parseFailures"`
}

// Inferrer folds a record stream into per-path profiles and resolves them
// into an InferredSchema on Finalize. Not safe for concurrent use; run one
// Inferrer per goroutine and combine with Merge.
type Inferrer struct {
	cfg       Config
	fields    map[string]*FieldProfile
	stats     Stats
	finalized bool
}

func New(cfg Config) (*Inferrer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Inferrer{
		cfg:    cfg,
		fields: make(map[string]*FieldProfile),
	}, nil
}

func (in *Inferrer) Config() Config {
	return in.cfg
}

func (in *Inferrer) Stats() Stats {
	return in.stats
}

// PathCount is the number of field paths currently tracked. The path map
// grows monotonically until Finalize, so this is the thing to watch for
// record populations with user-controlled keys.
func (in *Inferrer) PathCount() int {
	return len(in.fields)
}

// AddValue folds one already-parsed record into the profiles. Records past
// the SampleSize cap still count as submitted but are not folded.
func (in *Inferrer) AddValue(v any) error {
	if in.finalized {
		return ErrFinalized
	}
	in.stats.RecordsSubmitted++
	if in.capped() {
		return nil
	}
	in.stats.RecordsSampled++
	in.walkAny(v, "", 0)
	return nil
}

// AddJSON parses one raw record and folds it in. A parse failure is
// recorded and skipped; prior accumulation is untouched.
func (in *Inferrer) AddJSON(b []byte) error {
	if in.finalized {
		return ErrFinalized
	}
	in.stats.RecordsSubmitted++
	v, err := fastjson.ParseBytes(b)
	if err != nil {
		in.stats.ParseFailures++
		return &ParseError{Err: err}
	}
	if in.capped() {
		return nil
	}
	in.stats.RecordsSampled++
	in.walkFast(v, "", 0)
	return nil
}

// AddJSONBatch applies AddJSON to every record, collecting failures
// instead of stopping at the first. A batch with some malformed entries
// still contributes statistics from the valid ones.
func (in *Inferrer) AddJSONBatch(records [][]byte) []error {
	if in.finalized {
		return []error{ErrFinalized}
	}
	var failures []error
	for i, b := range records {
		if err := in.AddJSON(b); err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Index = i
			}
			failures = append(failures, err)
		}
	}
	return failures
}

// Merge folds other's profiles and counters into in. Both sides must still
// be accumulating; other is left unchanged. Merge is associative and
// commutative apart from which examples survive truncation, so shards may
// be combined in any order.
func (in *Inferrer) Merge(other *Inferrer) error {
	if in.finalized || other.finalized {
		return ErrFinalized
	}
	for path, op := range other.fields {
		p, ok := in.fields[path]
		if !ok {
			p = newFieldProfile(path)
			in.fields[path] = p
		}
		p.Merge(op, in.cfg.MaxExamples)
	}
	in.stats.RecordsSubmitted += other.stats.RecordsSubmitted
	in.stats.RecordsSampled += other.stats.RecordsSampled
	in.stats.ParseFailures += other.stats.ParseFailures
	return nil
}

// Finalize transitions to the terminal state and resolves the profiles
// into an immutable schema. Frequency filtering, required/nullable flags,
// and format attribution all happen here and only here.
func (in *Inferrer) Finalize() (*InferredSchema, error) {
	if in.finalized {
		return nil, ErrFinalized
	}
	in.finalized = true

	s := &InferredSchema{
		RecordCount:          in.stats.RecordsSampled,
		Fields:               make(map[string]*FieldSchema, len(in.fields)),
		MinFieldFrequency:    in.cfg.MinFieldFrequency,
		FormatMatchThreshold: in.cfg.FormatMatchThreshold,
		MaxExamples:          in.cfg.MaxExamples,
		DetectFormats:        in.cfg.DetectFormats,
	}

	paths := make([]string, 0, len(in.fields))
	for path := range in.fields {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		p := in.fields[path]
		if s.RecordCount > 0 {
			freq := float64(p.Occurrences) / float64(s.RecordCount)
			if freq < in.cfg.MinFieldFrequency {
				continue
			}
		}
		f := fieldSchemaFromProfile(p)
		f.Resolve(s.RecordCount, in.cfg.DetectFormats, in.cfg.FormatMatchThreshold)
		s.Fields[path] = f
	}

	return s, nil
}

func (in *Inferrer) capped() bool {
	return in.cfg.SampleSize > 0 && in.stats.RecordsSampled >= uint64(in.cfg.SampleSize)
}

func (in *Inferrer) profile(path string) *FieldProfile {
	p, ok := in.fields[path]
	if !ok {
		p = newFieldProfile(path)
		in.fields[path] = p
	}
	return p
}

func (in *Inferrer) expandable(depth int) bool {
	return in.cfg.MaxDepth == 0 || depth < in.cfg.MaxDepth
}

func childPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func elemPath(path string) string {
	if path == "" {
		return "[]"
	}
	return path + ".[]"
}

// walkAny handles records that arrive already parsed, in the shapes
// encoding/json produces. Numbers all arrive as float64 there, so finite
// integral floats classify as integers.
func (in *Inferrer) walkAny(v any, path string, depth int) {
	switch val := v.(type) {
	case nil:
		in.profile(path).observeNull()
	case bool:
		in.profile(path).observeBool(val, &in.cfg)
	case string:
		in.profile(path).observeString(val, &in.cfg)
	case float64:
		if math.Trunc(val) == val && !math.IsInf(val, 0) && !math.IsNaN(val) {
			in.profile(path).observeInt(int64(val), &in.cfg)
		} else {
			in.profile(path).observeFloat(val, &in.cfg)
		}
	case float32:
		in.walkAny(float64(val), path, depth)
	case int:
		in.profile(path).observeInt(int64(val), &in.cfg)
	case int32:
		in.profile(path).observeInt(int64(val), &in.cfg)
	case int64:
		in.profile(path).observeInt(val, &in.cfg)
	case []any:
		if path != "" {
			in.profile(path).observeContainer(KindArray)
		}
		if !in.expandable(depth) && path != "" {
			return
		}
		for _, e := range val {
			in.walkAny(e, elemPath(path), depth+1)
		}
	case map[string]any:
		if path != "" {
			in.profile(path).observeContainer(KindObject)
		}
		if !in.expandable(depth) && path != "" {
			return
		}
		for k, e := range val {
			in.walkAny(e, childPath(path, k), depth+1)
		}
	}
}
