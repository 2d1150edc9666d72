package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, cfg Config) *Inferrer {
	t.Helper()
	in, err := New(cfg)
	require.NoError(t, err)
	return in
}

func addAll(t *testing.T, in *Inferrer, records ...string) {
	t.Helper()
	for _, r := range records {
		require.NoError(t, in.AddJSON([]byte(r)))
	}
}

func TestConfigValidation(t *testing.T) {
	bad := []Config{
		{MinFieldFrequency: -0.1},
		{MinFieldFrequency: 1.5},
		{FormatMatchThreshold: 2},
		{FormatMatchThreshold: -1},
		{MaxExamples: -1},
		{SampleSize: -3},
		{MaxDepth: -1},
	}
	for _, cfg := range bad {
		_, err := New(cfg)
		var ce *ConfigError
		assert.ErrorAs(t, err, &ce)
	}

	_, err := New(DefaultConfig())
	assert.NoError(t, err)
}

func TestBasicInference(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinFieldFrequency = 0.5
	in := mustNew(t, cfg)

	addAll(t, in,
		`{"id":1,"name":"Alice"}`,
		`{"id":2,"name":"Bob","email":"bob@x.com"}`,
		`{"id":3,"name":"Carol"}`,
	)

	s, err := in.Finalize()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), s.RecordCount)

	id := s.Fields["id"]
	require.NotNil(t, id)
	assert.Equal(t, KindInteger, id.Type)
	assert.True(t, id.Required)
	assert.False(t, id.Nullable)

	name := s.Fields["name"]
	require.NotNil(t, name)
	assert.Equal(t, KindString, name.Type)
	assert.True(t, name.Required)

	// 1/3 < 0.5, dropped at finalize
	assert.NotContains(t, s.Fields, "email")
}

func TestTypePromotion(t *testing.T) {
	in := mustNew(t, DefaultConfig())
	addAll(t, in, `{"value":10}`, `{"value":20.5}`)

	s, err := in.Finalize()
	require.NoError(t, err)

	f := s.Fields["value"]
	require.NotNil(t, f)
	assert.Equal(t, KindNumber, f.Type)
	assert.Empty(t, f.Mixed)
}

func TestMixedFallback(t *testing.T) {
	in := mustNew(t, DefaultConfig())
	addAll(t, in, `{"value":10}`, `{"value":20.5}`, `{"value":"n/a"}`)

	s, err := in.Finalize()
	require.NoError(t, err)

	f := s.Fields["value"]
	require.NotNil(t, f)
	assert.Equal(t, KindMixed, f.Type)
	assert.Equal(t, []Kind{KindNumber, KindString}, f.Mixed)
}

func TestMixedStringInteger(t *testing.T) {
	in := mustNew(t, DefaultConfig())
	addAll(t, in, `{"v":"s"}`, `{"v":1}`)

	s, err := in.Finalize()
	require.NoError(t, err)

	f := s.Fields["v"]
	require.NotNil(t, f)
	assert.Equal(t, KindMixed, f.Type)
	assert.Equal(t, []Kind{KindInteger, KindString}, f.Mixed)
}

func TestNullability(t *testing.T) {
	in := mustNew(t, DefaultConfig())
	addAll(t, in, `{"a":1,"b":null}`, `{"a":2,"b":3}`)

	s, err := in.Finalize()
	require.NoError(t, err)

	a := s.Fields["a"]
	require.NotNil(t, a)
	assert.True(t, a.Required)
	assert.False(t, a.Nullable)

	b := s.Fields["b"]
	require.NotNil(t, b)
	assert.False(t, b.Required)
	assert.True(t, b.Nullable)
	assert.Equal(t, uint64(2), b.Occurrences)
	assert.Equal(t, uint64(1), b.Nulls)
}

func TestNestedPaths(t *testing.T) {
	in := mustNew(t, DefaultConfig())
	addAll(t, in,
		`{"orders":[{"id":1},{"id":2}],"user":{"name":"a"}}`,
		`{"orders":[{"id":3}],"user":{"name":"b"}}`,
	)

	s, err := in.Finalize()
	require.NoError(t, err)

	assert.Equal(t, KindArray, s.Fields["orders"].Type)
	assert.Equal(t, KindObject, s.Fields["orders.[]"].Type)
	assert.Equal(t, KindInteger, s.Fields["orders.[].id"].Type)
	assert.Equal(t, KindObject, s.Fields["user"].Type)
	assert.Equal(t, KindString, s.Fields["user.name"].Type)

	// three elements seen across both records
	assert.Equal(t, uint64(3), s.Fields["orders.[].id"].Occurrences)
}

func TestEmptyArrayStillResolvesArray(t *testing.T) {
	in := mustNew(t, DefaultConfig())
	addAll(t, in, `{"tags":[]}`, `{"tags":["a","b"]}`)

	s, err := in.Finalize()
	require.NoError(t, err)

	assert.Equal(t, KindArray, s.Fields["tags"].Type)
	assert.Equal(t, KindString, s.Fields["tags.[]"].Type)
	assert.Equal(t, uint64(2), s.Fields["tags.[]"].Occurrences)
}

func TestMaxDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 1
	in := mustNew(t, cfg)
	addAll(t, in, `{"a":{"b":{"c":1}}}`)

	s, err := in.Finalize()
	require.NoError(t, err)

	// the top-level field keeps its type, children are not profiled
	assert.Equal(t, KindObject, s.Fields["a"].Type)
	assert.NotContains(t, s.Fields, "a.b")
	assert.NotContains(t, s.Fields, "a.b.c")
}

func TestSampleCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleSize = 2
	in := mustNew(t, cfg)

	addAll(t, in,
		`{"a":1}`, `{"a":2}`, `{"a":3,"late":true}`, `{"a":4}`, `{"a":5}`,
	)

	stats := in.Stats()
	assert.Equal(t, uint64(5), stats.RecordsSubmitted)
	assert.Equal(t, uint64(2), stats.RecordsSampled)

	s, err := in.Finalize()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.RecordCount)
	assert.Equal(t, uint64(2), s.Fields["a"].Occurrences)
	assert.NotContains(t, s.Fields, "late")
}

func TestParseFailureDoesNotMutateState(t *testing.T) {
	in := mustNew(t, DefaultConfig())
	addAll(t, in, `{"a":1}`)

	err := in.AddJSON([]byte(`{"a":`))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)

	addAll(t, in, `{"a":2}`)

	stats := in.Stats()
	assert.Equal(t, uint64(3), stats.RecordsSubmitted)
	assert.Equal(t, uint64(2), stats.RecordsSampled)
	assert.Equal(t, uint64(1), stats.ParseFailures)

	s, err := in.Finalize()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.Fields["a"].Occurrences)
}

func TestBatchPartialFailure(t *testing.T) {
	in := mustNew(t, DefaultConfig())

	failures := in.AddJSONBatch([][]byte{
		[]byte(`{"a":1}`),
		[]byte(`not json`),
		[]byte(`{"a":2}`),
		[]byte(`{{`),
	})

	require.Len(t, failures, 2)
	var pe *ParseError
	require.ErrorAs(t, failures[0], &pe)
	assert.Equal(t, 1, pe.Index)

	stats := in.Stats()
	assert.Equal(t, uint64(4), stats.RecordsSubmitted)
	assert.Equal(t, uint64(2), stats.RecordsSampled)
	assert.Equal(t, uint64(2), stats.ParseFailures)
}

func TestMutateAfterFinalize(t *testing.T) {
	in := mustNew(t, DefaultConfig())
	addAll(t, in, `{"a":1}`)

	_, err := in.Finalize()
	require.NoError(t, err)

	assert.ErrorIs(t, in.AddJSON([]byte(`{"a":2}`)), ErrFinalized)
	assert.ErrorIs(t, in.AddValue(map[string]any{"a": 2.0}), ErrFinalized)

	failures := in.AddJSONBatch([][]byte{[]byte(`{}`)})
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], ErrFinalized)

	_, err = in.Finalize()
	assert.ErrorIs(t, err, ErrFinalized)

	// stats stay readable in the terminal state
	assert.Equal(t, uint64(1), in.Stats().RecordsSampled)
}

func TestAddValueParsedRecords(t *testing.T) {
	in := mustNew(t, DefaultConfig())

	require.NoError(t, in.AddValue(map[string]any{
		"id":    float64(7), // encoding/json delivers numbers as float64
		"score": 1.5,
		"name":  "x",
		"tags":  []any{"a"},
	}))

	s, err := in.Finalize()
	require.NoError(t, err)

	assert.Equal(t, KindInteger, s.Fields["id"].Type)
	assert.Equal(t, KindNumber, s.Fields["score"].Type)
	assert.Equal(t, KindString, s.Fields["name"].Type)
	assert.Equal(t, KindArray, s.Fields["tags"].Type)
	assert.Equal(t, KindString, s.Fields["tags.[]"].Type)
}

func TestFormatThreshold(t *testing.T) {
	in := mustNew(t, DefaultConfig())
	for i := 0; i < 9; i++ {
		addAll(t, in, `{"contact":"user`+string(rune('a'+i))+`@example.com"}`)
	}
	addAll(t, in, `{"contact":"no reply"}`)

	s, err := in.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "email", s.Fields["contact"].Format)
}

func TestFormatBelowThreshold(t *testing.T) {
	in := mustNew(t, DefaultConfig())
	for i := 0; i < 8; i++ {
		addAll(t, in, `{"contact":"user`+string(rune('a'+i))+`@example.com"}`)
	}
	addAll(t, in, `{"contact":"no reply"}`, `{"contact":"also not"}`)

	s, err := in.Finalize()
	require.NoError(t, err)
	assert.Empty(t, s.Fields["contact"].Format)
}

func TestFormatDetectionDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DetectFormats = false
	in := mustNew(t, cfg)
	addAll(t, in, `{"contact":"a@example.com"}`)

	s, err := in.Finalize()
	require.NoError(t, err)
	assert.Empty(t, s.Fields["contact"].Format)
	assert.Empty(t, s.Fields["contact"].FormatMatches)
}

func TestExamplesBoundedAndDistinct(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxExamples = 3
	in := mustNew(t, cfg)
	addAll(t, in,
		`{"v":"a"}`, `{"v":"a"}`, `{"v":"b"}`, `{"v":"c"}`, `{"v":"d"}`,
	)

	s, err := in.Finalize()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, s.Fields["v"].Examples)
}

// stripUnordered drops the order-sensitive parts of a schema (example
// retention, floating-point rounding of the running mean) so merge
// results can be compared exactly.
func stripUnordered(s *InferredSchema) *InferredSchema {
	for _, f := range s.Fields {
		f.Examples = nil
		if f.Numeric != nil {
			f.Numeric.Mean = 0
		}
	}
	return s
}

func TestMergeAssociativeCommutative(t *testing.T) {
	build := func(records ...string) *Inferrer {
		in := mustNew(t, DefaultConfig())
		addAll(t, in, records...)
		return in
	}

	ra := []string{`{"id":1,"v":1.5}`, `{"id":2,"name":"x"}`}
	rb := []string{`{"id":3,"v":10}`, `{"id":4,"email":"a@b.co"}`}
	rc := []string{`{"id":5,"v":-2.5,"name":"y"}`}

	combine := func(order [][]string) *InferredSchema {
		parts := make([]*Inferrer, len(order))
		for i, recs := range order {
			parts[i] = build(recs...)
		}
		require.NoError(t, parts[0].Merge(parts[1]))
		require.NoError(t, parts[0].Merge(parts[2]))
		s, err := parts[0].Finalize()
		require.NoError(t, err)
		return stripUnordered(s)
	}

	s1 := combine([][]string{ra, rb, rc})
	s2 := combine([][]string{rc, ra, rb})
	s3 := combine([][]string{rb, rc, ra})

	assert.Equal(t, s1, s2)
	assert.Equal(t, s1, s3)

	assert.Equal(t, uint64(5), s1.RecordCount)
	assert.Equal(t, KindNumber, s1.Fields["v"].Type)
	assert.Equal(t, -2.5, s1.Fields["v"].Numeric.Min)
	assert.Equal(t, 10.0, s1.Fields["v"].Numeric.Max)
}

func TestMergeAfterFinalizeRejected(t *testing.T) {
	a := mustNew(t, DefaultConfig())
	b := mustNew(t, DefaultConfig())
	_, err := b.Finalize()
	require.NoError(t, err)

	assert.ErrorIs(t, a.Merge(b), ErrFinalized)
}
