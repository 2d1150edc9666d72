// Package ingest is the near edge of the record ingestion boundary: it
// streams newline-delimited JSON into an Inferrer. Discovery,
// deduplication, and restart policy stay with the caller.
package ingest

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/fieldprint/fieldprint/infer"
	"github.com/fieldprint/fieldprint/merge"
)

// maxLineBytes bounds a single record line. Records above this are a
// parse failure, not a crash.
const maxLineBytes = 16 << 20

// ReadAll feeds every non-blank line of r into in. It returns the number
// of lines read and the collected per-line failures; a malformed line
// never aborts the stream.
func ReadAll(r io.Reader, in *infer.Inferrer) (int, []error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), maxLineBytes)

	lines := 0
	var failures []error
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		lines++
		if err := in.AddJSON(line); err != nil {
			if pe, ok := err.(*infer.ParseError); ok {
				pe.Index = lines - 1
			}
			failures = append(failures, err)
		}
	}
	if err := sc.Err(); err != nil {
		failures = append(failures, err)
	}
	return lines, failures
}

// ReadFile is ReadAll over one file.
func ReadFile(path string, in *infer.Inferrer) (int, []error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, []error{err}
	}
	defer f.Close()
	return ReadAll(f, in)
}

// Shard drains records across workers independent Inferrers, merges the
// partials, and finalizes the combined result. This is the intended
// parallelism model: no shared mutable state while accumulating, one
// merge step at the end. The classification of every field is independent
// of how records landed on shards; only example retention is not.
func Shard(records <-chan []byte, workers int, cfg infer.Config) (*infer.InferredSchema, infer.Stats, error) {
	if workers < 1 {
		workers = 1
	}

	parts := make([]*infer.Inferrer, workers)
	for i := range parts {
		p, err := infer.New(cfg)
		if err != nil {
			return nil, infer.Stats{}, err
		}
		parts[i] = p
	}

	wg := &sync.WaitGroup{}
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(p *infer.Inferrer) {
			defer wg.Done()
			for b := range records {
				if err := p.AddJSON(b); err != nil {
					slog.Debug("skipping record", "err", err)
				}
			}
		}(parts[i])
	}
	wg.Wait()

	combined := parts[0]
	for _, p := range parts[1:] {
		if err := combined.Merge(p); err != nil {
			return nil, infer.Stats{}, err
		}
	}

	stats := combined.Stats()
	schema, err := combined.Finalize()
	if err != nil {
		return nil, stats, err
	}
	return schema, stats, nil
}

// ShardFiles runs one Inferrer per file concurrently and merges the
// finalized partial schemas, grouping them first when threshold is below
// 1 so unrelated record populations do not collapse into one schema.
func ShardFiles(paths []string, cfg infer.Config, threshold float64) ([]*merge.Group, error) {
	partials := make([]*infer.InferredSchema, len(paths))
	errs := make([]error, len(paths))

	wg := &sync.WaitGroup{}
	wg.Add(len(paths))
	for i, path := range paths {
		go func(i int, path string) {
			defer wg.Done()
			in, err := infer.New(cfg)
			if err != nil {
				errs[i] = err
				return
			}
			if _, failures := ReadFile(path, in); len(failures) > 0 {
				slog.Warn("ingest failures", "path", path, "count", len(failures))
			}
			partials[i], errs[i] = in.Finalize()
		}(i, path)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return merge.GroupSimilar(partials, threshold), nil
}
