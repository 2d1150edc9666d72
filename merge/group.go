package merge

import (
	"github.com/google/uuid"

	"github.com/fieldprint/fieldprint/infer"
)

// DefaultGroupThreshold is the similarity a schema must reach against a
// group's representative to join it.
const DefaultGroupThreshold = 0.95

// Group is one cluster of similar schemas. The representative is the
// running merge of every member.
type Group struct {
	ID             uuid.UUID
	Representative *infer.InferredSchema
	Members        []*infer.InferredSchema
}

// signature is the set of (path, resolved type) pairs similarity is
// computed over.
func signature(s *infer.InferredSchema) map[string]struct{} {
	sig := make(map[string]struct{}, len(s.Fields))
	for path, f := range s.Fields {
		sig[path+"\x00"+f.Type.String()] = struct{}{}
	}
	return sig
}

// Similarity is the Jaccard similarity of the two schemas' signatures.
// Two empty schemas count as identical.
func Similarity(a, b *infer.InferredSchema) float64 {
	sa := signature(a)
	sb := signature(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 1.0
	}

	inter := 0
	for k := range sa {
		if _, in := sb[k]; in {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

// GroupSimilar assigns each schema to the first existing group whose
// representative is at least threshold similar, merging it in; otherwise
// it starts a new group. Single-pass and greedy: membership depends on
// input order, which is deliberate. Callers needing an exact clustering
// should post-process the groups.
func GroupSimilar(schemas []*infer.InferredSchema, threshold float64) []*Group {
	var groups []*Group

	for _, s := range schemas {
		placed := false
		for _, g := range groups {
			if Similarity(g.Representative, s) >= threshold {
				g.Representative = Schemas(g.Representative, s)
				g.Members = append(g.Members, s)
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		groups = append(groups, &Group{
			ID:             uuid.New(),
			Representative: copySchema(s),
			Members:        []*infer.InferredSchema{s},
		})
	}

	return groups
}
