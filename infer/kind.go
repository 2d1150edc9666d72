package infer

import (
	"fmt"
	"sort"
)

// Kind is the closed set of type tags a field observation can carry.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindNumber
	KindString
	KindArray
	KindObject
	KindMixed
)

var kindNames = map[Kind]string{
	KindNull:    "null",
	KindBool:    "boolean",
	KindInteger: "integer",
	KindNumber:  "number",
	KindString:  "string",
	KindArray:   "array",
	KindObject:  "object",
	KindMixed:   "mixed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText lets Kind serve as a JSON map key and value.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown kind %q", string(b))
}

func (k Kind) isNumeric() bool {
	return k == KindInteger || k == KindNumber
}

// resolveKinds collapses an observed tag set into a single classification.
// Integer and Number together promote to Number. Any other combination of
// two or more tags is Mixed; the constituents come back sorted, with the
// numeric pair already collapsed.
func resolveKinds(counts map[Kind]uint64) (Kind, []Kind) {
	kinds := make([]Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	switch len(kinds) {
	case 0:
		return KindNull, nil
	case 1:
		return kinds[0], nil
	case 2:
		if kinds[0] == KindInteger && kinds[1] == KindNumber {
			return KindNumber, nil
		}
	}

	members := make([]Kind, 0, len(kinds))
	sawNumeric := false
	for _, k := range kinds {
		if k.isNumeric() {
			if sawNumeric {
				continue
			}
			sawNumeric = true
			k = KindNumber
			if _, hasFloat := counts[KindNumber]; !hasFloat {
				k = KindInteger
			}
		}
		members = append(members, k)
	}
	sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
	return KindMixed, members
}
