package features

import "sort"

// DefaultCode is what an empty or never-seen categorical value encodes to.
const DefaultCode = 0

// Vocabulary is a frozen label encoding: sorted distinct values, code =
// position in that order.
type Vocabulary struct {
	classes []string
	index   map[string]int
}

// FitVocabulary learns the encoding of values.
func FitVocabulary(values []string) Vocabulary {
	seen := make(map[string]struct{}, len(values))
	classes := make([]string, 0, 16)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return NewVocabulary(classes)
}

// NewVocabulary rebuilds a vocabulary from its persisted classes. The
// slice must already be in code order.
func NewVocabulary(classes []string) Vocabulary {
	idx := make(map[string]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	return Vocabulary{classes: append([]string(nil), classes...), index: idx}
}

// Code returns the code of v and whether v was part of the vocabulary.
func (v Vocabulary) Code(s string) (int, bool) {
	c, ok := v.index[s]
	if !ok {
		return DefaultCode, false
	}
	return c, true
}

// Class returns the value encoded as code.
func (v Vocabulary) Class(code int) (string, bool) {
	if code < 0 || code >= len(v.classes) {
		return "", false
	}
	return v.classes[code], true
}

func (v Vocabulary) Classes() []string { return append([]string(nil), v.classes...) }

func (v Vocabulary) Len() int { return len(v.classes) }
