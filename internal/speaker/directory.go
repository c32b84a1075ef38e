// Package speaker provides the catalogue of VoiceVox voices, lookup by a
// user-supplied token, and the grouped overview shown by the list command.
package speaker

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Speaker is an immutable catalogue entry.
type Speaker struct {
	ID   int
	Name string
}

// Group clusters catalogue entries sharing a base character name.
// Members are ordered by id.
type Group struct {
	Base    string
	Members []Speaker
}

// FirstID returns the smallest id in the group.
func (g Group) FirstID() int {
	return g.Members[0].ID
}

// Vocabulary defines the variant markers that terminate a base name.
type Vocabulary struct {
	// Words are qualifier words such as "甜" or "耳语".
	Words []string
	// KanaMarkers treats any hiragana rune as a marker as well.
	KanaMarkers bool
}

// DefaultVocabulary is the marker set matching DefaultCatalogue.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{Words: DefaultQualifiers, KanaMarkers: true}
}

// BaseName returns the prefix of name before the first marker, or name itself
// when that prefix would be empty.
func (v Vocabulary) BaseName(name string) string {
	cut := len(name)

	for _, word := range v.Words {
		if word == "" {
			continue
		}

		if idx := strings.Index(name, word); idx >= 0 && idx < cut {
			cut = idx
		}
	}

	if v.KanaMarkers {
		if idx := strings.IndexFunc(name, isHiragana); idx >= 0 && idx < cut {
			cut = idx
		}
	}

	if cut == 0 {
		return name
	}

	return name[:cut]
}

func isHiragana(r rune) bool {
	return r >= 'あ' && r <= 'ん'
}

// Directory is a read-only view over a catalogue ordered by id. It is safe
// for concurrent use.
//
// When several entries match a name token, the one with the lowest id wins.
type Directory struct {
	speakers []Speaker
	vocab    Vocabulary
}

// New creates a directory over a copy of speakers.
func New(speakers []Speaker, vocab Vocabulary) *Directory {
	sorted := slices.Clone(speakers)
	slices.SortStableFunc(sorted, func(a, b Speaker) int { return cmp.Compare(a.ID, b.ID) })

	return &Directory{speakers: sorted, vocab: vocab}
}

// NewDefault creates a directory over DefaultCatalogue.
func NewDefault() *Directory {
	return New(DefaultCatalogue, DefaultVocabulary())
}

// Resolve maps a token to a speaker id. A numeric token matching an id wins;
// otherwise the first entry whose name contains the token, compared
// case-insensitively and then literally, is returned.
func (d *Directory) Resolve(token string) (int, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false
	}

	if id, err := strconv.Atoi(token); err == nil {
		if _, ok := d.Name(id); ok {
			return id, true
		}
	}

	lowered := strings.ToLower(token)
	for _, s := range d.speakers {
		if strings.Contains(strings.ToLower(s.Name), lowered) {
			return s.ID, true
		}
	}

	for _, s := range d.speakers {
		if strings.Contains(s.Name, token) {
			return s.ID, true
		}
	}

	return 0, false
}

// Name returns the display name of id.
func (d *Directory) Name(id int) (string, bool) {
	idx, found := slices.BinarySearchFunc(d.speakers, id, func(s Speaker, target int) int {
		return cmp.Compare(s.ID, target)
	})
	if !found {
		return "", false
	}

	return d.speakers[idx].Name, true
}

// List returns the full catalogue ordered by id.
func (d *Directory) List() []Speaker {
	return slices.Clone(d.speakers)
}

// Filter returns the entries whose name contains term (case-insensitively or
// literally) or whose id equals term.
func (d *Directory) Filter(term string) []Speaker {
	lowered := strings.ToLower(term)

	var matches []Speaker

	for _, s := range d.speakers {
		if strings.Contains(strings.ToLower(s.Name), lowered) ||
			strings.Contains(s.Name, term) ||
			strconv.Itoa(s.ID) == term {
			matches = append(matches, s)
		}
	}

	return matches
}

// Groups clusters the catalogue by base name, ordered by each group's
// smallest id.
func (d *Directory) Groups() []Group {
	index := make(map[string]int)

	var groups []Group

	for _, s := range d.speakers {
		base := d.vocab.BaseName(s.Name)

		pos, ok := index[base]
		if !ok {
			pos = len(groups)
			index[base] = pos
			groups = append(groups, Group{Base: base})
		}

		groups[pos].Members = append(groups[pos].Members, s)
	}

	// Speakers are visited in id order, so groups come out ordered by first id.
	return groups
}
