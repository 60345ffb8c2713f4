// Package moderation masks contact-sharing attempts in chat messages for
// professionals whose plan does not include direct contact.
package moderation

import (
	"log/slog"
	"unicode"

	"github.com/abadojack/whatlanggo"
	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// minPhoneDigits is the number of digits from which a run is treated as a phone number.
const minPhoneDigits = 8

type Moderator struct {
	log      *slog.Logger
	all      *goahocorasick.Machine
	byLang   map[string]*goahocorasick.Machine
	maskChar rune
}

type TextMapping struct {
	Normalized []rune
	OrigIdx    []int
}

// NewModerator builds one Aho-Corasick automaton per language plus one holding every term.
func NewModerator(lists TermLists, maskChar rune, log *slog.Logger) (*Moderator, error) {
	all, err := build(lo.Uniq(lo.Flatten(lo.Values(map[string][]string(lists)))))
	if err != nil {
		return nil, err
	}
	byLang := make(map[string]*goahocorasick.Machine, len(lists))
	for lang, terms := range lists {
		machine, err := build(terms)
		if err != nil {
			return nil, err
		}
		byLang[lang] = machine
	}
	return &Moderator{log: log, all: all, byLang: byLang, maskChar: maskChar}, nil
}

func build(terms []string) (*goahocorasick.Machine, error) {
	seen := make(map[string]struct{}, len(terms))
	patterns := make([][]rune, 0, len(terms))
	for _, term := range terms {
		p := normalizeRunes([]rune(term))
		if _, dup := seen[string(p)]; dup || len(p) == 0 {
			continue
		}
		seen[string(p)] = struct{}{}
		patterns = append(patterns, p)
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return m, nil
}

// Mask replaces contact terms and phone numbers with the mask character,
// preserving spacing. It returns the masked text and the matched terms.
func (m *Moderator) Mask(original string) (string, []string) {
	origRunes := []rune(original)
	found := m.maskTerms(original, origRunes)
	if maskPhoneNumbers(origRunes, m.maskChar) {
		found = append(found, "phone")
	}
	if len(found) > 0 {
		m.log.Debug("Contact sharing masked", "terms", found)
	}
	return string(origRunes), found
}

// machineFor picks the term list of the detected language, all lists when unsure.
func (m *Moderator) machineFor(text string) *goahocorasick.Machine {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return m.all
	}
	if machine, ok := m.byLang[info.Lang.Iso6391()]; ok {
		return machine
	}
	return m.all
}

func (m *Moderator) maskTerms(original string, origRunes []rune) []string {
	mapping := normalize(original)
	if len(mapping.Normalized) == 0 {
		return nil
	}

	var found []string
	spans := m.machineFor(original).MultiPatternSearch(mapping.Normalized, false)
	for _, span := range spans {
		normStart := span.Pos
		normEnd := normStart + len(span.Word)
		if normStart < 0 || normEnd > len(mapping.OrigIdx) {
			continue
		}

		origStart := mapping.OrigIdx[normStart]
		origEnd := mapping.OrigIdx[normEnd-1] + 1
		for i := origStart; i < origEnd; i++ {
			origRunes[i] = m.maskChar
		}
		found = append(found, string(span.Word))
	}
	return found
}

// maskPhoneNumbers masks the digits of runs made of digits and phone separators
// holding at least minPhoneDigits digits.
func maskPhoneNumbers(runes []rune, maskChar rune) bool {
	masked := false
	start, digits := -1, 0
	flush := func(end int) {
		if start >= 0 && digits >= minPhoneDigits {
			for i := start; i < end; i++ {
				if unicode.IsDigit(runes[i]) {
					runes[i] = maskChar
				}
			}
			masked = true
		}
		start, digits = -1, 0
	}
	for i, r := range runes {
		switch {
		case unicode.IsDigit(r):
			if start < 0 {
				start = i
			}
			digits++
		case start >= 0 && isPhoneSeparator(r):
		default:
			flush(i)
		}
	}
	flush(len(runes))
	return masked
}

func isPhoneSeparator(r rune) bool {
	switch r {
	case ' ', '-', '.', '(', ')', '+':
		return true
	default:
		return false
	}
}

// normalize transforms the input into a searchable form and tracks original rune positions.
func normalize(input string) TextMapping {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return TextMapping{Normalized: norm, OrigIdx: origIdx}
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune folds accents and common leet substitutions, so that
// "têlefone" and "wh@tsapp" match their plain forms.
func simplifyRune(r rune) rune {
	switch r {
	case '@':
		return 'a'
	case '€':
		return 'e'
	case '!', '|':
		return 'i'
	case '$':
		return 's'
	case 'á', 'à', 'â', 'ã', 'Á', 'À', 'Â', 'Ã':
		return 'a'
	case 'é', 'ê', 'É', 'Ê':
		return 'e'
	case 'í', 'Í':
		return 'i'
	case 'ó', 'ô', 'õ', 'Ó', 'Ô', 'Õ':
		return 'o'
	case 'ú', 'Ú':
		return 'u'
	case 'ç', 'Ç':
		return 'c'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
