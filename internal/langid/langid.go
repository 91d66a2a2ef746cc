// Package langid holds the OS/2 language table used to validate the
// language family and sub-id stored in a catalog's country block.
package langid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

var (
	ErrLanguageOutOfRange      = errors.New("language family out of range")
	ErrLanguageSubIDOutOfRange = errors.New("language sub-id out of range")
	ErrMalformedLanguage       = errors.New("malformed language id")
)

const (
	MinFamily = 1
	MaxFamily = 34
)

// Language is one row of the table.
type Language struct {
	Code    string // three letter OS/2 code, e.g. "ENU"
	Family  uint16
	Sub     uint16
	Name    string
	Country string
	Tag     language.Tag
}

// ID is a validated family and sub-id pair.
type ID struct {
	Family uint16
	Sub    uint16
}

func (id ID) String() string {
	return fmt.Sprintf("%d,%d", id.Family, id.Sub)
}

var table = []Language{
	{"ARA", 1, 2, "Arabic", "Arab Countries", language.Arabic},
	{"BGR", 2, 1, "Bulgarian", "Bulgaria", language.Bulgarian},
	{"CAT", 3, 1, "Catalan", "Spain", language.Catalan},
	{"CHT", 4, 1, "Traditional Chinese", "R.O.C.", language.TraditionalChinese},
	{"CHS", 4, 2, "Simplified Chinese", "P.R.C.", language.SimplifiedChinese},
	{"CSY", 5, 1, "Czech", "Czechoslovakia", language.Czech},
	{"DAN", 6, 1, "Danish", "Denmark", language.Danish},
	{"DEU", 7, 1, "German", "Germany", language.MustParse("de-DE")},
	{"DES", 7, 2, "Swiss German", "Switzerland", language.MustParse("de-CH")},
	{"EEL", 8, 1, "Greek", "Greece", language.Greek},
	{"ENU", 9, 1, "US English", "United States", language.AmericanEnglish},
	{"ENG", 9, 2, "UK English", "United Kingdom", language.BritishEnglish},
	{"ESP", 10, 1, "Castilian Spanish", "Spain", language.EuropeanSpanish},
	{"ESM", 10, 2, "Mexican Spanish", "Mexico", language.MustParse("es-MX")},
	{"FIN", 11, 1, "Finnish", "Finland", language.Finnish},
	{"FRA", 12, 1, "French", "France", language.MustParse("fr-FR")},
	{"FRB", 12, 2, "Belgian French", "Belgium", language.MustParse("fr-BE")},
	{"FRC", 12, 3, "Canadian French", "Canada", language.CanadianFrench},
	{"FRS", 12, 4, "Swiss French", "Switzerland", language.MustParse("fr-CH")},
	{"HEB", 13, 1, "Hebrew", "Israel", language.Hebrew},
	{"HUN", 14, 1, "Hungarian", "Hungary", language.Hungarian},
	{"ISL", 15, 1, "Icelandic", "Iceland", language.Icelandic},
	{"ITA", 16, 1, "Italian", "Italy", language.MustParse("it-IT")},
	{"ITS", 16, 2, "Swiss Italian", "Switzerland", language.MustParse("it-CH")},
	{"JPN", 17, 1, "Japanese", "Japan", language.Japanese},
	{"KOR", 18, 1, "Korean", "Korea", language.Korean},
	{"NLD", 19, 1, "Dutch", "Netherlands", language.MustParse("nl-NL")},
	{"NLB", 19, 2, "Belgian Dutch", "Belgium", language.MustParse("nl-BE")},
	{"NOR", 20, 1, "Norwegian - Bokmal", "Norway", language.MustParse("nb-NO")},
	{"NON", 20, 2, "Norwegian - Nynorsk", "Norway", language.MustParse("nn-NO")},
	{"PLK", 21, 1, "Polish", "Poland", language.Polish},
	{"PTB", 22, 1, "Brazilian Portuguese", "Brazil", language.BrazilianPortuguese},
	{"PTG", 22, 2, "Portuguese", "Portugal", language.EuropeanPortuguese},
	{"RMS", 23, 1, "Rhaeto-Romanic", "Switzerland", language.MustParse("rm-CH")},
	{"ROM", 24, 1, "Romanian", "Romania", language.Romanian},
	{"RUS", 25, 1, "Russian", "Russia", language.Russian},
	{"SHL", 26, 1, "Croato-Serbian", "Yugoslavia", language.MustParse("sh-Latn")},
	{"SHC", 26, 2, "Serbo-Croatian", "Yugoslavia", language.MustParse("sh-Cyrl")},
	{"SKY", 27, 1, "Slovakian", "Czechoslovakia", language.Slovak},
	{"SQI", 28, 1, "Albanian", "Albania", language.Albanian},
	{"SVE", 29, 1, "Swedish", "Sweden", language.Swedish},
	{"THA", 30, 1, "Thai", "Thailand", language.Thai},
	{"TRK", 31, 1, "Turkish", "Turkey", language.Turkish},
	{"URD", 32, 1, "Urdu", "Pakistan", language.Urdu},
	{"BAH", 33, 1, "Bahasa", "Indonesia", language.Indonesian},
	{"SLO", 34, 1, "Slovene", "Slovenia", language.Slovenian},
}

// All returns a copy of the table in its canonical order.
func All() []Language {
	out := make([]Language, len(table))
	copy(out, table)
	return out
}

// Lookup returns the table entry for a family and sub-id.
func Lookup(family, sub uint16) (Language, bool) {
	for _, l := range table {
		if l.Family == family && l.Sub == sub {
			return l, true
		}
	}
	return Language{}, false
}

// Validate checks a family and sub-id pair against the table.
func Validate(family, sub uint16) (Language, error) {
	if family < MinFamily || family > MaxFamily {
		return Language{}, fmt.Errorf("%w: %d (want %d-%d)", ErrLanguageOutOfRange, family, MinFamily, MaxFamily)
	}
	l, ok := Lookup(family, sub)
	if !ok {
		return Language{}, fmt.Errorf("%w: %d,%d", ErrLanguageSubIDOutOfRange, family, sub)
	}
	return l, nil
}

// Parse reads a "family[,sub]" option value. defaulted reports whether
// the sub-id was missing and taken as 1.
func Parse(s string) (id ID, defaulted bool, err error) {
	famStr, subStr, hasSub := strings.Cut(strings.TrimSpace(s), ",")
	fam, err := strconv.ParseUint(strings.TrimSpace(famStr), 10, 16)
	if err != nil {
		return ID{}, false, fmt.Errorf("%w: %q", ErrMalformedLanguage, s)
	}
	sub := uint64(1)
	if hasSub {
		sub, err = strconv.ParseUint(strings.TrimSpace(subStr), 10, 16)
		if err != nil {
			return ID{}, false, fmt.Errorf("%w: %q", ErrMalformedLanguage, s)
		}
	}
	id = ID{Family: uint16(fam), Sub: uint16(sub)}
	if _, err := Validate(id.Family, id.Sub); err != nil {
		return ID{}, false, err
	}
	return id, !hasSub, nil
}

// Match returns the entry whose tag best matches tag, for example
// "de-CH" yields DES.
func Match(tag language.Tag) (Language, language.Confidence) {
	tags := make([]language.Tag, len(table))
	for i, l := range table {
		tags[i] = l.Tag
	}
	_, i, conf := language.NewMatcher(tags).Match(tag)
	return table[i], conf
}
