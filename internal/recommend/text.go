package recommend

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/portuguese"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// strip removes any markup job descriptions carry over from rich-text
// editors. A configured Policy is safe for concurrent use.
var strip = bluemonday.StrictPolicy()

// stopwords are Portuguese function words longer than two runes; shorter
// tokens are dropped by length before this set is consulted.
var stopwords = map[string]struct{}{
	"para": {}, "com": {}, "por": {}, "uma": {}, "uns": {}, "umas": {},
	"dos": {}, "das": {}, "nos": {}, "nas": {}, "pelo": {}, "pela": {},
	"pelos": {}, "pelas": {}, "que": {}, "não": {}, "mais": {}, "como": {},
	"mas": {}, "foi": {}, "ele": {}, "ela": {}, "eles": {}, "elas": {},
	"seu": {}, "sua": {}, "seus": {}, "suas": {}, "ser": {}, "são": {},
	"está": {}, "estão": {}, "tem": {}, "têm": {}, "você": {}, "vocês": {},
	"isso": {}, "este": {}, "esta": {}, "esse": {}, "essa": {}, "aos": {},
	"entre": {}, "sobre": {}, "também": {}, "muito": {}, "até": {},
	"quando": {}, "onde": {}, "qual": {}, "quais": {}, "nosso": {},
	"nossa": {}, "nossos": {}, "nossas": {}, "após": {}, "sem": {},
	"todo": {}, "toda": {}, "todos": {}, "todas": {}, "cada": {},
	"ter": {}, "será": {}, "pode": {}, "deve": {}, "já": {},
}

// lower folds case with Portuguese rules. Casers carry state, so one is
// built per call.
func lower(s string) string {
	return cases.Lower(language.BrazilianPortuguese).String(s)
}

// terms turns free text into the stemmed tokens the term model counts.
func terms(text string) []string {
	clean := html.UnescapeString(strip.Sanitize(text))
	words := strings.FieldsFunc(lower(clean), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if st := portuguese.Stem(w, false); st != "" {
			out = append(out, st)
		}
	}
	return out
}
