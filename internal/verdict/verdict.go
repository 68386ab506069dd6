// Package verdict classifies free-text answer checks from the AI backend
// into a correctness verdict.
package verdict

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Verdict is the outcome of an answer check.
type Verdict int

const (
	Unknown Verdict = iota // no check has completed yet
	Correct
	Incorrect
)

func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unknown"
	}
}

// Outcome pairs a verdict with the verification text it was derived from.
type Outcome struct {
	Verdict Verdict
	RawText string
}

// Lexicon lists the verdict markers for one language. Markers are matched
// against lower-cased text.
type Lexicon struct {
	Lang     language.Tag
	Negative []string
	Positive []string
}

// Russian is the default lexicon.
var Russian = Lexicon{
	Lang:     language.Russian,
	Negative: []string{"неверно", "неправильно", "нет,", "к сожалению", "ошибка", "не совсем"},
	Positive: []string{"правильно", "верно", "отлично", "молодец", "точно", "совершенно верно", "всё верно"},
}

// English lexicon.
var English = Lexicon{
	Lang:     language.English,
	Negative: []string{"incorrect", "no,", "unfortunately", "error", "not quite"},
	Positive: []string{"correct", "right", "excellent", "well done", "exactly right"},
}

// Classifier applies one or more lexicons.
type Classifier struct {
	lexicons []Lexicon
}

// New returns a classifier over the given lexicons. With none it uses
// Russian and English.
func New(lexicons ...Lexicon) *Classifier {
	if len(lexicons) == 0 {
		lexicons = []Lexicon{Russian, English}
	}
	return &Classifier{lexicons: lexicons}
}

// Classify maps verification text to Correct or Incorrect. Negative
// markers at the start win over everything else; then a positive marker at
// the start or as a standalone exclamation anywhere; anything else is
// Incorrect.
func (c *Classifier) Classify(text string) Verdict {
	lowered := make([]string, len(c.lexicons))
	for i, lex := range c.lexicons {
		lowered[i] = normalize(cases.Lower(lex.Lang).String(text))
	}

	for i, lex := range c.lexicons {
		for _, m := range lex.Negative {
			if hasWordPrefix(lowered[i], m) {
				return Incorrect
			}
		}
	}

	for i, lex := range c.lexicons {
		for _, m := range lex.Positive {
			if hasWordPrefix(lowered[i], m) || hasExclamation(lowered[i], m) {
				return Correct
			}
		}
	}

	return Incorrect
}

// Classify uses the default lexicons.
func Classify(text string) Verdict {
	return defaultClassifier.Classify(text)
}

var defaultClassifier = New()

// normalize drops leading whitespace, quotes and markup so that
// «Правильно!» and **Correct** are matched by prefix.
func normalize(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// hasWordPrefix reports whether s starts with marker as a whole word, so
// "верное направление" does not count as "верно".
func hasWordPrefix(s, marker string) bool {
	if !strings.HasPrefix(s, marker) {
		return false
	}
	rest := s[len(marker):]
	if rest == "" || !isWordRune(lastRune(marker)) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return !isWordRune(r)
}

// hasExclamation reports whether marker followed by "!" occurs as a whole
// word, so "неверно!" does not count as "верно!".
func hasExclamation(s, marker string) bool {
	needle := marker + "!"
	for from := 0; ; {
		i := strings.Index(s[from:], needle)
		if i < 0 {
			return false
		}
		at := from + i
		if at == 0 || !isWordRune(lastRune(s[:at])) {
			return true
		}
		from = at + len(needle)
	}
}

func lastRune(s string) rune {
	r := []rune(s)
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1]
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ForLocale returns a classifier for a BCP 47 locale such as "ru" or
// "en-US". English locales use only the English lexicon; everything else
// gets the default set.
func ForLocale(locale string) (*Classifier, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	if base, _ := tag.Base(); base == englishBase {
		return New(English), nil
	}
	return New(), nil
}

var englishBase, _ = language.English.Base()
