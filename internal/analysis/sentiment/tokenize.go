package sentiment

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// ErrInvalidInput is returned when text is not valid UTF-8.
var ErrInvalidInput = errors.New("invalid input: text is not valid UTF-8")

// Token is a single word of the analysed text.
type Token struct {
	Index        int    `json:"index"`
	Raw          string `json:"raw"`
	Norm         string `json:"norm"`
	AllCaps      bool   `json:"all_caps,omitempty"`
	Exclamations int    `json:"exclamations,omitempty"`
	Questions    int    `json:"questions,omitempty"`
	Sentence     int    `json:"sentence"`
	// Symbolic marks a token kept with its punctuation, such as ":)".
	Symbolic     bool   `json:"symbolic,omitempty"`

	// clauseEnd is set when ',', ';' or ':' closes the token's clause.
	clauseEnd bool
}

// Tokenizer splits text into sentences and tokens. The zero value
// treats the whole text as one sentence.
type Tokenizer struct {
	sentences *sentences.DefaultSentenceTokenizer
}

// NewTokenizer returns a tokenizer backed by the English sentence model.
func NewTokenizer() (*Tokenizer, error) {
	st, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load sentence model: %w", err)
	}
	return &Tokenizer{sentences: st}, nil
}

var (
	defaultTokenizer     *Tokenizer
	defaultTokenizerOnce sync.Once
)

// DefaultTokenizer returns a shared tokenizer. If the sentence model cannot
// be loaded it falls back to single-sentence tokenization.
func DefaultTokenizer() *Tokenizer {
	defaultTokenizerOnce.Do(func() {
		t, err := NewTokenizer()
		if err != nil {
			t = &Tokenizer{}
		}
		defaultTokenizer = t
	})
	return defaultTokenizer
}

// Tokenize splits text with the default tokenizer.
func Tokenize(text string) ([]Token, error) {
	return DefaultTokenizer().Tokenize(text)
}

// Sentences splits text into sentences. Whitespace-only sentences are dropped.
func (t *Tokenizer) Sentences(text string) []string {
	if t == nil || t.sentences == nil {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}
	var out []string
	for _, s := range t.sentences.Tokenize(text) {
		if strings.TrimSpace(s.Text) != "" {
			out = append(out, s.Text)
		}
	}
	return out
}

// Tokenize splits text into ordered tokens. Runs of '!' and '?' are kept
// as counts on the token they belong to; a punctuation-only run is attached
// to the preceding token. Empty or whitespace-only text yields no tokens.
func (t *Tokenizer) Tokenize(text string) ([]Token, error) {
	return t.TokenizeKeeping(text, nil)
}

// TokenizeKeeping is Tokenize, except that a field whose punctuation would
// be stripped is kept whole when keep reports it as a known entry. This
// lets emoticons such as ":)" or ">.<" reach the lexicon.
func (t *Tokenizer) TokenizeKeeping(text string, keep func(string) bool) ([]Token, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var (
		tokens      []Token
		pendingEx   int
		pendingQues int
	)
	for si, sent := range t.Sentences(text) {
		for _, field := range splitFields(sent) {
			ex := strings.Count(field, "!")
			qu := strings.Count(field, "?")
			core := trimPunct(field)
			norm, caps, symbolic := strings.ToLower(core), isAllCaps(core), false
			if sym := symbolEntry(field, norm, keep); sym != "" {
				norm, caps, symbolic = sym, false, true
			}
			if norm == "" {
				if n := len(tokens); n > 0 {
					tokens[n-1].Exclamations += ex
					tokens[n-1].Questions += qu
					if strings.ContainsAny(field, ",;:") {
						tokens[n-1].clauseEnd = true
					}
				} else {
					pendingEx += ex
					pendingQues += qu
				}
				continue
			}
			tokens = append(tokens, Token{
				Index:        len(tokens),
				Raw:          field,
				Norm:         norm,
				AllCaps:      caps,
				Exclamations: ex + pendingEx,
				Questions:    qu + pendingQues,
				Sentence:     si,
				Symbolic:     symbolic,
				clauseEnd:    !symbolic && endsClause(field),
			})
			pendingEx, pendingQues = 0, 0
		}
	}
	return tokens, nil
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// splitFields splits on whitespace, and on ',', ';' and ':' where they
// glue two words together ("good,bad").
func splitFields(s string) []string {
	var out []string
	for _, f := range strings.FieldsFunc(apostrophes.Replace(s), unicode.IsSpace) {
		runes := []rune(f)
		start := 0
		for i := 0; i < len(runes); i++ {
			if !isClauseMark(runes[i]) {
				continue
			}
			j := i
			for j < len(runes) && isClauseMark(runes[j]) {
				j++
			}
			if i > start && j < len(runes) && unicode.IsLetter(runes[j]) && unicode.IsLetter(runes[i-1]) {
				out = append(out, string(runes[start:j]))
				start = j
			}
			i = j - 1
		}
		out = append(out, string(runes[start:]))
	}
	return out
}

// endsClause reports whether the punctuation trailing field includes a
// clause mark ("bad," or "fees:").
func endsClause(field string) bool {
	trailing := field[len(strings.TrimRightFunc(field, unicode.IsPunct)):]
	return strings.IndexFunc(trailing, isClauseMark) >= 0
}

func isClauseMark(r rune) bool {
	return r == ',' || r == ';' || r == ':'
}

// trimPunct strips leading and trailing punctuation and symbols, keeping
// inner apostrophes and hyphens ("don't", "well-known").
func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// symbolEntry returns the lower-cased field, or the field without trailing
// sentence punctuation, when keep knows it and it differs from the stripped
// word norm.
func symbolEntry(field, norm string, keep func(string) bool) string {
	if keep == nil {
		return ""
	}
	whole := strings.ToLower(field)
	for _, cand := range []string{whole, strings.TrimRight(whole, "!?.,;")} {
		if cand != "" && cand != norm && keep(cand) {
			return cand
		}
	}
	return ""
}

// isAllCaps reports whether s has more than one upper-case letter and none
// in lower case.
func isAllCaps(s string) bool {
	upper := 0
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return upper > 1
}
