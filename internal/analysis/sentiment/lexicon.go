package sentiment

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

// newsLexicon holds news-domain ratings layered over the base lexicon.
//
//go:embed lexicon.txt
var newsLexicon string

// Lexicon maps a normalized token to its base sentiment intensity,
// roughly in the range [-4, +4]. A Lexicon is immutable once built and
// safe for concurrent reads.
type Lexicon struct {
	entries map[string]float64
}

// NewLexicon builds a lexicon from the given entries. Keys are lower-cased;
// the input map is copied so later changes to it are not observed.
func NewLexicon(entries map[string]float64) *Lexicon {
	m := make(map[string]float64, len(entries))
	for word, v := range entries {
		m[strings.ToLower(strings.TrimSpace(word))] = v
	}
	return &Lexicon{entries: m}
}

var (
	defaultLexicon     *Lexicon
	defaultLexiconOnce sync.Once
)

// DefaultLexicon returns the VADER English lexicon extended with the
// embedded news-domain entries. It is built on first use and shared afterwards.
func DefaultLexicon() *Lexicon {
	defaultLexiconOnce.Do(func() {
		news, err := ParseLexicon(strings.NewReader(newsLexicon))
		if err != nil {
			panic(fmt.Sprintf("sentiment: embedded news lexicon: %v", err))
		}
		base := NewLexicon(govader.NewSentimentIntensityAnalyzer().Lexicon)
		defaultLexicon = base.Extend(news)
	})
	return defaultLexicon
}

// Extend returns a new lexicon holding every entry of l plus the entries of
// other that l does not rate. Neither input is modified.
func (l *Lexicon) Extend(other *Lexicon) *Lexicon {
	m := make(map[string]float64, l.Len()+other.Len())
	if other != nil {
		for word, v := range other.entries {
			m[word] = v
		}
	}
	if l != nil {
		for word, v := range l.entries {
			m[word] = v
		}
	}
	return &Lexicon{entries: m}
}

// LoadLexiconFile reads a lexicon file from disk. See ParseLexicon for the format.
func LoadLexiconFile(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon %s: %w", path, err)
	}
	defer f.Close()

	lex, err := ParseLexicon(f)
	if err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

// ParseLexicon reads a tab-separated lexicon in the VADER layout:
//
//	word<TAB>mean[<TAB>stddev<TAB>ratings...]
//
// Only the first two columns are used. Blank lines and lines starting
// with '#' are skipped.
func ParseLexicon(r io.Reader) (*Lexicon, error) {
	entries := make(map[string]float64)
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected word and intensity separated by a tab", lineNo)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse intensity %q: %w", lineNo, fields[1], err)
		}
		entries[strings.ToLower(strings.TrimSpace(fields[0]))] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return &Lexicon{entries: entries}, nil
}

// Lookup returns the base intensity for a token. Lookup is case-insensitive.
// A miss is not an error; it simply means the token carries no polarity.
func (l *Lexicon) Lookup(token string) (float64, bool) {
	if l == nil {
		return 0, false
	}
	v, ok := l.entries[token]
	if !ok {
		v, ok = l.entries[strings.ToLower(token)]
	}
	return v, ok
}

// Contains reports whether the lexicon rates token.
func (l *Lexicon) Contains(token string) bool {
	_, ok := l.Lookup(token)
	return ok
}

// Len returns the number of entries.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}
