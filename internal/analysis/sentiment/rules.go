package sentiment

import "strings"

// Modifier constants. The values follow the empirically derived VADER
// ratings for the same heuristics.
const (
	// NegationWindow is how many tokens before a polar token are searched for a negator.
	NegationWindow = 3
	// NegationScalar flips a negated intensity and damps it.
	NegationScalar = -0.74
	// BoosterIncrement is the relative change applied by an intensifier (+) or dampener (-).
	BoosterIncrement = 0.293
	// CapsEmphasis is added to the magnitude of an ALL-CAPS polar token.
	CapsEmphasis = 0.733
	// ContrastBefore and ContrastAfter weight the clauses around "but".
	ContrastBefore = 0.5
	ContrastAfter  = 1.5
)

// RuleTag names a rule that changed a token's intensity.
type RuleTag string

const (
	RuleFunctionWord   RuleTag = "function-word"
	RuleNegated        RuleTag = "negated"
	RuleIntensified    RuleTag = "intensified"
	RuleDampened       RuleTag = "dampened"
	RuleAllCaps        RuleTag = "all-caps"
	RuleContrastBefore RuleTag = "contrast-before"
	RuleContrastAfter  RuleTag = "contrast-after"
)

// ScoredToken is a token annotated with its lexicon and adjusted intensity.
type ScoredToken struct {
	Token
	Base     float64   `json:"base"`
	Adjusted float64   `json:"adjusted"`
	Rules    []RuleTag `json:"rules,omitempty"`
}

var negators = toSet(
	"aint", "arent", "cannot", "cant", "couldnt", "darent", "didnt", "doesnt",
	"dont", "hadnt", "hasnt", "havent", "isnt", "mightnt", "mustnt", "neither",
	"neednt", "never", "no", "nobody", "none", "nope", "nor", "not", "nothing",
	"nowhere", "oughtnt", "shant", "shouldnt", "wasnt", "werent", "without",
	"wont", "wouldnt", "rarely", "seldom", "despite",
)

var boosters = map[string]float64{
	"absolutely": BoosterIncrement, "amazingly": BoosterIncrement, "awfully": BoosterIncrement,
	"completely": BoosterIncrement, "considerably": BoosterIncrement, "decidedly": BoosterIncrement,
	"deeply": BoosterIncrement, "enormously": BoosterIncrement, "entirely": BoosterIncrement,
	"especially": BoosterIncrement, "exceptionally": BoosterIncrement, "extremely": BoosterIncrement,
	"fully": BoosterIncrement, "greatly": BoosterIncrement, "highly": BoosterIncrement,
	"hugely": BoosterIncrement, "incredibly": BoosterIncrement, "intensely": BoosterIncrement,
	"majorly": BoosterIncrement, "more": BoosterIncrement, "most": BoosterIncrement,
	"particularly": BoosterIncrement, "purely": BoosterIncrement, "quite": BoosterIncrement,
	"really": BoosterIncrement, "remarkably": BoosterIncrement, "so": BoosterIncrement,
	"substantially": BoosterIncrement, "thoroughly": BoosterIncrement, "totally": BoosterIncrement,
	"tremendously": BoosterIncrement, "unbelievably": BoosterIncrement, "unusually": BoosterIncrement,
	"utterly": BoosterIncrement, "very": BoosterIncrement,

	"almost": -BoosterIncrement, "barely": -BoosterIncrement, "hardly": -BoosterIncrement,
	"kinda": -BoosterIncrement, "kindof": -BoosterIncrement, "kind-of": -BoosterIncrement,
	"less": -BoosterIncrement, "little": -BoosterIncrement, "marginally": -BoosterIncrement,
	"occasionally": -BoosterIncrement, "partly": -BoosterIncrement, "scarcely": -BoosterIncrement,
	"slightly": -BoosterIncrement, "somewhat": -BoosterIncrement, "sorta": -BoosterIncrement,
	"sortof": -BoosterIncrement, "sort-of": -BoosterIncrement,
}

// boosterPhrases are two-word dampeners.
var boosterPhrases = map[[2]string]float64{
	{"kind", "of"}:     -BoosterIncrement,
	{"sort", "of"}:     -BoosterIncrement,
	{"just", "enough"}: -BoosterIncrement,
}

var contrastWords = toSet("but", "however")

// Apply scores tokens against the lexicon and applies, in order, negation,
// degree modifiers, ALL-CAPS emphasis and contrast weighting. Tokens with a
// zero base intensity are never changed.
func Apply(lex *Lexicon, tokens []Token) []ScoredToken {
	scored := make([]ScoredToken, len(tokens))
	function := functionWords(tokens)

	for i, tok := range tokens {
		st := ScoredToken{Token: tok}
		if function[i] {
			st.Rules = append(st.Rules, RuleFunctionWord)
			scored[i] = st
			continue
		}
		base, _ := lex.Lookup(tok.Norm)
		st.Base = base
		if base == 0 {
			scored[i] = st
			continue
		}

		v := base
		if negatedAt(tokens, i) {
			v *= NegationScalar
			st.Rules = append(st.Rules, RuleNegated)
		}
		if b := boosterBefore(tokens, i); b != 0 {
			v *= 1 + b
			if b > 0 {
				st.Rules = append(st.Rules, RuleIntensified)
			} else {
				st.Rules = append(st.Rules, RuleDampened)
			}
		}
		if tok.AllCaps {
			if v > 0 {
				v += CapsEmphasis
			} else {
				v -= CapsEmphasis
			}
			st.Rules = append(st.Rules, RuleAllCaps)
		}
		st.Adjusted = v
		scored[i] = st
	}

	applyContrast(scored)
	return scored
}

// functionWords marks negators, boosters and the words of booster phrases.
// They steer their neighbours and carry no polarity of their own.
func functionWords(tokens []Token) []bool {
	marks := make([]bool, len(tokens))
	for i, tok := range tokens {
		if isNegator(tokens, i) {
			marks[i] = true
			continue
		}
		if _, ok := boosters[tok.Norm]; ok {
			marks[i] = true
			continue
		}
		if i+1 < len(tokens) {
			if _, ok := boosterPhrases[[2]string{tok.Norm, tokens[i+1].Norm}]; ok {
				marks[i], marks[i+1] = true, true
			}
		}
	}
	return marks
}

// isNegator reports whether tokens[i] negates what follows it. "least" only
// negates when not part of "at least" or "very least".
func isNegator(tokens []Token, i int) bool {
	w := tokens[i].Norm
	if w == "least" {
		return i == 0 || (tokens[i-1].Norm != "at" && tokens[i-1].Norm != "very")
	}
	if _, ok := negators[w]; ok {
		return true
	}
	return strings.HasSuffix(w, "n't")
}

// negatedAt reports whether a negator occurs within NegationWindow tokens
// before i. The search stops at a clause boundary or a contrast word, so a
// negator never reaches into the next sentence or past "but".
func negatedAt(tokens []Token, i int) bool {
	for j := i - 1; j >= 0 && j >= i-NegationWindow; j-- {
		if clauseBreak(tokens, j) {
			return false
		}
		if _, ok := contrastWords[tokens[j].Norm]; ok {
			return false
		}
		if isNegator(tokens, j) {
			return true
		}
	}
	return false
}

// boosterBefore returns the degree modifier immediately preceding tokens[i]
// in the same clause, or 0.
func boosterBefore(tokens []Token, i int) float64 {
	if i < 1 || clauseBreak(tokens, i-1) {
		return 0
	}
	if i >= 2 && !clauseBreak(tokens, i-2) {
		if b, ok := boosterPhrases[[2]string{tokens[i-2].Norm, tokens[i-1].Norm}]; ok {
			return b
		}
	}
	return boosters[tokens[i-1].Norm]
}

// clauseBreak reports whether a clause boundary separates tokens[j] from
// tokens[j+1]: a sentence break, or a clause mark after tokens[j].
func clauseBreak(tokens []Token, j int) bool {
	if j+1 < len(tokens) && tokens[j].Sentence != tokens[j+1].Sentence {
		return true
	}
	return tokens[j].clauseEnd
}

// applyContrast down-weights polar tokens before the last contrast word and
// up-weights those after it.
func applyContrast(scored []ScoredToken) {
	pivot := -1
	for i, st := range scored {
		if _, ok := contrastWords[st.Norm]; ok {
			pivot = i
		}
	}
	if pivot < 0 {
		return
	}
	for i := range scored {
		if scored[i].Adjusted == 0 || i == pivot {
			continue
		}
		if i < pivot {
			scored[i].Adjusted *= ContrastBefore
			scored[i].Rules = append(scored[i].Rules, RuleContrastBefore)
		} else {
			scored[i].Adjusted *= ContrastAfter
			scored[i].Rules = append(scored[i].Rules, RuleContrastAfter)
		}
	}
}

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
