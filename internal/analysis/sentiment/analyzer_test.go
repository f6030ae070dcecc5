package sentiment

import (
	"errors"
	"sync"
	"testing"

	"github.com/seenimoa/newspulse/pkg/models"
)

func TestAnalyzeDefaultLexicon(t *testing.T) {
	a := NewAnalyzer(nil)
	tests := []struct {
		text     string
		compound float64
		label    models.Polarity
	}{
		{"The movie was good", 0.4404, models.PolarityPositive},
		{"The movie was not good", -0.3412, models.PolarityNegative},
		{"The movie was", 0, models.PolarityNeutral},
	}
	for _, tt := range tests {
		scores, label, err := a.Classify(tt.text)
		if err != nil {
			t.Fatalf("Classify(%q): %v", tt.text, err)
		}
		if scores.Compound != tt.compound {
			t.Errorf("%q: compound got %v, want %v", tt.text, scores.Compound, tt.compound)
		}
		if label != tt.label {
			t.Errorf("%q: label got %v, want %v", tt.text, label, tt.label)
		}
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	a := NewAnalyzer(testLexicon())
	for _, text := range []string{"", "   "} {
		got, err := a.Analyze(text)
		if err != nil {
			t.Fatalf("Analyze(%q): %v", text, err)
		}
		if got != models.NeutralScores {
			t.Errorf("Analyze(%q): got %+v, want neutral", text, got)
		}
	}
}

func TestAnalyzeInvalidInput(t *testing.T) {
	a := NewAnalyzer(testLexicon())
	if _, err := a.Analyze("good \xff"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
	if _, err := a.Explain("\xfe"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Explain: got %v, want ErrInvalidInput", err)
	}
}

func TestAnalyzeNegationFlipsSign(t *testing.T) {
	a := NewAnalyzer(testLexicon())
	for _, w := range []string{"good", "great", "bad"} {
		plain, _ := a.Analyze("it was " + w)
		negated, _ := a.Analyze("it was not " + w)
		if plain.Compound*negated.Compound >= 0 {
			t.Errorf("%s: negation did not flip compound (%v vs %v)", w, plain.Compound, negated.Compound)
		}
	}
}

func TestAnalyzeNegationStaysInSentence(t *testing.T) {
	a := NewAnalyzer(nil)

	ex, err := a.Explain("not good. Very bad!")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if ex.Label != models.PolarityNegative {
		t.Errorf("label: got %v (%v), want Negative", ex.Label, ex.Scores.Compound)
	}
	for _, tok := range ex.Tokens {
		if tok.Norm == "bad" && hasRule(tok, RuleNegated) {
			t.Errorf("bad: negated across a sentence boundary: %v", tok.Rules)
		}
	}

	art := models.Article{Title: "Hostel fees: no change", Description: "Students happy with new library"}
	whole, label, err := a.Classify(art.Text())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	desc, _ := a.Analyze(art.Description)
	if label != models.PolarityPositive {
		t.Errorf("article: got %v (%v), want Positive like its description (%v)", label, whole.Compound, desc.Compound)
	}
}

func TestAnalyzeEmoticons(t *testing.T) {
	a := NewAnalyzer(NewLexicon(map[string]float64{":)": 2.0, ">.<": -1.5, "exam": 0}))

	ex, err := a.Explain("exam results :) >.<!")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	want := map[string]float64{":)": 2.0, ">.<": -1.5}
	for _, tok := range ex.Tokens {
		w, ok := want[tok.Norm]
		if !ok {
			continue
		}
		if !tok.Symbolic || tok.Base != w {
			t.Errorf("%s: got base %v symbolic %v, want %v", tok.Norm, tok.Base, tok.Symbolic, w)
		}
		delete(want, tok.Norm)
	}
	if len(want) != 0 {
		t.Errorf("emoticons not tokenized: %v", want)
	}

	// Without a lexicon to consult the emoticons are plain punctuation.
	tokens, err := Tokenize("exam results :)")
	if err != nil {
		t.Fatal(err)
	}
	if got := len(tokens); got != 2 {
		t.Errorf("plain Tokenize: got %d tokens, want 2", got)
	}
}

func TestAnalyzeIntensityIsMonotonic(t *testing.T) {
	a := NewAnalyzer(testLexicon())
	texts := []string{
		"slightly good",
		"good",
		"very good",
		"very GOOD",
		"very GOOD!!",
	}
	prev := -2.0
	for _, text := range texts {
		s, err := a.Analyze(text)
		if err != nil {
			t.Fatalf("Analyze(%q): %v", text, err)
		}
		if !(s.Compound > prev) {
			t.Errorf("%q: compound %v not above %v", text, s.Compound, prev)
		}
		prev = s.Compound
	}
}

func TestAnalyzeContrast(t *testing.T) {
	a := NewAnalyzer(testLexicon())
	s, err := a.Analyze("the start was good but the ending was bad")
	if err != nil {
		t.Fatal(err)
	}
	if Classify(s.Compound) != models.PolarityNegative {
		t.Errorf("got %v (%v), want the clause after but to dominate", Classify(s.Compound), s.Compound)
	}
}

func TestAnalyzeConcurrentUse(t *testing.T) {
	a := NewAnalyzer(nil)
	const text = "Markets RALLY as investors cheer surprisingly strong earnings!!"
	want, err := a.Analyze(text)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]models.SentimentScores, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = a.Analyze(text)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if got != want {
			t.Errorf("goroutine %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestExplain(t *testing.T) {
	a := NewAnalyzer(testLexicon())
	ex, err := a.Explain("The food was good. The service was not great!")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if len(ex.Tokens) != 9 {
		t.Fatalf("tokens: got %d, want 9", len(ex.Tokens))
	}
	if len(ex.Sentences) != 2 {
		t.Fatalf("sentences: got %d, want 2", len(ex.Sentences))
	}
	if ex.Sentences[0].Label != models.PolarityPositive {
		t.Errorf("sentence 0: got %v, want Positive", ex.Sentences[0].Label)
	}
	if ex.Sentences[1].Label != models.PolarityNegative {
		t.Errorf("sentence 1: got %v, want Negative", ex.Sentences[1].Label)
	}
	if ex.Emphasis != ExclamationEmphasis {
		t.Errorf("emphasis: got %v, want %v", ex.Emphasis, ExclamationEmphasis)
	}
	wantSum := 1.9 + 3.1*NegationScalar
	if !approx(ex.RawSum, wantSum) {
		t.Errorf("raw sum: got %v, want %v", ex.RawSum, wantSum)
	}

	scores, _ := a.Analyze(ex.Text)
	if ex.Scores != scores {
		t.Errorf("Explain scores %+v differ from Analyze %+v", ex.Scores, scores)
	}
}

func TestExplainSingleSentence(t *testing.T) {
	a := NewAnalyzer(testLexicon())
	ex, err := a.Explain("good")
	if err != nil {
		t.Fatal(err)
	}
	if len(ex.Sentences) != 0 {
		t.Errorf("got %d sentence scores, want none for a single sentence", len(ex.Sentences))
	}
}
