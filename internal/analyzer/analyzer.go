// Package analyzer scans caregiver utterances against one clinical module's
// signal lexicon and produces a scored, explainable result.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/careline-ai/careline/internal/lexicon"
)

// Explanation carries the audit trail for one analysis.
type Explanation struct {
	ReasoningSteps []string `json:"reasoning_steps"`
	SurfaceForms   []string `json:"surface_forms"`
}

// Result is the output of one module's analysis of an utterance.
type Result struct {
	Module         lexicon.Module `json:"module"`
	MatchedSignals []string       `json:"matched_signals"`
	RawScore       float64        `json:"raw_score"`
	Narrative      string         `json:"narrative"`
	XAI            Explanation    `json:"xai"`
}

// Analyzer matches utterances against a single module's lexicon. Analyzers
// are stateless after construction and safe for concurrent use.
type Analyzer struct {
	module lexicon.Module
	reg    *lexicon.Registry
}

// New creates an analyzer for the given module.
func New(module lexicon.Module, reg *lexicon.Registry) *Analyzer {
	if reg == nil {
		reg = lexicon.Default()
	}
	return &Analyzer{module: module, reg: reg}
}

// Analyze scans the utterance for the module's signals. It never fails: an
// utterance with no matches yields a zero score and the continue-to-observe
// narrative.
func (a *Analyzer) Analyze(utterance string) Result {
	utterance = strings.TrimSpace(utterance)
	// Latin surface forms match case-insensitively; lowering is a no-op for CJK.
	folded := strings.ToLower(utterance)

	var matched []string
	var surfaces []string
	var steps []string

	for _, signal := range a.reg.SignalNames(a.module) {
		for _, form := range a.reg.SurfaceForms(a.module, signal) {
			if !strings.Contains(folded, strings.ToLower(form)) {
				continue
			}
			// First hit wins; duplicate occurrences of other surface forms
			// of the same signal do not increase the count.
			matched = append(matched, signal)
			surfaces = append(surfaces, form)
			steps = append(steps, fmt.Sprintf("訊號「%s」由關鍵詞「%s」觸發", signal, form))
			break
		}
	}

	score := float64(len(matched)) / float64(a.reg.Normalizer(a.module))
	if score > 1.0 {
		score = 1.0
	}

	return Result{
		Module:         a.module,
		MatchedSignals: matched,
		RawScore:       score,
		Narrative:      a.narrative(matched, surfaces),
		XAI: Explanation{
			ReasoningSteps: steps,
			SurfaceForms:   surfaces,
		},
	}
}

// narrative renders the bucketed template. Buckets above none take the
// matched topical phrases as their single argument.
func (a *Analyzer) narrative(matched, surfaces []string) string {
	bucket := lexicon.BucketFor(len(matched))
	tmpl := a.reg.Template(a.module, bucket)
	if bucket == lexicon.BucketNone {
		return tmpl
	}
	return fmt.Sprintf(tmpl, strings.Join(surfaces, "、"))
}

// AnalyzeAll runs every module's analyzer over the utterance in canonical
// module order. The four analyzers are independent; they are cheap enough to
// run sequentially.
func AnalyzeAll(reg *lexicon.Registry, utterance string) []Result {
	if reg == nil {
		reg = lexicon.Default()
	}
	results := make([]Result, 0, len(lexicon.All()))
	for _, m := range lexicon.All() {
		results = append(results, New(m, reg).Analyze(utterance))
	}
	return results
}
