// Package selector picks the winning clinical module for an utterance from
// the four analyzer results, applying the clinical override rules.
package selector

import (
	"strings"

	"github.com/careline-ai/careline/internal/analyzer"
	"github.com/careline-ai/careline/internal/lexicon"
)

// Decision records the winner, the post-rule scores and every rule that fired.
type Decision struct {
	Winner       lexicon.Module             `json:"winner"`
	Scores       map[lexicon.Module]float64 `json:"scores"`
	AppliedRules []string                   `json:"applied_rules"`
}

// Weights holds the override-rule boosts and scales. The defaults come from
// the clinical tuning of the original system; they are deterministic but were
// never validated against a labeled dataset, so they stay tunable here.
type Weights struct {
	CareBoost         float64
	BPSDBoost         float64
	BPSDStageScale    float64
	WarningBoost      float64
	WarningStageScale float64
}

// DefaultWeights returns the standard override weights.
func DefaultWeights() Weights {
	return Weights{
		CareBoost:         0.6,
		BPSDBoost:         0.5,
		BPSDStageScale:    0.3,
		WarningBoost:      0.3,
		WarningStageScale: 0.5,
	}
}

// Override keyword sets. Specific actionable signals (resources, behavioral
// crises, warning signs) outrank generic stage language.
var (
	careKeywords = []string{
		"醫療", "醫生", "醫院", "治療", "照護", "照顧",
		"協助", "幫助", "支持", "資源", "服務", "需要",
	}
	bpsdKeywords = []string{
		"妄想", "幻覺", "憂鬱", "焦慮", "易怒", "攻擊",
		"激動", "暴躁", "生氣", "懷疑", "被害",
	}
	warningKeywords = []string{
		"忘記", "記憶", "記不住", "想不起", "重複問",
		"不會用", "忘記關", "迷路", "找不到",
	}
)

// tieBreak orders modules for deterministic winner selection when scores are
// equal within epsilon: M4 > M3 > M1 > M2.
var tieBreak = []lexicon.Module{
	lexicon.ModuleCareResources,
	lexicon.ModuleBPSD,
	lexicon.ModuleWarningSigns,
	lexicon.ModuleStage,
}

const epsilon = 1e-6

// Selector applies the override rules and picks a winner.
type Selector struct {
	weights Weights
}

// New creates a selector with the given weights.
func New(weights Weights) *Selector {
	return &Selector{weights: weights}
}

// Select scores all analyzer results against the utterance and returns the
// decision. It is a pure function of its inputs.
func (s *Selector) Select(utterance string, results []analyzer.Result) Decision {
	base := make(map[lexicon.Module]float64, len(results))
	for _, res := range results {
		base[res.Module] = res.RawScore
	}
	for _, m := range lexicon.All() {
		if _, ok := base[m]; !ok {
			base[m] = 0
		}
	}

	var applied []string

	// Later rules can override earlier ones; application order matters.
	if containsAny(utterance, careKeywords) {
		base[lexicon.ModuleCareResources] += s.weights.CareBoost
		applied = append(applied, "care_keywords_override")
	}
	if containsAny(utterance, bpsdKeywords) {
		base[lexicon.ModuleBPSD] += s.weights.BPSDBoost
		base[lexicon.ModuleStage] *= s.weights.BPSDStageScale
		applied = append(applied, "bpsd_override")
	}
	if containsAny(utterance, warningKeywords) {
		base[lexicon.ModuleWarningSigns] += s.weights.WarningBoost
		base[lexicon.ModuleStage] *= s.weights.WarningStageScale
		applied = append(applied, "warning_signs_override")
	}

	winner := lexicon.ModuleWarningSigns // default when all scores are zero
	best := 0.0
	allZero := true
	for _, m := range tieBreak {
		score := base[m]
		if score > epsilon {
			allZero = false
		}
		// Strictly-greater keeps the earlier tie-break candidate on equality.
		if score > best+epsilon {
			best = score
			winner = m
		}
	}
	if allZero {
		winner = lexicon.ModuleWarningSigns
		applied = append(applied, "zero_score_default")
	}

	return Decision{
		Winner:       winner,
		Scores:       base,
		AppliedRules: applied,
	}
}

func containsAny(utterance string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(utterance, kw) {
			return true
		}
	}
	return false
}

// ResultFor returns the analyzer result belonging to the decision's winner.
func ResultFor(winner lexicon.Module, results []analyzer.Result) analyzer.Result {
	for _, res := range results {
		if res.Module == winner {
			return res
		}
	}
	return analyzer.Result{Module: winner}
}
