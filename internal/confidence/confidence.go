// Package confidence calibrates a classification confidence score and builds
// the stepwise reasoning trace attached to every reply.
package confidence

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/careline-ai/careline/internal/analyzer"
)

// Band groups scores into coarse confidence levels.
type Band string

const (
	BandHigh   Band = "high"   // score >= 0.8
	BandMedium Band = "medium" // score >= 0.6
	BandLow    Band = "low"
)

// BandFor maps a score to its band.
func BandFor(score float64) Band {
	switch {
	case score >= 0.8:
		return BandHigh
	case score >= 0.6:
		return BandMedium
	default:
		return BandLow
	}
}

// Step is one entry of the reasoning trace.
type Step struct {
	Action          string  `json:"action"`
	Description     string  `json:"description"`
	LocalConfidence float64 `json:"local_confidence"`
}

// Report is the calibrated confidence output for one classification.
type Report struct {
	Score            float64  `json:"score"`
	Band             Band     `json:"band"`
	Steps            []Step   `json:"steps"`
	UncertaintyNotes []string `json:"uncertainty_notes"`
}

const (
	noteIncomplete   = "症狀描述可能不完整，建議補充更多細節"
	noteProfessional = "建議尋求專業醫療評估"
	noteLLMDegraded  = "語言模型暫時無法使用，以關鍵詞分析結果為準"
)

// Engine converts analyzer output into a confidence report.
type Engine struct{}

// New creates a confidence engine.
func New() *Engine {
	return &Engine{}
}

// Evaluate computes the keyword-driven score for the winning analyzer result:
// clamp(0.5 + 0.1 * matches, 0, 0.95), 0.5 when nothing matched.
func (e *Engine) Evaluate(utterance string, res analyzer.Result) Report {
	matches := len(res.MatchedSignals)
	score := 0.5 + 0.1*float64(matches)
	if score > 0.95 {
		score = 0.95
	}

	report := Report{
		Score: score,
		Band:  BandFor(score),
		Steps: e.steps(res),
	}
	report.UncertaintyNotes = e.notes(utterance, matches, report.Band)
	return report
}

// WithVerifierScore replaces the keyword-driven score with the verifier's
// aggregate and re-derives the band and notes.
func (e *Engine) WithVerifierScore(utterance string, res analyzer.Result, composite float64) Report {
	if composite < 0 {
		composite = 0
	}
	if composite > 1 {
		composite = 1
	}
	report := Report{
		Score: composite,
		Band:  BandFor(composite),
		Steps: e.steps(res),
	}
	report.UncertaintyNotes = e.notes(utterance, len(res.MatchedSignals), report.Band)
	return report
}

// Degrade caps the report at the medium band after an LLM failure and
// appends the degradation note.
func Degrade(report Report) Report {
	if report.Band == BandHigh {
		report.Band = BandMedium
		if report.Score > 0.79 {
			report.Score = 0.79
		}
	}
	for _, n := range report.UncertaintyNotes {
		if n == noteLLMDegraded {
			return report
		}
	}
	report.UncertaintyNotes = append(report.UncertaintyNotes, noteLLMDegraded)
	return report
}

// steps builds the fixed five-step reasoning skeleton. The recognition and
// synthesis steps carry the actual matched signals; the rest are static.
func (e *Engine) steps(res analyzer.Result) []Step {
	matched := "無明確症狀訊號"
	if len(res.MatchedSignals) > 0 {
		matched = strings.Join(res.XAI.SurfaceForms, "、")
	}
	return []Step{
		{
			Action:          "symptom_recognition",
			Description:     fmt.Sprintf("辨識描述中的症狀關鍵詞：%s", matched),
			LocalConfidence: 0.9,
		},
		{
			Action:          "module_selection",
			Description:     fmt.Sprintf("比對四個知識模組後選定 %s", res.Module),
			LocalConfidence: 0.85,
		},
		{
			Action:          "knowledge_retrieval",
			Description:     "從模組知識庫取得對應的照護知識",
			LocalConfidence: 0.8,
		},
		{
			Action:          "synthesis",
			Description:     fmt.Sprintf("整合 %d 項觀察訊號形成回應", len(res.MatchedSignals)),
			LocalConfidence: 0.9,
		},
		{
			Action:          "recommendation",
			Description:     "產生照護建議與後續行動",
			LocalConfidence: 0.85,
		},
	}
}

func (e *Engine) notes(utterance string, matches int, band Band) []string {
	var notes []string
	if matches <= 1 || utf8.RuneCountInString(utterance) < 15 {
		notes = append(notes, noteIncomplete)
	}
	if band == BandMedium || band == BandLow {
		notes = append(notes, noteProfessional)
	}
	return notes
}
