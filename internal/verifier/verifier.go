// Package verifier scores candidate textual replies along clinical aspects
// and selects the best of N. Scoring is pure and deterministic; the optional
// LLM completions are the only source of variability in the candidate set.
package verifier

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/careline-ai/careline/internal/analyzer"
	"github.com/careline-ai/careline/internal/lexicon"
	"github.com/careline-ai/careline/internal/llm"
	"github.com/careline-ai/careline/pkg/logging"
)

var tracer = otel.Tracer("careline/verifier")

// candidateCount is the N in best-of-N.
const candidateCount = 5

// AspectScores are the per-aspect scores of one candidate, each in [0,1].
type AspectScores struct {
	MedicalAccuracy float64 `json:"medical_accuracy"`
	Safety          float64 `json:"safety"`
	Feasibility     float64 `json:"feasibility"`
	EmotionalTone   float64 `json:"emotional_tone"`
}

// Selection is the verifier's output.
type Selection struct {
	BestReply       string       `json:"best_reply"`
	Aspects         AspectScores `json:"aspect_scores"`
	Composite       float64      `json:"composite"`
	SelectionReason string       `json:"selection_reason"`
}

// Aspect term lists.
var (
	medicalTerms   = []string{"失智症", "阿茲海默", "認知障礙", "神經科", "醫療評估"}
	safetyTerms    = []string{"安全", "緊急", "專業", "評估", "監測"}
	riskTerms      = []string{"自行", "立即", "快速", "簡單"}
	actionVerbs    = []string{"申請", "聯絡", "預約", "準備", "安排"}
	supportTerms   = []string{"支持", "理解", "耐心", "專業", "協助"}
	alarmingTerms  = []string{"嚴重", "危險", "緊急", "惡化"}
	neutralReply   = "謝謝您的分享。照顧失智症家人不容易，您的觀察很重要。建議持續記錄長輩的狀況，並在需要時尋求專業協助，我會一直在這裡陪伴您。"
	llmSystemHint  = "你是失智症照護助理，請以支持、同理的語氣回覆照顧者，提供具體可行的建議，不做醫療診斷，150字以內。"
	llmPromptShape = "照顧者描述：%s\n分析主題:%s\n請提供一段支持性的回覆。"
)

// Verifier produces a best-of-N reply for the winning module.
type Verifier struct {
	reg    *lexicon.Registry
	client llm.Client
	logger *logging.Logger
}

// New creates a verifier. client may be nil, in which case candidates come
// from the template bank only.
func New(reg *lexicon.Registry, client llm.Client, logger *logging.Logger) *Verifier {
	if reg == nil {
		reg = lexicon.Default()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Verifier{reg: reg, client: client, logger: logger}
}

// BestReply generates candidates for the winning module and returns the
// highest-scoring one. Ties go to the earliest generated candidate. The
// returned error reports a failed LLM candidate generation; the selection is
// still valid, drawn from the template bank.
func (v *Verifier) BestReply(ctx context.Context, utterance string, res analyzer.Result) (Selection, error) {
	ctx, span := tracer.Start(ctx, "verifier.best_reply")
	defer span.End()

	candidates, genErr := v.candidates(ctx, utterance, res)

	best := 0
	var bestComposite float64 = -1
	var bestAspects AspectScores
	for i, cand := range candidates {
		aspects := ScoreAspects(cand)
		composite := Composite(cand, aspects)
		if composite > bestComposite {
			best = i
			bestComposite = composite
			bestAspects = aspects
		}
	}

	span.SetAttributes(
		attribute.Int("verifier.candidates", len(candidates)),
		attribute.Int("verifier.winner_index", best),
		attribute.Float64("verifier.composite", bestComposite),
	)

	return Selection{
		BestReply:       candidates[best],
		Aspects:         bestAspects,
		Composite:       bestComposite,
		SelectionReason: fmt.Sprintf("候選 %d/%d，綜合分數 %.2f", best+1, len(candidates), bestComposite),
	}, genErr
}

// candidates builds the candidate list: module templates first, then optional
// LLM completions, topped up to candidateCount with the neutral fallback.
func (v *Verifier) candidates(ctx context.Context, utterance string, res analyzer.Result) ([]string, error) {
	var out []string
	var genErr error

	out = append(out, res.Narrative)
	for _, tmpl := range bank[res.Module] {
		out = append(out, fill(tmpl, res))
	}

	if v.client != nil && len(out) < candidateCount {
		prompt := fmt.Sprintf(llmPromptShape, utterance, v.reg.Name(res.Module))
		resp, err := v.client.Complete(ctx, llm.Request{
			System:      []string{llmSystemHint},
			Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
			MaxTokens:   300,
			Temperature: 0.7,
		})
		if err != nil {
			genErr = err
			v.logger.Warn("LLM candidate generation failed, using template bank only", "error", err)
		} else if text := strings.TrimSpace(resp.Text); text != "" {
			out = append(out, text)
		}
	}

	for len(out) < candidateCount {
		out = append(out, neutralReply)
	}
	return out[:candidateCount], genErr
}

func fill(tmpl string, res analyzer.Result) string {
	topic := strings.Join(res.XAI.SurfaceForms, "、")
	if topic == "" {
		topic = "目前的觀察"
	}
	return fmt.Sprintf(tmpl, topic)
}

// ScoreAspects computes the four aspect scores for one candidate.
func ScoreAspects(candidate string) AspectScores {
	return AspectScores{
		MedicalAccuracy: clamp01(0.8 + 0.1*float64(occurrences(candidate, medicalTerms))),
		Safety:          clamp01(0.8 + 0.05*float64(presence(candidate, safetyTerms)) - 0.1*float64(presence(candidate, riskTerms))),
		Feasibility:     clamp01(0.7 + 0.05*float64(presence(candidate, actionVerbs))),
		EmotionalTone:   clamp01(0.8 + 0.05*float64(presence(candidate, supportTerms)) - 0.1*float64(presence(candidate, alarmingTerms))),
	}
}

// Composite aggregates the aspect mean with the length, professional and
// practical bonuses; the result never exceeds 1.0.
func Composite(candidate string, aspects AspectScores) float64 {
	mean := (aspects.MedicalAccuracy + aspects.Safety + aspects.Feasibility + aspects.EmotionalTone) / 4

	var lengthBonus float64
	if n := utf8.RuneCountInString(candidate); n >= 50 && n <= 200 {
		lengthBonus = 0.1
	}
	professionalBonus := 0.02 * float64(presence(candidate, medicalTerms))
	practicalBonus := 0.02 * float64(presence(candidate, actionVerbs))

	composite := mean + lengthBonus + professionalBonus + practicalBonus
	if composite > 1.0 {
		composite = 1.0
	}
	return composite
}

// occurrences counts every occurrence of every term.
func occurrences(s string, terms []string) int {
	total := 0
	for _, term := range terms {
		total += strings.Count(s, term)
	}
	return total
}

// presence counts each term at most once.
func presence(s string, terms []string) int {
	total := 0
	for _, term := range terms {
		if strings.Contains(s, term) {
			total++
		}
	}
	return total
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
