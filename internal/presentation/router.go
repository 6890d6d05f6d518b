// Package presentation decides whether a reply ships as a visual card or as
// plain text, from signals in the utterance itself.
package presentation

import (
	"strings"
	"unicode/utf8"
)

// Reason identifies which signal decided the format.
type Reason string

const (
	ReasonEmergency       Reason = "emergency"
	ReasonComplexAnalysis Reason = "complex_analysis"
	ReasonVisualTokens    Reason = "visualization_preference"
	ReasonSimpleTokens    Reason = "simplicity_preference"
	ReasonLength          Reason = "long_utterance"
	ReasonDefault         Reason = "default"
)

// Decision is the router's output. Reason and Confidence exist for
// observability only.
type Decision struct {
	UseVisualCard bool    `json:"use_visual_card"`
	Reason        Reason  `json:"reason"`
	Confidence    float64 `json:"confidence"`
}

var (
	emergencyTokens = []string{
		"緊急", "危險", "立即", "馬上", "現在", "立刻", "急", "救命", "求助", "支援",
	}
	complexTokens = []string{
		"詳細分析", "完整評估", "全面檢查", "深入診斷", "專業意見", "醫療建議", "專家諮詢", "正式評估",
	}
	visualTokens = []string{
		"圖表", "視覺", "圖像", "視覺化", "分析", "數據", "統計", "比較", "對比", "趨勢",
		"進度", "階段", "程度", "嚴重性", "詳細", "完整", "全面", "深入", "專業", "醫療", "診斷",
	}
	simpleTokens = []string{
		"簡單", "快速", "簡短", "直接", "立即", "馬上", "基本", "初步", "大概", "約略",
		"聊天", "閒聊", "隨便",
	}
)

// Router decides the reply format. Signals apply in priority order; the
// first match wins.
type Router struct{}

// New creates a presentation router.
func New() *Router {
	return &Router{}
}

// Decide returns the format decision for the utterance.
func (*Router) Decide(utterance string) Decision {
	utterance = strings.TrimSpace(utterance)

	// Emergencies get the fastest possible reply: plain text.
	if containsAny(utterance, emergencyTokens) {
		return Decision{UseVisualCard: false, Reason: ReasonEmergency, Confidence: 0.95}
	}

	if containsAny(utterance, complexTokens) {
		return Decision{UseVisualCard: true, Reason: ReasonComplexAnalysis, Confidence: 0.9}
	}

	visual := countTokens(utterance, visualTokens)
	simple := countTokens(utterance, simpleTokens)
	if visual != simple && (visual > 0 || simple > 0) {
		if visual > simple {
			return Decision{UseVisualCard: true, Reason: ReasonVisualTokens, Confidence: 0.75}
		}
		return Decision{UseVisualCard: false, Reason: ReasonSimpleTokens, Confidence: 0.75}
	}

	if utf8.RuneCountInString(utterance) > 50 {
		return Decision{UseVisualCard: true, Reason: ReasonLength, Confidence: 0.6}
	}

	return Decision{UseVisualCard: true, Reason: ReasonDefault, Confidence: 0.5}
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

func countTokens(s string, tokens []string) int {
	n := 0
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			n++
		}
	}
	return n
}
