package flexcard

import (
	"fmt"
	"strings"

	"github.com/careline-ai/careline/internal/analyzer"
	"github.com/careline-ai/careline/internal/confidence"
	"github.com/careline-ai/careline/internal/lexicon"
	"github.com/careline-ai/careline/pkg/logging"
)

const (
	fallbackAltText = "失智照護分析結果"
	errorBodyText   = "暫時無法顯示詳細結果"
	errorAltText    = "系統錯誤"

	headerTextColor = "#FFFFFF"
	mutedTextColor  = "#888888"
	bodyTextColor   = "#333333"
)

// Builder renders analysis results as validated cards. It is the only
// component that emits card payloads.
type Builder struct {
	reg    *lexicon.Registry
	logger *logging.Logger
}

// NewBuilder creates a card builder.
func NewBuilder(reg *lexicon.Registry, logger *logging.Logger) *Builder {
	if reg == nil {
		reg = lexicon.Default()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Builder{reg: reg, logger: logger}
}

// ErrorCard is the minimal fallback card. It is the only allowed exceptional
// exit: a malformed card is never surfaced.
func ErrorCard() Card {
	return Card{
		AltText: errorAltText,
		Contents: Bubble{
			Body: &Box{
				Layout:   "vertical",
				Contents: []Element{Text{Text: errorBodyText, Size: "md", Wrap: true}},
			},
		},
	}
}

// IsErrorCard reports whether card is the generic error fallback.
func IsErrorCard(card Card) bool {
	return card.AltText == errorAltText
}

// AnalysisCard renders the full analysis result. The returned card always
// validates: when the serialized payload is oversized the reply is shrunk at
// sentence boundaries and the card rebuilt, down to dropping the reply
// entirely. The error card is the last resort for defects shrinking cannot
// cure, such as an invalid palette color.
func (b *Builder) AnalysisCard(res analyzer.Result, rep confidence.Report, reply string) Card {
	budget := maxReplyBytes
	for {
		trimmed := truncateSentences(reply, budget)
		card := b.flatten(Card{
			AltText: b.altText(trimmed),
			Contents: Bubble{
				Size:   "mega",
				Header: b.header(res, rep),
				Body:   b.body(res, rep, trimmed),
				Footer: b.footer(res.Module),
			},
		})
		err := Validate(card)
		if err == nil {
			return card
		}
		if budget == 0 {
			b.logger.Error("card failed validation, returning error card", "error", err)
			return ErrorCard()
		}
		b.logger.Warn("card over budget, shrinking reply", "reply_budget", budget, "error", err)
		budget /= 2
		if budget < minReplyBytes {
			budget = 0
		}
	}
}

// MenuCard is returned for unrecognized postbacks: a small card pointing the
// user back to the things the assistant can do.
func (b *Builder) MenuCard() Card {
	contents := []Element{
		Text{Text: "我可以協助您：", Size: "md", Weight: "bold", Color: bodyTextColor, Wrap: true},
	}
	for _, m := range lexicon.All() {
		contents = append(contents, Box{
			Layout: "horizontal",
			Contents: []Element{
				Text{Text: b.reg.Icon(m), Size: "sm"},
				Text{Text: b.reg.Name(m), Size: "sm", Color: bodyTextColor, Wrap: true, Margin: "sm"},
			},
		})
	}
	contents = append(contents,
		Separator{Margin: "md"},
		Text{Text: "直接描述您觀察到的狀況，我會分析並提供建議。", Size: "sm", Color: mutedTextColor, Wrap: true, Margin: "md"},
	)

	card := Card{
		AltText: "失智照護小幫手功能選單",
		Contents: Bubble{
			Body: &Box{Layout: "vertical", Contents: contents},
		},
	}
	return b.finish(card)
}

// finish flattens and validates a fixed-content card, returning the error
// card when validation fails.
func (b *Builder) finish(card Card) Card {
	card = b.flatten(card)
	if err := Validate(card); err != nil {
		b.logger.Error("card failed validation, returning error card", "error", err)
		return ErrorCard()
	}
	return card
}

// flatten bounds box depth and guarantees a non-empty body.
func (b *Builder) flatten(card Card) Card {
	if card.Contents.Header != nil {
		h := Flatten(*card.Contents.Header)
		card.Contents.Header = &h
	}
	if card.Contents.Footer != nil {
		f := Flatten(*card.Contents.Footer)
		card.Contents.Footer = &f
	}
	if card.Contents.Body != nil {
		body := Flatten(*card.Contents.Body)
		if len(body.Contents) == 0 {
			body.Contents = []Element{Text{Text: fallbackAltText, Size: "md", Wrap: true}}
		}
		card.Contents.Body = &body
	} else {
		card.Contents.Body = &Box{
			Layout:   "vertical",
			Contents: []Element{Text{Text: fallbackAltText, Size: "md", Wrap: true}},
		}
	}
	return card
}

func (b *Builder) header(res analyzer.Result, rep confidence.Report) *Box {
	title := fmt.Sprintf("%s %s", b.reg.Icon(res.Module), b.reg.Name(res.Module))
	return &Box{
		Layout:          "vertical",
		BackgroundColor: b.reg.Palette(res.Module),
		PaddingAll:      "lg",
		Contents: []Element{
			Text{Text: title, Size: "lg", Weight: "bold", Color: headerTextColor},
			Text{Text: bandLabel(rep.Band), Size: "sm", Color: headerTextColor, Margin: "sm"},
		},
	}
}

func (b *Builder) body(res analyzer.Result, rep confidence.Report, reply string) *Box {
	contents := []Element{}

	if len(res.XAI.SurfaceForms) > 0 {
		contents = append(contents,
			Text{Text: "偵測到的訊號", Size: "sm", Weight: "bold", Color: mutedTextColor},
			Text{
				Text:  strings.Join(res.XAI.SurfaceForms, "、"),
				Size:  "md",
				Color: bodyTextColor,
				Wrap:  true,
			},
			Separator{Margin: "md"},
		)
	}

	if reply != "" {
		contents = append(contents, Text{
			Text:   reply,
			Size:   "md",
			Color:  bodyTextColor,
			Wrap:   true,
			Margin: "md",
		})
	}

	contents = append(contents, Text{
		Text:   fmt.Sprintf("分析可信度：%.0f%%", rep.Score*100),
		Size:   "xs",
		Color:  mutedTextColor,
		Margin: "md",
	})

	return &Box{Layout: "vertical", Contents: contents, PaddingAll: "lg"}
}

func (b *Builder) footer(m lexicon.Module) *Box {
	return &Box{
		Layout: "horizontal",
		Contents: []Element{
			Button{
				Style: "link",
				Action: Action{
					Type:  "postback",
					Label: "查看原文",
					Data:  "view=original",
				},
			},
			Button{
				Style: "primary",
				Action: Action{
					Type:  "postback",
					Label: "詳細分析",
					Data:  fmt.Sprintf("view=detail:%s", m),
				},
			},
		},
	}
}

// maxReplyBytes is the opening reply budget, leaving headroom under
// MaxPayloadBytes for the alt text and card scaffolding. The budget halves on
// each oversized build until it drops below minReplyBytes, at which point the
// reply is omitted.
const (
	maxReplyBytes = 3000
	minReplyBytes = 64
)

func bandLabel(band confidence.Band) string {
	switch band {
	case confidence.BandHigh:
		return "分析結果：高關注"
	case confidence.BandMedium:
		return "分析結果：建議追蹤"
	default:
		return "分析結果：持續觀察"
	}
}

// altText collapses whitespace and bounds the accessibility text, falling
// back to the canonical label when empty.
func (b *Builder) altText(reply string) string {
	alt := fmt.Sprintf("%s %s", fallbackAltText, reply)
	alt = CollapseWhitespace(alt)
	if alt == "" {
		return fallbackAltText
	}
	runes := []rune(alt)
	if len(runes) > MaxAltTextRunes {
		alt = string(runes[:MaxAltTextRunes])
	}
	return alt
}

// CollapseWhitespace folds consecutive whitespace into single spaces and
// trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateSentences trims s at a sentence boundary so its UTF-8 encoding
// fits within maxBytes. If even the first sentence is too long, it falls
// back to a hard rune cut.
func truncateSentences(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}

	var out strings.Builder
	var sentence strings.Builder
	for _, r := range s {
		sentence.WriteRune(r)
		if isSentenceEnd(r) {
			if out.Len()+sentence.Len() > maxBytes {
				break
			}
			out.WriteString(sentence.String())
			sentence.Reset()
		}
	}
	if out.Len() > 0 {
		return out.String()
	}

	// No sentence boundary fits: cut at the last rune under budget.
	var hard strings.Builder
	for _, r := range s {
		if hard.Len()+len(string(r)) > maxBytes {
			break
		}
		hard.WriteRune(r)
	}
	return hard.String()
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '。', '！', '？', '!', '?', '.':
		return true
	}
	return false
}
