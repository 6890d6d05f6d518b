package flexcard

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/careline-ai/careline/internal/analyzer"
	"github.com/careline-ai/careline/internal/confidence"
	"github.com/careline-ai/careline/internal/lexicon"
)

func sampleResult() analyzer.Result {
	return analyzer.New(lexicon.ModuleWarningSigns, nil).
		Analyze("媽媽最近常常忘記關瓦斯，還會重複問同樣的問題")
}

func sampleReport(res analyzer.Result) confidence.Report {
	return confidence.New().Evaluate("媽媽最近常常忘記關瓦斯，還會重複問同樣的問題", res)
}

func TestAnalysisCardValidates(t *testing.T) {
	b := NewBuilder(nil, nil)
	res := sampleResult()
	card := b.AnalysisCard(res, sampleReport(res), res.Narrative)

	if err := Validate(card); err != nil {
		t.Fatalf("card invalid: %v", err)
	}
	raw, err := json.Marshal(card)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(raw) > MaxPayloadBytes {
		t.Errorf("payload %d bytes exceeds limit", len(raw))
	}

	payload := string(raw)
	if !strings.Contains(payload, `"type":"flex"`) {
		t.Error("missing flex type tag")
	}
	if !strings.Contains(payload, "#FF6B6B") {
		t.Error("M1 card missing canonical module color")
	}
	if !strings.HasPrefix(card.AltText, "失智照護分析") {
		t.Errorf("altText %q missing canonical prefix", card.AltText)
	}
}

func TestFooterCarriesPostbackActions(t *testing.T) {
	b := NewBuilder(nil, nil)
	res := sampleResult()
	card := b.AnalysisCard(res, sampleReport(res), res.Narrative)

	footer := card.Contents.Footer
	if footer == nil || len(footer.Contents) == 0 {
		t.Fatal("footer missing")
	}
	var datas []string
	for _, el := range footer.Contents {
		if btn, ok := el.(Button); ok {
			datas = append(datas, btn.Action.Data)
		}
	}
	if len(datas) < 1 {
		t.Fatal("footer has no buttons")
	}
	joined := strings.Join(datas, " ")
	if !strings.Contains(joined, "view=original") {
		t.Errorf("footer actions %v missing view=original", datas)
	}
	if !strings.Contains(joined, "view=detail:M1") {
		t.Errorf("footer actions %v missing detail postback", datas)
	}
}

func TestLongReplyTruncatedAtSentence(t *testing.T) {
	b := NewBuilder(nil, nil)
	res := sampleResult()

	long := strings.Repeat("這是一段很長的說明文字，描述了照護上的許多細節。", 200)
	card := b.AnalysisCard(res, sampleReport(res), long)

	if err := Validate(card); err != nil {
		t.Fatalf("truncated card still invalid: %v", err)
	}
	raw, _ := json.Marshal(card)
	if len(raw) > MaxPayloadBytes {
		t.Errorf("payload %d bytes exceeds limit after truncation", len(raw))
	}
	// The embedded reply must end on a sentence boundary.
	for _, el := range card.Contents.Body.Contents {
		txt, ok := el.(Text)
		if !ok || !strings.HasPrefix(txt.Text, "這是一段") {
			continue
		}
		if !strings.HasSuffix(txt.Text, "。") {
			t.Errorf("truncated reply does not end at a sentence boundary: …%q", txt.Text[len(txt.Text)-12:])
		}
	}
}

func TestOversizedReplyShrinksInsteadOfErrorCard(t *testing.T) {
	b := NewBuilder(nil, nil)
	res := sampleResult()

	// Long enough that the opening reply budget plus the bounded alt text
	// overflows the payload cap, forcing at least one shrink pass.
	long := strings.Repeat("這是一段相當長的照護建議，提醒照顧者持續觀察並記錄狀況。", 60)
	card := b.AnalysisCard(res, sampleReport(res), long)

	if IsErrorCard(card) {
		t.Fatal("oversized reply must shrink, not collapse to the error card")
	}
	raw, _ := json.Marshal(card)
	if len(raw) > MaxPayloadBytes {
		t.Errorf("payload %d bytes exceeds limit after shrinking", len(raw))
	}
	found := false
	for _, el := range card.Contents.Body.Contents {
		if txt, ok := el.(Text); ok && strings.HasPrefix(txt.Text, "這是一段") {
			found = true
		}
	}
	if !found {
		t.Error("shrunken card should still carry part of the reply")
	}
}

func TestEmptyReplyStillHasBody(t *testing.T) {
	b := NewBuilder(nil, nil)
	res := analyzer.New(lexicon.ModuleStage, nil).Analyze("嗨")
	res.Narrative = ""
	card := b.AnalysisCard(res, confidence.New().Evaluate("嗨", res), "")

	if err := Validate(card); err != nil {
		t.Fatalf("card invalid: %v", err)
	}
	if len(card.Contents.Body.Contents) == 0 {
		t.Error("body must never be empty")
	}
	if card.AltText == "" {
		t.Error("altText must never be empty")
	}
}

func TestAltTextCollapsedAndBounded(t *testing.T) {
	b := NewBuilder(nil, nil)
	res := sampleResult()

	spaced := "有些  建議\n\n請  參考\t謝謝"
	card := b.AnalysisCard(res, sampleReport(res), spaced)
	if strings.Contains(card.AltText, "  ") || strings.Contains(card.AltText, "\n") {
		t.Errorf("altText whitespace not collapsed: %q", card.AltText)
	}

	long := strings.Repeat("長", 900)
	card = b.AnalysisCard(res, sampleReport(res), long)
	if n := len([]rune(card.AltText)); n > MaxAltTextRunes {
		t.Errorf("altText %d runes exceeds %d", n, MaxAltTextRunes)
	}
}

func TestErrorCard(t *testing.T) {
	card := ErrorCard()
	if err := Validate(card); err != nil {
		t.Fatalf("error card must validate: %v", err)
	}
	if card.AltText != "系統錯誤" {
		t.Errorf("altText = %q", card.AltText)
	}
	txt, ok := card.Contents.Body.Contents[0].(Text)
	if !ok || txt.Text != "暫時無法顯示詳細結果" {
		t.Errorf("unexpected error card body: %+v", card.Contents.Body.Contents)
	}
}

func TestMenuCardValidates(t *testing.T) {
	card := NewBuilder(nil, nil).MenuCard()
	if err := Validate(card); err != nil {
		t.Fatalf("menu card invalid: %v", err)
	}
	raw, _ := json.Marshal(card)
	for _, name := range []string{"警訊", "病程", "行為", "資源"} {
		if !strings.Contains(string(raw), name) {
			t.Errorf("menu card missing module entry %q", name)
		}
	}
}
