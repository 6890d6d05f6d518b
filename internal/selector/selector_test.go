package selector

import (
	"testing"

	"github.com/careline-ai/careline/internal/analyzer"
	"github.com/careline-ai/careline/internal/lexicon"
)

func selectFor(t *testing.T, utterance string) Decision {
	t.Helper()
	results := analyzer.AnalyzeAll(nil, utterance)
	return New(DefaultWeights()).Select(utterance, results)
}

func TestCareKeywordsOverride(t *testing.T) {
	d := selectFor(t, "請問有什麼醫療資源和照護服務可以申請？")

	if d.Winner != lexicon.ModuleCareResources {
		t.Errorf("winner = %s, want M4", d.Winner)
	}
	if !hasRule(d, "care_keywords_override") {
		t.Errorf("applied rules %v missing care override", d.AppliedRules)
	}
}

func TestBPSDOverrideScalesStage(t *testing.T) {
	utterance := "爸爸中度退化，但最近很暴躁會攻擊人"
	results := analyzer.AnalyzeAll(nil, utterance)
	stageRaw := 0.0
	for _, r := range results {
		if r.Module == lexicon.ModuleStage {
			stageRaw = r.RawScore
		}
	}
	if stageRaw == 0 {
		t.Fatal("test utterance should give M2 a raw score")
	}

	d := New(DefaultWeights()).Select(utterance, results)
	if d.Winner != lexicon.ModuleBPSD {
		t.Errorf("winner = %s, want M3", d.Winner)
	}
	if !hasRule(d, "bpsd_override") {
		t.Errorf("applied rules %v missing bpsd override", d.AppliedRules)
	}
	// The stage score must have been scaled down by the override.
	if got := d.Scores[lexicon.ModuleStage]; got >= stageRaw {
		t.Errorf("M2 score %v not scaled down from %v", got, stageRaw)
	}
}

func TestWarningSignsOverride(t *testing.T) {
	d := selectFor(t, "媽媽常常忘記關瓦斯，還會重複問同樣的問題")

	if d.Winner != lexicon.ModuleWarningSigns {
		t.Errorf("winner = %s, want M1", d.Winner)
	}
	if !hasRule(d, "warning_signs_override") {
		t.Errorf("applied rules %v missing warning override", d.AppliedRules)
	}
}

func TestCareBeatsBPSDWhenBothFire(t *testing.T) {
	// Care boost (+0.6) is larger than the BPSD boost (+0.5), so an utterance
	// triggering both overrides lands on M4.
	d := selectFor(t, "他有妄想，我需要申請照護服務和資源")

	if !hasRule(d, "care_keywords_override") || !hasRule(d, "bpsd_override") {
		t.Fatalf("expected both overrides to fire, got %v", d.AppliedRules)
	}
	if d.Winner != lexicon.ModuleCareResources {
		t.Errorf("winner = %s, want M4", d.Winner)
	}
}

func TestAllZeroDefaultsToWarningSigns(t *testing.T) {
	d := selectFor(t, "哈囉你好嗎")

	if d.Winner != lexicon.ModuleWarningSigns {
		t.Errorf("winner = %s, want default M1", d.Winner)
	}
	if !hasRule(d, "zero_score_default") {
		t.Errorf("applied rules %v missing zero-score default", d.AppliedRules)
	}
}

func TestTieBreakOrder(t *testing.T) {
	// Hand-built equal scores: the declared priority M4 > M3 > M1 > M2 wins.
	results := []analyzer.Result{
		{Module: lexicon.ModuleWarningSigns, RawScore: 0.5},
		{Module: lexicon.ModuleStage, RawScore: 0.5},
		{Module: lexicon.ModuleBPSD, RawScore: 0.5},
		{Module: lexicon.ModuleCareResources, RawScore: 0.5},
	}
	d := New(DefaultWeights()).Select("无关键词文本", results)
	if d.Winner != lexicon.ModuleCareResources {
		t.Errorf("tie winner = %s, want M4", d.Winner)
	}

	results = results[:3] // drop M4
	d = New(DefaultWeights()).Select("无关键词文本", results)
	if d.Winner != lexicon.ModuleBPSD {
		t.Errorf("tie winner = %s, want M3", d.Winner)
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	utterance := "媽媽忘記吃藥又很激動，需要協助"
	first := selectFor(t, utterance)
	second := selectFor(t, utterance)

	if first.Winner != second.Winner {
		t.Errorf("winner differs across identical calls")
	}
	if len(first.AppliedRules) != len(second.AppliedRules) {
		t.Errorf("applied rules differ across identical calls")
	}
	for m, s := range first.Scores {
		if second.Scores[m] != s {
			t.Errorf("score for %s differs across identical calls", m)
		}
	}
}

func TestResultFor(t *testing.T) {
	results := analyzer.AnalyzeAll(nil, "爸爸會忘記關瓦斯")
	res := ResultFor(lexicon.ModuleWarningSigns, results)
	if res.Module != lexicon.ModuleWarningSigns || len(res.MatchedSignals) == 0 {
		t.Errorf("ResultFor returned wrong result: %+v", res)
	}

	missing := ResultFor(lexicon.ModuleBPSD, nil)
	if missing.Module != lexicon.ModuleBPSD || missing.RawScore != 0 {
		t.Errorf("ResultFor on missing module should return zero result")
	}
}

func hasRule(d Decision, rule string) bool {
	for _, r := range d.AppliedRules {
		if r == rule {
			return true
		}
	}
	return false
}
