// Package orchestrator runs the full analysis pipeline for one inbound
// utterance: session bookkeeping, per-module analysis, winner selection,
// reply verification, confidence calibration and format routing. It is the
// single entry point used by every channel adapter.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/careline-ai/careline/internal/analyzer"
	"github.com/careline-ai/careline/internal/cache"
	"github.com/careline-ai/careline/internal/confidence"
	"github.com/careline-ai/careline/internal/flexcard"
	"github.com/careline-ai/careline/internal/lexicon"
	"github.com/careline-ai/careline/internal/llm"
	"github.com/careline-ai/careline/internal/observability/metrics"
	"github.com/careline-ai/careline/internal/presentation"
	"github.com/careline-ai/careline/internal/selector"
	"github.com/careline-ai/careline/internal/session"
	"github.com/careline-ai/careline/internal/verifier"
	"github.com/careline-ai/careline/pkg/logging"
)

var tracer = otel.Tracer("careline/orchestrator")

// Utterance length gates, in runes.
const (
	minUtteranceRunes = 5
	maxUtteranceRunes = 1000
)

// Guidance texts for inputs the pipeline does not classify.
const (
	emptyReply     = "請告訴我您觀察到的狀況，我會協助分析。"
	elaborateReply = "請再多描述一些您觀察到的狀況（例如發生的時間、頻率與情境），我才能提供比較準確的分析。"
	shortenReply   = "您的訊息有點長，請分段或聚焦描述最主要的狀況，我會逐一協助您。"
	notFoundReply  = "找不到先前的訊息紀錄，請重新描述您想了解的狀況。"
	emergencyReply = "🚨 這聽起來是緊急狀況，請立即撥打 119 叫救護車，或撥打 110 請警方協助。若長輩走失，可同時通報各縣市的失智症協尋窗口。請先確保長輩與您自身的安全。"
)

// Reply formats.
const (
	FormatText = "text"
	FormatCard = "card"
)

// Response is the channel-independent reply for one inbound event. Text is
// always populated; Card is set only when Format is FormatCard.
type Response struct {
	Format     string            `json:"format"`
	Text       string            `json:"text"`
	Card       *flexcard.Card    `json:"card,omitempty"`
	Module     lexicon.Module    `json:"module,omitempty"`
	Confidence confidence.Report `json:"confidence"`
	Reasoning  []string          `json:"reasoning,omitempty"`
}

// Config wires an Orchestrator. Every field except Logger may be nil or
// zero; sensible defaults are applied.
type Config struct {
	Registry   *lexicon.Registry
	Weights    selector.Weights
	LLM        llm.Client
	Cache      cache.Cache
	CacheTTL   time.Duration
	Sessions   *session.Store
	Metrics    *metrics.PipelineMetrics
	Logger     *logging.Logger
	LLMTimeout time.Duration
}

// Orchestrator coordinates the analysis pipeline.
type Orchestrator struct {
	reg        *lexicon.Registry
	sel        *selector.Selector
	conf       *confidence.Engine
	verif      *verifier.Verifier
	router     *presentation.Router
	builder    *flexcard.Builder
	sessions   *session.Store
	cache      cache.Cache
	cacheTTL   time.Duration
	metrics    *metrics.PipelineMetrics
	logger     *logging.Logger
	llmEnabled bool
	llmTimeout time.Duration
}

// New builds an orchestrator from cfg.
func New(cfg Config) *Orchestrator {
	if cfg.Registry == nil {
		cfg.Registry = lexicon.Default()
	}
	if cfg.Weights == (selector.Weights{}) {
		cfg.Weights = selector.DefaultWeights()
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.Noop{}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewStore(session.DefaultCap, session.DefaultTTL)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 30 * time.Second
	}
	return &Orchestrator{
		reg:        cfg.Registry,
		sel:        selector.New(cfg.Weights),
		conf:       confidence.New(),
		verif:      verifier.New(cfg.Registry, cfg.LLM, cfg.Logger),
		router:     presentation.New(),
		builder:    flexcard.NewBuilder(cfg.Registry, cfg.Logger),
		sessions:   cfg.Sessions,
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		llmEnabled: cfg.LLM != nil,
		llmTimeout: cfg.LLMTimeout,
	}
}

// Handle processes one caregiver utterance and always returns a reply; the
// orchestrator degrades rather than fails.
func (o *Orchestrator) Handle(ctx context.Context, userID, utterance string) Response {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "orchestrator.handle")
	defer span.End()
	defer func() {
		if o.metrics != nil {
			o.metrics.ObserveLatency(time.Since(start).Seconds())
		}
	}()

	trimmed := strings.TrimSpace(utterance)
	runes := utf8.RuneCountInString(trimmed)

	switch {
	case runes == 0:
		return o.textOnly(emptyReply)
	case runes < minUtteranceRunes:
		o.sessions.Put(userID, trimmed, uuid.NewString())
		return o.textOnly(elaborateReply)
	case runes > maxUtteranceRunes:
		o.sessions.Put(userID, trimmed, uuid.NewString())
		return o.textOnly(shortenReply)
	}

	o.sessions.Put(userID, trimmed, uuid.NewString())

	results := analyzer.AnalyzeAll(o.reg, trimmed)
	decision := o.sel.Select(trimmed, results)
	res := selector.ResultFor(decision.Winner, results)
	span.SetAttributes(attribute.String("pipeline.module", string(decision.Winner)))

	reply, report := o.bestReply(ctx, trimmed, res)

	format := o.router.Decide(trimmed)
	resp := o.render(trimmed, res, report, reply, format)
	resp.Reasoning = append(decision.AppliedRules, res.XAI.ReasoningSteps...)

	if o.metrics != nil {
		o.metrics.ObserveUtterance(string(resp.Module), resp.Format)
	}
	o.logger.Info("utterance handled",
		"user_id", userID,
		"module", string(resp.Module),
		"format", resp.Format,
		"band", string(resp.Confidence.Band),
		"rules", strings.Join(decision.AppliedRules, ","),
	)
	return resp
}

// bestReply returns the reply text and the calibrated confidence for the
// winning module. With an LLM the verifier path runs (replies are cached per
// utterance); without one the keyword narrative is the reply.
func (o *Orchestrator) bestReply(ctx context.Context, utterance string, res analyzer.Result) (string, confidence.Report) {
	if !o.llmEnabled {
		return res.Narrative, o.conf.Evaluate(utterance, res)
	}

	key := cache.Key(utterance)
	if cached, ok := o.cache.Get(ctx, key); ok {
		if o.metrics != nil {
			o.metrics.ObserveCacheLookup(true)
		}
		return cached, o.conf.Evaluate(utterance, res)
	}
	if o.metrics != nil {
		o.metrics.ObserveCacheLookup(false)
	}

	vctx, cancel := context.WithTimeout(ctx, o.llmTimeout)
	defer cancel()
	sel, err := o.verif.BestReply(vctx, utterance, res)
	if err != nil {
		if o.metrics != nil {
			o.metrics.ObserveLLMFallback()
		}
		return sel.BestReply, confidence.Degrade(o.conf.Evaluate(utterance, res))
	}

	o.cache.Set(ctx, key, sel.BestReply, o.cacheTTL)
	return sel.BestReply, o.conf.WithVerifierScore(utterance, res, sel.Composite)
}

// distressTokens are the emergency signals that warrant the 119 directive.
// Weaker urgency tokens still route to plain text but keep the analysis.
var distressTokens = []string{"救命", "緊急", "危險", "求助"}

func isDistress(utterance string) bool {
	for _, tok := range distressTokens {
		if strings.Contains(utterance, tok) {
			return true
		}
	}
	return false
}

// render maps the routing decision onto a concrete reply shape.
func (o *Orchestrator) render(utterance string, res analyzer.Result, report confidence.Report, reply string, format presentation.Decision) Response {
	if format.Reason == presentation.ReasonEmergency && isDistress(utterance) {
		return Response{
			Format:     FormatText,
			Text:       emergencyReply,
			Module:     res.Module,
			Confidence: report,
		}
	}

	if format.UseVisualCard {
		card := o.builder.AnalysisCard(res, report, reply)
		if flexcard.IsErrorCard(card) && o.metrics != nil {
			o.metrics.ObserveCardFailure()
		}
		return Response{
			Format:     FormatCard,
			Text:       card.AltText,
			Card:       &card,
			Module:     res.Module,
			Confidence: report,
		}
	}

	return Response{
		Format:     FormatText,
		Text:       fmt.Sprintf("%s：%s", o.reg.ShortLabel(res.Module), reply),
		Module:     res.Module,
		Confidence: report,
	}
}

// HandlePostback processes a card button press. data is the postback payload
// set by the card builder.
func (o *Orchestrator) HandlePostback(ctx context.Context, userID, data string) Response {
	ctx, span := tracer.Start(ctx, "orchestrator.postback")
	defer span.End()

	view, arg, _ := strings.Cut(strings.TrimPrefix(data, "view="), ":")
	if o.metrics != nil {
		o.metrics.ObservePostback(view)
	}

	switch view {
	case "original":
		entry, ok := o.sessions.Get(userID)
		if !ok {
			return o.textOnly(notFoundReply)
		}
		return o.textOnly(entry.LastUtterance)
	case "detail":
		module, ok := lexicon.Parse(arg)
		if !ok {
			break
		}
		entry, ok := o.sessions.Get(userID)
		if !ok {
			return o.textOnly(notFoundReply)
		}
		return o.detail(ctx, entry.LastUtterance, module)
	}

	card := o.builder.MenuCard()
	return Response{Format: FormatCard, Text: card.AltText, Card: &card}
}

// detail reruns the pipeline for a single module, skipping winner selection.
func (o *Orchestrator) detail(ctx context.Context, utterance string, module lexicon.Module) Response {
	res := analyzer.New(module, o.reg).Analyze(utterance)
	reply, report := o.bestReply(ctx, utterance, res)

	card := o.builder.AnalysisCard(res, report, reply)
	return Response{
		Format:     FormatCard,
		Text:       card.AltText,
		Card:       &card,
		Module:     module,
		Confidence: report,
		Reasoning:  res.XAI.ReasoningSteps,
	}
}

func (o *Orchestrator) textOnly(text string) Response {
	return Response{Format: FormatText, Text: text}
}
