package ai

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/logger"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
)

const (
	fallbackBudget       = 10000
	fallbackDeadlineDays = 30
	fallbackTitle        = "Procurement Request"
	fallbackItemName     = "Items as described"
	defaultTitle         = "Untitled RFP"
	specPreviewLength    = 100
)

var (
	budgetPattern = regexp.MustCompile(`\$?(\d+,?\d*)`)
	daysPattern   = regexp.MustCompile(`(?i)(\d+)\s*days?`)

	deadlineLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
		time.RFC1123Z,
		time.RFC1123,
		"January 2, 2006",
		"Jan 2, 2006",
		"02 Jan 2006",
		"01/02/2006",
	}
)

// Structurer converts a free-text procurement request into an RFP draft.
type Structurer struct {
	generator Generator
	prompts   *Prompts
	logger    *zap.Logger
	maxLogLen int
	now       func() time.Time
}

// NewStructurer creates a Structurer. A nil generator always uses the
// heuristic fallback.
func NewStructurer(generator Generator, prompts *Prompts, logger *zap.Logger, maxLogLength int) *Structurer {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Structurer{
		generator: generator,
		prompts:   prompts,
		logger:    logger,
		maxLogLen: maxLogLength,
		now:       time.Now,
	}
}

// Structure never fails: when the model is unreachable or its answer is not
// a JSON object, the heuristic parser runs instead.
func (s *Structurer) Structure(ctx context.Context, description string) *models.StructuredRFP {
	if s.generator == nil {
		s.logger.Info("ai not configured, using heuristic rfp parser")
		return Fallback(description, s.now())
	}

	prompt := render(s.prompts.StructureRFP, map[string]string{"DESCRIPTION": description})
	s.logger.Debug("structure rfp request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, prompt)
	if err != nil {
		s.logger.Warn("rfp structuring failed, using heuristic parser", zap.Error(err))
		return Fallback(description, s.now())
	}
	s.logger.Debug("structure rfp response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
	)

	data, err := decodeObject(raw)
	if err != nil {
		s.logger.Warn("rfp structuring returned invalid json, using heuristic parser", zap.Error(err))
		return Fallback(description, s.now())
	}
	return normalizeStructured(data, s.now())
}

func normalizeStructured(data map[string]any, now time.Time) *models.StructuredRFP {
	out := &models.StructuredRFP{
		Title:    coerceString(data["title"]),
		Budget:   normalizeBudget(data["budget"]),
		Deadline: NormalizeDeadline(data["deadline"], now),
		Items:    []models.RFPItem{},
	}
	if out.Title == "" {
		out.Title = defaultTitle
	}

	for _, rawItem := range coerceList(data["items"]) {
		item := coerceMap(rawItem)
		name := coerceString(item["name"])
		if name == "" {
			continue
		}
		qty := coerceFloat(item["quantity"])
		if math.IsNaN(qty) || qty <= 0 {
			qty = 1
		}
		out.Items = append(out.Items, models.RFPItem{
			Name:           name,
			Quantity:       qty,
			Specifications: coerceString(item["specifications"]),
		})
	}

	terms := coerceMap(data["terms"])
	out.Terms = models.RFPTerms{
		PaymentTerms:  coerceString(terms["paymentTerms"]),
		Warranty:      coerceString(terms["warranty"]),
		DeliveryTerms: coerceString(terms["deliveryTerms"]),
		OtherTerms:    coerceString(terms["otherTerms"]),
	}
	return out
}

func normalizeBudget(v any) float64 {
	b := coerceFloat(v)
	if math.IsNaN(b) || math.IsInf(b, 0) || b < 0 {
		return 0
	}
	return b
}

// NormalizeDeadline interprets a model-provided deadline. A number or an
// "N days" string is an offset from now; a parseable date is used as is;
// anything else means 30 days from now.
func NormalizeDeadline(v any, now time.Time) time.Time {
	switch val := v.(type) {
	case float64:
		if val > 0 && !math.IsInf(val, 0) {
			return now.AddDate(0, 0, int(val))
		}
	case string:
		trimmed := strings.TrimSpace(val)
		if m := daysPattern.FindStringSubmatch(trimmed); m != nil {
			if days, err := strconv.Atoi(m[1]); err == nil {
				return now.AddDate(0, 0, days)
			}
		}
		for _, layout := range deadlineLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t
			}
		}
	}
	return now.AddDate(0, 0, fallbackDeadlineDays)
}

// Fallback is the heuristic parser: the first amount is the budget and the
// first "N days" the delivery window.
func Fallback(description string, now time.Time) *models.StructuredRFP {
	budget := float64(fallbackBudget)
	if m := budgetPattern.FindStringSubmatch(description); m != nil {
		if n, err := strconv.Atoi(strings.Replace(m[1], ",", "", 1)); err == nil {
			budget = float64(n)
		}
	}

	days := fallbackDeadlineDays
	if m := daysPattern.FindStringSubmatch(description); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			days = n
		}
	}

	spec := description
	if runes := []rune(description); len(runes) > specPreviewLength {
		spec = string(runes[:specPreviewLength])
	}

	return &models.StructuredRFP{
		Title: fallbackTitle,
		Items: []models.RFPItem{{
			Name:           fallbackItemName,
			Quantity:       1,
			Specifications: spec,
		}},
		Budget:   budget,
		Deadline: now.AddDate(0, 0, days),
		Terms: models.RFPTerms{
			PaymentTerms:  "Net 30",
			Warranty:      "1 year",
			DeliveryTerms: strconv.Itoa(days) + " days",
			OtherTerms:    "As per description",
		},
		Fallback: true,
	}
}
