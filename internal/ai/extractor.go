package ai

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/logger"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
)

const defaultCurrency = "USD"

// Extractor reads a vendor reply into structured proposal data.
type Extractor struct {
	generator Generator
	prompts   *Prompts
	logger    *zap.Logger
	maxLogLen int
}

func NewExtractor(generator Generator, prompts *Prompts, logger *zap.Logger, maxLogLength int) *Extractor {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Extractor{generator: generator, prompts: prompts, logger: logger, maxLogLen: maxLogLength}
}

// Extract has no fallback: any generator or decoding error is returned.
func (e *Extractor) Extract(ctx context.Context, emailText string) (*models.ExtractedProposal, error) {
	if e.generator == nil {
		return nil, ErrNotConfigured
	}

	prompt := render(e.prompts.ExtractProposal, map[string]string{"EMAIL": emailText})
	e.logger.Debug("extract proposal request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vendor response with AI: %w", err)
	}
	e.logger.Debug("extract proposal response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	data, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vendor response with AI: %w", err)
	}
	return normalizeExtracted(data), nil
}

func normalizeExtracted(data map[string]any) *models.ExtractedProposal {
	pricing := coerceMap(data["pricing"])
	terms := coerceMap(data["terms"])

	out := &models.ExtractedProposal{
		Pricing: models.Pricing{
			TotalPrice: coerceFloatPtr(pricing["totalPrice"]),
			ItemPrices: []models.ItemPrice{},
			Currency:   strings.ToUpper(coerceString(pricing["currency"])),
		},
		Terms: models.ProposalTerms{
			PaymentTerms: coerceString(terms["paymentTerms"]),
			Warranty:     coerceString(terms["warranty"]),
			DeliveryTime: coerceString(terms["deliveryTime"]),
			OtherTerms:   coerceString(terms["otherTerms"]),
		},
		Notes:      coerceString(data["notes"]),
		ParsedData: models.FlattenAttributes(data),
	}
	if out.Pricing.Currency == "" {
		out.Pricing.Currency = defaultCurrency
	}

	for _, rawItem := range coerceList(pricing["itemPrices"]) {
		item := coerceMap(rawItem)
		name := coerceString(item["item"])
		price := coerceFloatPtr(item["price"])
		if name == "" && price == nil {
			continue
		}
		out.Pricing.ItemPrices = append(out.Pricing.ItemPrices, models.ItemPrice{
			Item:     name,
			Price:    price,
			Quantity: coerceFloatPtr(item["quantity"]),
		})
	}
	return out
}
