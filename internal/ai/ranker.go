package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/logger"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/models"
)

// ErrInvalidRanking is returned when the model's comparison does not line up
// with the proposals it was given.
var ErrInvalidRanking = errors.New("invalid comparison response")

// Candidate is one proposal offered for ranking.
type Candidate struct {
	VendorName string
	Proposal   *models.Proposal
}

type candidateSummary struct {
	VendorIndex  int    `json:"vendorIndex"`
	VendorID     string `json:"vendorId"`
	VendorName   string `json:"vendorName,omitempty"`
	TotalPrice   any    `json:"totalPrice"`
	PaymentTerms string `json:"paymentTerms"`
	Warranty     string `json:"warranty"`
	DeliveryTime string `json:"deliveryTime"`
}

// Ranker asks the model to score and compare proposals.
type Ranker struct {
	generator Generator
	prompts   *Prompts
	logger    *zap.Logger
	maxLogLen int
}

func NewRanker(generator Generator, prompts *Prompts, logger *zap.Logger, maxLogLength int) *Ranker {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Ranker{generator: generator, prompts: prompts, logger: logger, maxLogLen: maxLogLength}
}

// Rank returns one score and one summary per candidate, in candidate order.
func (r *Ranker) Rank(ctx context.Context, rfp *models.RFP, candidates []Candidate) (*models.Comparison, error) {
	if r.generator == nil {
		return nil, ErrNotConfigured
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no proposals to compare", ErrInvalidRanking)
	}

	prompt, err := r.buildPrompt(rfp, candidates)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("compare proposals request",
		zap.String("rfp_id", rfp.ID.Hex()),
		zap.Int("proposals", len(candidates)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to compare proposals with AI: %w", err)
	}
	r.logger.Debug("compare proposals response",
		zap.String("rfp_id", rfp.ID.Hex()),
		zap.String("response_preview", logger.TruncateForLog(raw, r.maxLogLen)),
	)

	data, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to compare proposals with AI: %w", err)
	}
	return validateComparison(data, candidates)
}

func (r *Ranker) buildPrompt(rfp *models.RFP, candidates []Candidate) (string, error) {
	summaries := make([]candidateSummary, 0, len(candidates))
	for i, c := range candidates {
		p := c.Proposal
		var total any = "Not provided"
		if p.Pricing.TotalPrice != nil {
			total = *p.Pricing.TotalPrice
		}
		summaries = append(summaries, candidateSummary{
			VendorIndex:  i + 1,
			VendorID:     p.VendorID.Hex(),
			VendorName:   c.VendorName,
			TotalPrice:   total,
			PaymentTerms: orDefault(p.Terms.PaymentTerms, "Not specified"),
			Warranty:     orDefault(p.Terms.Warranty, "Not specified"),
			DeliveryTime: orDefault(p.Terms.DeliveryTime, "Not specified"),
		})
	}
	proposalsJSON, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal proposal summaries: %w", err)
	}

	items := make([]string, 0, len(rfp.Items))
	for _, it := range rfp.Items {
		items = append(items, fmt.Sprintf("%sx %s", strconv.FormatFloat(it.Quantity, 'f', -1, 64), it.Name))
	}

	return render(r.prompts.CompareProposals, map[string]string{
		"BUDGET":    strconv.FormatFloat(rfp.Budget, 'f', -1, 64),
		"DEADLINE":  rfp.Deadline.UTC().Format("2006-01-02"),
		"ITEMS":     strings.Join(items, ", "),
		"PROPOSALS": string(proposalsJSON),
	}), nil
}

func validateComparison(data map[string]any, candidates []Candidate) (*models.Comparison, error) {
	k := len(candidates)

	rawScores := coerceList(data["scores"])
	if len(rawScores) != k {
		return nil, fmt.Errorf("%w: expected %d scores, got %d", ErrInvalidRanking, k, len(rawScores))
	}
	scores := make([]float64, k)
	for i, v := range rawScores {
		s := coerceFloat(v)
		if math.IsNaN(s) {
			return nil, fmt.Errorf("%w: score %d is not a number", ErrInvalidRanking, i+1)
		}
		scores[i] = math.Max(0, math.Min(100, s))
	}

	rawSummaries := coerceList(data["summaries"])
	if len(rawSummaries) != k {
		return nil, fmt.Errorf("%w: expected %d summaries, got %d", ErrInvalidRanking, k, len(rawSummaries))
	}
	summaries := make([]string, k)
	for i, v := range rawSummaries {
		summaries[i] = coerceString(v)
	}

	rec := coerceMap(data["recommendation"])
	idx := coerceFloat(rec["vendorIndex"])
	if math.IsNaN(idx) || idx != math.Trunc(idx) || idx < 1 || int(idx) > k {
		return nil, fmt.Errorf("%w: recommendation.vendorIndex must be between 1 and %d", ErrInvalidRanking, k)
	}
	chosen := int(idx)

	return &models.Comparison{
		Scores:    scores,
		Summaries: summaries,
		Recommendation: models.Recommendation{
			VendorIndex: chosen,
			VendorID:    candidates[chosen-1].Proposal.VendorID,
			Reasoning:   coerceString(rec["reasoning"]),
		},
	}, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
