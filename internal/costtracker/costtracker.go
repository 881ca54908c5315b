package costtracker

import (
	log "github.com/sirupsen/logrus"

	"yttitle/internal/config"
)

// CostTracker prices token usage per model.
type CostTracker interface {
	// Cost returns the USD cost of a call, and false when the model has no pricing entry.
	Cost(model string, inputTokens, outputTokens int) (float64, bool)
}

// New returns a tracker backed by the configured pricing table.
func New(pricing map[string]config.PricingInfo) CostTracker {
	return &pricingTracker{pricing: pricing}
}

type pricingTracker struct {
	pricing map[string]config.PricingInfo
}

func (p *pricingTracker) Cost(model string, inputTokens, outputTokens int) (float64, bool) {
	price, ok := p.pricing[model]
	if !ok {
		log.Debugf("Pricing info not found for model '%s'. Cost recorded as 0.", model)
		return 0, false
	}
	return float64(inputTokens)*price.InputPerToken + float64(outputTokens)*price.OutputPerToken, true
}
