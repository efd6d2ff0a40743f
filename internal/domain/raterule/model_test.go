package raterule

import (
	"testing"
	"time"

	"github.com/mariiahub/taxcore/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func saleCtx() types.SaleContext {
	return types.SaleContext{
		ServiceCategory: "consultation",
		Price:           decimal.NewFromInt(600),
		Classification:  types.ClassificationDomesticPerson,
		CustomerCountry: "PL",
		SaleDate:        time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestRateRuleMatches(t *testing.T) {
	effectiveFrom := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("wildcard rule matches everything", func(t *testing.T) {
		rule := &RateRule{EffectiveFrom: effectiveFrom}
		assert.True(t, rule.Matches(saleCtx()))
	})

	t.Run("category predicate", func(t *testing.T) {
		rule := &RateRule{
			ServiceCategory: lo.ToPtr("consultation"),
			EffectiveFrom:   effectiveFrom,
		}
		assert.True(t, rule.Matches(saleCtx()))

		rule.ServiceCategory = lo.ToPtr("massage")
		assert.False(t, rule.Matches(saleCtx()))
	})

	t.Run("classification predicate", func(t *testing.T) {
		rule := &RateRule{
			Classification: lo.ToPtr(types.ClassificationEUBusiness),
			EffectiveFrom:  effectiveFrom,
		}
		assert.False(t, rule.Matches(saleCtx()))
	})

	t.Run("price range is inclusive on both ends", func(t *testing.T) {
		rule := &RateRule{
			PriceMin:      lo.ToPtr(decimal.NewFromInt(600)),
			PriceMax:      lo.ToPtr(decimal.NewFromInt(600)),
			EffectiveFrom: effectiveFrom,
		}
		assert.True(t, rule.Matches(saleCtx()))

		rule.PriceMin = lo.ToPtr(decimal.NewFromFloat(600.01))
		assert.False(t, rule.Matches(saleCtx()))
	})

	t.Run("effective window", func(t *testing.T) {
		rule := &RateRule{
			EffectiveFrom: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		}
		assert.False(t, rule.Matches(saleCtx()), "sale before effective_from")

		rule.EffectiveFrom = effectiveFrom
		rule.EffectiveTo = lo.ToPtr(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
		assert.False(t, rule.Matches(saleCtx()), "effective_to is exclusive")

		rule.EffectiveTo = lo.ToPtr(time.Date(2025, 6, 15, 12, 0, 1, 0, time.UTC))
		assert.True(t, rule.Matches(saleCtx()))
	})
}

func TestRateRuleSpecificity(t *testing.T) {
	rule := &RateRule{}
	assert.Equal(t, 0, rule.Specificity())

	rule.ServiceCategory = lo.ToPtr("consultation")
	rule.Classification = lo.ToPtr(types.ClassificationDomesticPerson)
	assert.Equal(t, 2, rule.Specificity())

	// a price bound counts once whether one or both ends are set
	rule.PriceMin = lo.ToPtr(decimal.NewFromInt(100))
	assert.Equal(t, 3, rule.Specificity())
	rule.PriceMax = lo.ToPtr(decimal.NewFromInt(200))
	assert.Equal(t, 3, rule.Specificity())

	rule.CustomerCountry = lo.ToPtr("PL")
	assert.Equal(t, 4, rule.Specificity())
}
