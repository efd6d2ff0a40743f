package refundpolicy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func standardPolicy() *Policy {
	return &Policy{
		ID: "rp_1",
		Tiers: []Tier{
			{MinHoursBefore: 48, Fraction: decimal.NewFromInt(1)},
			{MinHoursBefore: 24, Fraction: decimal.RequireFromString("0.5")},
		},
	}
}

func TestMaxFraction(t *testing.T) {
	policy := standardPolicy()

	tests := []struct {
		name        string
		noticeHours int64
		expected    string
	}{
		{"well ahead", 72, "1"},
		{"exactly at the full refund threshold", 48, "1"},
		{"between thresholds", 36, "0.5"},
		{"exactly at the partial threshold", 24, "0.5"},
		{"short notice", 12, "0"},
		{"no notice", 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.MaxFraction(tt.noticeHours)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
				"expected %s, got %s", tt.expected, got)
		})
	}
}

func TestMaxFractionUnorderedTiers(t *testing.T) {
	// tier order in storage must not affect the verdict
	policy := &Policy{
		Tiers: []Tier{
			{MinHoursBefore: 24, Fraction: decimal.RequireFromString("0.5")},
			{MinHoursBefore: 48, Fraction: decimal.NewFromInt(1)},
		},
	}
	assert.True(t, policy.MaxFraction(72).Equal(decimal.NewFromInt(1)))
	assert.True(t, policy.MaxFraction(30).Equal(decimal.RequireFromString("0.5")))
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, standardPolicy().Validate())

	empty := &Policy{ID: "rp_2"}
	assert.Error(t, empty.Validate())

	negative := &Policy{Tiers: []Tier{{MinHoursBefore: -1, Fraction: decimal.NewFromInt(1)}}}
	assert.Error(t, negative.Validate())

	overOne := &Policy{Tiers: []Tier{{MinHoursBefore: 24, Fraction: decimal.NewFromInt(2)}}}
	assert.Error(t, overOne.Validate())
}
