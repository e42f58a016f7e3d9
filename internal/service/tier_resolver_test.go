package service

import (
	"testing"

	"backoffice/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(level int, minDiscount string, active bool) model.ApprovalRule {
	return model.ApprovalRule{JobLevel: level, MinDiscount: decimal.RequireFromString(minDiscount), IsActive: active}
}

func standardCatalog() []model.ApprovalRule {
	return []model.ApprovalRule{
		rule(1, "0", true),
		rule(2, "10", true),
		rule(3, "25", true),
	}
}

func TestResolveTiers(t *testing.T) {
	tests := []struct {
		name     string
		discount string
		rules    []model.ApprovalRule
		want     []int
	}{
		{"mid discount needs two levels", "15", standardCatalog(), []int{1, 2}},
		{"high discount needs every level", "30", standardCatalog(), []int{1, 2, 3}},
		{"zero discount falls to lowest level", "0", standardCatalog(), []int{1}},
		{"threshold is inclusive", "10", standardCatalog(), []int{1, 2}},
		{"just below threshold", "9.9999", standardCatalog(), []int{1}},
		{"inactive rules are ignored", "30", []model.ApprovalRule{rule(1, "0", true), rule(2, "10", false), rule(3, "25", true)}, []int{1, 3}},
		{"no rule applies uses lowest active level", "5", []model.ApprovalRule{rule(4, "10", true), rule(2, "20", true)}, []int{2}},
		{"unordered catalog comes back ascending", "50", []model.ApprovalRule{rule(3, "25", true), rule(1, "0", true), rule(2, "10", true)}, []int{1, 2, 3}},
		{"same level twice is listed once", "50", []model.ApprovalRule{rule(2, "10", true), rule(2, "20", true)}, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTiers(decimal.RequireFromString(tt.discount), tt.rules)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveTiers_NeverEmpty(t *testing.T) {
	for _, d := range []string{"0", "0.5", "9", "10", "24.99", "25", "100"} {
		got, err := ResolveTiers(decimal.RequireFromString(d), standardCatalog())
		require.NoError(t, err)
		assert.NotEmpty(t, got, "discount %s", d)
	}
}

func TestResolveTiers_Errors(t *testing.T) {
	t.Run("no rules", func(t *testing.T) {
		_, err := ResolveTiers(decimal.NewFromInt(5), nil)
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("only inactive rules", func(t *testing.T) {
		_, err := ResolveTiers(decimal.NewFromInt(5), []model.ApprovalRule{rule(1, "0", false)})
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("invalid job level", func(t *testing.T) {
		_, err := ResolveTiers(decimal.NewFromInt(5), []model.ApprovalRule{rule(0, "0", true)})
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("negative discount", func(t *testing.T) {
		_, err := ResolveTiers(decimal.NewFromInt(-1), standardCatalog())
		assert.ErrorIs(t, err, ErrValidation)
	})
}
