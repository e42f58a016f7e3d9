package service

import (
	"fmt"
	"sort"

	"backoffice/internal/model"

	"github.com/shopspring/decimal"
)

// ResolveTiers computes the ascending job levels that must approve a proposal with
// the given discount. Every active rule whose threshold is at or below the discount
// contributes its level. When none applies, the lowest configured level approves alone.
// An empty or fully inactive catalog is a configuration error.
func ResolveTiers(discount decimal.Decimal, rules []model.ApprovalRule) ([]int, error) {
	if discount.IsNegative() {
		return nil, fmt.Errorf("%w: discount %s is negative", ErrValidation, discount.String())
	}

	lowest := 0
	seen := make(map[int]struct{})
	tiers := make([]int, 0, len(rules))
	active := 0

	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if rule.JobLevel < 1 {
			return nil, fmt.Errorf("%w: rule %s has job level %d", ErrConfiguration, rule.ID, rule.JobLevel)
		}
		active++
		if lowest == 0 || rule.JobLevel < lowest {
			lowest = rule.JobLevel
		}
		if rule.MinDiscount.GreaterThan(discount) {
			continue
		}
		if _, dup := seen[rule.JobLevel]; dup {
			continue
		}
		seen[rule.JobLevel] = struct{}{}
		tiers = append(tiers, rule.JobLevel)
	}

	if active == 0 {
		return nil, fmt.Errorf("%w: no active approval rules", ErrConfiguration)
	}
	if len(tiers) == 0 {
		return []int{lowest}, nil
	}

	sort.Ints(tiers)
	return tiers, nil
}
