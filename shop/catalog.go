package shop

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Skill is a purchasable skill and its exchange rate (XP per currency unit)
type Skill struct {
	ID   string
	Rate decimal.Decimal
}

// Title returns the display name of the skill
func (s Skill) Title() string {
	if s.ID == "" {
		return ""
	}
	return strings.ToUpper(s.ID[:1]) + s.ID[1:]
}

// Catalog is the fixed skill catalog. It is immutable after construction.
type Catalog struct {
	rates  map[string]decimal.Decimal
	sorted []Skill
}

// NewCatalog builds a catalog, rejecting empty catalogs and non-positive rates
func NewCatalog(rates map[string]decimal.Decimal) (*Catalog, error) {
	if len(rates) == 0 {
		return nil, fmt.Errorf("skill catalog is empty")
	}

	copied := make(map[string]decimal.Decimal, len(rates))
	for id, rate := range rates {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("skill catalog contains an empty skill id")
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("skill %q has non-positive rate %s", id, rate)
		}
		copied[id] = rate
	}

	ids := lo.Keys(copied)
	sort.Strings(ids)

	return &Catalog{
		rates: copied,
		sorted: lo.Map(ids, func(id string, _ int) Skill {
			return Skill{ID: id, Rate: copied[id]}
		}),
	}, nil
}

// Rate returns the exchange rate for skill
func (c *Catalog) Rate(skill string) (decimal.Decimal, bool) {
	rate, ok := c.rates[skill]
	return rate, ok
}

// Has reports whether skill is in the catalog
func (c *Catalog) Has(skill string) bool {
	_, ok := c.rates[skill]
	return ok
}

// Skills returns the catalog sorted by skill id
func (c *Catalog) Skills() []Skill {
	out := make([]Skill, len(c.sorted))
	copy(out, c.sorted)
	return out
}

var maxXP = decimal.NewFromInt(math.MaxInt64)

// XPFor returns floor(amount * rate). Fractions of XP are dropped, never rounded up.
// ok is false when the result does not fit an int64 grant.
func XPFor(amount, rate decimal.Decimal) (xp int64, ok bool) {
	total := amount.Mul(rate).Floor()
	if total.GreaterThan(maxXP) || total.IsNegative() {
		return 0, false
	}
	return total.IntPart(), true
}
