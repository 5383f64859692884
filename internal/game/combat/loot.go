package combat

import "fmt"

// CurrencyDrop is the range of extra currency an enemy drops when defeated.
type CurrencyDrop struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ItemDrop is one entry of a loot table.
type ItemDrop struct {
	ItemID string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	MinQty int     `yaml:"min_qty"`
	MaxQty int     `yaml:"max_qty"`
}

// LootTable lists the drops rolled for a defeated enemy.
type LootTable struct {
	Currency *CurrencyDrop `yaml:"currency"`
	Items    []ItemDrop    `yaml:"items"`
}

// Validate checks that the loot table satisfies its invariants.
//
// Postcondition: Returns nil iff currency bounds are ordered and non-negative, and
// every item has an ID, a chance in (0, 1], and 1 <= min_qty <= max_qty.
func (lt *LootTable) Validate() error {
	if lt.Currency != nil {
		if lt.Currency.Min < 0 || lt.Currency.Min > lt.Currency.Max {
			return fmt.Errorf("loot table: currency range [%d, %d] is invalid", lt.Currency.Min, lt.Currency.Max)
		}
	}
	for i, item := range lt.Items {
		if item.ItemID == "" {
			return fmt.Errorf("loot table: item[%d] must have a non-empty item id", i)
		}
		if item.Chance <= 0 || item.Chance > 1.0 {
			return fmt.Errorf("loot table: item[%d] chance must be in (0, 1.0], got %f", i, item.Chance)
		}
		if item.MinQty < 1 || item.MinQty > item.MaxQty {
			return fmt.Errorf("loot table: item[%d] quantity range [%d, %d] is invalid", i, item.MinQty, item.MaxQty)
		}
	}
	return nil
}
