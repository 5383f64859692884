package battle

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/battle/internal/game/combat"
	"github.com/cory-johannsen/battle/internal/game/dice"
)

// LootItem is one dropped item stack.
type LootItem struct {
	ItemID     string `json:"item_id"`
	InstanceID string `json:"instance_id"`
	Quantity   int    `json:"quantity"`
}

// LootDrop is the loot rolled for one defeated enemy.
type LootDrop struct {
	Currency int
	Items    []LootItem
}

// RollLoot rolls lt using src. A nil table drops nothing.
//
// Precondition: lt, if non-nil, must have passed Validate.
// Postcondition: Currency is in [Currency.Min, Currency.Max] when currency is set;
// each dropped item's Quantity is in [MinQty, MaxQty].
func RollLoot(lt *combat.LootTable, src dice.Source) LootDrop {
	var drop LootDrop
	if lt == nil {
		return drop
	}
	if c := lt.Currency; c != nil && c.Max > 0 {
		drop.Currency = c.Min + intRange(src, c.Max-c.Min)
	}
	for _, item := range lt.Items {
		if !dice.Chance(src, item.Chance) {
			continue
		}
		drop.Items = append(drop.Items, LootItem{
			ItemID:     item.ItemID,
			InstanceID: uuid.NewString(),
			Quantity:   item.MinQty + intRange(src, item.MaxQty-item.MinQty),
		})
	}
	return drop
}

// intRange returns a value in [0, spread], drawing only when spread > 0.
func intRange(src dice.Source, spread int) int {
	if spread <= 0 {
		return 0
	}
	return src.Intn(spread + 1)
}
