package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battle/internal/game/battle"
	"github.com/cory-johannsen/battle/internal/game/combat"
)

func TestRollLoot_NilTable(t *testing.T) {
	drop := battle.RollLoot(nil, &scriptedSource{})
	assert.Zero(t, drop.Currency)
	assert.Empty(t, drop.Items)
}

func TestRollLoot_Scripted(t *testing.T) {
	lt := &combat.LootTable{
		Currency: &combat.CurrencyDrop{Min: 10, Max: 20},
		Items: []combat.ItemDrop{
			{ItemID: "potion", Chance: 0.5, MinQty: 1, MaxQty: 3},
			{ItemID: "fang", Chance: 0.5, MinQty: 2, MaxQty: 2},
		},
	}
	src := &scriptedSource{ints: []int{4, 2}, floats: []float64{0.1, 0.9}}
	drop := battle.RollLoot(lt, src)

	assert.Equal(t, 14, drop.Currency)
	require.Len(t, drop.Items, 1)
	assert.Equal(t, "potion", drop.Items[0].ItemID)
	assert.Equal(t, 3, drop.Items[0].Quantity)
	assert.NotEmpty(t, drop.Items[0].InstanceID)
}

func TestRollLoot_Property_WithinBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		minCur := rapid.IntRange(0, 50).Draw(t, "min_currency")
		maxCur := rapid.IntRange(minCur, 100).Draw(t, "max_currency")
		minQty := rapid.IntRange(1, 5).Draw(t, "min_qty")
		maxQty := rapid.IntRange(minQty, 10).Draw(t, "max_qty")
		lt := &combat.LootTable{
			Currency: &combat.CurrencyDrop{Min: minCur, Max: maxCur},
			Items:    []combat.ItemDrop{{ItemID: "gem", Chance: 1, MinQty: minQty, MaxQty: maxQty}},
		}
		drop := battle.RollLoot(lt, seeded(rapid.Uint64().Draw(t, "seed")))
		if maxCur > 0 && (drop.Currency < minCur || drop.Currency > maxCur) {
			t.Fatalf("currency %d out of [%d, %d]", drop.Currency, minCur, maxCur)
		}
		if len(drop.Items) != 1 {
			t.Fatalf("chance 1 must always drop, got %d items", len(drop.Items))
		}
		if q := drop.Items[0].Quantity; q < minQty || q > maxQty {
			t.Fatalf("quantity %d out of [%d, %d]", q, minQty, maxQty)
		}
	})
}
