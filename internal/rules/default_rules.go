package rules

import (
	"sync"

	"github.com/Veraticus/sortit/internal/model"
)

// DefaultEntries returns the built-in keyword lists in their declared order.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Category: model.Deposit,
			Keywords: []string{"deposit", "metal", "pant", "can", "plastic", "bottle", "pet bottle"},
		},
		{
			Category: model.Recyclable,
			Keywords: []string{
				"bottle", "container", "paper", "cardboard", "can", "plastic", "glass",
				"newspaper", "magazine", "metal", "box", "soft plastic", "hard plastic",
				"corrugated cardboard", "colored glass", "clear glass", "flat glass", "window",
				"metal container", "paper packaging", "plastic packaging", "metal packaging",
				"glass packaging",
			},
		},
		{
			Category: model.Hazardous,
			Keywords: []string{
				"battery", "electronic", "computer", "phone", "chemical", "medicine", "bulb",
				"hazardous waste", "impregnated wood", "refrigerator", "freezer", "white goods",
				"electrical waste", "tire", "wheel", "dangerous", "toxic", "poison", "acid",
				"solvent", "paint", "oil", "gasoline", "pesticide", "herbicide", "insecticide",
				"medication", "pill", "drug", "syringe", "needle", "thermometer", "fluorescent",
				"led", "battery pack", "power bank", "charger", "adapter", "cable", "wire",
				"circuit", "motherboard", "chip", "cartridge", "toner",
			},
		},
		{
			Category: model.Food,
			Keywords: []string{
				"food", "fruit", "vegetable", "meat", "fish", "bread", "leftover", "compostable",
				"garden waste", "branches", "twigs", "leaves", "organic", "kitchen waste",
				"food waste", "apple", "banana", "orange", "rice", "noodle", "pasta", "coffee",
				"tea", "egg", "shell", "bone", "peel", "seed", "plant", "grass", "flower",
			},
		},
		{
			Category: model.Other,
			Keywords: []string{
				"ceramic", "rubber", "toy", "wood", "dust", "dirt", "concrete", "porcelain",
				"tiles", "sanitary ware", "upholstered furniture", "insulation", "plaster",
				"gypsum", "energy recovery", "construction waste",
			},
		},
		{
			Category: model.Reuse,
			Keywords: []string{
				"reusable", "books", "electronics", "bicycle", "glassware", "porcelain",
				"clothes", "shoes", "textile", "toys", "furniture", "paintings", "mirrors",
			},
		},
	}
}

var defaultRuleSet = sync.OnceValue(func() *RuleSet {
	rs, err := New(DefaultEntries(), nil)
	if err != nil {
		// The built-in data is covered by tests.
		panic(err)
	}
	return rs
})

// Default returns the built-in rule set. The value is shared and immutable.
func Default() *RuleSet {
	return defaultRuleSet()
}
