package accounts

import (
	"math/rand"
	"sync"
)

// productTypes lists the product variants the synthetic source can draw
// from per (account type, customer type). The alpha codes come from the
// upstream product catalog.
var productTypes = map[string]map[string][]string{
	"dda": {
		CustomerPersonal: {"DDA1", "DDA2", "DDA5"},
		CustomerBusiness: {"DDB1", "DDB3"},
	},
	"cca": {
		CustomerPersonal: {"CCP1", "CCP2"},
		CustomerBusiness: {"CCB1"},
	},
}

// Picker selects demographic/product attributes for synthetic account
// requests. The random source is injected so tests can assert
// deterministic selections.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker creates a picker from a seed. A zero seed is replaced by the
// caller before construction (see cmd wiring); the picker itself treats
// every seed as literal.
func NewPicker(seed int64) *Picker {
	return &Picker{rng: rand.New(rand.NewSource(seed))}
}

// PickProductType returns a product type alpha for the combination, or the
// empty string when the combination has no catalog entries (the backend
// then chooses its own default).
func (p *Picker) PickProductType(accountType, customerType string) string {
	choices := productTypes[accountType][customerType]
	if len(choices) == 0 {
		return ""
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return choices[p.rng.Intn(len(choices))]
}
