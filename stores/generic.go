package stores

import "receiptserver/receipt"

// genericStrategy is the fallback for receipts no chain pattern matched.
// It applies no repairs: without knowing the chain's conventions, folding
// discounts or dropping lines would guess.
type genericStrategy struct {
	profile *StoreProfile
}

// NewGeneric builds the no-op fallback strategy.
func NewGeneric(_ Options) Strategy {
	return &genericStrategy{
		profile: &StoreProfile{
			Name: "Generic",
		},
	}
}

func (s *genericStrategy) Profile() *StoreProfile {
	return s.profile
}

func (s *genericStrategy) PostProcess(items []receipt.RawLineItem, _ string) ([]receipt.RawLineItem, []string) {
	return items, nil
}
