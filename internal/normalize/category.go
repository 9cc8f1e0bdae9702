// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import "strings"

// Taxonomy categories.
const (
	CategoryFood          = "Food & Dining"
	CategoryGrocery       = "Grocery"
	CategoryRetail        = "Retail"
	CategoryHealth        = "Health & Wellness"
	CategoryFinance       = "Financial Services"
	CategoryAutomotive    = "Automotive"
	CategoryHospitality   = "Hospitality"
	CategoryFitness       = "Fitness"
	CategoryTechnology    = "Technology"
	CategoryEntertainment = "Entertainment"
	CategoryHome          = "Home & Garden"
	CategoryProfessional  = "Professional Services"
	CategoryEnergy        = "Energy"
)

var taxonomy = map[string]bool{
	CategoryFood: true, CategoryGrocery: true, CategoryRetail: true, CategoryHealth: true,
	CategoryFinance: true, CategoryAutomotive: true, CategoryHospitality: true, CategoryFitness: true,
	CategoryTechnology: true, CategoryEntertainment: true, CategoryHome: true,
	CategoryProfessional: true, CategoryEnergy: true,
}

// categoryRule maps a lower-case substring onto a taxonomy category.
type categoryRule struct {
	keyword  string
	category string
}

// categoryRules is scanned in order; the first keyword found wins, so more
// specific keywords come before general ones ("grocery store" before
// "store").
var categoryRules = []categoryRule{
	{"hospitality", CategoryHospitality},
	{"supermarket", CategoryGrocery},
	{"grocery", CategoryGrocery},
	{"greengrocer", CategoryGrocery},
	{"convenience", CategoryGrocery},
	{"restaurant", CategoryFood},
	{"fast_food", CategoryFood},
	{"fast food", CategoryFood},
	{"cafe", CategoryFood},
	{"coffee", CategoryFood},
	{"bakery", CategoryFood},
	{"bar", CategoryFood},
	{"pub", CategoryFood},
	{"food", CategoryFood},
	{"pharmacy", CategoryHealth},
	{"chemist", CategoryHealth},
	{"hospital", CategoryHealth},
	{"clinic", CategoryHealth},
	{"dentist", CategoryHealth},
	{"doctor", CategoryHealth},
	{"health", CategoryHealth},
	{"bank", CategoryFinance},
	{"atm", CategoryFinance},
	{"insurance", CategoryFinance},
	{"financial", CategoryFinance},
	{"fuel", CategoryAutomotive},
	{"gas station", CategoryAutomotive},
	{"car_repair", CategoryAutomotive},
	{"car repair", CategoryAutomotive},
	{"car dealer", CategoryAutomotive},
	{"automotive", CategoryAutomotive},
	{"hotel", CategoryHospitality},
	{"motel", CategoryHospitality},
	{"hostel", CategoryHospitality},
	{"gym", CategoryFitness},
	{"fitness", CategoryFitness},
	{"sports_centre", CategoryFitness},
	{"software", CategoryTechnology},
	{"technology", CategoryTechnology},
	{"electronics", CategoryTechnology},
	{"computer", CategoryTechnology},
	{"cinema", CategoryEntertainment},
	{"theatre", CategoryEntertainment},
	{"entertainment", CategoryEntertainment},
	{"hardware", CategoryHome},
	{"doityourself", CategoryHome},
	{"garden", CategoryHome},
	{"furniture", CategoryHome},
	{"energy", CategoryEnergy},
	{"oil", CategoryEnergy},
	{"lawyer", CategoryProfessional},
	{"accountant", CategoryProfessional},
	{"consulting", CategoryProfessional},
	{"clothes", CategoryRetail},
	{"clothing", CategoryRetail},
	{"department_store", CategoryRetail},
	{"department store", CategoryRetail},
	{"retail", CategoryRetail},
	{"shop", CategoryRetail},
	{"store", CategoryRetail},
}

// Category maps free text onto the taxonomy. Text that matches no keyword
// passes through unchanged.
func Category(s string) string {
	if s == "" {
		return ""
	}
	if taxonomy[s] {
		return s
	}
	lower := strings.ToLower(s)
	for _, r := range categoryRules {
		if strings.Contains(lower, r.keyword) {
			return r.category
		}
	}
	return s
}
