package load

// LoadBreakdown is the percentage share of today's raw load per category.
// All fields are zero when the day has no raw load.
type LoadBreakdown struct {
	Activity float64 `json:"activity"`
	Meal     float64 `json:"meal"`
	Sleep    float64 `json:"sleep"`
	Symptom  float64 `json:"symptom"`
}

// Breakdown decomposes a day's raw load (contributors plus symptom load)
// into percentages.
func Breakdown(contributors []Contributor, symptomLoad float64) LoadBreakdown {
	sums := map[Category]float64{CategorySymptom: symptomLoad}
	total := symptomLoad
	for _, ct := range contributors {
		v := ct.LoadContribution()
		sums[ct.Category()] += v
		total += v
	}
	if total <= 0 {
		return LoadBreakdown{}
	}
	pct := func(c Category) float64 { return sums[c] / total * 100 }
	return LoadBreakdown{
		Activity: pct(CategoryActivity),
		Meal:     pct(CategoryMeal),
		Sleep:    pct(CategorySleep),
		Symptom:  pct(CategorySymptom),
	}
}
