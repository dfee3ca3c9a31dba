package treemodel

// Demo builds a small deterministic ensemble over the given feature
// contract. It approximates the rule-based score shape well enough for
// local development and integration testing without a real trained
// artifact. Feature slot indices follow the canonical contract order.
func Demo(featureNames []string) *Ensemble {
	const (
		slotIncome  = 1
		slotSavings = 3
		slotLate    = 9
		slotHistory = 10
	)

	return &Ensemble{
		Version:      "demo_gbrt_v1",
		FeatureNames: featureNames,
		Base:         560,
		LearningRate: 1.0,
		Trees: []Tree{
			// Income: <=30k -> -40, <=80k -> +20, else +90.
			{
				Feature:   []int{slotIncome, -1, slotIncome, -1, -1},
				Threshold: []float64{30000, 0, 80000, 0, 0},
				Left:      []int{1, -1, 3, -1, -1},
				Right:     []int{2, -1, 4, -1, -1},
				Value:     []float64{0, -40, 0, 20, 90},
			},
			// Late payments: <=0 -> +45, <=2 -> -10, else -80.
			{
				Feature:   []int{slotLate, -1, slotLate, -1, -1},
				Threshold: []float64{0, 0, 2, 0, 0},
				Left:      []int{1, -1, 3, -1, -1},
				Right:     []int{2, -1, 4, -1, -1},
				Value:     []float64{0, 45, 0, -10, -80},
			},
			// Credit history: <=1yr -> -45, else +35.
			{
				Feature:   []int{slotHistory, -1, -1},
				Threshold: []float64{1, 0, 0},
				Left:      []int{1, -1, -1},
				Right:     []int{2, -1, -1},
				Value:     []float64{0, -45, 35},
			},
			// Savings: <=5k -> -15, else +25.
			{
				Feature:   []int{slotSavings, -1, -1},
				Threshold: []float64{5000, 0, 0},
				Left:      []int{1, -1, -1},
				Right:     []int{2, -1, -1},
				Value:     []float64{0, -15, 25},
			},
		},
	}
}
