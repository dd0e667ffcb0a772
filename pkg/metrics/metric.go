package metrics

// OperatorStats accumulates roulette-wheel bookkeeping for one operator
// over a whole search.
type OperatorStats struct {
	Name        string  `json:"name"`
	Selects     int     `json:"selects"`
	RewardTotal float64 `json:"reward_total"`
	FinalWeight float64 `json:"final_weight"`
}

// WeightSnapshot captures the adaptive weights at a segment boundary.
type WeightSnapshot struct {
	Iteration int       `json:"iteration"`
	Removal   []float64 `json:"removal"`
	Insertion []float64 `json:"insertion"`
	Noise     []float64 `json:"noise"`
}

// SearchStats summarizes one ALNS run: how often each operator ran, how
// the incumbent moved, and how the weights evolved.
type SearchStats struct {
	Iterations    int     `json:"iterations"`
	NewBest       int     `json:"new_best"`
	Improved      int     `json:"improved"`
	AcceptedWorse int     `json:"accepted_worse"`
	Rejected      int     `json:"rejected"`
	Duplicates    int     `json:"duplicates"`
	BestCost      float64 `json:"best_cost"`

	Removal   []OperatorStats  `json:"removal"`
	Insertion []OperatorStats  `json:"insertion"`
	Noise     []OperatorStats  `json:"noise"`
	Snapshots []WeightSnapshot `json:"snapshots"`
}

func NewSearchStats(removalNames, insertionNames, noiseNames []string) *SearchStats {
	stats := &SearchStats{}
	for _, name := range removalNames {
		stats.Removal = append(stats.Removal, OperatorStats{Name: name})
	}
	for _, name := range insertionNames {
		stats.Insertion = append(stats.Insertion, OperatorStats{Name: name})
	}
	for _, name := range noiseNames {
		stats.Noise = append(stats.Noise, OperatorStats{Name: name})
	}
	return stats
}
