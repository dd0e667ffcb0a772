package alns

import (
	"math"
	"math/rand"
	"time"

	"github.com/lintang-b-s/Courierx/pkg"
	"github.com/lintang-b-s/Courierx/pkg/datastructure"
	"github.com/lintang-b-s/Courierx/pkg/metrics"
	"github.com/lintang-b-s/Courierx/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Engine runs adaptive large neighbourhood search: every iteration it
// destroys part of the incumbent with a weighted-random removal operator,
// repairs it with a weighted-random insertion operator, and lets
// simulated annealing decide acceptance. Operator weights adapt to the
// rewards collected per segment.
type Engine struct {
	log      *zap.Logger
	rng      *rand.Rand
	progress *rate.Limiter
}

func NewEngine(log *zap.Logger, rng *rand.Rand) *Engine {
	return &Engine{
		log:      log,
		rng:      rng,
		progress: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// Result carries the best solution found, the iterations actually spent,
// and the operator statistics of the run.
type Result struct {
	Best       *datastructure.Solution
	Iterations int
	Stats      *metrics.SearchStats
}

type operatorSet struct {
	removalNames   []string
	removals       []RemovalOperator
	insertionNames []string
	insertions     []InsertionOperator
	noiseNames     []string
	noiseOn        []bool
}

// buildOperatorSet assembles the portfolio. Regret-k variants are only
// registered when the fleet can honor them (k <= m).
func buildOperatorSet(totalVehicleNum int) operatorSet {
	ops := operatorSet{
		removalNames: []string{"shaw", "random", "worst"},
		removals:     []RemovalOperator{ShawRemoval, RandomRemoval, WorstRemoval},

		insertionNames: []string{"greedy"},
		insertions:     []InsertionOperator{BasicGreedyInsertion},

		noiseNames: []string{"no-noise", "noise"},
		noiseOn:    []bool{false, true},
	}
	for k := 2; k <= 4; k++ {
		if k <= totalVehicleNum {
			ops.insertionNames = append(ops.insertionNames, regretName(k))
			ops.insertions = append(ops.insertions, NewRegretInsertion(k))
		}
	}
	if totalVehicleNum > 4 {
		ops.insertionNames = append(ops.insertionNames, "regret-m")
		ops.insertions = append(ops.insertions, NewRegretInsertion(totalVehicleNum))
	}
	return ops
}

func regretName(k int) string {
	return "regret-" + string(rune('0'+k))
}

// computeInitialTemperature warms the annealer so that a solution worse
// than the start by the fraction w is accepted with probability p.
func computeInitialTemperature(z0, w, p float64) (float64, error) {
	if z0 <= 0 {
		return 0, util.WrapErrorf(nil, util.ErrConfig,
			"initial objective %f must be positive to derive a start temperature", z0)
	}
	return -(w * z0) / math.Log(p), nil
}

type weightClass struct {
	weights []float64
	rewards []float64
	usage   []int
}

func newWeightClass(n int, initialWeight float64) *weightClass {
	wc := &weightClass{
		weights: make([]float64, n),
		rewards: make([]float64, n),
		usage:   make([]int, n),
	}
	for i := range wc.weights {
		wc.weights[i] = initialWeight
	}
	return wc
}

func (wc *weightClass) credit(index int, reward int) {
	wc.rewards[index] += float64(reward)
}

// updateAndReset mixes segment rewards into the weights and clears the
// accumulators. Unused operators keep their weight, floored so nothing
// ever starves out of the roulette wheel.
func (wc *weightClass) updateAndReset(r float64) {
	for i := range wc.weights {
		if wc.usage[i] > 0 {
			wc.weights[i] = (1-r)*wc.weights[i] + r*(wc.rewards[i]/float64(wc.usage[i]))
		}
		if wc.weights[i] < pkg.WEIGHT_FLOOR {
			wc.weights[i] = pkg.WEIGHT_FLOOR
		}
		wc.rewards[i] = 0
		wc.usage[i] = 0
	}
}

// Run searches for at most iterationBudget iterations starting from
// initial. insertUnlimited lets repair operators insert past q, up to
// their 2*min(q, bank) iteration cap; stopWhenAllAssigned returns as soon as the best solution has an empty
// request bank. The initial solution is not mutated.
func (e *Engine) Run(problem *datastructure.Problem, initial *datastructure.Solution,
	iterationBudget int, insertUnlimited, stopWhenAllAssigned bool) (*Result, error) {

	if problem == nil || initial == nil {
		return nil, util.WrapErrorf(nil, util.ErrConfig, "problem and initial solution are required")
	}
	if iterationBudget < 1 {
		return nil, util.WrapErrorf(nil, util.ErrConfig, "iteration budget %d must be positive", iterationBudget)
	}

	params := problem.GetParams()
	requestsNum := problem.NumberOfRequests()
	qUpperBound := util.Min(params.RemoveUpperBound, int(params.Epsilon*float64(requestsNum)))
	qLowerBound := params.RemoveLowerBound
	if qLowerBound < 1 {
		return nil, util.WrapErrorf(nil, util.ErrConfig, "remove lower bound %d must be at least 1", qLowerBound)
	}
	if qUpperBound < qLowerBound {
		return nil, util.WrapErrorf(nil, util.ErrConfig,
			"removal upper bound %d below lower bound %d for %d requests",
			qUpperBound, qLowerBound, requestsNum)
	}

	ops := buildOperatorSet(initial.TotalVehicleNum())
	stats := metrics.NewSearchStats(ops.removalNames, ops.insertionNames, ops.noiseNames)

	removalWeights := newWeightClass(len(ops.removals), params.InitialWeight)
	insertionWeights := newWeightClass(len(ops.insertions), params.InitialWeight)
	noiseWeights := newWeightClass(len(ops.noiseOn), params.InitialWeight)

	sBest := initial.Copy()
	s := initial.Copy()

	tCurrent, err := computeInitialTemperature(initial.ObjectiveCostSansBank(), params.W, params.AnnealingP)
	if err != nil {
		return nil, err
	}

	maxDistance := problem.MaxDistance()
	acceptedSolutionSet := make(map[string]struct{})

	e.log.Info("alns search started",
		zap.Int("iteration_budget", iterationBudget),
		zap.Int("requests", requestsNum),
		zap.Int("vehicles", initial.TotalVehicleNum()),
		zap.Float64("initial_temperature", tCurrent))

	totalIterationNum := 0
	for totalIterationNum < iterationBudget {
		if e.progress.Allow() {
			e.log.Info("alns progress",
				zap.Int("iteration", totalIterationNum),
				zap.Float64("best_objective", sBest.ObjectiveCost()),
				zap.Int("request_bank", sBest.RequestBankSize()))
		}

		q := qLowerBound + e.rng.Intn(qUpperBound-qLowerBound+1)

		removalIdx := selectWithWeight(removalWeights.weights, e.rng)
		insertionIdx := selectWithWeight(insertionWeights.weights, e.rng)
		noiseIdx := selectWithWeight(noiseWeights.weights, e.rng)
		removalWeights.usage[removalIdx]++
		insertionWeights.usage[insertionIdx]++
		noiseWeights.usage[noiseIdx]++
		stats.Removal[removalIdx].Selects++
		stats.Insertion[insertionIdx].Selects++
		stats.Noise[noiseIdx].Selects++

		noise := newNoiseWrapper(ops.noiseOn[noiseIdx], params.Eta, maxDistance, e.rng)

		sP := s.Copy()
		if err := ops.removals[removalIdx](problem, sP, q, e.rng); err != nil {
			return nil, err
		}
		if err := ops.insertions[insertionIdx](problem, sP, q, insertUnlimited, noise, e.rng); err != nil {
			return nil, err
		}

		fingerprint := sP.Fingerprint()
		if _, seen := acceptedSolutionSet[fingerprint]; seen {
			stats.Duplicates++
			totalIterationNum++
			continue
		}

		sPCost := sP.ObjectiveCost()
		originalCost := s.ObjectiveCost()

		creditAll := func(reward int) {
			removalWeights.credit(removalIdx, reward)
			insertionWeights.credit(insertionIdx, reward)
			noiseWeights.credit(noiseIdx, reward)
			stats.Removal[removalIdx].RewardTotal += float64(reward)
			stats.Insertion[insertionIdx].RewardTotal += float64(reward)
			stats.Noise[noiseIdx].RewardTotal += float64(reward)
		}

		isNewBest := false
		if sPCost < sBest.ObjectiveCost() {
			isNewBest = true
			creditAll(params.RewardAdds[0])
			stats.NewBest++
		}

		isAccepted := false
		if sPCost <= originalCost {
			isAccepted = true
			if !isNewBest {
				creditAll(params.RewardAdds[1])
				stats.Improved++
			}
		} else {
			acceptRatio := math.Exp(-(sPCost - originalCost) / tCurrent)
			if e.rng.Float64() <= acceptRatio {
				isAccepted = true
				creditAll(params.RewardAdds[2])
				stats.AcceptedWorse++
			} else {
				stats.Rejected++
			}
		}

		if isNewBest {
			sBest = sP.Copy()
		}
		if isAccepted {
			s = sP
			acceptedSolutionSet[fingerprint] = struct{}{}
			// bounded duplicate filter, not correctness state
			if len(acceptedSolutionSet) > pkg.ACCEPTED_SET_MAXLEN {
				acceptedSolutionSet = make(map[string]struct{})
			}
		}

		if (totalIterationNum+1)%params.SegmentNum == 0 {
			removalWeights.updateAndReset(params.R)
			insertionWeights.updateAndReset(params.R)
			noiseWeights.updateAndReset(params.R)
			stats.Snapshots = append(stats.Snapshots, metrics.WeightSnapshot{
				Iteration: totalIterationNum + 1,
				Removal:   append([]float64(nil), removalWeights.weights...),
				Insertion: append([]float64(nil), insertionWeights.weights...),
				Noise:     append([]float64(nil), noiseWeights.weights...),
			})
		}

		tCurrent = math.Max(pkg.MIN_TEMPERATURE, tCurrent*params.C)
		totalIterationNum++

		if stopWhenAllAssigned && sBest.RequestBankSize() == 0 {
			break
		}
	}

	stats.Iterations = totalIterationNum
	stats.BestCost = sBest.ObjectiveCost()
	fillFinal(stats.Removal, removalWeights)
	fillFinal(stats.Insertion, insertionWeights)
	fillFinal(stats.Noise, noiseWeights)

	e.log.Info("alns search finished",
		zap.Int("iterations", totalIterationNum),
		zap.Float64("best_objective", sBest.ObjectiveCost()),
		zap.Int("request_bank", sBest.RequestBankSize()),
		zap.Int("duplicates", stats.Duplicates))

	return &Result{Best: sBest, Iterations: totalIterationNum, Stats: stats}, nil
}

func fillFinal(stats []metrics.OperatorStats, wc *weightClass) {
	for i := range stats {
		stats[i].FinalWeight = wc.weights[i]
	}
}
