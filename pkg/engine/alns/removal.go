package alns

import (
	"math"
	"math/rand"
	"sort"

	"github.com/lintang-b-s/Courierx/pkg"
	"github.com/lintang-b-s/Courierx/pkg/datastructure"
	"github.com/lintang-b-s/Courierx/pkg/util"
)

type requestPair struct {
	first  int
	second int
}

func orderedPair(a, b int) requestPair {
	if a < b {
		return requestPair{first: a, second: b}
	}
	return requestPair{first: b, second: a}
}

// relatednessTable holds the Shaw relatedness components for every pair of
// currently assigned requests. The spatial, temporal and load components
// are min-max normalized to [0,1]; the vehicle-set component is already a
// ratio and stays as computed.
type relatednessTable struct {
	distancePick     map[requestPair]float64
	distanceDelivery map[requestPair]float64
	timeDiffPick     map[requestPair]float64
	timeDiffDelivery map[requestPair]float64
	loadDiff         map[requestPair]float64
	vehicleSetDiff   map[requestPair]float64
}

func normalizePairValues(values map[requestPair]float64) {
	if len(values) == 0 {
		return
	}
	first := true
	var minValue, maxValue float64
	for _, v := range values {
		if first {
			minValue, maxValue = v, v
			first = false
			continue
		}
		if v < minValue {
			minValue = v
		}
		if v > maxValue {
			maxValue = v
		}
	}
	if math.Abs(maxValue-minValue) < pkg.NORMALIZATION_EPSILON {
		for k := range values {
			values[k] = 0
		}
		return
	}
	span := maxValue - minValue
	for k, v := range values {
		values[k] = (v - minValue) / span
	}
}

func buildRelatednessTable(problem *datastructure.Problem, solution *datastructure.Solution,
	assigned []int) (*relatednessTable, error) {

	table := &relatednessTable{
		distancePick:     make(map[requestPair]float64),
		distanceDelivery: make(map[requestPair]float64),
		timeDiffPick:     make(map[requestPair]float64),
		timeDiffDelivery: make(map[requestPair]float64),
		loadDiff:         make(map[requestPair]float64),
		vehicleSetDiff:   make(map[requestPair]float64),
	}

	pickTimes := make(map[int]float64, len(assigned))
	deliveryTimes := make(map[int]float64, len(assigned))
	for _, requestId := range assigned {
		request := problem.GetRequest(requestId)
		pickTime, err := solution.NodeStartServiceTime(request.GetPickNodeId())
		if err != nil {
			return nil, err
		}
		deliveryTime, err := solution.NodeStartServiceTime(request.GetDeliveryNodeId())
		if err != nil {
			return nil, err
		}
		pickTimes[requestId] = pickTime
		deliveryTimes[requestId] = deliveryTime
	}

	for i := 0; i < len(assigned); i++ {
		reqI := problem.GetRequest(assigned[i])
		for j := i + 1; j < len(assigned); j++ {
			reqJ := problem.GetRequest(assigned[j])
			key := orderedPair(assigned[i], assigned[j])

			table.distancePick[key] = problem.GetDistance(reqI.GetPickNodeId(), reqJ.GetPickNodeId())
			table.distanceDelivery[key] = problem.GetDistance(reqI.GetDeliveryNodeId(), reqJ.GetDeliveryNodeId())
			table.timeDiffPick[key] = math.Abs(pickTimes[assigned[i]] - pickTimes[assigned[j]])
			table.timeDiffDelivery[key] = math.Abs(deliveryTimes[assigned[i]] - deliveryTimes[assigned[j]])
			table.loadDiff[key] = math.Abs(reqI.GetRequireCapacity() - reqJ.GetRequireCapacity())

			overlap := reqI.VehicleSetOverlap(reqJ)
			minSize := util.Min(reqI.VehicleSetSize(), reqJ.VehicleSetSize())
			table.vehicleSetDiff[key] = 1.0 - float64(overlap)/float64(minSize)
		}
	}

	normalizePairValues(table.distancePick)
	normalizePairValues(table.distanceDelivery)
	normalizePairValues(table.timeDiffPick)
	normalizePairValues(table.timeDiffDelivery)
	normalizePairValues(table.loadDiff)

	return table, nil
}

func (t *relatednessTable) relatedness(problem *datastructure.Problem, baseRequestId, otherRequestId int) float64 {
	key := orderedPair(baseRequestId, otherRequestId)
	params := problem.GetParams()

	distanceScore := t.distancePick[key] + t.distanceDelivery[key]
	timeScore := t.timeDiffPick[key] + t.timeDiffDelivery[key]

	return params.ShawParam1*distanceScore +
		params.ShawParam2*timeScore +
		params.ShawParam3*t.loadDiff[key] +
		params.ShawParam4*t.vehicleSetDiff[key]
}

// powIndex implements the y^p biased pick: a uniform y in [0,1) raised to
// the exponent concentrates selection near the head of a sorted list.
func powIndex(rng *rand.Rand, exponent, n int) int {
	y := rng.Float64()
	idx := int(math.Pow(y, float64(exponent)) * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// ShawRemoval removes q related requests: it seeds with a random assigned
// request, then repeatedly picks a random member of the removal set and
// takes one of the requests most related to it.
func ShawRemoval(problem *datastructure.Problem, solution *datastructure.Solution,
	q int, rng *rand.Rand) error {
	if q < 1 {
		return util.WrapErrorf(nil, util.ErrState, "removal size %d must be positive", q)
	}

	assigned := solution.AssignedRequestIds()
	if len(assigned) == 0 {
		return nil
	}
	qq := util.Min(q, len(assigned))

	seed := assigned[rng.Intn(len(assigned))]
	removed := []int{seed}
	inRemoved := map[int]struct{}{seed: {}}

	table, err := buildRelatednessTable(problem, solution, assigned)
	if err != nil {
		return err
	}

	for len(removed) < qq {
		base := removed[rng.Intn(len(removed))]

		remaining := make([]int, 0, len(assigned)-len(removed))
		for _, requestId := range assigned {
			if _, ok := inRemoved[requestId]; !ok {
				remaining = append(remaining, requestId)
			}
		}
		if len(remaining) == 0 {
			break
		}

		sort.SliceStable(remaining, func(a, b int) bool {
			return table.relatedness(problem, base, remaining[a]) <
				table.relatedness(problem, base, remaining[b])
		})

		selected := remaining[powIndex(rng, problem.GetParams().P, len(remaining))]
		removed = append(removed, selected)
		inRemoved[selected] = struct{}{}
	}

	sort.Ints(removed)
	return solution.RemoveRequests(removed)
}

// RandomRemoval removes q assigned requests uniformly without replacement.
func RandomRemoval(problem *datastructure.Problem, solution *datastructure.Solution,
	q int, rng *rand.Rand) error {
	if q < 1 {
		return util.WrapErrorf(nil, util.ErrState, "removal size %d must be positive", q)
	}

	assigned := solution.AssignedRequestIds()
	if len(assigned) == 0 {
		return nil
	}
	qq := util.Min(q, len(assigned))

	selected := make([]int, 0, qq)
	for i := 0; i < qq; i++ {
		idx := rng.Intn(len(assigned))
		selected = append(selected, assigned[idx])
		assigned = append(assigned[:idx], assigned[idx+1:]...)
	}
	return solution.RemoveRequests(selected)
}

// WorstRemoval removes q requests one at a time, re-pricing the removal
// savings after each step so the distribution matches the sequential
// formulation (a batched variant would not).
func WorstRemoval(problem *datastructure.Problem, solution *datastructure.Solution,
	q int, rng *rand.Rand) error {
	if q < 1 {
		return util.WrapErrorf(nil, util.ErrState, "removal size %d must be positive", q)
	}

	for remaining := q; remaining > 0; remaining-- {
		assigned := solution.AssignedRequestIds()
		if len(assigned) == 0 {
			break
		}

		savings := make(map[int]float64, len(assigned))
		for _, requestId := range assigned {
			cost, err := solution.CostIfRemove(requestId)
			if err != nil {
				return err
			}
			savings[requestId] = cost
		}
		sort.SliceStable(assigned, func(a, b int) bool {
			return savings[assigned[a]] > savings[assigned[b]]
		})

		selected := assigned[powIndex(rng, problem.GetParams().PWorst, len(assigned))]
		if err := solution.RemoveRequests([]int{selected}); err != nil {
			return err
		}
	}
	return nil
}
