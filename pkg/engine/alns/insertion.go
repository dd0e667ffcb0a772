package alns

import (
	"math/rand"
	"sort"

	"github.com/lintang-b-s/Courierx/pkg"
	"github.com/lintang-b-s/Courierx/pkg/datastructure"
	"github.com/lintang-b-s/Courierx/pkg/util"
)

// costTable caches the optimal insertion cost of every banked request
// into every vehicle. Infeasible or incompatible pairs carry the
// UNLIMITED sentinel. Repair operators re-price only the column of the
// vehicle they just inserted into.
type costTable map[int]map[int]float64

func candidateVehicles(solution *datastructure.Solution) []int {
	vehicleIds := append(solution.RouteVehicleIds(), solution.VehicleBankIds()...)
	sort.Ints(vehicleIds)
	return vehicleIds
}

func priceInsertion(solution *datastructure.Solution, requestId, vehicleId int,
	noise NoiseFunc) (float64, error) {
	ok, cost, err := solution.CostIfInsert(requestId, vehicleId)
	if err != nil {
		return 0, err
	}
	if !ok {
		return pkg.UNLIMITED_FLOAT_BOUND, nil
	}
	return noise(cost), nil
}

func buildCostTable(solution *datastructure.Solution, noise NoiseFunc) (costTable, error) {
	table := make(costTable, solution.RequestBankSize())
	vehicleIds := candidateVehicles(solution)

	for _, requestId := range solution.RequestBankIds() {
		row := make(map[int]float64, len(vehicleIds))
		for _, vehicleId := range vehicleIds {
			cost, err := priceInsertion(solution, requestId, vehicleId, noise)
			if err != nil {
				return nil, err
			}
			row[vehicleId] = cost
		}
		table[requestId] = row
	}
	return table, nil
}

// updateColumn drops the committed request's row and re-prices the used
// vehicle for every remaining banked request. Rows are visited in id
// order so the noise wrapper consumes the RNG in a reproducible sequence.
func (t costTable) updateColumn(solution *datastructure.Solution,
	insertedRequestId, usedVehicleId int, noise NoiseFunc) error {

	delete(t, insertedRequestId)
	for _, requestId := range t.requestIds() {
		cost, err := priceInsertion(solution, requestId, usedVehicleId, noise)
		if err != nil {
			return err
		}
		t[requestId][usedVehicleId] = cost
	}
	return nil
}

func (t costTable) requestIds() []int {
	ids := make([]int, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// findBest scans the table in (requestId, vehicleId) order; strict
// comparison keeps the first of equal-cost cells.
func (t costTable) findBest() (requestId, vehicleId int, cost float64, found bool) {
	cost = pkg.UNLIMITED_FLOAT_BOUND + 1
	for _, rid := range t.requestIds() {
		row := t[rid]
		vehicleIds := make([]int, 0, len(row))
		for vid := range row {
			vehicleIds = append(vehicleIds, vid)
		}
		sort.Ints(vehicleIds)
		for _, vid := range vehicleIds {
			if row[vid] < cost {
				cost = row[vid]
				requestId = rid
				vehicleId = vid
				found = true
			}
		}
	}
	return requestId, vehicleId, cost, found
}

func commitInsertion(solution *datastructure.Solution, requestId, vehicleId int) error {
	ok, err := solution.InsertOptimalIntoVehicle(requestId, vehicleId)
	if err != nil {
		return err
	}
	if !ok {
		return util.WrapErrorf(nil, util.ErrState,
			"insertion of request %d into vehicle %d failed although the cost table priced it feasible",
			requestId, vehicleId)
	}
	return nil
}

// BasicGreedyInsertion repeatedly commits the globally cheapest feasible
// (request, vehicle) insertion until the budget, the bank, or feasibility
// runs out.
func BasicGreedyInsertion(problem *datastructure.Problem, solution *datastructure.Solution,
	q int, insertUnlimited bool, noise NoiseFunc, rng *rand.Rand) error {
	if q < 1 {
		return util.WrapErrorf(nil, util.ErrState, "insertion budget %d must be positive", q)
	}

	qq := util.Min(solution.RequestBankSize(), q)
	maxIterations := qq * 2

	table, err := buildCostTable(solution, noise)
	if err != nil {
		return err
	}

	for iteration := 0; (insertUnlimited || iteration < qq) && iteration < maxIterations; iteration++ {
		if len(table) == 0 || solution.RequestBankSize() == 0 {
			break
		}

		requestId, vehicleId, cost, found := table.findBest()
		if !found || cost > pkg.UNLIMITED_FLOAT {
			break
		}
		if err := commitInsertion(solution, requestId, vehicleId); err != nil {
			return err
		}
		if err := table.updateColumn(solution, requestId, vehicleId, noise); err != nil {
			return err
		}
	}
	return nil
}

type vehicleCost struct {
	vehicleId int
	cost      float64
}

type requestRegret struct {
	requestId int
	regret    float64
}

// NewRegretInsertion builds the regret-k repair operator: it commits the
// request whose k-best alternatives are collectively worst relative to
// its best option, postponing requests that still have cheap fallbacks.
func NewRegretInsertion(k int) InsertionOperator {
	return func(problem *datastructure.Problem, solution *datastructure.Solution,
		q int, insertUnlimited bool, noise NoiseFunc, rng *rand.Rand) error {
		if k < 2 {
			return util.WrapErrorf(nil, util.ErrState, "regret level %d must be at least 2", k)
		}
		if q < 1 {
			return util.WrapErrorf(nil, util.ErrState, "insertion budget %d must be positive", q)
		}
		if totalVehicleNum := solution.TotalVehicleNum(); k > totalVehicleNum {
			return util.WrapErrorf(nil, util.ErrState,
				"regret level %d exceeds total vehicle number %d", k, totalVehicleNum)
		}

		qq := util.Min(solution.RequestBankSize(), q)
		maxIterations := qq * 2

		table, err := buildCostTable(solution, noise)
		if err != nil {
			return err
		}

		for iteration := 0; (insertUnlimited || iteration < qq) && iteration < maxIterations; iteration++ {
			if len(table) == 0 || solution.RequestBankSize() == 0 {
				break
			}

			sortedRows := make(map[int][]vehicleCost, len(table))
			regrets := make([]requestRegret, 0, len(table))
			for _, requestId := range table.requestIds() {
				row := table[requestId]
				if len(row) < k {
					return util.WrapErrorf(nil, util.ErrState,
						"request %d has only %d vehicle options, regret-%d needs %d",
						requestId, len(row), k, k)
				}

				costs := make([]vehicleCost, 0, len(row))
				for vehicleId, cost := range row {
					costs = append(costs, vehicleCost{vehicleId: vehicleId, cost: cost})
				}
				sort.SliceStable(costs, func(a, b int) bool {
					if costs[a].cost != costs[b].cost {
						return costs[a].cost < costs[b].cost
					}
					return costs[a].vehicleId < costs[b].vehicleId
				})
				sortedRows[requestId] = costs

				regret := 0.0
				for i := 0; i < k; i++ {
					regret += costs[i].cost - costs[0].cost
				}
				regrets = append(regrets, requestRegret{requestId: requestId, regret: regret})
			}

			sort.SliceStable(regrets, func(a, b int) bool {
				return regrets[a].regret > regrets[b].regret
			})

			chosen := -1
			for _, candidate := range regrets {
				if sortedRows[candidate.requestId][0].cost <= pkg.UNLIMITED_FLOAT {
					chosen = candidate.requestId
					break
				}
			}
			if chosen == -1 {
				break
			}

			usedVehicleId := sortedRows[chosen][0].vehicleId
			if err := commitInsertion(solution, chosen, usedVehicleId); err != nil {
				return err
			}
			if err := table.updateColumn(solution, chosen, usedVehicleId, noise); err != nil {
				return err
			}
		}
		return nil
	}
}
