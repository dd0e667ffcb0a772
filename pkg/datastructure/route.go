package datastructure

import (
	"github.com/lintang-b-s/Courierx/pkg/util"
)

// Route is one vehicle's visit sequence bracketed by its depot pair,
// together with three prefix lines of the same length: service start
// times, cumulative load, and cumulative distance. The lines make
// per-position feasibility checks O(|route|) without rescanning.
type Route struct {
	problem   *Problem
	vehicleId int

	route            []int
	startServiceLine []float64
	loadLine         []float64
	distanceLine     []float64
}

// NewRoute builds the empty depot-to-depot route for a vehicle.
func NewRoute(problem *Problem, vehicleId int) (*Route, error) {
	vehicle := problem.GetVehicle(vehicleId)
	if vehicle == nil {
		return nil, util.WrapErrorf(nil, util.ErrState, "vehicle %d not found", vehicleId)
	}

	startNode := problem.GetNode(vehicle.GetStartNodeId())
	endNode := problem.GetNode(vehicle.GetEndNodeId())
	if startNode == nil || endNode == nil {
		return nil, util.WrapErrorf(nil, util.ErrState, "vehicle %d depot nodes not found", vehicleId)
	}

	earliestTime := startNode.GetEarliestServiceTime()
	arrivalTime := earliestTime + startNode.GetServiceTime() +
		problem.GetTravelTime(vehicleId, startNode.GetId(), endNode.GetId())
	latestTime := max(arrivalTime, endNode.GetEarliestServiceTime())
	if latestTime > endNode.GetLatestServiceTime() {
		return nil, util.WrapErrorf(nil, util.ErrState,
			"vehicle %d cannot reach its end depot inside the depot window", vehicleId)
	}

	return &Route{
		problem:          problem,
		vehicleId:        vehicleId,
		route:            []int{startNode.GetId(), endNode.GetId()},
		startServiceLine: []float64{earliestTime, latestTime},
		loadLine:         []float64{startNode.GetLoad(), startNode.GetLoad() + endNode.GetLoad()},
		distanceLine:     []float64{0, problem.GetDistance(startNode.GetId(), endNode.GetId())},
	}, nil
}

func (r *Route) Copy() *Route {
	return &Route{
		problem:          r.problem,
		vehicleId:        r.vehicleId,
		route:            append([]int(nil), r.route...),
		startServiceLine: append([]float64(nil), r.startServiceLine...),
		loadLine:         append([]float64(nil), r.loadLine...),
		distanceLine:     append([]float64(nil), r.distanceLine...),
	}
}

func (r *Route) setProblem(problem *Problem) {
	r.problem = problem
}

func (r *Route) GetVehicleId() int {
	return r.vehicleId
}

// IsEmpty reports whether only the depot pair remains.
func (r *Route) IsEmpty() bool {
	return len(r.route) <= 2
}

func (r *Route) Len() int {
	return len(r.route)
}

func (r *Route) GetRoute() []int {
	return append([]int(nil), r.route...)
}

func (r *Route) GetStartServiceLine() []float64 {
	return append([]float64(nil), r.startServiceLine...)
}

func (r *Route) GetLoadLine() []float64 {
	return append([]float64(nil), r.loadLine...)
}

func (r *Route) GetDistanceLine() []float64 {
	return append([]float64(nil), r.distanceLine...)
}

// WholeTimeCost is the route duration: last service start minus first.
func (r *Route) WholeTimeCost() float64 {
	return r.startServiceLine[len(r.startServiceLine)-1] - r.startServiceLine[0]
}

// WholeDistanceCost is the accumulated distance at the end depot.
func (r *Route) WholeDistanceCost() float64 {
	return r.distanceLine[len(r.distanceLine)-1]
}

// StartServiceOf looks up the service start time of a node on this route.
func (r *Route) StartServiceOf(nodeId int) (float64, error) {
	for k, id := range r.route {
		if id == nodeId {
			return r.startServiceLine[k], nil
		}
	}
	return 0, util.WrapErrorf(nil, util.ErrState, "node %d not on route of vehicle %d", nodeId, r.vehicleId)
}

func insertInt(s []int, idx, v int) []int {
	s = append(s, 0)
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}

func insertFloat(s []float64, idx int, v float64) []float64 {
	s = append(s, 0)
	copy(s[idx+1:], s[idx:])
	s[idx] = v
	return s
}

func removeAt[T any](s []T, idx int) []T {
	return append(s[:idx], s[idx+1:]...)
}

// propagateServiceTimes recomputes service starts from startIdx onward and
// reports false on the first time-window violation. Waiting is free,
// tardiness is forbidden.
func (r *Route) propagateServiceTimes(startIdx int) bool {
	for k := startIdx; k < len(r.startServiceLine); k++ {
		prevNode := r.problem.GetNode(r.route[k-1])
		currentNode := r.problem.GetNode(r.route[k])

		newStartTime := max(
			r.startServiceLine[k-1]+prevNode.GetServiceTime()+
				r.problem.GetTravelTime(r.vehicleId, prevNode.GetId(), currentNode.GetId()),
			currentNode.GetEarliestServiceTime(),
		)
		if newStartTime > currentNode.GetLatestServiceTime() {
			return false
		}
		r.startServiceLine[k] = newStartTime
	}
	return true
}

func (r *Route) propagateDistances(startIdx int) {
	for k := startIdx; k < len(r.distanceLine); k++ {
		r.distanceLine[k] = r.distanceLine[k-1] +
			r.problem.GetDistance(r.route[k-1], r.route[k])
	}
}

// TryInsertAt inserts the request's pickup at pickIdx and delivery at
// deliveryIdx (1 <= pickIdx < deliveryIdx <= len before insertion) and
// returns the distance and duration deltas. On failure the receiver is
// left half-updated, so only ever call this on a scratch copy.
func (r *Route) TryInsertAt(requestId, pickIdx, deliveryIdx int) (bool, float64, float64) {
	if pickIdx < 1 || pickIdx >= deliveryIdx || deliveryIdx > len(r.route) {
		return false, 0, 0
	}

	request := r.problem.GetRequest(requestId)
	if request == nil {
		return false, 0, 0
	}

	prevWholeTimeCost := r.WholeTimeCost()
	prevDistance := r.WholeDistanceCost()

	r.route = insertInt(r.route, pickIdx, request.GetPickNodeId())
	r.route = insertInt(r.route, deliveryIdx, request.GetDeliveryNodeId())

	r.startServiceLine = insertFloat(r.startServiceLine, pickIdx, 0)
	r.startServiceLine = insertFloat(r.startServiceLine, deliveryIdx, 0)
	if !r.propagateServiceTimes(pickIdx) {
		return false, 0, 0
	}
	timeCostDiff := r.WholeTimeCost() - prevWholeTimeCost

	r.loadLine = insertFloat(r.loadLine, pickIdx, 0)
	r.loadLine = insertFloat(r.loadLine, deliveryIdx, 0)
	capacity := r.problem.GetVehicle(r.vehicleId).GetCapacity()
	for k := pickIdx; k <= deliveryIdx; k++ {
		newLoad := r.loadLine[k-1] + r.problem.GetNode(r.route[k]).GetLoad()
		if newLoad > capacity {
			return false, 0, 0
		}
		r.loadLine[k] = newLoad
	}

	r.distanceLine = insertFloat(r.distanceLine, pickIdx, 0)
	r.distanceLine = insertFloat(r.distanceLine, deliveryIdx, 0)
	r.propagateDistances(pickIdx)
	distanceDiff := r.WholeDistanceCost() - prevDistance

	return true, distanceDiff, timeCostDiff
}

// TryInsertOptimal scans every pickup/delivery position pair and returns
// the feasible insertion minimizing alpha*distanceDelta + beta*timeDelta.
// Ties keep the first (pickIdx, deliveryIdx) found. The receiver is not
// mutated; the winning route is returned by value.
func (r *Route) TryInsertOptimal(requestId int) (bool, float64, float64, *Route) {
	request := r.problem.GetRequest(requestId)
	if request == nil || !request.CompatibleWith(r.vehicleId) {
		return false, 0, 0, nil
	}

	alpha := r.problem.GetParams().Alpha
	beta := r.problem.GetParams().Beta

	routeLen := len(r.route)
	bestFound := false
	bestCost := 0.0
	var bestDistanceDiff, bestTimeDiff float64
	var bestRoute *Route

	for i := 1; i < routeLen; i++ {
		for j := i + 1; j <= routeLen; j++ {
			candidate := r.Copy()
			ok, distanceDiff, timeDiff := candidate.TryInsertAt(requestId, i, j)
			if !ok {
				continue
			}
			cost := alpha*distanceDiff + beta*timeDiff
			if !bestFound || cost < bestCost {
				bestFound = true
				bestCost = cost
				bestDistanceDiff = distanceDiff
				bestTimeDiff = timeDiff
				bestRoute = candidate
			}
		}
	}

	if !bestFound {
		return false, 0, 0, nil
	}
	return true, bestDistanceDiff, bestTimeDiff, bestRoute
}

// RemovePair deletes the request's pickup and delivery from the route and
// returns the (normally negative) distance and duration deltas. A request
// that is not on the route, or a vehicle outside the request's compatible
// set, is a state violation.
func (r *Route) RemovePair(requestId int) (float64, float64, error) {
	request := r.problem.GetRequest(requestId)
	if request == nil {
		return 0, 0, util.WrapErrorf(nil, util.ErrState, "request %d not found", requestId)
	}
	if !request.CompatibleWith(r.vehicleId) {
		return 0, 0, util.WrapErrorf(nil, util.ErrState,
			"vehicle %d not in request %d compatible set", r.vehicleId, requestId)
	}

	pickIdx, deliveryIdx := -1, -1
	for k, id := range r.route {
		if id == request.GetPickNodeId() {
			pickIdx = k
		} else if id == request.GetDeliveryNodeId() {
			deliveryIdx = k
		}
	}
	if pickIdx <= 0 || deliveryIdx <= 0 || pickIdx >= deliveryIdx {
		return 0, 0, util.WrapErrorf(nil, util.ErrState,
			"request %d has invalid positions pick=%d delivery=%d on vehicle %d",
			requestId, pickIdx, deliveryIdx, r.vehicleId)
	}

	prevWholeTimeCost := r.WholeTimeCost()
	prevDistance := r.WholeDistanceCost()

	r.route = removeAt(r.route, pickIdx)
	r.route = removeAt(r.route, deliveryIdx-1)

	r.startServiceLine = removeAt(r.startServiceLine, pickIdx)
	r.startServiceLine = removeAt(r.startServiceLine, deliveryIdx-1)
	if !r.propagateServiceTimes(pickIdx) {
		return 0, 0, util.WrapErrorf(nil, util.ErrState,
			"time window violated while removing request %d from vehicle %d", requestId, r.vehicleId)
	}
	timeCostDiff := r.WholeTimeCost() - prevWholeTimeCost

	r.loadLine = removeAt(r.loadLine, pickIdx)
	r.loadLine = removeAt(r.loadLine, deliveryIdx-1)
	capacity := r.problem.GetVehicle(r.vehicleId).GetCapacity()
	for k := pickIdx; k < deliveryIdx-1; k++ {
		newLoad := r.loadLine[k-1] + r.problem.GetNode(r.route[k]).GetLoad()
		if newLoad > capacity {
			return 0, 0, util.WrapErrorf(nil, util.ErrState,
				"capacity violated while removing request %d from vehicle %d", requestId, r.vehicleId)
		}
		r.loadLine[k] = newLoad
	}

	r.distanceLine = removeAt(r.distanceLine, pickIdx)
	r.distanceLine = removeAt(r.distanceLine, deliveryIdx-1)
	r.propagateDistances(pickIdx)
	distanceDiff := r.WholeDistanceCost() - prevDistance

	return distanceDiff, timeCostDiff, nil
}
