package datastructure

import (
	"math"
	"testing"

	"github.com/lintang-b-s/Courierx/pkg/parameters"
	"github.com/stretchr/testify/require"
)

func testParams() *parameters.Parameters {
	params := parameters.Default()
	params.RemoveLowerBound = 1
	params.Epsilon = 1.0
	return params
}

type pairSpec struct {
	pickX, pickY             float64
	pickEarliest, pickLatest float64
	delX, delY               float64
	delEarliest, delLatest   float64
	service                  float64
	load                     float64
}

type testNode struct {
	id   int
	x, y float64
}

// buildProblem wires a homogeneous instance: pair i gets pickup node 2i+1
// and delivery node 2i+2, depot clones take the ids above.
func buildProblem(t *testing.T, vehicleNum int, capacity, velocity float64,
	depotWindow [2]float64, pairs []pairSpec) *Problem {
	t.Helper()

	problem := NewProblem(testParams())

	coords := make([]testNode, 0)
	for i, pair := range pairs {
		pickId := 2*i + 1
		delId := 2*i + 2
		require.NoError(t, problem.AddNode(NewNode(pickId, pair.pickX, pair.pickY,
			pair.pickEarliest, pair.pickLatest, pair.service, pair.load)))
		require.NoError(t, problem.AddNode(NewNode(delId, pair.delX, pair.delY,
			pair.delEarliest, pair.delLatest, pair.service, -pair.load)))
		coords = append(coords, testNode{id: pickId, x: pair.pickX, y: pair.pickY})
		coords = append(coords, testNode{id: delId, x: pair.delX, y: pair.delY})
	}

	vehicleIds := make([]int, 0, vehicleNum)
	nextNodeId := 2*len(pairs) + 1
	for vehicleId := 1; vehicleId <= vehicleNum; vehicleId++ {
		startId := nextNodeId
		endId := nextNodeId + 1
		nextNodeId += 2
		for _, depotId := range []int{startId, endId} {
			require.NoError(t, problem.AddNode(NewNode(depotId, 0, 0,
				depotWindow[0], depotWindow[1], 0, 0)))
			coords = append(coords, testNode{id: depotId, x: 0, y: 0})
		}
		require.NoError(t, problem.AddVehicle(NewVehicle(vehicleId, capacity, velocity, startId, endId)))
		vehicleIds = append(vehicleIds, vehicleId)
	}

	for i := 0; i < len(coords); i++ {
		for j := i + 1; j < len(coords); j++ {
			problem.SetDistance(coords[i].id, coords[j].id,
				math.Hypot(coords[i].x-coords[j].x, coords[i].y-coords[j].y))
		}
	}

	for i := range pairs {
		require.NoError(t, problem.AddRequest(NewRequest(i+1, 2*i+1, 2*i+2, pairs[i].load, vehicleIds)))
	}
	return problem
}

// checkRouteInvariants verifies the prefix lines against the definitions:
// time windows hold, loads stay within capacity, pickups precede their
// deliveries, and the distance recurrence is exact.
func checkRouteInvariants(t *testing.T, problem *Problem, route *Route) {
	t.Helper()

	nodes := route.GetRoute()
	times := route.GetStartServiceLine()
	loads := route.GetLoadLine()
	dists := route.GetDistanceLine()
	vehicle := problem.GetVehicle(route.GetVehicleId())

	require.Len(t, times, len(nodes))
	require.Len(t, loads, len(nodes))
	require.Len(t, dists, len(nodes))

	for k, nodeId := range nodes {
		node := problem.GetNode(nodeId)
		require.GreaterOrEqual(t, times[k], node.GetEarliestServiceTime(), "node %d starts too early", nodeId)
		require.LessOrEqual(t, times[k], node.GetLatestServiceTime(), "node %d starts too late", nodeId)
		require.GreaterOrEqual(t, loads[k], 0.0)
		require.LessOrEqual(t, loads[k], vehicle.GetCapacity())

		if k == 0 {
			require.Equal(t, 0.0, dists[0])
			continue
		}
		prev := problem.GetNode(nodes[k-1])
		minStart := times[k-1] + prev.GetServiceTime() +
			problem.GetTravelTime(route.GetVehicleId(), nodes[k-1], nodeId)
		require.GreaterOrEqual(t, times[k]+1e-9, minStart)
		require.InDelta(t, dists[k-1]+problem.GetDistance(nodes[k-1], nodeId), dists[k], 1e-9)
	}

	for k, nodeId := range nodes[1 : len(nodes)-1] {
		node := problem.GetNode(nodeId)
		if node.GetLoad() <= 0 {
			continue
		}
		foundDelivery := false
		for _, laterId := range nodes[k+2:] {
			if problem.GetNode(laterId).GetLoad() < 0 && sameRequestPair(problem, nodeId, laterId) {
				foundDelivery = true
				break
			}
		}
		require.True(t, foundDelivery, "pickup %d has no later delivery", nodeId)
	}
}

func sameRequestPair(problem *Problem, pickNodeId, deliveryNodeId int) bool {
	for _, requestId := range problem.RequestIds() {
		request := problem.GetRequest(requestId)
		if request.GetPickNodeId() == pickNodeId && request.GetDeliveryNodeId() == deliveryNodeId {
			return true
		}
	}
	return false
}

func singleRequestPairs() []pairSpec {
	return []pairSpec{{
		pickX: 10, pickY: 10, pickEarliest: 0, pickLatest: 100,
		delX: 20, delY: 20, delEarliest: 0, delLatest: 200,
		service: 5, load: 10,
	}}
}

func TestRouteInsertSingleRequest(t *testing.T) {
	problem := buildProblem(t, 1, 50, 1, [2]float64{0, 1000}, singleRequestPairs())

	route, err := NewRoute(problem, 1)
	require.NoError(t, err)
	require.True(t, route.IsEmpty())

	ok, distanceDiff, timeDiff, newRoute := route.TryInsertOptimal(1)
	require.True(t, ok)
	require.NotNil(t, newRoute)

	wantDistance := math.Hypot(10, 10) + math.Hypot(10, 10) + math.Hypot(20, 20)
	require.InDelta(t, wantDistance, newRoute.WholeDistanceCost(), 1e-6)
	require.InDelta(t, wantDistance, distanceDiff, 1e-6)
	require.Greater(t, timeDiff, 0.0)

	require.Equal(t, []int{problem.GetVehicle(1).GetStartNodeId(), 1, 2,
		problem.GetVehicle(1).GetEndNodeId()}, newRoute.GetRoute())
	checkRouteInvariants(t, problem, newRoute)
}

func TestRouteInsertInfeasibleDepotWindow(t *testing.T) {
	pairs := []pairSpec{{
		pickX: 10, pickY: 10, pickEarliest: 900, pickLatest: 1000,
		delX: 20, delY: 20, delEarliest: 0, delLatest: 2000,
		service: 5, load: 10,
	}}
	// a pickup that late cannot make it back inside the depot window
	problem := buildProblem(t, 1, 50, 1, [2]float64{0, 950}, pairs)

	route, err := NewRoute(problem, 1)
	require.NoError(t, err)

	ok, _, _, newRoute := route.TryInsertOptimal(1)
	require.False(t, ok)
	require.Nil(t, newRoute)
}

func TestRouteCapacitySerializesRequests(t *testing.T) {
	pairs := []pairSpec{
		{pickX: 1, pickY: 0, pickEarliest: 0, pickLatest: 1000,
			delX: 2, delY: 0, delEarliest: 0, delLatest: 1000, service: 0, load: 40},
		{pickX: 3, pickY: 0, pickEarliest: 0, pickLatest: 1000,
			delX: 4, delY: 0, delEarliest: 0, delLatest: 1000, service: 0, load: 40},
	}
	problem := buildProblem(t, 1, 50, 1, [2]float64{0, 1000}, pairs)

	route, err := NewRoute(problem, 1)
	require.NoError(t, err)
	ok, _, _ := route.TryInsertAt(1, 1, 2)
	require.True(t, ok)

	// both pickups on board at once exceeds capacity 50
	nested := route.Copy()
	ok, _, _ = nested.TryInsertAt(2, 2, 3)
	require.False(t, ok)

	serialized := route.Copy()
	ok, _, _ = serialized.TryInsertAt(2, 3, 4)
	require.True(t, ok)
	checkRouteInvariants(t, problem, serialized)
}

func TestRouteRemovePairRestoresPrefixLines(t *testing.T) {
	pairs := []pairSpec{
		{pickX: 1, pickY: 1, pickEarliest: 0, pickLatest: 1000,
			delX: 2, delY: 2, delEarliest: 0, delLatest: 1000, service: 1, load: 5},
		{pickX: 8, pickY: 8, pickEarliest: 0, pickLatest: 1000,
			delX: 9, delY: 9, delEarliest: 0, delLatest: 1000, service: 1, load: 5},
	}
	problem := buildProblem(t, 1, 50, 1, [2]float64{0, 1000}, pairs)

	route, err := NewRoute(problem, 1)
	require.NoError(t, err)
	ok, _, _ := route.TryInsertAt(1, 1, 2)
	require.True(t, ok)
	onlyFirst := route.Copy()

	ok, _, _, withBoth := route.TryInsertOptimal(2)
	require.True(t, ok)
	checkRouteInvariants(t, problem, withBoth)

	distanceDiff, timeDiff, err := withBoth.RemovePair(2)
	require.NoError(t, err)
	require.Negative(t, distanceDiff)
	require.LessOrEqual(t, timeDiff, 0.0)

	require.Equal(t, onlyFirst.GetRoute(), withBoth.GetRoute())
	require.InDeltaSlice(t, onlyFirst.GetStartServiceLine(), withBoth.GetStartServiceLine(), 1e-9)
	require.InDeltaSlice(t, onlyFirst.GetLoadLine(), withBoth.GetLoadLine(), 1e-9)
	require.InDeltaSlice(t, onlyFirst.GetDistanceLine(), withBoth.GetDistanceLine(), 1e-9)
	checkRouteInvariants(t, problem, withBoth)
}

func TestRouteRemoveUnknownRequestFails(t *testing.T) {
	problem := buildProblem(t, 1, 50, 1, [2]float64{0, 1000}, singleRequestPairs())
	route, err := NewRoute(problem, 1)
	require.NoError(t, err)

	_, _, err = route.RemovePair(1)
	require.Error(t, err)
}

func TestRouteStartServiceOf(t *testing.T) {
	problem := buildProblem(t, 1, 50, 1, [2]float64{0, 1000}, singleRequestPairs())
	route, err := NewRoute(problem, 1)
	require.NoError(t, err)
	ok, _, _ := route.TryInsertAt(1, 1, 2)
	require.True(t, ok)

	start, err := route.StartServiceOf(1)
	require.NoError(t, err)
	require.InDelta(t, math.Hypot(10, 10), start, 1e-9)

	_, err = route.StartServiceOf(999)
	require.Error(t, err)
}
