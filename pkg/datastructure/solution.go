package datastructure

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/lintang-b-s/Courierx/pkg/util"
)

// Solution assigns requests to vehicle routes. Unassigned requests sit in
// the request bank, idle vehicles in the vehicle bank; a vehicle is in
// exactly one of routes/vehicleBank and a request in exactly one of
// requestBank/requestToVehicle at all times.
type Solution struct {
	problem *Problem

	routes           map[int]*Route
	requestBank      map[int]struct{}
	requestToVehicle map[int]int
	nodeToVehicle    map[int]int
	vehicleBank      map[int]struct{}

	distanceCost float64
	timeCost     float64

	fingerprint      string
	fingerprintDirty bool
}

// NewSolution starts with every request banked and every vehicle idle.
func NewSolution(problem *Problem) *Solution {
	s := &Solution{
		problem:          problem,
		routes:           make(map[int]*Route),
		requestBank:      make(map[int]struct{}),
		requestToVehicle: make(map[int]int),
		nodeToVehicle:    make(map[int]int),
		vehicleBank:      make(map[int]struct{}),
		fingerprintDirty: true,
	}
	for _, requestId := range problem.RequestIds() {
		s.requestBank[requestId] = struct{}{}
	}
	for _, vehicleId := range problem.VehicleIds() {
		s.vehicleBank[vehicleId] = struct{}{}
	}
	return s
}

func (s *Solution) GetProblem() *Problem {
	return s.problem
}

// Copy clones the solution; the problem instance stays shared.
func (s *Solution) Copy() *Solution {
	cp := &Solution{
		problem:          s.problem,
		routes:           make(map[int]*Route, len(s.routes)),
		requestBank:      make(map[int]struct{}, len(s.requestBank)),
		requestToVehicle: make(map[int]int, len(s.requestToVehicle)),
		nodeToVehicle:    make(map[int]int, len(s.nodeToVehicle)),
		vehicleBank:      make(map[int]struct{}, len(s.vehicleBank)),
		distanceCost:     s.distanceCost,
		timeCost:         s.timeCost,
		fingerprintDirty: true,
	}
	for vehicleId, route := range s.routes {
		cp.routes[vehicleId] = route.Copy()
	}
	for requestId := range s.requestBank {
		cp.requestBank[requestId] = struct{}{}
	}
	for requestId, vehicleId := range s.requestToVehicle {
		cp.requestToVehicle[requestId] = vehicleId
	}
	for nodeId, vehicleId := range s.nodeToVehicle {
		cp.nodeToVehicle[nodeId] = vehicleId
	}
	for vehicleId := range s.vehicleBank {
		cp.vehicleBank[vehicleId] = struct{}{}
	}
	return cp
}

// CopyWithProblem clones the solution together with a deep copy of its
// problem instance, so later fleet mutations cannot touch the snapshot.
func (s *Solution) CopyWithProblem() *Solution {
	cp := s.Copy()
	cp.problem = s.problem.Copy()
	for _, route := range cp.routes {
		route.setProblem(cp.problem)
	}
	return cp
}

func (s *Solution) markDirty() {
	s.fingerprintDirty = true
}

// Fingerprint is a stable digest of the (vehicleId, route) pairs sorted by
// vehicle id; it identifies a solution for duplicate suppression.
func (s *Solution) Fingerprint() string {
	if !s.fingerprintDirty && s.fingerprint != "" {
		return s.fingerprint
	}

	vehicleIds := make([]int, 0, len(s.routes))
	for vehicleId := range s.routes {
		vehicleIds = append(vehicleIds, vehicleId)
	}
	sort.Ints(vehicleIds)

	var sb strings.Builder
	for _, vehicleId := range vehicleIds {
		fmt.Fprintf(&sb, "(%d,%v)", vehicleId, s.routes[vehicleId].route)
	}
	digest := md5.Sum([]byte(sb.String()))
	s.fingerprint = hex.EncodeToString(digest[:])
	s.fingerprintDirty = false
	return s.fingerprint
}

func (s *Solution) RequestBankSize() int {
	return len(s.requestBank)
}

func (s *Solution) InRequestBank(requestId int) bool {
	_, ok := s.requestBank[requestId]
	return ok
}

// RequestBankIds returns banked request ids in ascending order.
func (s *Solution) RequestBankIds() []int {
	ids := make([]int, 0, len(s.requestBank))
	for id := range s.requestBank {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// AssignedRequestIds returns currently routed request ids in ascending order.
func (s *Solution) AssignedRequestIds() []int {
	ids := make([]int, 0, len(s.requestToVehicle))
	for id := range s.requestToVehicle {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *Solution) AssignedVehicleOf(requestId int) (int, bool) {
	vehicleId, ok := s.requestToVehicle[requestId]
	return vehicleId, ok
}

func (s *Solution) VehicleBankSize() int {
	return len(s.vehicleBank)
}

func (s *Solution) VehicleBankIds() []int {
	ids := make([]int, 0, len(s.vehicleBank))
	for id := range s.vehicleBank {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *Solution) NumberOfRoutes() int {
	return len(s.routes)
}

// RouteVehicleIds returns the vehicles with an active route, ascending.
func (s *Solution) RouteVehicleIds() []int {
	ids := make([]int, 0, len(s.routes))
	for id := range s.routes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (s *Solution) GetRoute(vehicleId int) *Route {
	return s.routes[vehicleId]
}

// TotalVehicleNum counts active plus idle vehicles.
func (s *Solution) TotalVehicleNum() int {
	return len(s.routes) + len(s.vehicleBank)
}

func (s *Solution) MaxVehicleId() (int, bool) {
	found := false
	maxId := 0
	for vehicleId := range s.routes {
		if !found || vehicleId > maxId {
			maxId = vehicleId
			found = true
		}
	}
	for vehicleId := range s.vehicleBank {
		if !found || vehicleId > maxId {
			maxId = vehicleId
			found = true
		}
	}
	return maxId, found
}

// AddCloneVehicle grows the fleet by one idle clone of the reference
// vehicle.
func (s *Solution) AddCloneVehicle() (int, error) {
	newVehicleId, err := s.problem.AddCloneVehicle()
	if err != nil {
		return 0, err
	}
	s.vehicleBank[newVehicleId] = struct{}{}
	return newVehicleId, nil
}

// DeleteVehicleAndRoute unassigns every request on the vehicle, then
// removes the vehicle from the fleet entirely.
func (s *Solution) DeleteVehicleAndRoute(vehicleId int) error {
	_, active := s.routes[vehicleId]
	_, idle := s.vehicleBank[vehicleId]
	if !active && !idle {
		return util.WrapErrorf(nil, util.ErrState, "vehicle %d not in solution", vehicleId)
	}

	carried := make([]int, 0)
	for requestId, assignedVehicleId := range s.requestToVehicle {
		if assignedVehicleId == vehicleId {
			carried = append(carried, requestId)
		}
	}
	sort.Ints(carried)
	if err := s.RemoveRequests(carried); err != nil {
		return err
	}

	if _, stillActive := s.routes[vehicleId]; stillActive {
		return util.WrapErrorf(nil, util.ErrState,
			"vehicle %d still has a route after unassigning its requests", vehicleId)
	}
	if _, nowIdle := s.vehicleBank[vehicleId]; !nowIdle {
		return util.WrapErrorf(nil, util.ErrState, "vehicle %d missing from the vehicle bank", vehicleId)
	}

	delete(s.vehicleBank, vehicleId)
	return s.problem.DeleteVehicle(vehicleId)
}

// CostIfRemove prices unassigning a request: the weighted savings of
// removing its pair from the route, computed on a trial copy.
func (s *Solution) CostIfRemove(requestId int) (float64, error) {
	vehicleId, ok := s.requestToVehicle[requestId]
	if !ok {
		return 0, util.WrapErrorf(nil, util.ErrState, "request %d not assigned", requestId)
	}
	route, ok := s.routes[vehicleId]
	if !ok {
		return 0, util.WrapErrorf(nil, util.ErrState, "vehicle %d has no route", vehicleId)
	}

	trial := route.Copy()
	distanceDiff, timeDiff, err := trial.RemovePair(requestId)
	if err != nil {
		return 0, err
	}

	params := s.problem.GetParams()
	return params.Alpha*util.Abs(distanceDiff) + params.Beta*util.Abs(timeDiff), nil
}

// RemoveRequests sends the given assigned requests back to the bank. A
// route whose last request leaves returns its vehicle to the bank.
func (s *Solution) RemoveRequests(requestIds []int) error {
	for _, requestId := range requestIds {
		vehicleId, ok := s.requestToVehicle[requestId]
		if !ok {
			return util.WrapErrorf(nil, util.ErrState, "request %d not assigned", requestId)
		}
		route, ok := s.routes[vehicleId]
		if !ok {
			return util.WrapErrorf(nil, util.ErrState, "vehicle %d has no route", vehicleId)
		}

		if _, _, err := route.RemovePair(requestId); err != nil {
			return err
		}

		s.requestBank[requestId] = struct{}{}
		delete(s.requestToVehicle, requestId)

		request := s.problem.GetRequest(requestId)
		delete(s.nodeToVehicle, request.GetPickNodeId())
		delete(s.nodeToVehicle, request.GetDeliveryNodeId())

		if route.IsEmpty() {
			delete(s.routes, vehicleId)
			s.vehicleBank[vehicleId] = struct{}{}
		}

		s.recomputeCosts()
		s.markDirty()
	}
	return nil
}

// CostIfInsert prices the optimal insertion of a banked request into one
// vehicle without mutating the solution. ok=false means infeasible.
func (s *Solution) CostIfInsert(requestId, vehicleId int) (bool, float64, error) {
	if !s.InRequestBank(requestId) {
		return false, 0, util.WrapErrorf(nil, util.ErrState, "request %d not in request bank", requestId)
	}
	_, active := s.routes[vehicleId]
	_, idle := s.vehicleBank[vehicleId]
	if !active && !idle {
		return false, 0, util.WrapErrorf(nil, util.ErrState, "vehicle %d not in solution", vehicleId)
	}

	request := s.problem.GetRequest(requestId)
	if !request.CompatibleWith(vehicleId) {
		return false, 0, nil
	}

	var trial *Route
	if active {
		trial = s.routes[vehicleId].Copy()
	} else {
		var err error
		trial, err = NewRoute(s.problem, vehicleId)
		if err != nil {
			return false, 0, err
		}
	}

	ok, distanceDiff, timeDiff, _ := trial.TryInsertOptimal(requestId)
	if !ok {
		return false, 0, nil
	}

	params := s.problem.GetParams()
	return true, params.Alpha*distanceDiff + params.Beta*timeDiff, nil
}

// InsertOptimalIntoVehicle commits the optimal insertion of a banked
// request into one vehicle. Returns false when no feasible position
// exists or the vehicle is incompatible.
func (s *Solution) InsertOptimalIntoVehicle(requestId, vehicleId int) (bool, error) {
	if !s.InRequestBank(requestId) {
		return false, util.WrapErrorf(nil, util.ErrState, "request %d not in request bank", requestId)
	}

	request := s.problem.GetRequest(requestId)
	if !request.CompatibleWith(vehicleId) {
		return false, nil
	}

	var base *Route
	if _, idle := s.vehicleBank[vehicleId]; idle {
		var err error
		base, err = NewRoute(s.problem, vehicleId)
		if err != nil {
			return false, err
		}
	} else {
		var ok bool
		base, ok = s.routes[vehicleId]
		if !ok {
			return false, util.WrapErrorf(nil, util.ErrState, "vehicle %d not in solution", vehicleId)
		}
	}

	ok, _, _, newRoute := base.TryInsertOptimal(requestId)
	if !ok {
		return false, nil
	}

	delete(s.requestBank, requestId)
	s.requestToVehicle[requestId] = vehicleId
	s.routes[vehicleId] = newRoute
	s.nodeToVehicle[request.GetPickNodeId()] = vehicleId
	s.nodeToVehicle[request.GetDeliveryNodeId()] = vehicleId
	delete(s.vehicleBank, vehicleId)

	s.recomputeCosts()
	s.markDirty()
	return true, nil
}

// InsertOptimalIntoAny tries the request's compatible vehicles in
// ascending id order; the first feasible insertion wins.
func (s *Solution) InsertOptimalIntoAny(requestId int) (bool, error) {
	if !s.InRequestBank(requestId) {
		return false, util.WrapErrorf(nil, util.ErrState, "request %d not in request bank", requestId)
	}

	request := s.problem.GetRequest(requestId)
	for _, vehicleId := range request.CompatibleVehicleIds() {
		_, active := s.routes[vehicleId]
		_, idle := s.vehicleBank[vehicleId]
		if !active && !idle {
			continue
		}
		ok, err := s.InsertOptimalIntoVehicle(requestId, vehicleId)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// NodeStartServiceTime looks up the current service start of an assigned
// node, used by Shaw relatedness.
func (s *Solution) NodeStartServiceTime(nodeId int) (float64, error) {
	vehicleId, ok := s.nodeToVehicle[nodeId]
	if !ok {
		return 0, util.WrapErrorf(nil, util.ErrState, "node %d not assigned to any vehicle", nodeId)
	}
	route, ok := s.routes[vehicleId]
	if !ok {
		return 0, util.WrapErrorf(nil, util.ErrState, "vehicle %d has no route", vehicleId)
	}
	return route.StartServiceOf(nodeId)
}

// recomputeCosts sums route costs in vehicle-id order; a fixed order
// keeps floating-point sums identical across runs with the same seed.
func (s *Solution) recomputeCosts() {
	s.distanceCost = 0
	s.timeCost = 0
	for _, vehicleId := range s.RouteVehicleIds() {
		route := s.routes[vehicleId]
		s.distanceCost += route.WholeDistanceCost()
		s.timeCost += route.WholeTimeCost()
	}
}

func (s *Solution) GetDistanceCost() float64 {
	return s.distanceCost
}

func (s *Solution) GetTimeCost() float64 {
	return s.timeCost
}

// ObjectiveCost is alpha*distance + beta*duration + gama*|request bank|.
func (s *Solution) ObjectiveCost() float64 {
	params := s.problem.GetParams()
	return params.Alpha*s.distanceCost + params.Beta*s.timeCost + params.Gama*float64(len(s.requestBank))
}

// ObjectiveCostSansBank leaves out the unassigned-request penalty; the
// annealer derives its starting temperature from it.
func (s *Solution) ObjectiveCostSansBank() float64 {
	params := s.problem.GetParams()
	return params.Alpha*s.distanceCost + params.Beta*s.timeCost
}
