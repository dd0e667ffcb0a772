package datastructure

import (
	"sort"

	"github.com/lintang-b-s/Courierx/pkg/parameters"
	"github.com/lintang-b-s/Courierx/pkg/util"
)

// Problem is the immutable core of one PDPTW instance: nodes, paired
// requests, vehicles, and the symmetric distance matrix. The only allowed
// mutations are cloning a vehicle (which allocates a fresh depot pair) and
// deleting a vehicle, both used by the two-stage driver.
//
// Node ids are small contiguous ints assigned on ingest, so distances live
// in a dense matrix. Deleting a vehicle leaves its depot rows dead rather
// than shrinking the matrix. Travel times are derived from distance and
// vehicle velocity at lookup time, which keeps them consistent with the
// matrix at all times.
type Problem struct {
	params *parameters.Parameters

	nodes    []*Node // indexed by node id, nil when absent
	requests map[int]*Request
	vehicles map[int]*Vehicle

	distances [][]float64
}

func NewProblem(params *parameters.Parameters) *Problem {
	return &Problem{
		params:   params,
		nodes:    make([]*Node, 0),
		requests: make(map[int]*Request),
		vehicles: make(map[int]*Vehicle),
	}
}

func (p *Problem) GetParams() *parameters.Parameters {
	return p.params
}

func (p *Problem) GetNode(nodeId int) *Node {
	if nodeId < 0 || nodeId >= len(p.nodes) {
		return nil
	}
	return p.nodes[nodeId]
}

func (p *Problem) GetRequest(requestId int) *Request {
	return p.requests[requestId]
}

func (p *Problem) GetVehicle(vehicleId int) *Vehicle {
	return p.vehicles[vehicleId]
}

func (p *Problem) NumberOfRequests() int {
	return len(p.requests)
}

func (p *Problem) NumberOfVehicles() int {
	return len(p.vehicles)
}

func (p *Problem) RequestIds() []int {
	ids := make([]int, 0, len(p.requests))
	for id := range p.requests {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (p *Problem) VehicleIds() []int {
	ids := make([]int, 0, len(p.vehicles))
	for id := range p.vehicles {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (p *Problem) MaxVehicleId() (int, bool) {
	found := false
	maxId := 0
	for id := range p.vehicles {
		if !found || id > maxId {
			maxId = id
			found = true
		}
	}
	return maxId, found
}

// AddNode registers a node under its own id, growing the node slice and
// the distance matrix as needed. New matrix entries start at zero.
func (p *Problem) AddNode(node *Node) error {
	id := node.GetId()
	if id < 0 {
		return util.WrapErrorf(nil, util.ErrData, "node id %d is negative", id)
	}
	if id < len(p.nodes) && p.nodes[id] != nil {
		return util.WrapErrorf(nil, util.ErrData, "node %d already exists", id)
	}
	if node.GetEarliestServiceTime() > node.GetLatestServiceTime() {
		return util.WrapErrorf(nil, util.ErrData,
			"node %d time window [%f, %f] is inverted", id, node.GetEarliestServiceTime(), node.GetLatestServiceTime())
	}
	p.growTo(id)
	p.nodes[id] = node
	return nil
}

func (p *Problem) growTo(nodeId int) {
	for len(p.nodes) <= nodeId {
		p.nodes = append(p.nodes, nil)
	}
	n := len(p.nodes)
	for i := range p.distances {
		for len(p.distances[i]) < n {
			p.distances[i] = append(p.distances[i], 0)
		}
	}
	for len(p.distances) < n {
		p.distances = append(p.distances, make([]float64, n))
	}
}

func (p *Problem) AddRequest(req *Request) error {
	if _, ok := p.requests[req.GetId()]; ok {
		return util.WrapErrorf(nil, util.ErrData, "request %d already exists", req.GetId())
	}
	pick := p.GetNode(req.GetPickNodeId())
	delivery := p.GetNode(req.GetDeliveryNodeId())
	if pick == nil || delivery == nil {
		return util.WrapErrorf(nil, util.ErrData, "request %d references unknown nodes", req.GetId())
	}
	if !util.Eq(pick.GetLoad(), req.GetRequireCapacity()) || !util.Eq(delivery.GetLoad(), -req.GetRequireCapacity()) {
		return util.WrapErrorf(nil, util.ErrData,
			"request %d load mismatch: pick %f, delivery %f, required %f",
			req.GetId(), pick.GetLoad(), delivery.GetLoad(), req.GetRequireCapacity())
	}
	p.requests[req.GetId()] = req
	return nil
}

func (p *Problem) AddVehicle(vehicle *Vehicle) error {
	if _, ok := p.vehicles[vehicle.GetId()]; ok {
		return util.WrapErrorf(nil, util.ErrData, "vehicle %d already exists", vehicle.GetId())
	}
	if vehicle.GetCapacity() <= 0 || vehicle.GetVelocity() <= 0 {
		return util.WrapErrorf(nil, util.ErrData,
			"vehicle %d needs positive capacity and velocity", vehicle.GetId())
	}
	if p.GetNode(vehicle.GetStartNodeId()) == nil || p.GetNode(vehicle.GetEndNodeId()) == nil {
		return util.WrapErrorf(nil, util.ErrData, "vehicle %d references unknown depot nodes", vehicle.GetId())
	}
	for _, other := range p.vehicles {
		if other.GetStartNodeId() == vehicle.GetStartNodeId() || other.GetEndNodeId() == vehicle.GetEndNodeId() ||
			other.GetStartNodeId() == vehicle.GetEndNodeId() || other.GetEndNodeId() == vehicle.GetStartNodeId() {
			return util.WrapErrorf(nil, util.ErrData,
				"vehicle %d shares a depot node with vehicle %d", vehicle.GetId(), other.GetId())
		}
	}
	p.vehicles[vehicle.GetId()] = vehicle
	return nil
}

func (p *Problem) SetDistance(from, to int, distance float64) {
	p.distances[from][to] = distance
	p.distances[to][from] = distance
}

func (p *Problem) GetDistance(from, to int) float64 {
	return p.distances[from][to]
}

// GetTravelTime is the per-vehicle travel-time tensor t[v][i][j] realized
// as d[i][j] / velocity(v).
func (p *Problem) GetTravelTime(vehicleId, from, to int) float64 {
	return p.distances[from][to] / p.vehicles[vehicleId].GetVelocity()
}

// MaxDistance scans live node pairs for the largest distance. Used to
// scale insertion-cost noise.
func (p *Problem) MaxDistance() float64 {
	maxDistance := 0.0
	for i, node := range p.nodes {
		if node == nil {
			continue
		}
		for j := i + 1; j < len(p.nodes); j++ {
			if p.nodes[j] == nil {
				continue
			}
			if p.distances[i][j] > maxDistance {
				maxDistance = p.distances[i][j]
			}
		}
	}
	return maxDistance
}

// AddCloneVehicle grows a homogeneous fleet by one: the reference vehicle
// (lowest id) is cloned onto a freshly allocated depot pair co-located
// with its own depots, and every request becomes compatible with the
// clone. Returns the new vehicle id.
func (p *Problem) AddCloneVehicle() (int, error) {
	vehicleIds := p.VehicleIds()
	if len(vehicleIds) == 0 {
		return 0, util.WrapErrorf(nil, util.ErrState, "cannot clone a vehicle in an empty fleet")
	}
	reference := p.vehicles[vehicleIds[0]]

	maxVehicleId, _ := p.MaxVehicleId()
	newVehicleId := maxVehicleId + 1

	refDepot := p.GetNode(reference.GetStartNodeId())
	startNodeId := len(p.nodes)
	endNodeId := startNodeId + 1

	start := NewNode(startNodeId, refDepot.GetX(), refDepot.GetY(),
		refDepot.GetEarliestServiceTime(), refDepot.GetLatestServiceTime(), refDepot.GetServiceTime(), refDepot.GetLoad())
	end := NewNode(endNodeId, refDepot.GetX(), refDepot.GetY(),
		refDepot.GetEarliestServiceTime(), refDepot.GetLatestServiceTime(), refDepot.GetServiceTime(), refDepot.GetLoad())
	if err := p.AddNode(start); err != nil {
		return 0, err
	}
	if err := p.AddNode(end); err != nil {
		return 0, err
	}

	refDepotId := refDepot.GetId()
	for otherId, other := range p.nodes {
		if other == nil {
			continue
		}
		p.SetDistance(startNodeId, otherId, p.distances[refDepotId][otherId])
		p.SetDistance(endNodeId, otherId, p.distances[refDepotId][otherId])
	}
	p.SetDistance(startNodeId, startNodeId, 0)
	p.SetDistance(endNodeId, endNodeId, 0)
	p.SetDistance(startNodeId, endNodeId, 0)

	if err := p.AddVehicle(NewVehicle(newVehicleId, reference.GetCapacity(), reference.GetVelocity(),
		startNodeId, endNodeId)); err != nil {
		return 0, err
	}
	for _, req := range p.requests {
		req.addVehicle(newVehicleId)
	}
	return newVehicleId, nil
}

// DeleteVehicle removes a vehicle and its depot pair. The depot rows in
// the distance matrix stay allocated but dead.
func (p *Problem) DeleteVehicle(vehicleId int) error {
	vehicle, ok := p.vehicles[vehicleId]
	if !ok {
		return util.WrapErrorf(nil, util.ErrState, "vehicle %d not found", vehicleId)
	}
	if len(p.vehicles) <= 1 {
		return util.WrapErrorf(nil, util.ErrState, "cannot delete the last vehicle")
	}

	startNodeId := vehicle.GetStartNodeId()
	endNodeId := vehicle.GetEndNodeId()
	for otherId, other := range p.vehicles {
		if otherId == vehicleId {
			continue
		}
		if other.GetStartNodeId() == startNodeId || other.GetEndNodeId() == startNodeId ||
			other.GetStartNodeId() == endNodeId || other.GetEndNodeId() == endNodeId {
			return util.WrapErrorf(nil, util.ErrState,
				"vehicle %d shares depot nodes with vehicle %d", vehicleId, otherId)
		}
	}

	delete(p.vehicles, vehicleId)
	p.nodes[startNodeId] = nil
	p.nodes[endNodeId] = nil
	for _, req := range p.requests {
		req.removeVehicle(vehicleId)
	}
	return nil
}

// Copy deep-copies the instance, parameters included. Used by the
// two-stage driver to snapshot a solution together with its fleet.
func (p *Problem) Copy() *Problem {
	cp := NewProblem(p.params.Copy())
	cp.nodes = make([]*Node, len(p.nodes))
	for i, node := range p.nodes {
		if node != nil {
			cp.nodes[i] = node.copy()
		}
	}
	for id, req := range p.requests {
		cp.requests[id] = req.copy()
	}
	for id, vehicle := range p.vehicles {
		cp.vehicles[id] = vehicle.copy()
	}
	cp.distances = make([][]float64, len(p.distances))
	for i := range p.distances {
		cp.distances[i] = append([]float64(nil), p.distances[i]...)
	}
	return cp
}
