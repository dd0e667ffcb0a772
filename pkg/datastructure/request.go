package datastructure

import "sort"

// Request pairs a pickup node with its delivery node. vehicleSet holds the
// ids of vehicles allowed to serve it.
type Request struct {
	id              int
	pickNodeId      int
	deliveryNodeId  int
	requireCapacity float64
	vehicleSet      map[int]struct{}
}

func NewRequest(id, pickNodeId, deliveryNodeId int, requireCapacity float64, vehicleIds []int) *Request {
	vehicleSet := make(map[int]struct{}, len(vehicleIds))
	for _, vid := range vehicleIds {
		vehicleSet[vid] = struct{}{}
	}
	return &Request{
		id:              id,
		pickNodeId:      pickNodeId,
		deliveryNodeId:  deliveryNodeId,
		requireCapacity: requireCapacity,
		vehicleSet:      vehicleSet,
	}
}

func (r *Request) GetId() int {
	return r.id
}

func (r *Request) GetPickNodeId() int {
	return r.pickNodeId
}

func (r *Request) GetDeliveryNodeId() int {
	return r.deliveryNodeId
}

func (r *Request) GetRequireCapacity() float64 {
	return r.requireCapacity
}

func (r *Request) CompatibleWith(vehicleId int) bool {
	_, ok := r.vehicleSet[vehicleId]
	return ok
}

func (r *Request) VehicleSetSize() int {
	return len(r.vehicleSet)
}

// CompatibleVehicleIds returns the compatible vehicle ids in ascending
// order so that callers iterate deterministically.
func (r *Request) CompatibleVehicleIds() []int {
	ids := make([]int, 0, len(r.vehicleSet))
	for vid := range r.vehicleSet {
		ids = append(ids, vid)
	}
	sort.Ints(ids)
	return ids
}

// VehicleSetOverlap counts compatible vehicles shared with another request.
func (r *Request) VehicleSetOverlap(other *Request) int {
	small, big := r.vehicleSet, other.vehicleSet
	if len(big) < len(small) {
		small, big = big, small
	}
	overlap := 0
	for vid := range small {
		if _, ok := big[vid]; ok {
			overlap++
		}
	}
	return overlap
}

func (r *Request) addVehicle(vehicleId int) {
	r.vehicleSet[vehicleId] = struct{}{}
}

func (r *Request) removeVehicle(vehicleId int) {
	delete(r.vehicleSet, vehicleId)
}

func (r *Request) copy() *Request {
	vehicleSet := make(map[int]struct{}, len(r.vehicleSet))
	for vid := range r.vehicleSet {
		vehicleSet[vid] = struct{}{}
	}
	cp := *r
	cp.vehicleSet = vehicleSet
	return &cp
}
