package datastructure

import (
	"fmt"
	"strings"
)

// RouteReport is the externally visible shape of one vehicle route.
type RouteReport struct {
	VehicleId int     `json:"vehicle_id"`
	Nodes     []int   `json:"nodes"`
	Distance  float64 `json:"distance"`
	Duration  float64 `json:"duration"`
}

// SolutionReport is the externally visible shape of a finished solution.
type SolutionReport struct {
	Routes             []RouteReport `json:"routes"`
	TotalDistance      float64       `json:"total_distance"`
	TotalDuration      float64       `json:"total_duration"`
	UnassignedRequests []int         `json:"unassigned_requests"`
	Objective          float64       `json:"objective"`
	VehicleNum         int           `json:"vehicle_num"`
}

// Report flattens the solution into plain ids and costs.
func (s *Solution) Report() SolutionReport {
	report := SolutionReport{
		Routes:             make([]RouteReport, 0, len(s.routes)),
		TotalDistance:      s.distanceCost,
		TotalDuration:      s.timeCost,
		UnassignedRequests: s.RequestBankIds(),
		Objective:          s.ObjectiveCost(),
		VehicleNum:         len(s.routes),
	}
	for _, vehicleId := range s.RouteVehicleIds() {
		route := s.routes[vehicleId]
		report.Routes = append(report.Routes, RouteReport{
			VehicleId: vehicleId,
			Nodes:     route.GetRoute(),
			Distance:  route.WholeDistanceCost(),
			Duration:  route.WholeTimeCost(),
		})
	}
	return report
}

// Summary renders a one-line-per-route text block for CLI output.
func (r SolutionReport) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "vehicles=%d distance=%.3f duration=%.3f unassigned=%d objective=%.3f\n",
		r.VehicleNum, r.TotalDistance, r.TotalDuration, len(r.UnassignedRequests), r.Objective)
	for _, route := range r.Routes {
		fmt.Fprintf(&sb, "  vehicle %d: %v (distance %.3f, duration %.3f)\n",
			route.VehicleId, route.Nodes, route.Distance, route.Duration)
	}
	return sb.String()
}
