package twostage

import (
	"math/rand"

	"github.com/lintang-b-s/Courierx/pkg/datastructure"
	"github.com/lintang-b-s/Courierx/pkg/engine/alns"
	"github.com/lintang-b-s/Courierx/pkg/util"
	"go.uber.org/zap"
)

const maxGrowthAttempts = 1000

// Driver implements the two-stage algorithm for a homogeneous fleet:
// stage one minimizes the vehicle count, stage two refines the surviving
// fleet with a full ALNS run.
type Driver struct {
	log    *zap.Logger
	engine *alns.Engine
}

func NewDriver(log *zap.Logger, rng *rand.Rand) *Driver {
	return &Driver{
		log:    log,
		engine: alns.NewEngine(log, rng),
	}
}

// growFleet drains the request bank by optimal insertion, cloning the
// reference vehicle whenever a request fits nowhere. A request that still
// fails right after a clone was added cannot ever fit, which is a
// convergence error.
func (d *Driver) growFleet(solution *datastructure.Solution) (int, error) {
	queue := solution.RequestBankIds()

	attempts := 0
	vehicleJustAdded := false
	for len(queue) > 0 && attempts < maxGrowthAttempts {
		attempts++

		requestId := queue[0]
		queue = queue[1:]

		ok, err := solution.InsertOptimalIntoAny(requestId)
		if err != nil {
			return attempts, err
		}
		if ok {
			vehicleJustAdded = false
			continue
		}

		if vehicleJustAdded {
			return attempts, util.WrapErrorf(nil, util.ErrConvergence,
				"request %d does not fit even on a freshly added vehicle", requestId)
		}
		if _, err := solution.AddCloneVehicle(); err != nil {
			return attempts, err
		}
		queue = append(queue, requestId)
		vehicleJustAdded = true
	}

	if len(queue) > 0 {
		return attempts, util.WrapErrorf(nil, util.ErrConvergence,
			"fleet growth did not place all requests within %d attempts", maxGrowthAttempts)
	}
	return attempts, nil
}

// ShrinkFleet is stage one. It first grows the fleet until every request
// is placed, then repeatedly deletes the highest-id vehicle and lets a
// short ALNS run try to re-place the evicted requests. The last solution
// with an empty request bank wins.
//
// The passed solution and its problem instance are consumed by the
// shrinking process; the returned snapshot owns a deep-copied problem.
func (d *Driver) ShrinkFleet(solution *datastructure.Solution) (*datastructure.Solution, error) {
	attempts, err := d.growFleet(solution)
	if err != nil {
		return nil, err
	}
	d.log.Info("fleet growth finished",
		zap.Int("attempts", attempts),
		zap.Int("active_vehicles", solution.NumberOfRoutes()),
		zap.Int("idle_vehicles", solution.VehicleBankSize()))

	for _, vehicleId := range solution.VehicleBankIds() {
		if solution.TotalVehicleNum() <= 1 {
			break
		}
		if err := solution.DeleteVehicleAndRoute(vehicleId); err != nil {
			return nil, err
		}
	}

	snapshot := solution.CopyWithProblem()

	params := solution.GetProblem().GetParams()
	totalIterationNum := attempts
	for totalIterationNum <= params.Theta {
		if solution.TotalVehicleNum() <= 1 {
			break
		}
		maxVehicleId, ok := solution.MaxVehicleId()
		if !ok {
			break
		}

		d.log.Info("deleting vehicle for fleet shrink",
			zap.Int("vehicle_id", maxVehicleId),
			zap.Int("active_vehicles", solution.NumberOfRoutes()),
			zap.Int("iterations_spent", totalIterationNum))

		if err := solution.DeleteVehicleAndRoute(maxVehicleId); err != nil {
			return nil, err
		}

		result, err := d.engine.Run(solution.GetProblem(), solution, params.Tau, true, true)
		if err != nil {
			if util.HasCode(err, util.ErrState) {
				// an invariant violation is an engine bug, never swallow it
				return nil, err
			}
			d.log.Warn("inner alns failed during fleet shrink, keeping last snapshot", zap.Error(err))
			break
		}
		totalIterationNum += result.Iterations

		if result.Best.RequestBankSize() > 0 {
			break
		}
		solution = result.Best
		snapshot = solution.CopyWithProblem()
	}

	d.log.Info("fleet shrink finished",
		zap.Int("vehicles", snapshot.NumberOfRoutes()),
		zap.Int("iterations_spent", totalIterationNum))
	return snapshot, nil
}

// Solve runs both stages and returns the refined best solution.
func (d *Driver) Solve(initial *datastructure.Solution) (*datastructure.Solution, error) {
	if initial == nil {
		return nil, util.WrapErrorf(nil, util.ErrConfig, "initial solution is required")
	}

	d.log.Info("two-stage solve started",
		zap.Int("requests", initial.GetProblem().NumberOfRequests()),
		zap.Int("vehicles", initial.TotalVehicleNum()))

	stageOne, err := d.ShrinkFleet(initial)
	if err != nil {
		return nil, err
	}
	d.log.Info("stage one finished", zap.Int("vehicles", stageOne.NumberOfRoutes()))

	params := stageOne.GetProblem().GetParams()
	result, err := d.engine.Run(stageOne.GetProblem(), stageOne, params.IterationNum, false, false)
	if err != nil {
		if util.HasCode(err, util.ErrState) {
			return nil, err
		}
		d.log.Warn("stage two refinement failed, returning stage one solution", zap.Error(err))
		return stageOne, nil
	}

	d.log.Info("two-stage solve finished",
		zap.Float64("objective", result.Best.ObjectiveCost()),
		zap.Int("vehicles", result.Best.NumberOfRoutes()),
		zap.Int("unassigned", result.Best.RequestBankSize()))
	return result.Best, nil
}
