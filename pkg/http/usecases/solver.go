package usecases

import (
	"math/rand"
	"strings"

	"github.com/lintang-b-s/Courierx/pkg/benchmark"
	"github.com/lintang-b-s/Courierx/pkg/datastructure"
	"github.com/lintang-b-s/Courierx/pkg/engine/twostage"
	"github.com/lintang-b-s/Courierx/pkg/parameters"
	"go.uber.org/zap"
)

type SolverService struct {
	log    *zap.Logger
	params *parameters.Parameters
}

func NewSolverService(log *zap.Logger, params *parameters.Parameters) *SolverService {
	return &SolverService{
		log:    log,
		params: params,
	}
}

// Solve parses the uploaded instance and runs the two-stage solver on a
// private copy of the configured parameters.
func (ss *SolverService) Solve(instanceText string, seed int64) (datastructure.SolutionReport, error) {
	reader := benchmark.NewLiLimReader()
	if err := reader.Read(strings.NewReader(instanceText)); err != nil {
		return datastructure.SolutionReport{}, err
	}

	problem, err := reader.Problem(ss.params.Copy())
	if err != nil {
		return datastructure.SolutionReport{}, err
	}

	rng := rand.New(rand.NewSource(seed))
	driver := twostage.NewDriver(ss.log, rng)

	best, err := driver.Solve(datastructure.NewSolution(problem))
	if err != nil {
		return datastructure.SolutionReport{}, err
	}
	return best.Report(), nil
}
