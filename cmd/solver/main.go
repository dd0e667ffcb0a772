package main

import (
	"flag"
	"fmt"
	"math/rand"

	"github.com/lintang-b-s/Courierx/pkg/benchmark"
	"github.com/lintang-b-s/Courierx/pkg/datastructure"
	"github.com/lintang-b-s/Courierx/pkg/engine/twostage"
	"github.com/lintang-b-s/Courierx/pkg/logger"
	"github.com/lintang-b-s/Courierx/pkg/parameters"
	"go.uber.org/zap"
)

var (
	instancePath = flag.String("instance", "./data/lc101.txt", "Li & Lim benchmark instance file (.txt or .bz2)")
	paramsPath   = flag.String("params", "", "optional JSON parameter file, defaults otherwise")
	seed         = flag.Int64("seed", 1, "random seed for the search")
	exportParams = flag.String("export_params", "", "write the effective parameters as JSON and exit")
)

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	params := parameters.Default()
	if *paramsPath != "" {
		params, err = parameters.Load(*paramsPath)
		if err != nil {
			log.Fatal("cannot load parameters", zap.Error(err))
		}
	}
	if *exportParams != "" {
		if err := params.Save(*exportParams); err != nil {
			log.Fatal("cannot export parameters", zap.Error(err))
		}
		log.Info("parameters exported", zap.String("path", *exportParams))
		return
	}

	reader := benchmark.NewLiLimReader()
	if err := reader.ReadFile(*instancePath); err != nil {
		log.Fatal("cannot read benchmark instance", zap.Error(err))
	}
	problem, err := reader.Problem(params)
	if err != nil {
		log.Fatal("cannot build problem instance", zap.Error(err))
	}
	log.Info("instance loaded",
		zap.String("path", *instancePath),
		zap.Int("requests", problem.NumberOfRequests()),
		zap.Int("vehicles", problem.NumberOfVehicles()))

	rng := rand.New(rand.NewSource(*seed))
	driver := twostage.NewDriver(log, rng)

	best, err := driver.Solve(datastructure.NewSolution(problem))
	if err != nil {
		log.Fatal("solve failed", zap.Error(err))
	}

	fmt.Print(best.Report().Summary())
}
