package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/lintang-b-s/Courierx/pkg/benchmark"
	"github.com/lintang-b-s/Courierx/pkg/concurrent"
	"github.com/lintang-b-s/Courierx/pkg/datastructure"
	"github.com/lintang-b-s/Courierx/pkg/engine/twostage"
	"github.com/lintang-b-s/Courierx/pkg/logger"
	"github.com/lintang-b-s/Courierx/pkg/parameters"
	"go.uber.org/zap"
)

var (
	dir     = flag.String("dir", "./data/lilim", "directory with Li & Lim instance files")
	seed    = flag.Int64("seed", 1, "base random seed, each instance adds its index")
	workers = flag.Int("workers", runtime.NumCPU(), "concurrent solves")
)

type evalResult struct {
	name       string
	objective  float64
	distance   float64
	vehicles   int
	unassigned int
	err        error
}

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatal("cannot read instance directory", zap.Error(err))
	}
	files := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".bz2") {
			files = append(files, filepath.Join(*dir, name))
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		log.Fatal("no instance files found", zap.String("dir", *dir))
	}

	type job struct {
		path string
		idx  int
	}

	pool := concurrent.NewWorkerPool[job, evalResult](*workers, len(files))
	pool.Start(func(j job) evalResult {
		name := filepath.Base(j.path)

		reader := benchmark.NewLiLimReader()
		if err := reader.ReadFile(j.path); err != nil {
			return evalResult{name: name, err: err}
		}
		problem, err := reader.Problem(parameters.Default())
		if err != nil {
			return evalResult{name: name, err: err}
		}

		rng := rand.New(rand.NewSource(*seed + int64(j.idx)))
		driver := twostage.NewDriver(log, rng)
		best, err := driver.Solve(datastructure.NewSolution(problem))
		if err != nil {
			return evalResult{name: name, err: err}
		}

		report := best.Report()
		return evalResult{
			name:       name,
			objective:  report.Objective,
			distance:   report.TotalDistance,
			vehicles:   report.VehicleNum,
			unassigned: len(report.UnassignedRequests),
		}
	})

	for idx, path := range files {
		pool.AddJob(job{path: path, idx: idx})
	}
	pool.Close()
	pool.Wait()

	results := pool.CollectAll()
	sort.Slice(results, func(a, b int) bool { return results[a].name < results[b].name })

	fmt.Printf("%-20s %12s %12s %9s %11s\n", "instance", "objective", "distance", "vehicles", "unassigned")
	for _, res := range results {
		if res.err != nil {
			fmt.Printf("%-20s failed: %v\n", res.name, res.err)
			continue
		}
		fmt.Printf("%-20s %12.3f %12.3f %9d %11d\n", res.name, res.objective, res.distance, res.vehicles, res.unassigned)
	}
}
