package main

import (
	"context"

	"github.com/lintang-b-s/Courierx/pkg/http"
	"github.com/lintang-b-s/Courierx/pkg/http/usecases"
	"github.com/lintang-b-s/Courierx/pkg/logger"
	"github.com/lintang-b-s/Courierx/pkg/parameters"
	"github.com/lintang-b-s/Courierx/pkg/util"
	"go.uber.org/zap"
)

func main() {
	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(); err != nil {
		log.Warn("no config file found, using defaults", zap.Error(err))
	}
	params, err := parameters.FromViper()
	if err != nil {
		log.Fatal("invalid solver parameters", zap.Error(err))
	}

	api := http.NewServer(log)
	solverService := usecases.NewSolverService(log, params)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	if _, err := api.Use(ctx, log, true, solverService); err != nil {
		log.Fatal("cannot start API", zap.Error(err))
	}

	signal := http.GracefulShutdown()

	log.Info("Courierx PDPTW Solver Server Stopped", zap.String("signal", signal.String()))
	cleanup()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
