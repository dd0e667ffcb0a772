package controllers

import (
	"github.com/lintang-b-s/Courierx/pkg/datastructure"
)

type SolverService interface {
	Solve(instanceText string, seed int64) (datastructure.SolutionReport, error)
}
