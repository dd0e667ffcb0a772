package benchmark

import (
	"github.com/lintang-b-s/Courierx/pkg/datastructure"
	"github.com/lintang-b-s/Courierx/pkg/parameters"
)

// Reader materializes a problem instance from a benchmark file that was
// loaded beforehand.
type Reader interface {
	Problem(params *parameters.Parameters) (*datastructure.Problem, error)
}
