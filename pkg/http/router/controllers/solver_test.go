package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lintang-b-s/Courierx/pkg/datastructure"
	"github.com/lintang-b-s/Courierx/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSolverService struct {
	report datastructure.SolutionReport
	err    error
}

func (s *stubSolverService) Solve(instanceText string, seed int64) (datastructure.SolutionReport, error) {
	return s.report, s.err
}

func postSolve(t *testing.T, api *solverAPI, body string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/solve", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	api.solve(recorder, request, nil)
	return recorder
}

func TestSolveHandlerOK(t *testing.T) {
	stub := &stubSolverService{report: datastructure.SolutionReport{
		Routes:     []datastructure.RouteReport{{VehicleId: 1, Nodes: []int{3, 1, 2, 4}, Distance: 56.5}},
		VehicleNum: 1,
		Objective:  56.5,
	}}
	api := New(stub, zap.NewNop())

	recorder := postSolve(t, api, `{"instance": "1\t200\t1\n...", "seed": 42}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp struct {
		Data datastructure.SolutionReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Data.VehicleNum)
	require.Equal(t, []int{3, 1, 2, 4}, resp.Data.Routes[0].Nodes)
}

func TestSolveHandlerRejectsBadJSON(t *testing.T) {
	api := New(&stubSolverService{}, zap.NewNop())
	recorder := postSolve(t, api, `{not json`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSolveHandlerRejectsMissingInstance(t *testing.T) {
	api := New(&stubSolverService{}, zap.NewNop())
	recorder := postSolve(t, api, `{"seed": 1}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSolveHandlerMapsDataErrors(t *testing.T) {
	stub := &stubSolverService{err: util.WrapErrorf(nil, util.ErrData, "broken instance")}
	api := New(stub, zap.NewNop())
	recorder := postSolve(t, api, `{"instance": "x"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestSolveHandlerMapsConvergenceErrors(t *testing.T) {
	stub := &stubSolverService{err: util.WrapErrorf(nil, util.ErrConvergence, "no fit")}
	api := New(stub, zap.NewNop())
	recorder := postSolve(t, api, `{"instance": "x"}`)
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}
