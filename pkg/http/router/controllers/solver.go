package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/Courierx/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type solverAPI struct {
	solverService SolverService
	log           *zap.Logger
}

func New(solverService SolverService, log *zap.Logger) *solverAPI {
	return &solverAPI{
		solverService: solverService,
		log:           log,
	}
}

func (api *solverAPI) Routes(group *helper.RouteGroup) {
	group.POST("/solve", api.solve)
}

// solve accepts a Li & Lim instance as text plus an optional seed, runs
// the two-stage solver synchronously, and returns the solution report.
func (api *solverAPI) solve(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request solveRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	report, err := api.solverService.Solve(request.Instance, request.Seed)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": report}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
