package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/admissions/core"
	"github.com/trezcool/admissions/core/admission"
	metricsvc "github.com/trezcool/admissions/services/metrics"
)

type (
	// StatusResolver resolves an application's status; implemented by *admission.Service.
	StatusResolver interface {
		GetStatus(ctx context.Context, q admission.Query) (admission.StatusResult, error)
	}

	admissionApi struct {
		svc     StatusResolver
		logger  core.Logger
		metrics *metricsvc.Metrics
	}
)

var _ StatusResolver = (*admission.Service)(nil) // interface compliance check

// registerAdmissionAPI mounts POST /v1/application-status and its legacy alias.
//
// Every resolver outcome (found, invalid input, not found, load failure, unexpected error)
// is answered with HTTP 200. The one exception is the per-client rate limit: a throttled
// caller gets HTTP 429 with {"error":"too many requests"} before the resolver runs, and
// should retry later.
func registerAdmissionAPI(app *echo.Echo, v1 *echo.Group, deps ServerDeps) {
	api := admissionApi{svc: deps.AdmissionSvc, logger: deps.Logger, metrics: deps.Metrics}
	limit := rateLimitMiddleware(deps.Limiter, deps.Metrics)

	v1.POST("/application-status", api.getStatus, limit)
	// legacy path still called by the public site
	app.POST("/functions/v1/get-application-status", api.getStatus, limit)
}

func (api admissionApi) getStatus(ctx echo.Context) (err error) {
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			api.logger.Error("resolving application status", errors.Errorf("panic: %v", r))
			err = api.respond(ctx, metricsvc.OutcomeUnexpected, admission.ErrorResult{Error: admission.MsgUnexpected}, started)
		}
	}()

	var q admission.Query
	if err := ctx.Bind(&q); err != nil {
		return api.respond(ctx, metricsvc.OutcomeInvalidInput, admission.ErrorResult{Error: admission.MsgInputRequired}, started)
	}

	res, err := api.svc.GetStatus(ctx.Request().Context(), q)
	if err != nil {
		outcome := lookupOutcome(err)
		if outcome == metricsvc.OutcomeUnexpected {
			api.logger.Error("resolving application status", err, q)
		}
		return api.respond(ctx, outcome, admission.NewErrorResult(err), started)
	}
	return api.respond(ctx, metricsvc.OutcomeFound, res, started)
}

func (api admissionApi) respond(ctx echo.Context, outcome string, payload interface{}, started time.Time) error {
	api.metrics.ObserveLookup(outcome, started)
	return ctx.JSON(http.StatusOK, payload)
}

// lookupOutcome maps a resolver error to its metrics outcome.
func lookupOutcome(err error) string {
	switch errors.Cause(err) {
	case admission.ErrInputRequired:
		return metricsvc.OutcomeInvalidInput
	case admission.ErrNotFound:
		return metricsvc.OutcomeNotFound
	case admission.ErrLoadFailed:
		return metricsvc.OutcomeLoadFailed
	default:
		return metricsvc.OutcomeUnexpected
	}
}
