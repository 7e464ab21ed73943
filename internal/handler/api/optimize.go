package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"PortOpt/internal/domain/models"
	"PortOpt/internal/optimizer"
	"PortOpt/internal/report"
	"PortOpt/internal/service/ratelimit"
	"PortOpt/internal/usecase"
	xhttp "PortOpt/pkg/http"
	xlogger "PortOpt/pkg/logger"
)

// RateLimitConfig bounds how many optimization runs a client may start.
type RateLimitConfig struct {
	Capacity     float64
	RefillPerSec float64
}

// OptimizeHandler exposes the optimization pipeline over HTTP.
type OptimizeHandler struct {
	logger    *xlogger.Logger
	optimize  *usecase.OptimizeUseCase
	limiter   *ratelimit.Limiter
	rateLimit RateLimitConfig
}

func NewOptimizeHandler(logger *xlogger.Logger, uc *usecase.OptimizeUseCase, rl RateLimitConfig) *OptimizeHandler {
	return &OptimizeHandler{
		logger:    logger,
		optimize:  uc,
		limiter:   ratelimit.New(),
		rateLimit: rl,
	}
}

func (h *OptimizeHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/optimize", h.Optimize)
	g.POST("/report/frontier", h.FrontierChart)
	g.GET("/health", h.Health)
}

func (h *OptimizeHandler) Optimize(c echo.Context) error {
	if h.rateLimit.Capacity > 0 &&
		!h.limiter.Allow(c.RealIP(), h.rateLimit.Capacity, h.rateLimit.RefillPerSec) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many optimization requests"))
	}

	req := &models.OptimizeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.optimize.Run(c.Request().Context(), req)
	if err != nil {
		return xhttp.AppErrorResponse(c, h.mapError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *OptimizeHandler) FrontierChart(c echo.Context) error {
	req := &models.FrontierChartRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	img, err := report.RenderFrontier(req)
	if err != nil {
		h.logger.Error("frontier render error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not render chart").WithError(err))
	}
	return c.Blob(http.StatusOK, "image/png", img)
}

func (h *OptimizeHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// mapError translates pipeline errors into HTTP statuses: bad input is
// 400, an unsolvable but well-formed problem is 422, and an upstream
// data outage is 502.
func (h *OptimizeHandler) mapError(err error) error {
	var (
		insufficient *optimizer.InsufficientDataError
		degenerate   *optimizer.DegenerateFrontierError
		noFeasible   *optimizer.NoFeasiblePortfolioError
		badFile      *usecase.InvalidTickerFileError
		marketData   *usecase.MarketDataError
		emptyUni     *usecase.EmptyUniverseError
	)

	switch {
	case errors.Is(err, usecase.ErrNoTickers), errors.As(err, &badFile):
		return xhttp.BadRequestError(err.Error())
	case errors.As(err, &insufficient),
		errors.As(err, &degenerate),
		errors.As(err, &noFeasible),
		errors.As(err, &emptyUni):
		return xhttp.UnprocessableError(err.Error())
	case errors.As(err, &marketData):
		return xhttp.BadGatewayError(err.Error())
	}

	h.logger.Error("optimize usecase error", xlogger.Error(err))
	return xhttp.InternalError("optimization failed").WithError(err)
}
