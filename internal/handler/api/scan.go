package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"MoverScan/internal/domain/models"
	domrepo "MoverScan/internal/domain/repository"
	"MoverScan/internal/service/marketdata"
	"MoverScan/internal/usecase"
	"MoverScan/pkg/config"
	xhttp "MoverScan/pkg/http"
	xlogger "MoverScan/pkg/logger"
)

// ScanHandler is the ops surface: trigger a scan, inspect provider health
// and read the cached market context.
type ScanHandler struct {
	logger    *xlogger.Logger
	scanner   *usecase.Scanner
	client    *marketdata.Client
	market    domrepo.ContextProvider
	universes domrepo.UniverseProvider
	defaults  models.FilterPolicy
	universe  string
}

// NewScanHandler wires the handler. defaults is the policy used when a
// request omits fields; universe is the default universe name.
func NewScanHandler(
	logger *xlogger.Logger,
	scanner *usecase.Scanner,
	client *marketdata.Client,
	market domrepo.ContextProvider,
	universes domrepo.UniverseProvider,
	defaults models.FilterPolicy,
	universe string,
) *ScanHandler {
	return &ScanHandler{
		logger:    logger,
		scanner:   scanner,
		client:    client,
		market:    market,
		universes: universes,
		defaults:  defaults,
		universe:  universe,
	}
}

func (h *ScanHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/scan", h.Scan)
	g.GET("/scan/status", h.Status)
	g.GET("/universes", h.Universes)
	g.GET("/context", h.Context)
	g.GET("/provider/stats", h.ProviderStats)
	e.GET("/healthz", h.Health)
}

// ScanRequest overrides the configured scan defaults per call. Pointer
// fields distinguish "omitted" from an explicit zero.
type ScanRequest struct {
	Universe          string   `json:"universe"`
	MinChangePercent  *float64 `json:"min_change_percent"`
	MinRelativeVolume *float64 `json:"min_relative_volume" validate:"omitempty,gte=0"`
	PositiveOnly      *bool    `json:"positive_only"`
	MaxResults        int      `json:"max_results" validate:"gte=0"`
}

func (h *ScanHandler) Scan(c echo.Context) error {
	req := &ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	universe := h.universe
	if req.Universe != "" {
		universe = req.Universe
	}

	policy := h.defaults
	if req.MinChangePercent != nil {
		v, ok := config.SanitizeMinChange(*req.MinChangePercent)
		if !ok {
			h.logger.Warn("change threshold out of range, using default",
				xlogger.Any("requested", *req.MinChangePercent),
				xlogger.Any("used", v))
		}
		policy.MinAbsChangePercent = v
	}
	if req.MinRelativeVolume != nil {
		policy.MinRelativeVolume = *req.MinRelativeVolume
	}
	if req.PositiveOnly != nil {
		policy.PositiveOnly = *req.PositiveOnly
	}
	if req.MaxResults > 0 {
		policy.MaxResults = req.MaxResults
	}

	result, err := h.scanner.Run(c.Request().Context(), universe, policy)
	if err != nil {
		h.logger.Error("scan failed", xlogger.Error(err))
		if errors.Is(err, usecase.ErrUniverseUnavailable) {
			return xhttp.BadRequestResponse(c, map[string]string{"error": err.Error()})
		}
		return xhttp.AppErrorResponse(c, xhttp.InternalError("scan failed"))
	}
	return xhttp.SuccessResponse(c, result)
}

func (h *ScanHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"state":       h.scanner.State(),
		"last_report": h.scanner.LastReport(),
	})
}

func (h *ScanHandler) Universes(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.universes.Names())
}

func (h *ScanHandler) Context(c echo.Context) error {
	if h.market == nil {
		return xhttp.NotFoundResponse(c, map[string]string{"error": "market context disabled"})
	}
	mc, err := h.market.GetContext(c.Request().Context())
	if err != nil {
		h.logger.Error("market context fetch failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("market context unavailable"))
	}
	return xhttp.SuccessResponse(c, mc)
}

func (h *ScanHandler) ProviderStats(c echo.Context) error {
	if h.client == nil {
		return xhttp.SuccessResponse(c, []interface{}{})
	}
	return xhttp.SuccessResponse(c, h.client.Stats())
}

func (h *ScanHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
