// Package api exposes the scan results over HTTP.
package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/usecase"
	xhttp "SignalPulse/pkg/http"
	xlogger "SignalPulse/pkg/logger"
)

const defaultHistorySpan = 7 * 24 * time.Hour

// SignalsHandler serves the latest scan, on-demand classification,
// the critical subset, and persisted history.
type SignalsHandler struct {
	logger *xlogger.Logger
	scan   *usecase.ScanUseCase
}

func NewSignalsHandler(logger *xlogger.Logger, scan *usecase.ScanUseCase) *SignalsHandler {
	return &SignalsHandler{logger: logger, scan: scan}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals", h.List)
	g.GET("/signals/critical", h.Critical)
	g.GET("/signals/:asset", h.One)
	g.GET("/history/:asset", h.History)
}

type scanResponse struct {
	ScannedAt time.Time       `json:"scanned_at"`
	Count     int             `json:"count"`
	Signals   []models.Signal `json:"signals"`
}

type assetRequest struct {
	Asset string `param:"asset" validate:"required,min=5,max=20"`
}

type historyRequest struct {
	Asset string `param:"asset" validate:"required,min=5,max=20"`
	From  string `query:"from"`
	To    string `query:"to"`
	Limit int    `query:"limit" default:"100" validate:"gte=1,lte=1000"`
}

// List returns the latest filtered scan.
func (h *SignalsHandler) List(c echo.Context) error {
	signals, at := h.scan.Latest()
	return xhttp.SuccessResponse(c, &scanResponse{ScannedAt: at, Count: len(signals), Signals: signals})
}

// Critical returns the conservative subset of the latest scan.
func (h *SignalsHandler) Critical(c echo.Context) error {
	_, at := h.scan.Latest()
	critical := h.scan.Critical()
	return xhttp.SuccessResponse(c, &scanResponse{ScannedAt: at, Count: len(critical), Signals: critical})
}

// One classifies a single asset on demand.
func (h *SignalsHandler) One(c echo.Context) error {
	req := &assetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig := h.scan.ClassifyOne(c.Request().Context(), req.Asset)
	return xhttp.SuccessResponse(c, sig)
}

// History returns persisted signals for one asset. Range defaults to
// the trailing week.
func (h *SignalsHandler) History(c echo.Context) error {
	req := &historyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now()
	from := xhttp.ParseTimeDefault(req.From, now.Add(-defaultHistorySpan))
	to := xhttp.ParseTimeDefault(req.To, now)
	if to.Before(from) {
		return xhttp.BadRequestResponse(c, "to must be after from")
	}

	signals, err := h.scan.History(c.Request().Context(), req.Asset, from, to, req.Limit)
	if err != nil {
		h.logger.Error("history query failed", xlogger.String("asset", req.Asset), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, &scanResponse{ScannedAt: now, Count: len(signals), Signals: signals})
}
