package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"

	"whomortality/internal/export"
	"whomortality/internal/models"
	"whomortality/internal/mortality"
	"whomortality/internal/validation"
)

// Aggregator serves the aggregation read paths.
type Aggregator interface {
	Prepare(ctx context.Context, scope string, causes []string) (mortality.FilterContext, error)
	TimeSeries(ctx context.Context, f mortality.FilterContext) ([]mortality.YearAggregate, error)
	Breakdown(ctx context.Context, f mortality.FilterContext) ([]mortality.CauseYearBreakdown, error)
	Summary(ctx context.Context, f mortality.FilterContext) (*mortality.Summary, error)
}

// MortalityHandler serves the data, stats and export endpoints.
type MortalityHandler struct {
	engine    Aggregator
	maxCauses int
}

// NewMortalityHandler creates a new mortality API handler.
func NewMortalityHandler(engine Aggregator, maxCauses int) *MortalityHandler {
	return &MortalityHandler{engine: engine, maxCauses: maxCauses}
}

// prepare decodes and validates the request body and builds its filter.
// It writes the error response itself when ok is false.
func (h *MortalityHandler) prepare(c fiber.Ctx) (req models.DataRequest, fc mortality.FilterContext, ok bool, err error) {
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return req, fc, false, jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if valid, msg := validation.ValidateScope(req.ScopeName()); !valid {
		return req, fc, false, jsonError(c, fiber.StatusBadRequest, msg)
	}
	if valid, msg := validation.ValidateCauseCount(req.Causes, h.maxCauses); !valid {
		return req, fc, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error",
			"kind":   mortality.KindNoCausesSelected,
			"error":  msg,
		})
	}

	fc, err = h.engine.Prepare(c.Context(), req.ScopeName(), req.Causes)
	if err != nil {
		return req, fc, false, kindError(c, err)
	}
	return req, fc, true, nil
}

// Data returns the time series and the per-cause breakdown.
func (h *MortalityHandler) Data(c fiber.Ctx) error {
	req, fc, ok, err := h.prepare(c)
	if !ok {
		return err
	}

	var (
		series    []mortality.YearAggregate
		breakdown []mortality.CauseYearBreakdown
	)
	g, ctx := errgroup.WithContext(c.Context())
	g.Go(func() error {
		var err error
		series, err = h.engine.TimeSeries(ctx, fc)
		return err
	})
	g.Go(func() error {
		var err error
		breakdown, err = h.engine.Breakdown(ctx, fc)
		return err
	})
	if err := g.Wait(); err != nil {
		return kindError(c, err)
	}

	return jsonSuccess(c, models.DataResponse{
		Scope:     req.ScopeName(),
		Series:    models.NewSeries(series),
		Breakdown: breakdown,
	})
}

// Stats returns the summary statistics and the top cause of every year.
func (h *MortalityHandler) Stats(c fiber.Ctx) error {
	req, fc, ok, err := h.prepare(c)
	if !ok {
		return err
	}

	summary, err := h.engine.Summary(c.Context(), fc)
	if err != nil {
		return kindError(c, err)
	}

	return jsonSuccess(c, models.StatsResponse{Scope: req.ScopeName(), Summary: summary})
}

// Export streams the time series as a CSV attachment. A scope without
// matching rows yields the header row only.
func (h *MortalityHandler) Export(c fiber.Ctx) error {
	req, fc, ok, err := h.prepare(c)
	if !ok {
		return err
	}

	series, err := h.engine.TimeSeries(c.Context(), fc)
	if err != nil && !errors.Is(err, mortality.ErrNoDataForScope) {
		return kindError(c, err)
	}

	data, err := export.CSV(series)
	if err != nil {
		return kindError(c, err)
	}

	c.Attachment(export.Filename(req.ScopeName()))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(data)
}
