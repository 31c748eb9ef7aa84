package api

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"whomortality/internal/catalog"
	"whomortality/internal/models"
	"whomortality/internal/mortality"
	"whomortality/internal/validation"
)

// CatalogService lists causes and countries.
type CatalogService interface {
	Causes(ctx context.Context, scope string) ([]catalog.Entry, error)
	Countries(ctx context.Context) ([]string, error)
}

// CatalogHandler serves the cause and country listings.
type CatalogHandler struct {
	catalog CatalogService
}

// NewCatalogHandler creates a new catalog API handler.
func NewCatalogHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: service}
}

// Causes returns the selectable causes, restricted to ?country= when given.
func (h *CatalogHandler) Causes(c fiber.Ctx) error {
	scope := c.Query("country", c.Query("scope"))
	if scope != "" {
		if valid, msg := validation.ValidateScope(scope); !valid {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
	} else {
		scope = mortality.GlobalScopeName
	}

	entries, err := h.catalog.Causes(c.Context(), scope)
	if err != nil {
		return kindError(c, err)
	}

	return jsonSuccess(c, models.CausesResponse{Scope: scope, Causes: entries})
}

// Countries returns the country display names.
func (h *CatalogHandler) Countries(c fiber.Ctx) error {
	names, err := h.catalog.Countries(c.Context())
	if err != nil {
		return kindError(c, err)
	}
	return jsonSuccess(c, models.CountriesResponse{Countries: names})
}
