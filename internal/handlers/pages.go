package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"whomortality/internal/config"
)

// CountryLister lists the country display names.
type CountryLister interface {
	Countries(ctx context.Context) ([]string, error)
}

// PageHandler renders the HTML pages.
type PageHandler struct {
	countries CountryLister
	cfg       *config.Config
}

// NewPageHandler creates a new page handler.
func NewPageHandler(countries CountryLister, cfg *config.Config) *PageHandler {
	return &PageHandler{countries: countries, cfg: cfg}
}

// Countries renders every country name, each linked to its cause catalog.
func (h *PageHandler) Countries(c fiber.Ctx) error {
	names, err := h.countries.Countries(c.Context())
	if err != nil {
		return err
	}

	return c.Render("countries", fiber.Map{
		"Title":     "Countries",
		"SiteTitle": h.cfg.SiteTitle,
		"Countries": names,
	})
}
