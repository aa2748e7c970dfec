package doctor

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
	"github.com/healthtracker/healthtracker/internal/platform/db"
	"github.com/healthtracker/healthtracker/pkg/pagination"
)

const notFound = "Doctor not found"

// listBounds returns the first hundred doctors unless the caller pages.
var listBounds = pagination.Bounds{Default: 100, Max: 100}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/doctors", h.CreateDoctor)
	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/:id", h.GetDoctor)
	api.PUT("/doctors/:id", h.UpdateDoctor)
	api.DELETE("/doctors/:id", h.DeleteDoctor)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return apierr.BindError(err)
	}
	if err := h.svc.CreateDoctor(c.Request().Context(), &d); err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := db.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg, err := pagination.FromContext(c, listBounds)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	items, err := h.svc.ListDoctors(c.Request().Context(), pg.Skip, pg.Limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := db.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	var patch Patch
	if err := c.Bind(&patch); err != nil {
		return apierr.BindError(err)
	}
	d, err := h.svc.UpdateDoctor(c.Request().Context(), id, patch)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := db.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.NoContent(http.StatusNoContent)
}
