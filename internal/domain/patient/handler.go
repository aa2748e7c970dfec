package patient

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
	"github.com/healthtracker/healthtracker/internal/platform/db"
	"github.com/healthtracker/healthtracker/pkg/pagination"
)

const notFound = "Patient not found"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:id", h.GetPatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.DELETE("/patients/:id", h.DeletePatient)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return apierr.BindError(err)
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := db.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg, err := pagination.FromContext(c, pagination.Standard)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	items, err := h.svc.ListPatients(c.Request().Context(), ListQuery{
		Skip:   pg.Skip,
		Limit:  pg.Limit,
		Search: strings.TrimSpace(c.QueryParam("search")),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := db.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	var patch Patch
	if err := c.Bind(&patch); err != nil {
		return apierr.BindError(err)
	}
	p, err := h.svc.UpdatePatient(c.Request().Context(), id, patch)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := db.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.NoContent(http.StatusNoContent)
}
