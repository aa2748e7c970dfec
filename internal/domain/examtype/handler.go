package examtype

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
	"github.com/healthtracker/healthtracker/internal/platform/db"
	"github.com/healthtracker/healthtracker/pkg/pagination"
)

const notFound = "ExamType not found"

var listBounds = pagination.Bounds{Default: 100, Max: 100}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/exam-types", h.CreateExamType)
	api.GET("/exam-types", h.ListExamTypes)
	api.GET("/exam-types/:id", h.GetExamType)
	api.PUT("/exam-types/:id", h.UpdateExamType)
	api.DELETE("/exam-types/:id", h.DeleteExamType)
}

func (h *Handler) CreateExamType(c echo.Context) error {
	var e ExamType
	if err := c.Bind(&e); err != nil {
		return apierr.BindError(err)
	}
	if err := h.svc.CreateExamType(c.Request().Context(), &e); err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) GetExamType(c echo.Context) error {
	id, err := db.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	e, err := h.svc.GetExamType(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListExamTypes(c echo.Context) error {
	pg, err := pagination.FromContext(c, listBounds)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	items, err := h.svc.ListExamTypes(c.Request().Context(), pg.Skip, pg.Limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateExamType(c echo.Context) error {
	id, err := db.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	var patch Patch
	if err := c.Bind(&patch); err != nil {
		return apierr.BindError(err)
	}
	e, err := h.svc.UpdateExamType(c.Request().Context(), id, patch)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) DeleteExamType(c echo.Context) error {
	id, err := db.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	if err := h.svc.DeleteExamType(c.Request().Context(), id); err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.NoContent(http.StatusNoContent)
}
