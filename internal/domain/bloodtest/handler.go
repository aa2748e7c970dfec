package bloodtest

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
	"github.com/healthtracker/healthtracker/internal/platform/db"
	"github.com/healthtracker/healthtracker/pkg/pagination"
)

const (
	notFound       = "Blood test not found"
	noTestsForUser = "No blood tests found for this patient"
)

var recentBounds = pagination.Bounds{Default: RecentDefault, Max: RecentMax}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/blood-tests")
	g.POST("", h.CreateBloodTest)
	g.GET("/:id", h.GetBloodTest)
	g.PUT("/:id", h.UpdateBloodTest)
	g.DELETE("/:id", h.DeleteBloodTest)

	g.GET("/patient/:patientId", h.ListForPatient)
	g.GET("/patient/:patientId/latest", h.LatestForPatient)
	g.GET("/patient/:patientId/recent", h.RecentForPatient)
	g.GET("/patient/:patientId/statistics/:testType/:metric", h.MetricTimeSeries)
	g.GET("/patient/:patientId/summary", h.Summary)
}

// patientParam parses the patient id path segment. A malformed id is a bad
// request here: the route addresses a collection, not a single document.
func patientParam(c echo.Context) (primitive.ObjectID, error) {
	id, err := db.ParseID(c.Param("patientId"))
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	return id, nil
}

func (h *Handler) CreateBloodTest(c echo.Context) error {
	var d Draft
	if err := c.Bind(&d); err != nil {
		return apierr.BindError(err)
	}
	bt, err := h.svc.CreateBloodTest(c.Request().Context(), d)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.JSON(http.StatusCreated, bt)
}

func (h *Handler) GetBloodTest(c echo.Context) error {
	id, err := db.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	bt, err := h.svc.GetBloodTest(c.Request().Context(), id)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.JSON(http.StatusOK, bt)
}

func (h *Handler) ListForPatient(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	pg, err := pagination.FromContext(c, pagination.Standard)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	items, err := h.svc.ListForPatient(c.Request().Context(), Query{
		PatientID: patientID,
		TestType:  strings.TrimSpace(c.QueryParam("test_type")),
		Skip:      pg.Skip,
		Limit:     pg.Limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) LatestForPatient(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	bt, err := h.svc.LatestForPatient(c.Request().Context(), patientID, strings.TrimSpace(c.QueryParam("test_type")))
	if err != nil {
		return err
	}
	if bt == nil {
		return echo.NewHTTPError(http.StatusNotFound, noTestsForUser)
	}
	return c.JSON(http.StatusOK, bt)
}

func (h *Handler) RecentForPatient(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	pg, err := pagination.FromContext(c, recentBounds)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	items, err := h.svc.RecentForPatient(c.Request().Context(), patientID, pg.Limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) UpdateBloodTest(c echo.Context) error {
	id, err := db.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	var patch Patch
	if err := c.Bind(&patch); err != nil {
		return apierr.BindError(err)
	}
	bt, err := h.svc.UpdateBloodTest(c.Request().Context(), id, patch)
	if err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.JSON(http.StatusOK, bt)
}

func (h *Handler) DeleteBloodTest(c echo.Context) error {
	id, err := db.ParseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	if err := h.svc.DeleteBloodTest(c.Request().Context(), id); err != nil {
		return apierr.ToHTTP(err, notFound)
	}
	return c.NoContent(http.StatusNoContent)
}

// SeriesResponse is the body of the statistics endpoint.
type SeriesResponse struct {
	Metric string  `json:"metric"`
	Values []Point `json:"values"`
}

func (h *Handler) MetricTimeSeries(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	metric := c.Param("metric")
	points, err := h.svc.MetricTimeSeries(c.Request().Context(), patientID, c.Param("testType"), metric)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SeriesResponse{Metric: metric, Values: points})
}

func (h *Handler) Summary(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	s, err := h.svc.Summarize(c.Request().Context(), patientID, strings.TrimSpace(c.QueryParam("metric")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}
