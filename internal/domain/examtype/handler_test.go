package examtype

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	return NewHandler(newTestService()), echo.New()
}

func TestHandler_CreateExamType(t *testing.T) {
	h, e := newTestHandler()

	body := `{"name":"Glucose","description":"fasting","unit":"mg/dL","reference_values":{"male":{"min":70,"max":99}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exam-types", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateExamType(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var et ExamType
	json.Unmarshal(rec.Body.Bytes(), &et)
	if et.Unit == nil || *et.Unit != "mg/dL" {
		t.Errorf("expected unit mg/dL, got %v", et.Unit)
	}
}

func TestHandler_CreateExamType_BadRange(t *testing.T) {
	h, e := newTestHandler()

	body := `{"name":"Glucose","reference_values":{"male":{"min":99,"max":70}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exam-types", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateExamType(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_ListExamTypes(t *testing.T) {
	h, e := newTestHandler()
	h.svc.CreateExamType(context.Background(), &ExamType{Name: "LDL"})
	h.svc.CreateExamType(context.Background(), &ExamType{Name: "HDL"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exam-types", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListExamTypes(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var items []ExamType
	json.Unmarshal(rec.Body.Bytes(), &items)
	if len(items) != 2 || items[0].Name != "HDL" {
		t.Errorf("expected [HDL LDL], got %+v", items)
	}
}

func TestHandler_DeleteExamType_NotFound(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("65f1a2b3c4d5e6f708091a2b")

	err := h.DeleteExamType(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}
