package main

import (
	"net/http"

	"github.com/healthtracker/healthtracker/internal/domain/bloodtest"
	"github.com/healthtracker/healthtracker/internal/domain/doctor"
	"github.com/healthtracker/healthtracker/internal/domain/examtype"
	"github.com/healthtracker/healthtracker/internal/domain/patient"
	"github.com/healthtracker/healthtracker/internal/platform/openapi"
)

var pageParams = []openapi.Param{
	{Name: "skip", Type: "integer", Description: "Documents to skip, >= 0"},
	{Name: "limit", Type: "integer", Description: "Page size, 1..100 (default 10)"},
}

func withParams(extra ...openapi.Param) []openapi.Param {
	return append(append([]openapi.Param{}, pageParams...), extra...)
}

// describeAPI documents the routes registered under prefix.
func describeAPI(g *openapi.Generator, prefix string) {
	g.Override(bloodtest.TypeCounts{}, map[string]interface{}{
		"type":                 "object",
		"description":          "Tests per type label, in first-seen order",
		"additionalProperties": map[string]string{"type": "integer"},
	})

	d := func(method, path string, doc openapi.Doc) { g.Describe(method, prefix+path, doc) }

	d(http.MethodPost, "/patients", openapi.Doc{Summary: "Create a patient", Body: patient.Patient{}, Response: patient.Patient{}})
	d(http.MethodGet, "/patients", openapi.Doc{
		Summary:  "List patients",
		Query:    withParams(openapi.Param{Name: "search", Description: "Case-insensitive match on name or email"}),
		Response: []patient.Patient{},
	})
	d(http.MethodGet, "/patients/:id", openapi.Doc{Summary: "Get a patient", Response: patient.Patient{}})
	d(http.MethodPut, "/patients/:id", openapi.Doc{Summary: "Update a patient", Body: patient.Patch{}, Response: patient.Patient{}})
	d(http.MethodDelete, "/patients/:id", openapi.Doc{Summary: "Delete a patient"})

	d(http.MethodPost, "/doctors", openapi.Doc{Summary: "Create a doctor", Body: doctor.Doctor{}, Response: doctor.Doctor{}})
	d(http.MethodGet, "/doctors", openapi.Doc{Summary: "List doctors", Query: pageParams, Response: []doctor.Doctor{}})
	d(http.MethodGet, "/doctors/:id", openapi.Doc{Summary: "Get a doctor", Response: doctor.Doctor{}})
	d(http.MethodPut, "/doctors/:id", openapi.Doc{Summary: "Update a doctor", Body: doctor.Patch{}, Response: doctor.Doctor{}})
	d(http.MethodDelete, "/doctors/:id", openapi.Doc{Summary: "Delete a doctor"})

	d(http.MethodPost, "/exam-types", openapi.Doc{Summary: "Create an exam type", Body: examtype.ExamType{}, Response: examtype.ExamType{}})
	d(http.MethodGet, "/exam-types", openapi.Doc{Summary: "List exam types", Query: pageParams, Response: []examtype.ExamType{}})
	d(http.MethodGet, "/exam-types/:id", openapi.Doc{Summary: "Get an exam type", Response: examtype.ExamType{}})
	d(http.MethodPut, "/exam-types/:id", openapi.Doc{Summary: "Update an exam type", Body: examtype.Patch{}, Response: examtype.ExamType{}})
	d(http.MethodDelete, "/exam-types/:id", openapi.Doc{Summary: "Delete an exam type"})

	typeParam := openapi.Param{Name: "test_type", Description: "Test type label or exam type id"}
	d(http.MethodPost, "/blood-tests", openapi.Doc{
		Summary:  "Record a blood test; every referenced patient, exam type and doctor must exist",
		Body:     bloodtest.Draft{},
		Response: bloodtest.BloodTest{},
	})
	d(http.MethodGet, "/blood-tests/:id", openapi.Doc{Summary: "Get a blood test", Response: bloodtest.BloodTest{}})
	d(http.MethodPut, "/blood-tests/:id", openapi.Doc{Summary: "Update a blood test", Body: bloodtest.Patch{}, Response: bloodtest.BloodTest{}})
	d(http.MethodDelete, "/blood-tests/:id", openapi.Doc{Summary: "Delete a blood test"})
	d(http.MethodGet, "/blood-tests/patient/:patientId", openapi.Doc{
		Summary:  "A patient's blood tests, newest first",
		Query:    withParams(typeParam),
		Response: []bloodtest.BloodTest{},
	})
	d(http.MethodGet, "/blood-tests/patient/:patientId/latest", openapi.Doc{
		Summary:  "A patient's most recent blood test",
		Query:    []openapi.Param{typeParam},
		Response: bloodtest.BloodTest{},
	})
	d(http.MethodGet, "/blood-tests/patient/:patientId/recent", openapi.Doc{
		Summary:  "A patient's most recent blood tests",
		Query:    []openapi.Param{{Name: "limit", Type: "integer", Description: "1..50 (default 5)"}},
		Response: []bloodtest.BloodTest{},
	})
	d(http.MethodGet, "/blood-tests/patient/:patientId/statistics/:testType/:metric", openapi.Doc{
		Summary:  "Time series of one metric, oldest first",
		Response: bloodtest.SeriesResponse{},
	})
	d(http.MethodGet, "/blood-tests/patient/:patientId/summary", openapi.Doc{
		Summary:  "Totals per test type and an optional metric average",
		Query:    []openapi.Param{{Name: "metric", Description: "Exam type name or id to average"}},
		Response: bloodtest.Summary{},
	})
}
