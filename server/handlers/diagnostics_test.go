package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parietal-io/splitbrain/pkg/neurodb"
)

type fakeDiagnoser struct {
	report *neurodb.Report
	err    error
}

func (f *fakeDiagnoser) Diagnostics(ctx context.Context) (*neurodb.Report, error) {
	return f.report, f.err
}

func newDiagnosticsRouter(db Diagnoser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDiagnosticsHandler(db)
	r := gin.New()
	r.GET("/test_db", h.TestDB)
	return r
}

func int64p(v int64) *int64 { return &v }

func TestTestDBSuccess(t *testing.T) {
	fake := &fakeDiagnoser{
		report: &neurodb.Report{
			Dialect:               "postgresql",
			Version:               "PostgreSQL 16.3 on x86_64-pc-linux-gnu",
			CoordinatesCount:      int64p(448255),
			MetadataCount:         int64p(14371),
			AnnotationsTermsCount: int64p(3228573),
			CoordinatesSample: []neurodb.CoordinateSample{
				{StudyID: 9065511, X: -44, Y: -69, Z: 24},
			},
			MetadataSample: []map[string]any{
				{"study_id": int64(9065511), "title": "A study"},
			},
			AnnotationsTermsSample: []neurodb.AnnotationSample{
				{StudyID: 9065511, ContrastID: "1", Term: "terms_abstract_tfidf__pain", Weight: 0.12},
			},
		},
	}
	router := newDiagnosticsRouter(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test_db", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "postgresql", body["dialect"])
	assert.Contains(t, body["version"], "PostgreSQL")
	assert.EqualValues(t, 448255, body["coordinates_count"])
	assert.EqualValues(t, 14371, body["metadata_count"])
	assert.EqualValues(t, 3228573, body["annotations_terms_count"])
	assert.Len(t, body["coordinates_sample"], 1)
	assert.Len(t, body["metadata_sample"], 1)
	assert.Len(t, body["annotations_terms_sample"], 1)
}

func TestTestDBEmptySamplesStayArrays(t *testing.T) {
	fake := &fakeDiagnoser{
		report: &neurodb.Report{
			Dialect:                "postgresql",
			Version:                "PostgreSQL 16.3",
			CoordinatesCount:       int64p(0),
			MetadataCount:          int64p(0),
			AnnotationsTermsCount:  int64p(0),
			CoordinatesSample:      []neurodb.CoordinateSample{},
			MetadataSample:         []map[string]any{},
			AnnotationsTermsSample: []neurodb.AnnotationSample{},
		},
	}
	router := newDiagnosticsRouter(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test_db", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"coordinates_sample":[]`)
	assert.Contains(t, w.Body.String(), `"coordinates_count":0`)
}

func TestTestDBEarlyFailureOmitsUngatheredFields(t *testing.T) {
	// the probe died on the first count, only dialect and version exist
	fake := &fakeDiagnoser{
		report: &neurodb.Report{
			Dialect: "postgresql",
			Version: "PostgreSQL 16.3",
		},
		err: errors.New(`count coordinates: relation "ns.coordinates" does not exist`),
	}
	router := newDiagnosticsRouter(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test_db", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "postgresql", body["dialect"])
	assert.Contains(t, body["error"], "does not exist")
	assert.Contains(t, body, "version")
	assert.NotContains(t, body, "coordinates_count")
	assert.NotContains(t, body, "coordinates_sample")
}

func TestTestDBLateFailureKeepsGatheredFields(t *testing.T) {
	fake := &fakeDiagnoser{
		report: &neurodb.Report{
			Dialect:               "postgresql",
			Version:               "PostgreSQL 16.3",
			CoordinatesCount:      int64p(12),
			MetadataCount:         int64p(3),
			AnnotationsTermsCount: int64p(99),
			CoordinatesSample:     []neurodb.CoordinateSample{},
		},
		err: errors.New("commit failed: connection reset"),
	}
	router := newDiagnosticsRouter(fake)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test_db", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.EqualValues(t, 12, body["coordinates_count"])
	assert.Contains(t, body, "coordinates_sample")
	assert.NotContains(t, body, "metadata_sample")
	assert.Contains(t, body["error"], "connection reset")
}
