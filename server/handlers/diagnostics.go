package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parietal-io/splitbrain/pkg/logging"
	"github.com/parietal-io/splitbrain/pkg/neurodb"
)

// DiagnosticsResponse is the successful probe payload.
type DiagnosticsResponse struct {
	OK bool `json:"ok"`
	neurodb.Report
}

// DiagnosticsHandler serves the database connectivity probe.
type DiagnosticsHandler struct {
	db Diagnoser
}

// NewDiagnosticsHandler creates a new DiagnosticsHandler.
func NewDiagnosticsHandler(db Diagnoser) *DiagnosticsHandler {
	return &DiagnosticsHandler{db: db}
}

// TestDB probes the database and reports version, table counts, and
// sample rows. On failure the payload keeps every field the probe
// gathered before it stopped, plus the error string.
func (h *DiagnosticsHandler) TestDB(c *gin.Context) {
	ctx := c.Request.Context()

	rep, err := h.db.Diagnostics(ctx)
	if rep == nil {
		rep = &neurodb.Report{Dialect: neurodb.Dialect}
	}
	if err != nil {
		logging.Error(ctx, "diagnostics.failed", map[string]any{
			"error": err.Error(),
		})

		payload := gin.H{
			"ok":      false,
			"dialect": rep.Dialect,
			"error":   err.Error(),
		}
		if rep.Version != "" {
			payload["version"] = rep.Version
		}
		if rep.CoordinatesCount != nil {
			payload["coordinates_count"] = *rep.CoordinatesCount
		}
		if rep.MetadataCount != nil {
			payload["metadata_count"] = *rep.MetadataCount
		}
		if rep.AnnotationsTermsCount != nil {
			payload["annotations_terms_count"] = *rep.AnnotationsTermsCount
		}
		if rep.CoordinatesSample != nil {
			payload["coordinates_sample"] = rep.CoordinatesSample
		}
		if rep.MetadataSample != nil {
			payload["metadata_sample"] = rep.MetadataSample
		}
		if rep.AnnotationsTermsSample != nil {
			payload["annotations_terms_sample"] = rep.AnnotationsTermsSample
		}
		c.JSON(http.StatusInternalServerError, payload)
		return
	}

	logging.Info(ctx, "diagnostics.ok", map[string]any{
		"coordinates_count":       *rep.CoordinatesCount,
		"metadata_count":          *rep.MetadataCount,
		"annotations_terms_count": *rep.AnnotationsTermsCount,
	})

	c.JSON(http.StatusOK, DiagnosticsResponse{OK: true, Report: *rep})
}
