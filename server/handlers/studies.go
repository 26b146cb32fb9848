package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parietal-io/splitbrain/pkg/neurodb"
)

// StudiesHandler serves the study lookup routes. Both are placeholders
// for per-term and per-location study listings: they validate and echo
// their input without touching the database.
type StudiesHandler struct{}

// NewStudiesHandler creates a new StudiesHandler.
func NewStudiesHandler() *StudiesHandler {
	return &StudiesHandler{}
}

// ByTerm echoes the raw term back as plain text.
func (h *StudiesHandler) ByTerm(c *gin.Context) {
	c.String(http.StatusOK, c.Param("term"))
}

// ByLocation parses the x_y_z path segment and echoes the components as
// a JSON array. Malformed input is rejected the same way the
// dissociation route rejects it.
func (h *StudiesHandler) ByLocation(c *gin.Context) {
	coord, err := neurodb.ParseCoordinate(c.Param("coords"))
	if err != nil {
		badCoordinate(c)
		return
	}
	c.JSON(http.StatusOK, []int{coord.X, coord.Y, coord.Z})
}
