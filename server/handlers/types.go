package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parietal-io/splitbrain/pkg/neurodb"
)

// Dissociator runs the symmetric-difference queries. *neurodb.Store
// satisfies it; tests substitute fakes.
type Dissociator interface {
	DissociateTerms(ctx context.Context, aKey, bKey string) (*neurodb.Dissociation, error)
	DissociateLocations(ctx context.Context, a, b neurodb.Coordinate) (*neurodb.Dissociation, error)
}

// Diagnoser produces the database connectivity report.
type Diagnoser interface {
	Diagnostics(ctx context.Context) (*neurodb.Report, error)
}

// DissociationCounts carries the sizes of the two difference lists.
type DissociationCounts struct {
	ANotB int `json:"a_not_b"`
	BNotA int `json:"b_not_a"`
}

// TermDissociationResponse is the term dissociation payload. A and B
// echo the canonical database keys the comparison actually used.
type TermDissociationResponse struct {
	A      string             `json:"a"`
	B      string             `json:"b"`
	ANotB  []neurodb.StudyID  `json:"a_not_b"`
	BNotA  []neurodb.StudyID  `json:"b_not_a"`
	Counts DissociationCounts `json:"counts"`
}

// LocationDissociationResponse is the location dissociation payload. A
// and B echo the parsed coordinates.
type LocationDissociationResponse struct {
	A      neurodb.Coordinate `json:"a"`
	B      neurodb.Coordinate `json:"b"`
	ANotB  []neurodb.StudyID  `json:"a_not_b"`
	BNotA  []neurodb.StudyID  `json:"b_not_a"`
	Counts DissociationCounts `json:"counts"`
}

// badCoordinate rejects a malformed x_y_z path segment.
func badCoordinate(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "bad_request",
			"message": "Coordinates must be 'x_y_z' with integers.",
		},
	})
}

// internalError reports a failed backend operation.
func internalError(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "internal_error",
			"message": msg + ": " + err.Error(),
		},
	})
}
