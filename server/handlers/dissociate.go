package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parietal-io/splitbrain/pkg/logging"
	"github.com/parietal-io/splitbrain/pkg/neurodb"
)

// DissociationHandler serves the symmetric-difference queries over
// terms and peak coordinates.
type DissociationHandler struct {
	db Dissociator
}

// NewDissociationHandler creates a new DissociationHandler.
func NewDissociationHandler(db Dissociator) *DissociationHandler {
	return &DissociationHandler{db: db}
}

// Terms returns the studies annotated with term A but not term B, and
// the reverse. Terms arrive raw in the path and are canonicalized to
// database keys; unknown terms are not an error, they just match no
// studies.
func (h *DissociationHandler) Terms(c *gin.Context) {
	ctx := c.Request.Context()

	keyA := neurodb.CanonicalTermKey(c.Param("term_a"))
	keyB := neurodb.CanonicalTermKey(c.Param("term_b"))

	d, err := h.db.DissociateTerms(ctx, keyA, keyB)
	if err != nil {
		logging.Error(ctx, "dissociate.terms.failed", map[string]any{
			"a":     keyA,
			"b":     keyB,
			"error": err.Error(),
		})
		internalError(c, "Term dissociation failed", err)
		return
	}

	logging.Info(ctx, "dissociate.terms", map[string]any{
		"a":       keyA,
		"b":       keyB,
		"a_not_b": len(d.ANotB),
		"b_not_a": len(d.BNotA),
	})

	c.JSON(http.StatusOK, TermDissociationResponse{
		A:     keyA,
		B:     keyB,
		ANotB: d.ANotB,
		BNotA: d.BNotA,
		Counts: DissociationCounts{
			ANotB: len(d.ANotB),
			BNotA: len(d.BNotA),
		},
	})
}

// Locations returns the studies reporting a peak at coordinate A but
// not at B, and the reverse. Both path segments must be x_y_z integer
// triples.
func (h *DissociationHandler) Locations(c *gin.Context) {
	ctx := c.Request.Context()

	a, err := neurodb.ParseCoordinate(c.Param("coords_a"))
	if err != nil {
		badCoordinate(c)
		return
	}
	b, err := neurodb.ParseCoordinate(c.Param("coords_b"))
	if err != nil {
		badCoordinate(c)
		return
	}

	d, err := h.db.DissociateLocations(ctx, a, b)
	if err != nil {
		logging.Error(ctx, "dissociate.locations.failed", map[string]any{
			"a":     a.String(),
			"b":     b.String(),
			"error": err.Error(),
		})
		internalError(c, "Location dissociation failed", err)
		return
	}

	logging.Info(ctx, "dissociate.locations", map[string]any{
		"a":       a.String(),
		"b":       b.String(),
		"a_not_b": len(d.ANotB),
		"b_not_a": len(d.BNotA),
	})

	c.JSON(http.StatusOK, LocationDissociationResponse{
		A:     a,
		B:     b,
		ANotB: d.ANotB,
		BNotA: d.BNotA,
		Counts: DissociationCounts{
			ANotB: len(d.ANotB),
			BNotA: len(d.BNotA),
		},
	})
}
