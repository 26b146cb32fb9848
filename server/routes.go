package server

import (
	"github.com/gin-gonic/gin"

	"github.com/parietal-io/splitbrain/server/handlers"
)

// registerAssetRoutes registers the banner and image routes
func (s *Server) registerAssetRoutes(rg *gin.RouterGroup) {
	h := handlers.NewAssetsHandler()

	rg.GET("/", h.Root)
	rg.GET("/img", h.Image)
}

// registerStudyRoutes registers the study lookup routes
func (s *Server) registerStudyRoutes(rg *gin.RouterGroup) {
	h := handlers.NewStudiesHandler()

	rg.GET("/terms/:term/studies", h.ByTerm)
	rg.GET("/locations/:coords/studies", h.ByLocation)
}

// registerDissociationRoutes registers the dissociation query routes
func (s *Server) registerDissociationRoutes(rg *gin.RouterGroup) {
	h := handlers.NewDissociationHandler(s.deps.Store)

	dissociate := rg.Group("/dissociate")
	{
		dissociate.GET("/terms/:term_a/:term_b", h.Terms)
		dissociate.GET("/locations/:coords_a/:coords_b", h.Locations)
	}
}

// registerDiagnosticRoutes registers the database diagnostic route
func (s *Server) registerDiagnosticRoutes(rg *gin.RouterGroup) {
	h := handlers.NewDiagnosticsHandler(s.deps.Store)

	rg.GET("/test_db", h.TestDB)
}
