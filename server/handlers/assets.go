package handlers

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed amygdala.gif
var amygdalaGIF []byte

// AssetsHandler serves the root banner and the embedded image, so the
// binary needs no files on disk next to it.
type AssetsHandler struct{}

// NewAssetsHandler creates a new AssetsHandler.
func NewAssetsHandler() *AssetsHandler {
	return &AssetsHandler{}
}

// Root confirms the server is reachable.
func (h *AssetsHandler) Root(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<p>Server working!</p>"))
}

// Image serves the embedded amygdala image.
func (h *AssetsHandler) Image(c *gin.Context) {
	c.Data(http.StatusOK, "image/gif", amygdalaGIF)
}
