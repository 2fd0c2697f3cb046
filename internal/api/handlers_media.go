package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitop-dev/studio/internal/media"
)

// GetMedia dereferences a media handle.
func GetMedia(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, ok := deps.Media.Get(media.HandleFromID(c.Param("id")))
		if !ok {
			c.JSON(http.StatusNotFound, ErrorResponse{Status: StatusError, Error: "media not found"})
			return
		}
		c.Header("Cache-Control", "private, max-age=3600")
		c.Data(http.StatusOK, item.MediaType, item.Data)
	}
}

// DeletePlayer releases whatever a player is showing.
func DeletePlayer(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !deps.releasePlayer(c.Param("player")) {
			c.JSON(http.StatusNotFound, ErrorResponse{Status: StatusError, Error: "player not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DeleteMedia releases a media handle. Releasing twice answers 404.
func DeleteMedia(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := deps.Media.Release(media.HandleFromID(c.Param("id")))
		if errors.Is(err, media.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Status: StatusError, Error: "media not found"})
			return
		}
		if err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
