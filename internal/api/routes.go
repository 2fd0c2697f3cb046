package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all routes. limit guards the generation routes.
func RegisterRoutes(engine *gin.Engine, deps *Dependencies, limit gin.HandlerFunc) {
	engine.GET("/health", GetHealth(deps))
	engine.GET("/version", GetVersion(deps))
	if deps.Metrics != nil {
		engine.GET("/metrics", GetMetrics(deps))
	}

	engine.NoRoute(NotFoundHandler())

	v1 := engine.Group("/api")
	v1.GET("/voices", GetVoices())

	gen := v1.Group("")
	gen.Use(limit)
	gen.POST("/speech", PostSpeech(deps))
	gen.POST("/dialogue", PostDialogue(deps))
	gen.POST("/images", PostImages(deps))
	gen.POST("/images/edit", PostEditImage(deps))
	gen.POST("/images/merge", PostMergeImages(deps))
	gen.POST("/translate", PostTranslate(deps))
	gen.POST("/transcript", PostTranscript(deps))
	gen.POST("/video", PostVideo(deps))
	gen.POST("/chat", PostChat(deps))
	gen.POST("/story", PostStory(deps))
	gen.POST("/manga", PostManga(deps))
	gen.POST("/manga/panel", PostMangaPanel(deps))

	v1.DELETE("/chat/:session", DeleteChat(deps))

	if deps.Media != nil {
		engine.GET("/media/:id", GetMedia(deps))
		engine.DELETE("/media/:id", DeleteMedia(deps))
		v1.DELETE("/players/:player", DeletePlayer(deps))
	}
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  StatusError,
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
