package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitop-dev/studio"
)

const maxImagesPerRequest = 8

func PostImages(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ImagesRequest
		if !bindJSON(c, &req) {
			return
		}
		if req.N > maxImagesPerRequest {
			c.JSON(http.StatusBadRequest, ErrorResponse{Status: StatusError, Error: "n must be at most 8"})
			return
		}

		start := time.Now()
		out, err := studio.GenerateImages(c.Request.Context(), studio.GenerateImagesRequest{
			Model:       deps.Models.Image,
			Prompt:      req.Prompt,
			AspectRatio: req.AspectRatio,
			N:           req.N,
			MinInterval: deps.Images.MinInterval,
			MaxParallel: deps.Images.MaxParallel,
			Limiter:     deps.ImageLimiter,
			Retry:       deps.retryPolicy("images", deps.Retry.Images),
		})
		deps.observe("images", start, err)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, ImagesResponse{Images: out.Images})
	}
}

func PostEditImage(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EditImageRequest
		if !bindJSON(c, &req) {
			return
		}

		start := time.Now()
		img, err := studio.EditImage(c.Request.Context(), studio.EditImageRequest{
			Model:  deps.Models.Image,
			Image:  req.Image,
			Mask:   req.Mask,
			Prompt: req.Prompt,
			Retry:  deps.retryPolicy("edit_image", deps.Retry.Images),
		})
		deps.observe("edit_image", start, err)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, ImageResponse{Image: img})
	}
}

func PostMergeImages(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MergeImagesRequest
		if !bindJSON(c, &req) {
			return
		}

		start := time.Now()
		img, err := studio.MergeImages(c.Request.Context(), studio.MergeImagesRequest{
			Model:  deps.Models.Image,
			Images: req.Images,
			Prompt: req.Prompt,
			Retry:  deps.retryPolicy("merge_images", deps.Retry.Images),
		})
		deps.observe("merge_images", start, err)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, ImageResponse{Image: img})
	}
}

func PostMangaPanel(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MangaPanelRequest
		if !bindJSON(c, &req) {
			return
		}

		start := time.Now()
		img, err := studio.GenerateMangaPanel(c.Request.Context(), studio.MangaPanelRequest{
			Model:       deps.Models.Image,
			Description: req.Description,
			Style:       req.Style,
			AspectRatio: req.AspectRatio,
			Characters:  req.Characters,
			Limiter:     deps.ImageLimiter,
			Retry:       deps.retryPolicy("manga_panel", deps.Retry.Images),
		})
		deps.observe("manga_panel", start, err)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, ImageResponse{Image: img})
	}
}
