package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitop-dev/studio"
)

// PostVideo generates a video and blocks until it is downloaded. Clients that
// disconnect cancel the wait.
func PostVideo(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VideoRequest
		if !bindJSON(c, &req) {
			return
		}

		start := time.Now()
		out, err := studio.GenerateVideo(c.Request.Context(), studio.GenerateVideoRequest{
			Model:       deps.Models.Video,
			Prompt:      req.Prompt,
			Image:       req.Image,
			AspectRatio: req.AspectRatio,
			Poll: studio.PollOptions{
				Interval: deps.Video.PollInterval,
				MaxPolls: deps.Video.MaxPolls,
				Timeout:  deps.Video.Timeout,
				OnPoll: func(int, bool) {
					if deps.Metrics != nil {
						deps.Metrics.VideoPolls.Inc()
					}
				},
			},
			Media: deps.mediaStore(),
			Retry: deps.retryPolicy("video", deps.Retry.Video),
		})
		deps.observe("video", start, err)
		if err != nil {
			writeError(c, err)
			return
		}
		deps.show(req.Player, req.Replaces, out.Handle)
		c.JSON(http.StatusOK, VideoResponse{Video: out.Handle, MediaType: out.MediaType, Operation: out.Operation})
	}
}
