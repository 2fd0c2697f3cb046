package main

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/bitop-dev/studio"
)

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Generate a video, optionally from a still image",
	Long: `Submit a video generation job, wait for it to finish and save the result.

Example:
  studio video --prompt "waves rolling onto a beach" --out beach.mp4
  studio video --image still.png --out animated.mp4`,
	RunE: runVideo,
}

func init() {
	rootCmd.AddCommand(videoCmd)

	videoCmd.Flags().String("prompt", "", "video prompt")
	videoCmd.Flags().String("image", "", "image file to animate")
	videoCmd.Flags().String("aspect", studio.DefaultVideoAspectRatio, "aspect ratio")
	videoCmd.Flags().String("resolution", studio.DefaultVideoResolution, "resolution")
	videoCmd.Flags().String("out", "video.mp4", "output file")
}

func runVideo(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	prompt, _ := cmd.Flags().GetString("prompt")
	imagePath, _ := cmd.Flags().GetString("image")
	aspect, _ := cmd.Flags().GetString("aspect")
	resolution, _ := cmd.Flags().GetString("resolution")
	out, _ := cmd.Flags().GetString("out")

	var image string
	if imagePath != "" {
		uri, err := fileDataURI(imagePath)
		if err != nil {
			return err
		}
		image = uri
	}

	client := newClient(appConfig)
	res, err := studio.GenerateVideo(cmd.Context(), studio.GenerateVideoRequest{
		Model:       client.Video(appConfig.Models.Video),
		Prompt:      prompt,
		Image:       image,
		AspectRatio: aspect,
		Resolution:  resolution,
		Poll: studio.PollOptions{
			Interval: appConfig.Video.PollInterval,
			MaxPolls: appConfig.Video.MaxPolls,
			Timeout:  appConfig.Video.Timeout,
			OnPoll: func(n int, done bool) {
				slog.Info("video status", slog.Int("poll", n), slog.Bool("done", done))
			},
		},
		Retry: retryOverride(appConfig.Retry.Video),
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, res.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, operation %s)\n", out, res.MediaType, res.Operation)
	return nil
}

func fileDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mt := mimetype.Detect(data)
	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
