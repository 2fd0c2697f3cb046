package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bitop-dev/studio"
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Generate images from a prompt",
	Long: `Generate one or more images and write them to a directory.

Example:
  studio image --prompt "a lighthouse at dusk" --n 2 --aspect 16:9`,
	RunE: runImage,
}

func init() {
	rootCmd.AddCommand(imageCmd)

	imageCmd.Flags().String("prompt", "", "image prompt (required)")
	imageCmd.Flags().Int("n", 1, "number of images")
	imageCmd.Flags().String("aspect", studio.DefaultAspectRatio, "aspect ratio")
	imageCmd.Flags().String("out-dir", ".", "output directory")
	_ = imageCmd.MarkFlagRequired("prompt")
}

func runImage(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	prompt, _ := cmd.Flags().GetString("prompt")
	n, _ := cmd.Flags().GetInt("n")
	aspect, _ := cmd.Flags().GetString("aspect")
	outDir, _ := cmd.Flags().GetString("out-dir")

	client := newClient(appConfig)
	res, err := studio.GenerateImages(cmd.Context(), studio.GenerateImagesRequest{
		Model:       client.Image(appConfig.Models.Image),
		Prompt:      prompt,
		AspectRatio: aspect,
		N:           n,
		MinInterval: appConfig.Images.MinInterval,
		MaxParallel: appConfig.Images.MaxParallel,
		Retry:       retryOverride(appConfig.Retry.Images),
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for i, uri := range res.Images {
		data, ext, err := decodeDataURI(uri)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, fmt.Sprintf("image_%d%s", i+1, ext))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
	}
	return nil
}

// decodeDataURI returns the payload of a base64 data URI and a file
// extension for its media type.
func decodeDataURI(uri string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("malformed data URI: %w", err)
	}
	ext := ".png"
	switch strings.TrimSuffix(meta, ";base64") {
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	}
	return data, ext, nil
}
