package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitop-dev/studio"
)

var speakCmd = &cobra.Command{
	Use:   "speak",
	Short: "Synthesize speech to a WAV file",
	Long: `Synthesize text with one of the prebuilt voices and write a WAV file.

Example:
  studio speak --text "Hello there" --voice Puck --out hello.wav
  studio speak --text "We won!" --emotion Excited`,
	RunE: runSpeak,
}

func init() {
	rootCmd.AddCommand(speakCmd)

	speakCmd.Flags().String("text", "", "text to speak (required)")
	speakCmd.Flags().String("voice", studio.DefaultVoice, "prebuilt voice name")
	speakCmd.Flags().String("emotion", "", "delivery style (Neutral, Happy, Sad, Excited, Whisper, Angry)")
	speakCmd.Flags().String("out", "speech.wav", "output file")
	_ = speakCmd.MarkFlagRequired("text")
}

func runSpeak(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	text, _ := cmd.Flags().GetString("text")
	voice, _ := cmd.Flags().GetString("voice")
	emotion, _ := cmd.Flags().GetString("emotion")
	out, _ := cmd.Flags().GetString("out")

	client := newClient(appConfig)
	res, err := studio.GenerateSpeech(cmd.Context(), studio.GenerateSpeechRequest{
		Model:   client.Speech(appConfig.Models.Speech),
		Text:    text,
		Voice:   voice,
		Emotion: studio.Emotion(emotion),
		Retry:   retryOverride(appConfig.Retry.Speech),
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, res.AudioData, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d Hz, %s)\n", out, res.MediaType, res.SampleRate, res.Duration)
	return nil
}
