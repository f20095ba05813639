package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menta2k/faceblur/pkg/client"
	"github.com/menta2k/faceblur/pkg/detection"
	"github.com/menta2k/faceblur/pkg/gemini"
	"github.com/menta2k/faceblur/pkg/llamacpp"
	"github.com/menta2k/faceblur/pkg/ollama"
	"github.com/menta2k/faceblur/pkg/processing"
	"github.com/menta2k/faceblur/pkg/types"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Locate faces with a vision model",
	Long: `Send the image to a vision model and print the detected faces as a JSON
array of {x, y, width, height} rectangles in image pixels. The output can be
passed to "faceblur crop --faces".

Examples:
  # Use the configured backend
  faceblur detect --image photo.jpg

  # Use a llama.cpp server
  faceblur detect --image photo.jpg --backend llamacpp --url http://gpu-box:8080

  # Check that the model can see the image at all
  faceblur detect --image photo.jpg --test-vision`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().String("image", "", "Input image path or URL (required)")
	detectCmd.Flags().String("backend", "", "Vision backend: ollama|llamacpp|gemini (default from config)")
	detectCmd.Flags().String("model", "", "Model name (default from config)")
	detectCmd.Flags().String("url", "", "Backend server URL (default from config)")
	detectCmd.Flags().Float64("min-confidence", -1, "Drop faces below this confidence (default from config)")
	detectCmd.Flags().Bool("test-vision", false, "Ask the model to describe the image instead")
	detectCmd.MarkFlagRequired("image")
}

func runDetect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	src := mustGetString(cmd, "image")

	if b := mustGetString(cmd, "backend"); b != "" {
		cfg.Detector.Backend = b
	}
	if m := mustGetString(cmd, "model"); m != "" {
		cfg.Detector.Model = m
	}
	if u := mustGetString(cmd, "url"); u != "" {
		switch cfg.Detector.Backend {
		case "llamacpp":
			cfg.Detector.LlamaCppURL = u
		default:
			cfg.Detector.OllamaURL = u
		}
	}
	if c := mustGetFloat64(cmd, "min-confidence"); c >= 0 {
		cfg.Detector.MinConfidence = c
	}

	p := processing.NewProcessor()
	img, asset, err := loadSource(ctx, p, src)
	if err != nil {
		return err
	}

	imgB64, err := p.PrepareImageForModel(img, "jpg", cfg.Detector.MaxDimension, 85)
	if err != nil {
		return fmt.Errorf("failed to prepare image: %w", err)
	}

	detector, err := newDetector(ctx)
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "test-vision") {
		out, err := detector.TestVision(ctx, cfg.Detector.Model, imgB64)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	faceData, err := detectFaces(ctx, detector, imgB64, asset.Dimensions())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), faceData)
	return nil
}

func detectFaces(ctx context.Context, d *detection.Detector, imgB64 string, dims types.Dimensions) (string, error) {
	logger.Info("locating faces", "backend", cfg.Detector.Backend, "model", cfg.Detector.Model)
	faceData, err := d.DetectFaces(ctx, cfg.Detector.Model, imgB64, dims)
	if err != nil {
		return "", fmt.Errorf("face detection failed: %w", err)
	}
	logger.Debug("face detection finished", "faces", faceData)
	return faceData, nil
}

func newDetector(ctx context.Context) (*detection.Detector, error) {
	vc, err := newVisionClient(ctx)
	if err != nil {
		return nil, err
	}
	d := detection.NewDetector(vc)
	d.SetMinConfidence(cfg.Detector.MinConfidence)
	return d, nil
}

func newVisionClient(ctx context.Context) (client.VisionClient, error) {
	switch cfg.Detector.Backend {
	case "ollama":
		return ollama.NewClient(cfg.Detector.OllamaURL)
	case "llamacpp":
		return llamacpp.NewClient(cfg.Detector.LlamaCppURL, "")
	case "gemini":
		return gemini.NewClient(ctx, cfg.Detector.GeminiAPIKey, "")
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Detector.Backend)
	}
}
