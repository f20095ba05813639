package main

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/menta2k/faceblur"
	"github.com/menta2k/faceblur/internal/utils"
	"github.com/menta2k/faceblur/pkg/cropper"
	"github.com/menta2k/faceblur/pkg/processing"
	"github.com/menta2k/faceblur/pkg/types"
)

var cropCmd = &cobra.Command{
	Use:   "crop",
	Short: "Crop every face out of an image",
	Long: `Clamp each face rectangle to the image, crop it into its own file and print
the resulting face records as JSON. Faces whose crop fails are logged and left
out; the rest keep their input order.

Faces come from --faces, --faces-file, or --detect.

Examples:
  faceblur crop --image photo.jpg --faces '[{"x":10,"y":20,"width":80,"height":80}]'

  # Detect first, then crop into ./faces as webp
  faceblur crop --image photo.jpg --detect --format webp --out ./faces > faces.json`,
	RunE: runCrop,
}

func init() {
	rootCmd.AddCommand(cropCmd)

	cropCmd.Flags().String("image", "", "Input image path or URL (required)")
	cropCmd.Flags().String("faces", "", "Face rectangles as a JSON array")
	cropCmd.Flags().String("faces-file", "", "File holding the face rectangles JSON array")
	cropCmd.Flags().Bool("detect", false, "Locate faces with the configured vision backend")
	cropCmd.Flags().String("out", "", "Output directory for crops (default from config)")
	cropCmd.Flags().Int("quality", 0, "JPEG/WebP quality 1-100 (default from config)")
	cropCmd.Flags().String("format", "", "Crop format: jpg|png|webp (default from config)")
	cropCmd.Flags().Bool("lossless", false, "Lossless WebP crops")
	cropCmd.Flags().Bool("no-progress", false, "Hide the progress bar")
	cropCmd.MarkFlagRequired("image")
	cropCmd.MarkFlagsMutuallyExclusive("faces", "faces-file", "detect")
}

func runCrop(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	src := mustGetString(cmd, "image")

	if out := mustGetString(cmd, "out"); out != "" {
		cfg.Crop.OutputDir = out
	}
	if q := mustGetInt(cmd, "quality"); q != 0 {
		cfg.Crop.Quality = q
	}
	if f := mustGetString(cmd, "format"); f != "" {
		cfg.Crop.Format = f
	}
	if mustGetBool(cmd, "lossless") {
		cfg.Crop.Lossless = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := utils.EnsureDir(cfg.Crop.OutputDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	p := processing.NewProcessor()
	asset, err := probeSource(ctx, p, src)
	if err != nil {
		return err
	}

	var faceData string
	switch {
	case mustGetString(cmd, "faces") != "":
		faceData = mustGetString(cmd, "faces")
	case mustGetString(cmd, "faces-file") != "":
		data, err := os.ReadFile(mustGetString(cmd, "faces-file"))
		if err != nil {
			return fmt.Errorf("failed to read faces file: %w", err)
		}
		faceData = string(data)
	case mustGetBool(cmd, "detect"):
		img, _, err := loadSource(ctx, p, src)
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
		if faceData, err = detectFaces(ctx, detector, imgB64, asset.Dimensions()); err != nil {
			return err
		}
	}

	opts := []cropper.Option{
		cropper.WithConfig(cfg.CropPolicy()),
		cropper.WithLogger(logger),
	}
	if n := len(cropper.ParseFaceData(faceData)); n > 0 && !mustGetBool(cmd, "no-progress") {
		bar := progressbar.NewOptions(n,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Cropping faces"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionClearOnFinish(),
		)
		opts = append(opts, cropper.WithProgress(func(done, total int) {
			_ = bar.Set(done)
		}))
	}

	session, err := faceblur.Open(ctx, cropper.New(p, opts...), asset, faceData)
	if err != nil {
		return err
	}

	faces := session.Faces()
	uris := make([]string, 0, len(faces))
	for _, f := range faces {
		uris = append(uris, f.Crop.URI)
	}
	logger.Info("faces cropped",
		"image", src,
		"faces", len(faces),
		"output_dir", cfg.Crop.OutputDir,
		"size", utils.FormatFileSize(utils.TotalFileSize(uris)))

	if faces == nil {
		faces = []types.FaceRecord{}
	}
	return writeJSON(cmd.OutOrStdout(), faces)
}
