package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/menta2k/faceblur/internal/utils"
	"github.com/menta2k/faceblur/pkg/orientation"
	"github.com/menta2k/faceblur/pkg/processing"
	"github.com/menta2k/faceblur/pkg/types"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the image with blurred faces as shown in a view",
	Long: `Contain-fit the image into a view of the given size, blur every face that
is not hidden and outline each overlay. Selected faces are outlined in gold.
With --tilt the result is rotated the way a device held at that tilt shows it.

Example:
  faceblur preview --image photo.jpg --faces-file faces.json --view 600x600 --out preview.png`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().String("image", "", "Source image path or URL (required)")
	previewCmd.Flags().String("faces-file", "", "Face records written by the crop command (required)")
	previewCmd.Flags().String("view", "", "View size as WxH (required)")
	previewCmd.Flags().String("out", "", "Output file (default <image>_preview.<ext> next to the crops)")
	previewCmd.Flags().Int("quality", 92, "Preview quality for jpg/webp")
	previewCmd.Flags().Bool("show-hidden", false, "Outline hidden faces too")
	previewCmd.Flags().String("tilt", "", "Device tilt as BETA,GAMMA radians; rotates the preview to match")
	previewCmd.MarkFlagRequired("image")
	previewCmd.MarkFlagRequired("faces-file")
	previewCmd.MarkFlagRequired("view")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	src := mustGetString(cmd, "image")

	view, err := parseSize(mustGetString(cmd, "view"))
	if err != nil {
		return err
	}
	faces, err := readFaces(mustGetString(cmd, "faces-file"))
	if err != nil {
		return err
	}

	p := processing.NewProcessor()
	img, _, err := loadSource(ctx, p, src)
	if err != nil {
		return err
	}

	opts := processing.DefaultPreviewOptions()
	opts.BlurSigma = cfg.Preview.BlurSigma
	opts.ShowHidden = cfg.Preview.ShowHidden || mustGetBool(cmd, "show-hidden")

	preview, err := p.RenderPreview(img, view, faces, opts)
	if err != nil {
		return err
	}

	if tilt := mustGetString(cmd, "tilt"); tilt != "" {
		sample, err := parsePoint(tilt)
		if err != nil {
			return fmt.Errorf("invalid tilt: %w", err)
		}
		rotation := orientation.Classify(&types.Tilt{Beta: sample.X, Gamma: sample.Y})
		logger.Debug("preview orientation", "degrees", rotation)
		preview = processing.Rotate(preview, rotation)
	}

	out := mustGetString(cmd, "out")
	if out == "" {
		out = utils.PreviewFilename(src, cfg.Crop.OutputDir, "")
	}
	if err := utils.EnsureDir(filepath.Dir(out)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := p.SaveImage(preview, out, utils.GetFileExtension(out), mustGetInt(cmd, "quality"), false); err != nil {
		return fmt.Errorf("failed to save preview: %w", err)
	}
	logger.Info("preview written", "path", out, "faces", len(faces))
	return nil
}
