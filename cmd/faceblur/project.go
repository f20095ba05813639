package main

import (
	"github.com/spf13/cobra"

	"github.com/menta2k/faceblur"
	"github.com/menta2k/faceblur/pkg/processing"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project face rectangles into a view",
	Long: `Print where each face overlay lands when the image is shown contain-fitted
and centered inside a view of the given size.

Example:
  faceblur project --image photo.jpg --faces-file faces.json --view 390x844`,
	RunE: runProject,
}

func init() {
	rootCmd.AddCommand(projectCmd)

	projectCmd.Flags().String("image", "", "Source image path or URL (required)")
	projectCmd.Flags().String("faces-file", "", "Face records written by the crop command (required)")
	projectCmd.Flags().String("view", "", "View size as WxH (required)")
	projectCmd.MarkFlagRequired("image")
	projectCmd.MarkFlagRequired("faces-file")
	projectCmd.MarkFlagRequired("view")
}

func openRecords(cmd *cobra.Command) (*faceblur.Session, error) {
	asset, err := probeSource(cmd.Context(), processing.NewProcessor(), mustGetString(cmd, "image"))
	if err != nil {
		return nil, err
	}
	faces, err := readFaces(mustGetString(cmd, "faces-file"))
	if err != nil {
		return nil, err
	}
	return faceblur.FromRecords(asset, faces)
}

func runProject(cmd *cobra.Command, args []string) error {
	view, err := parseSize(mustGetString(cmd, "view"))
	if err != nil {
		return err
	}
	session, err := openRecords(cmd)
	if err != nil {
		return err
	}

	overlays, err := session.Overlays(view)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), overlays)
}
