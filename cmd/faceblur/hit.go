package main

import (
	"github.com/spf13/cobra"
)

var hitCmd = &cobra.Command{
	Use:   "hit",
	Short: "Resolve a tap in the view to a face",
	Long: `Report which face overlay, if any, contains the tapped point. With --select
or --toggle the faces file is updated for the face that was hit.

Examples:
  faceblur hit --image photo.jpg --faces-file faces.json --view 300x300 --tap 35,95

  # Hide the tapped face from blurring
  faceblur hit --image photo.jpg --faces-file faces.json --view 300x300 --tap 35,95 --toggle`,
	RunE: runHit,
}

func init() {
	rootCmd.AddCommand(hitCmd)

	hitCmd.Flags().String("image", "", "Source image path or URL (required)")
	hitCmd.Flags().String("faces-file", "", "Face records written by the crop command (required)")
	hitCmd.Flags().String("view", "", "View size as WxH (required)")
	hitCmd.Flags().String("tap", "", "Tapped point in view space as X,Y (required)")
	hitCmd.Flags().Bool("select", false, "Select the face that was hit")
	hitCmd.Flags().Bool("toggle", false, "Toggle the hidden flag of the face that was hit")
	hitCmd.MarkFlagRequired("image")
	hitCmd.MarkFlagRequired("faces-file")
	hitCmd.MarkFlagRequired("view")
	hitCmd.MarkFlagRequired("tap")
}

func runHit(cmd *cobra.Command, args []string) error {
	view, err := parseSize(mustGetString(cmd, "view"))
	if err != nil {
		return err
	}
	tap, err := parsePoint(mustGetString(cmd, "tap"))
	if err != nil {
		return err
	}
	session, err := openRecords(cmd)
	if err != nil {
		return err
	}

	hit, err := session.HitTest(tap, view)
	if err != nil {
		return err
	}

	doSelect, doToggle := mustGetBool(cmd, "select"), mustGetBool(cmd, "toggle")
	if hit.IsModifying && (doSelect || doToggle) {
		if doSelect {
			if err := session.Select(hit.ModifyIndex); err != nil {
				return err
			}
		}
		if doToggle {
			hidden, err := session.ToggleHidden(hit.ModifyIndex)
			if err != nil {
				return err
			}
			logger.Info("face visibility changed", "index", hit.ModifyIndex, "hidden", hidden)
		}
		if err := writeFaces(mustGetString(cmd, "faces-file"), session.Faces()); err != nil {
			return err
		}
	}

	return writeJSON(cmd.OutOrStdout(), hit)
}
