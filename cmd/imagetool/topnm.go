package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thakan25/cups-filters/cupsimage"
)

var topnmCmd = &cobra.Command{
	Use:   "topnm <file>",
	Short: "Decode an image and write it as PGM or PPM",
	Args:  cobra.ExactArgs(1),
	RunE:  runToPNM,
}

func init() {
	topnmCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	topnmCmd.Flags().Bool("gray", false, "Force grayscale output")
	topnmCmd.Flags().Int("saturation", 100, "Color saturation percent")
	topnmCmd.Flags().Int("hue", 0, "Hue rotation in degrees")
	topnmCmd.Flags().String("primary", "rgb", "Primary colorspace")
	topnmCmd.Flags().String("secondary", "white", "Grayscale-fallback colorspace")
	topnmCmd.Flags().BoolP("verbose", "v", false, "Log decode diagnostics")
	rootCmd.AddCommand(topnmCmd)
}

func runToPNM(cmd *cobra.Command, args []string) error {
	opts, err := decodeOptions(cmd)
	if err != nil {
		return err
	}

	// PNM only expresses luminance and RGB
	if gray, _ := cmd.Flags().GetBool("gray"); gray {
		opts.Primary = cupsimage.ColorspaceWhite
	}
	opts.Secondary = cupsimage.ColorspaceWhite
	if opts.Primary != cupsimage.ColorspaceWhite && opts.Primary != cupsimage.ColorspaceRGB {
		opts.Primary = cupsimage.ColorspaceRGB
	}

	img, err := cupsimage.Open(args[0], opts)
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		fp, err := os.Create(path)
		if err != nil {
			return err
		}
		defer fp.Close()
		out = fp
	}

	return writePNM(out, img)
}

// writePNM writes img to out as PGM (single channel) or PPM (RGB).
func writePNM(out io.Writer, img *cupsimage.Image) error {
	w := bufio.NewWriter(out)

	format := "P6"
	if img.Depth() == 1 {
		format = "P5"
	}
	fmt.Fprintf(w, "%s\n%d %d\n255\n", format, img.XSize, img.YSize)

	for y := 0; y < img.YSize; y++ {
		row := img.GetRow(y)
		if row == nil {
			row = make([]byte, img.XSize*img.Depth())
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Flush()
}
