package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thakan25/cups-filters/cupsimage"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print image dimensions, colorspace and resolution",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().String("primary", "auto", "Primary colorspace (auto, rgb, cmyk, cmy, white, black)")
	infoCmd.Flags().String("secondary", "white", "Grayscale-fallback colorspace")
	infoCmd.Flags().BoolP("verbose", "v", false, "Log decode diagnostics")
	rootCmd.AddCommand(infoCmd)
}

func decodeOptions(cmd *cobra.Command) (*cupsimage.Options, error) {
	primaryStr, _ := cmd.Flags().GetString("primary")
	secondaryStr, _ := cmd.Flags().GetString("secondary")
	verbose, _ := cmd.Flags().GetBool("verbose")

	primary, err := cupsimage.ParseColorspace(primaryStr)
	if err != nil {
		return nil, err
	}
	secondary, err := cupsimage.ParseColorspace(secondaryStr)
	if err != nil {
		return nil, err
	}

	opts := cupsimage.DefaultOptions()
	opts.Primary = primary
	opts.Secondary = secondary

	if verbose {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	if saturation := cmd.Flags().Lookup("saturation"); saturation != nil {
		opts.Saturation, _ = cmd.Flags().GetInt("saturation")
	}
	if hue := cmd.Flags().Lookup("hue"); hue != nil {
		opts.Hue, _ = cmd.Flags().GetInt("hue")
	}

	return opts, nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	opts, err := decodeOptions(cmd)
	if err != nil {
		return err
	}

	img, err := cupsimage.Open(args[0], opts)
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}

	fmt.Printf("size:       %dx%d\n", img.XSize, img.YSize)
	fmt.Printf("colorspace: %s\n", img.Colorspace)
	fmt.Printf("depth:      %d bytes/pixel\n", img.Depth())
	fmt.Printf("resolution: %dx%d ppi\n", img.XPPI, img.YPPI)
	return nil
}
