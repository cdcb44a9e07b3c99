package flags

import (
	"github.com/CompassSecurity/binstrings/pkg/config"
	"github.com/spf13/cobra"
)

// AddScanFlags adds the flags controlling string extraction and output.
func AddScanFlags(cmd *cobra.Command, opts *config.ScanOptions) {
	defaults := config.DefaultScanOptions()
	cmd.Flags().Uint64VarP(&opts.MinLength, "min-length", "m", defaults.MinLength, "Minimum number of characters a string needs to be reported")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", defaults.Format, "Output format: text or json (newline delimited)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", defaults.Output, "Write records to this file instead of stdout")
	cmd.Flags().StringVarP(&opts.MaxSize, "max-size", "", defaults.MaxSize,
		"Skip inputs larger than this, 0 disables the limit. Format: https://pkg.go.dev/github.com/docker/go-units#FromHumanSize")
	cmd.Flags().BoolVarP(&opts.ExtractArchives, "extract-archives", "x", defaults.ExtractArchives, "Expand archives and scan every member separately")
}

// ScanFlagKeys maps scan flag names onto their configuration keys.
var ScanFlagKeys = map[string]string{
	"min-length":       "scan.min_length",
	"format":           "scan.format",
	"output":           "scan.output",
	"max-size":         "scan.max_size",
	"extract-archives": "scan.extract_archives",
}

// BindScanFlags binds the scan flags so that CLI flags > env > config file > defaults.
func BindScanFlags(cmd *cobra.Command) error {
	return config.AutoBindFlags(cmd, ScanFlagKeys)
}
