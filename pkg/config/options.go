package config

import "github.com/CompassSecurity/binstrings/pkg/strscan"

// ScanOptions are the resolved settings of one scan invocation.
type ScanOptions struct {
	MinLength       uint64
	Format          string
	Output          string
	MaxSize         string
	ExtractArchives bool
}

// DefaultScanOptions returns the options used when neither flags nor config set anything.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		MinLength: strscan.DefaultMinLength,
		Format:    "text",
		MaxSize:   "0",
	}
}

// ScanOptionsFromViper resolves the scan options using Viper's priority handling.
func ScanOptionsFromViper() ScanOptions {
	return ScanOptions{
		MinLength:       GetUint64("scan.min_length"),
		Format:          GetString("scan.format"),
		Output:          GetString("scan.output"),
		MaxSize:         GetString("scan.max_size"),
		ExtractArchives: GetBool("scan.extract_archives"),
	}
}
