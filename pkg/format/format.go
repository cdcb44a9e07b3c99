// Package format holds small helpers shared across commands: file permissions and size formatting.
package format

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
)

const (
	// FileUserReadWrite is used for files only the invoking user should read, such as logs and reports.
	FileUserReadWrite os.FileMode = 0o600
	// FilePublicRead is used for generated documentation.
	FilePublicRead os.FileMode = 0o644
	// DirUserGroupRead is used for generated directories.
	DirUserGroupRead os.FileMode = 0o750
)

// IsDirectory reports whether path exists and is a directory.
func IsDirectory(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

// ParseSizeLimit parses a human readable size such as "500Mb". "0" and "" mean no limit.
// Format: https://pkg.go.dev/github.com/docker/go-units#FromHumanSize
func ParseSizeLimit(s string) (int64, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	size, err := units.FromHumanSize(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if size < 0 {
		return 0, fmt.Errorf("invalid size %q: must not be negative", s)
	}
	return size, nil
}

// HumanSize renders a byte count for log output.
func HumanSize(n int64) string {
	return units.HumanSize(float64(n))
}
