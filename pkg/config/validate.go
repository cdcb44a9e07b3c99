package config

import (
	"fmt"
	"os"
)

// ValidateMinLength rejects lengths that would make every candidate reportable before it holds a character.
func ValidateMinLength(n uint64) error {
	if n < 1 {
		return fmt.Errorf("min-length must be at least 1, got %d", n)
	}
	return nil
}

// ValidateOutputPath rejects an output path that refers to one of the inputs,
// however it is spelled. The output is truncated before scanning starts.
func ValidateOutputPath(output string, inputs []string) error {
	if output == "" {
		return nil
	}
	outInfo, err := os.Stat(output)
	if err != nil {
		// a file that does not exist yet cannot be an input
		return nil
	}
	for _, in := range inputs {
		inInfo, err := os.Stat(in)
		if err != nil {
			continue
		}
		if os.SameFile(outInfo, inInfo) {
			return fmt.Errorf("output file %s is also the input %s", output, in)
		}
	}
	return nil
}
