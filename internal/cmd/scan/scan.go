package scan

import (
	"fmt"
	"io"
	"os"

	"github.com/CompassSecurity/binstrings/internal/cmd/flags"
	"github.com/CompassSecurity/binstrings/pkg/archive"
	"github.com/CompassSecurity/binstrings/pkg/config"
	"github.com/CompassSecurity/binstrings/pkg/format"
	"github.com/CompassSecurity/binstrings/pkg/report"
	"github.com/CompassSecurity/binstrings/pkg/strscan"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var scanOptions = config.DefaultScanOptions()

func NewScanCmd() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan [flags] <file>...",
		Short: "Extract strings from binary files",
		Long: `Extract null-terminated ASCII and UTF-8 strings from binary files.

Every reported string is printed on its own line:

    <offset hex>  <byte length hex>  <characters>  <trailing nulls>  "<text>"

A string is only reported when it is terminated by a null byte and holds at least
--min-length characters. Printable ASCII, line feed and carriage return are accepted,
as are well-formed UTF-8 multi-byte characters. Any other byte discards the string
being built and scanning continues right after it.

The trailing null count is the number of null bytes after the terminator, i.e. the
padding available when patching the string in place.
`,
		Example: `
# Scan an executable with the default minimum length of 3 characters
binstrings scan ./game.exe

# Only report strings of at least 8 characters as newline delimited JSON
binstrings scan --min-length 8 --format json ./game.exe

# Scan all files of an archive, skipping inputs larger than 500 MB
binstrings scan --extract-archives --max-size 500MB ./firmware.zip
		`,
		Args:    cobra.MinimumNArgs(1),
		GroupID: "Scan",
		Run:     Scan,
	}

	flags.AddScanFlags(scanCmd, &scanOptions)

	return scanCmd
}

func Scan(cmd *cobra.Command, args []string) {
	if err := flags.BindScanFlags(cmd); err != nil {
		log.Fatal().Err(err).Msg("Failed to bind command flags to configuration keys")
	}

	opts := config.ScanOptionsFromViper()
	if err := Run(opts, args, cmd.OutOrStdout()); err != nil {
		log.Fatal().Err(err).Msg("Scan failed")
	}
}

// Run scans every input in order and writes the records to stdout, or to opts.Output if set.
func Run(opts config.ScanOptions, inputs []string, stdout io.Writer) error {
	if err := config.ValidateMinLength(opts.MinLength); err != nil {
		return err
	}
	if err := config.ValidateOutputPath(opts.Output, inputs); err != nil {
		return err
	}
	sizeLimit, err := format.ParseSizeLimit(opts.MaxSize)
	if err != nil {
		return err
	}

	out := stdout
	if opts.Output != "" {
		// #nosec G304 - User-provided output path via --output flag
		f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, format.FileUserReadWrite)
		if err != nil {
			return fmt.Errorf("open output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	writer, err := report.New(opts.Format, out, report.Options{
		ShowSource: len(inputs) > 1 || opts.ExtractArchives,
	})
	if err != nil {
		return err
	}

	var total strscan.Stats
	for _, input := range inputs {
		stats, err := scanInput(input, opts, sizeLimit, writer)
		addStats(&total, stats)
		if err != nil {
			_ = writer.Flush()
			return err
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("write records: %w", err)
	}

	log.Info().
		Int("inputs", len(inputs)).
		Uint64("strings", total.Accepted).
		Str("scanned", format.HumanSize(int64(total.BytesRead))).
		Msg("Scan finished")
	return nil
}

func scanInput(path string, opts config.ScanOptions, sizeLimit int64, writer report.Writer) (strscan.Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return strscan.Stats{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		log.Warn().Str("file", path).Msg("Skipping directory")
		return strscan.Stats{}, nil
	}
	if sizeLimit > 0 && info.Size() > sizeLimit {
		log.Warn().Str("file", path).Str("size", format.HumanSize(info.Size())).Str("limit", format.HumanSize(sizeLimit)).Msg("Skipping input larger than --max-size")
		return strscan.Stats{}, nil
	}

	members := []archive.Member{{Name: path, Path: path}}
	if opts.ExtractArchives {
		expanded, cleanup, err := archive.Expand(path, path)
		if err != nil {
			return strscan.Stats{}, err
		}
		defer cleanup()
		members = expanded
	} else if kind, isArchive, err := archive.Detect(path); err == nil {
		log.Debug().Str("file", path).Str("type", kind.Extension).Bool("archive", isArchive).Str("size", format.HumanSize(info.Size())).Msg("Scanning input")
	}

	var total strscan.Stats
	scanOpts := strscan.Options{MinLength: opts.MinLength}
	for _, m := range members {
		stats, err := strscan.ScanFile(m.Path, scanOpts, func(r strscan.Record) error {
			return writer.Write(report.Entry{Source: m.Name, Record: r})
		})
		addStats(&total, stats)
		if err != nil {
			return total, err
		}
		log.Debug().
			Str("file", m.Name).
			Uint64("bytes", stats.BytesRead).
			Uint64("accepted", stats.Accepted).
			Uint64("dropped", stats.Dropped).
			Uint64("abandoned", stats.Abandoned).
			Msg("Scanned file")
	}
	return total, nil
}

func addStats(total *strscan.Stats, s strscan.Stats) {
	total.BytesRead += s.BytesRead
	total.Accepted += s.Accepted
	total.Dropped += s.Dropped
	total.Abandoned += s.Abandoned
	total.Unterminated += s.Unterminated
}
