// Package archive expands archives so their members can be scanned one by one.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/CompassSecurity/binstrings/pkg/format"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/rs/zerolog/log"
	"golift.io/xtractr"
)

// MaxDepth limits how deep nested archives are expanded.
const MaxDepth = 10

// sniffLength is the amount of data filetype inspects.
const sniffLength = 8192

// Member is a file to scan. Name is what shows up in reports, Path is where the bytes are.
type Member struct {
	Name string
	Path string
}

// Detect returns the file type of path judged by its first bytes, and whether it is an archive.
func Detect(path string) (types.Type, bool, error) {
	head, err := readHead(path)
	if err != nil {
		return filetype.Unknown, false, err
	}
	kind, _ := filetype.Match(head)
	return kind, filetype.IsArchive(head), nil
}

func readHead(path string) ([]byte, error) {
	// #nosec G304 - Reading the header of a user-provided input file
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}

// Expand returns the leaf members of the file at path. Files that are not archives, or
// that cannot be extracted, are returned as a single member. The returned cleanup func
// removes all extracted files and must be called once the members have been scanned.
func Expand(path string, name string) ([]Member, func(), error) {
	var tmpDirs []string
	cleanup := func() {
		for _, dir := range tmpDirs {
			_ = os.RemoveAll(dir)
		}
	}

	members, err := expand(path, name, 1, &tmpDirs)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return members, cleanup, nil
}

func expand(path string, name string, depth int, tmpDirs *[]string) ([]Member, error) {
	self := []Member{{Name: name, Path: path}}

	if depth > MaxDepth {
		log.Debug().Str("file", name).Int("recursionDepth", depth).Msg("Max archive recursion depth reached, scanning as plain file")
		return self, nil
	}

	kind, isArchive, err := Detect(path)
	if err != nil {
		return nil, fmt.Errorf("detect file type of %s: %w", name, err)
	}
	if !isArchive {
		return self, nil
	}

	workDir, err := os.MkdirTemp("", "binstrings-archive-")
	if err != nil {
		return nil, fmt.Errorf("create archive temp directory: %w", err)
	}
	*tmpDirs = append(*tmpDirs, workDir)

	// xtractr picks the decompressor from the file extension.
	archiveCopy := filepath.Join(workDir, "archive."+kind.Extension)
	if err := copyFile(path, archiveCopy); err != nil {
		return nil, fmt.Errorf("copy archive %s: %w", name, err)
	}

	outDir := filepath.Join(workDir, "out")
	x := &xtractr.XFile{
		FilePath:  archiveCopy,
		OutputDir: outDir,
		FileMode:  format.FileUserReadWrite,
		DirMode:   0o700,
	}

	_, files, _, err := xtractr.ExtractFile(x)
	if err != nil || files == nil {
		log.Debug().Err(err).Str("file", name).Str("type", kind.Extension).Msg("Unable to extract archive, scanning it as a plain file")
		return self, nil
	}
	sort.Strings(files)

	log.Trace().Str("file", name).Str("type", kind.Extension).Int("files", len(files)).Int("depth", depth).Msg("Extracted archive")

	var members []Member
	for _, fPath := range files {
		if format.IsDirectory(fPath) {
			continue
		}
		rel, err := filepath.Rel(outDir, fPath)
		if err != nil {
			rel = filepath.Base(fPath)
		}
		nested, err := expand(fPath, name+"!"+filepath.ToSlash(rel), depth+1, tmpDirs)
		if err != nil {
			return nil, err
		}
		members = append(members, nested...)
	}
	return members, nil
}

func copyFile(src, dst string) error {
	// #nosec G304 - Copying a user-provided input file into a private temp directory
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// #nosec G304 - Destination is inside a temp directory created by us
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, format.FileUserReadWrite)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
