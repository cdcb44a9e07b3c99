// Package docs renders the command tree as markdown pages plus an mkdocs.yml navigation.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/CompassSecurity/binstrings/pkg/format"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

const siteName = "binstrings"

// GenerateOptions contains options for documentation generation
type GenerateOptions struct {
	RootCmd     *cobra.Command
	OutputDir   string
	GithubPages bool
}

func getFileName(cmd *cobra.Command, level int) string {
	switch level {
	case 1:
		if cmd.GroupID != "" {
			return cmd.GroupID + ".md"
		}
		return cmd.Name() + ".md"
	default:
		return cmd.Name() + ".md"
	}
}

func displayName(cmd *cobra.Command, level int) string {
	titleCaser := cases.Title(language.Und, cases.NoLower)
	switch level {
	case 1:
		if cmd.GroupID != "" {
			return titleCaser.String(cmd.GroupID)
		}
		return titleCaser.String(cmd.Name())
	default:
		return titleCaser.String(cmd.Name())
	}
}

func linkHandler(githubPages bool) func(string) string {
	return func(s string) string {
		if s == siteName+".md" {
			return "/"
		}

		s = strings.TrimPrefix(s, siteName+"_")
		s = strings.TrimSuffix(s, ".md")
		s = strings.ReplaceAll(s, "_", "/")

		if githubPages {
			return "/" + siteName + "/" + s
		}

		return "/" + s
	}
}

func generateDocs(cmd *cobra.Command, dir string, level int, githubPages bool) error {
	var filename string

	if len(cmd.Commands()) > 0 {
		dir = filepath.Join(dir, cmd.Name())
		if err := os.MkdirAll(dir, format.DirUserGroupRead); err != nil {
			return err
		}
		filename = filepath.Join(dir, "index.md")
	} else {
		filename = filepath.Join(dir, getFileName(cmd, level))
	}

	// #nosec G304 - Creating docs markdown file below the chosen output directory
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := doc.GenMarkdownCustom(cmd, f, linkHandler(githubPages)); err != nil {
		return err
	}

	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() || c.IsAdditionalHelpTopicCommand() {
			continue
		}
		if err := generateDocs(c, dir, level+1, githubPages); err != nil {
			return err
		}
	}

	return nil
}

type NavEntry struct {
	Label    string
	FilePath string
	Children []*NavEntry
}

func buildNav(cmd *cobra.Command, level int, parentPath string) *NavEntry {
	entry := &NavEntry{
		Label: displayName(cmd, level),
	}

	if len(cmd.Commands()) > 0 {
		folder := filepath.Join(parentPath, cmd.Name())
		entry.FilePath = filepath.ToSlash(filepath.Join(folder, "index.md"))
		entry.Children = []*NavEntry{}
		for _, c := range cmd.Commands() {
			if !c.IsAvailableCommand() || c.IsAdditionalHelpTopicCommand() {
				continue
			}
			// Skip autocompletion and docs commands from nav menu
			if c.Name() == "completion" || c.Name() == "docs" {
				continue
			}
			entry.Children = append(entry.Children, buildNav(c, level+1, folder))
		}
	} else {
		entry.FilePath = filepath.ToSlash(filepath.Join(parentPath, getFileName(cmd, level)))
	}

	return entry
}

func convertNavToYaml(entries []*NavEntry) []map[string]interface{} {
	yamlList := []map[string]interface{}{}
	prefix := siteName + "/"
	for _, e := range entries {
		navPath := strings.TrimPrefix(e.FilePath, prefix)
		if len(e.Children) == 0 {
			navPath = strings.TrimSuffix(navPath, ".md")
			yamlList = append(yamlList, map[string]interface{}{
				e.Label: navPath,
			})
		} else {
			yamlList = append(yamlList, map[string]interface{}{
				e.Label: convertNavToYaml(e.Children),
			})
		}
	}
	return yamlList
}

func writeMkdocsYaml(rootCmd *cobra.Command, outputDir string, githubPages bool) error {
	rootEntry := buildNav(rootCmd, 0, "")
	nav := convertNavToYaml(rootEntry.Children)
	prefix := ""
	if githubPages {
		prefix = "/" + siteName
	}
	introEntry := map[string]interface{}{
		"Introduction": []map[string]interface{}{
			{"Overview": prefix + "/"},
		},
	}
	nav = append([]map[string]interface{}{introEntry}, nav...)

	mkdocs := map[string]interface{}{
		"site_name":        "Binstrings",
		"site_description": "Binstrings extracts null-terminated text strings from binary files for in-place patching",
		"docs_dir":         siteName,
		"site_dir":         "site",
		"theme": map[string]interface{}{
			"name": "material",
			"features": []string{
				"content.code.copy",
				"navigation.sections",
				"navigation.indexes",
				"search.highlight",
			},
		},
		"markdown_extensions": []interface{}{
			"pymdownx.superfences",
			"admonition",
			"toc",
		},
		"nav": nav,
	}

	yamlData, err := yaml.Marshal(mkdocs)
	if err != nil {
		return err
	}

	filename := filepath.Join(outputDir, "mkdocs.yml")
	// #nosec G306 - mkdocs.yml is a public documentation configuration file
	return os.WriteFile(filename, yamlData, format.FilePublicRead)
}

// Generate writes the markdown pages and mkdocs.yml to opts.OutputDir, replacing its previous content.
func Generate(opts GenerateOptions) error {
	if opts.RootCmd == nil {
		return fmt.Errorf("no root command given")
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "./cli-docs"
	}

	if opts.GithubPages {
		log.Info().Msg("Generating for GitHub Pages")
	}

	if _, err := os.Stat(outputDir); err == nil {
		log.Info().Str("folder", outputDir).Msg("Output directory exists, deleting...")
		if err := os.RemoveAll(outputDir); err != nil {
			return fmt.Errorf("delete existing output directory: %w", err)
		}
	}

	if err := os.MkdirAll(outputDir, format.DirUserGroupRead); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	opts.RootCmd.DisableAutoGenTag = true
	if err := generateDocs(opts.RootCmd, outputDir, 0, opts.GithubPages); err != nil {
		return fmt.Errorf("generate CLI docs: %w", err)
	}

	if err := writeMkdocsYaml(opts.RootCmd, outputDir, opts.GithubPages); err != nil {
		return fmt.Errorf("write mkdocs.yml: %w", err)
	}

	log.Info().Str("folder", outputDir).Msg("Markdown successfully generated")
	return nil
}
