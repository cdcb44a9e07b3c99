package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Test getFileName logic for level handling and GroupID usage.
func TestGetFileName(t *testing.T) {
	cmdNoGroup := &cobra.Command{Use: "scan", Short: "scan"}
	cmdGroup := &cobra.Command{Use: "scan", GroupID: "extraction"}

	assert.Equal(t, "scan.md", getFileName(cmdNoGroup, 1))
	assert.Equal(t, "extraction.md", getFileName(cmdGroup, 1))
	assert.Equal(t, "scan.md", getFileName(cmdGroup, 2)) // level >1 ignores GroupID logic
}

// Test displayName title casing and GroupID preference.
func TestDisplayName(t *testing.T) {
	cmdNoGroup := &cobra.Command{Use: "docs"}
	cmdGroup := &cobra.Command{Use: "scan", GroupID: "string extraction"}

	assert.Equal(t, "Docs", displayName(cmdNoGroup, 1))
	assert.Equal(t, "String Extraction", displayName(cmdGroup, 1))
	assert.Equal(t, "Scan", displayName(cmdGroup, 2))
}

func TestLinkHandler(t *testing.T) {
	assert.Equal(t, "/", linkHandler(false)("binstrings.md"))
	assert.Equal(t, "/scan", linkHandler(false)("binstrings_scan.md"))
	assert.Equal(t, "/binstrings/scan", linkHandler(true)("binstrings_scan.md"))
}

// buildNav should create index.md for commands with children and .md file for leaves.
// It should also filter out 'completion' and 'docs' commands.
func TestBuildNav(t *testing.T) {
	root := &cobra.Command{Use: "binstrings"}
	parent := &cobra.Command{Use: "alpha"}
	leaf := &cobra.Command{Use: "scan", Run: func(cmd *cobra.Command, args []string) {}}
	completion := &cobra.Command{Use: "completion", Run: func(cmd *cobra.Command, args []string) {}}
	docs := &cobra.Command{Use: "docs", Run: func(cmd *cobra.Command, args []string) {}}
	parent.AddCommand(leaf)
	parent.AddCommand(completion)
	parent.AddCommand(docs)
	root.AddCommand(parent)

	entry := buildNav(root, 0, "")
	assert.Equal(t, "Binstrings", entry.Label)
	require.Len(t, entry.Children, 1)
	child := entry.Children[0]
	assert.Equal(t, "Alpha", child.Label)
	assert.Equal(t, "binstrings/alpha/index.md", child.FilePath)
	require.Len(t, child.Children, 1)
	grand := child.Children[0]
	assert.Equal(t, "Scan", grand.Label)
	assert.Equal(t, "binstrings/alpha/scan.md", grand.FilePath)
}

// convertNavToYaml should trim binstrings/ prefix and .md suffix.
func TestConvertNavToYaml(t *testing.T) {
	entries := []*NavEntry{
		{Label: "Alpha", FilePath: "binstrings/alpha/index.md", Children: []*NavEntry{}},
		{Label: "Beta", FilePath: "binstrings/beta/leaf.md", Children: []*NavEntry{}},
	}
	yamlList := convertNavToYaml(entries)
	require.Len(t, yamlList, 2)
	assert.Equal(t, "alpha/index", yamlList[0]["Alpha"])
	assert.Equal(t, "beta/leaf", yamlList[1]["Beta"])
}

func TestWriteMkdocsYaml(t *testing.T) {
	root := &cobra.Command{Use: "binstrings"}
	root.AddCommand(&cobra.Command{Use: "scan", Run: func(cmd *cobra.Command, args []string) {}})

	tmpDir := t.TempDir()
	require.NoError(t, writeMkdocsYaml(root, tmpDir, true))

	data, err := os.ReadFile(filepath.Join(tmpDir, "mkdocs.yml"))
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	assert.Equal(t, "Binstrings", parsed["site_name"])
	assert.Equal(t, "binstrings", parsed["docs_dir"])

	navAny, ok := parsed["nav"].([]interface{})
	require.True(t, ok)
	require.Len(t, navAny, 2)

	introMap := navAny[0].(map[string]interface{})
	introItems := introMap["Introduction"].([]interface{})
	assert.Equal(t, "/binstrings/", introItems[0].(map[string]interface{})["Overview"])

	scanMap := navAny[1].(map[string]interface{})
	assert.Equal(t, "scan", scanMap["Scan"])
}

func TestGenerate(t *testing.T) {
	root := &cobra.Command{Use: "binstrings", Short: "root"}
	root.AddCommand(&cobra.Command{Use: "scan", Short: "scan files", Run: func(cmd *cobra.Command, args []string) {}})

	outputDir := filepath.Join(t.TempDir(), "cli-docs")
	require.NoError(t, os.MkdirAll(outputDir, 0o750))
	stale := filepath.Join(outputDir, "stale.md")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o600))

	require.NoError(t, Generate(GenerateOptions{RootCmd: root, OutputDir: outputDir}))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))

	index, err := os.ReadFile(filepath.Join(outputDir, "binstrings", "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "binstrings")

	scanPage, err := os.ReadFile(filepath.Join(outputDir, "binstrings", "scan.md"))
	require.NoError(t, err)
	assert.Contains(t, string(scanPage), "scan files")

	_, err = os.Stat(filepath.Join(outputDir, "mkdocs.yml"))
	assert.NoError(t, err)
}

func TestGenerate_NoRoot(t *testing.T) {
	assert.Error(t, Generate(GenerateOptions{OutputDir: t.TempDir()}))
}
