package docs

import (
	"github.com/CompassSecurity/binstrings/pkg/docs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type DocsOptions struct {
	OutputDir   string
	GithubPages bool
}

func NewDocsCmd(root *cobra.Command) *cobra.Command {
	opts := DocsOptions{}
	docsCmd := &cobra.Command{
		Use:     "docs",
		Short:   "Generate CLI documentation",
		Long:    "Generate markdown pages for every command and an mkdocs.yml describing their navigation.",
		Example: "binstrings docs --output ./cli-docs",
		GroupID: "Helper",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			err := docs.Generate(docs.GenerateOptions{
				RootCmd:     root,
				OutputDir:   opts.OutputDir,
				GithubPages: opts.GithubPages,
			})
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to generate documentation")
			}
		},
	}

	docsCmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "./cli-docs", "Directory the documentation is written to (existing content is replaced)")
	docsCmd.Flags().BoolVarP(&opts.GithubPages, "github-pages", "g", false, "Prefix links for hosting on GitHub Pages")

	return docsCmd
}
