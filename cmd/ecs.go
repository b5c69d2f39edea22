package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"lookout/ecs"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

func newECSCmd() *cobra.Command {
	ecsCmd := &cobra.Command{
		Use:   "ecs",
		Short: "Elastic Common Schema tooling",
	}
	ecsCmd.AddCommand(newECSGenerateCmd())
	return ecsCmd
}

// newECSGenerateCmd creates the 'ecs generate' subcommand
func newECSGenerateCmd() *cobra.Command {
	var (
		input    string
		output   string
		prefixes []string
		opts     ecs.GenerateOptions
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the ECS field map from ecs_flat.yml",
		Long: `Read an ECS flat field definition (ecs_flat.yml from the ECS release)
and write the Go source of the field map used by the entity store
index templates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range []string{input, output} {
				if err := validateFilePath(p); err != nil {
					return fmt.Errorf("invalid path %q: %w", p, err)
				}
			}

			flat, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", input, err)
			}

			var s *spinner.Spinner
			if !quiet && !outputJSON {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
				s.Suffix = " Generating field map..."
				s.Start()
			}

			opts.Prefixes = prefixes
			src, err := ecs.Generate(flat, opts)

			if s != nil {
				s.Stop()
			}
			if err != nil {
				return fmt.Errorf("failed to generate field map: %w", err)
			}

			if err := os.WriteFile(output, src, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}

			if outputJSON {
				return outputAsJSON(map[string]any{
					"output":   output,
					"bytes":    len(src),
					"prefixes": prefixes,
				})
			}
			if !quiet {
				successColor.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s (%d bytes)\n", output, len(src))
				if len(prefixes) > 0 {
					infoColor.Fprintf(cmd.OutOrStdout(), "  Prefixes: %s\n", strings.Join(prefixes, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "ecs_flat.yml", "ECS flat YAML definition")
	cmd.Flags().StringVarP(&output, "output", "o", "ecs_field_map_gen.go", "Generated Go file")
	cmd.Flags().StringSliceVar(&prefixes, "prefix", nil, "Only keep fields under these names (repeatable)")
	cmd.Flags().StringVar(&opts.Version, "version", "", "ECS version recorded in the generated file")
	cmd.Flags().StringVar(&opts.Package, "package", "ecs", "Go package of the generated file")
	cmd.Flags().StringVar(&opts.VarName, "var", "ecsFieldMap", "Name of the generated variable")

	return cmd
}
