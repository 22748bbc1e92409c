// Package solve implements the `polytool solve` command: it reads a manifest
// of requested tools, resolves it against a registry catalog and prints the
// pinned versions or the failure derivation.
package solve

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/polytool/polytool/pkg/resolver"
	"github.com/polytool/polytool/pkg/resolver/input"
	"github.com/polytool/polytool/pkg/resolver/solve"
	"github.com/polytool/polytool/pkg/resolver/version"
)

// manifest is the on-disk list of requested tools and their constraints.
type manifest struct {
	Tools map[string]string `yaml:"tools"`
}

func NewSolveCommand() *cobra.Command {
	var manifestPath string
	var registryPath string
	var trace bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Resolve the manifest against a registry catalog",
		Long: `Resolve the tools requested in the manifest against a registry catalog.
The manifest lists tools with version constraints:

  tools:
    nodejs: ">=20"
    python: "3.12.1"

The registry is a JSON catalog of available versions and their dependencies.
On success the selected versions are printed one per line; on conflict the
derivation of the failure is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			requirements, err := loadManifest(manifestPath)
			if err != nil {
				return err
			}
			provider, err := loadRegistry(registryPath)
			if err != nil {
				return err
			}

			var options []solve.Option
			if trace {
				options = append(options, solve.WithTracer(resolver.LoggingTracer{Writer: cmd.ErrOrStderr()}))
			}
			s, err := solve.New(input.NewCachedProvider(provider), options...)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			solution, err := s.Solve(ctx, requirements)
			if err != nil {
				return err
			}
			for _, rv := range solution.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", rv.Package, rv.Version)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "polytool.yaml", "manifest file listing requested tools")
	cmd.Flags().StringVarP(&registryPath, "registry", "r", "registry.json", "registry catalog file")
	cmd.Flags().BoolVar(&trace, "trace", false, "trace decisions and conflicts to stderr")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "abort resolution after this duration")

	return cmd
}

func loadManifest(path string) (map[resolver.Identifier]version.Range, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if len(m.Tools) == 0 {
		return nil, fmt.Errorf("manifest %s requests no tools", path)
	}
	requirements := map[resolver.Identifier]version.Range{}
	for tool, constraint := range m.Tools {
		r, err := version.ParseRange(constraint)
		if err != nil {
			return nil, fmt.Errorf("manifest %s, tool %s: %w", path, tool, err)
		}
		requirements[resolver.Identifier(tool)] = r
	}
	return requirements, nil
}

func loadRegistry(path string) (resolver.Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	provider, err := input.LoadRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("parsing registry %s: %w", path, err)
	}
	return provider, nil
}
