package cli

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

const (
	versionCommandUseConstant              = "version"
	versionCommandShortDescriptionConstant = "story_branch gem version"
	versionOutputTemplateConstant          = "%s\n"
	versionPrefixConstant                  = "v"
	developmentVersionConstant             = "(devel)"
)

// Version is the release version, replaced at build time with -ldflags "-X".
var Version = "0.9.0"

// VersionCommandBuilder assembles the version command.
type VersionCommandBuilder struct {
	VersionResolver func(context.Context) string
}

// Build constructs the version command.
func (builder *VersionCommandBuilder) Build() (*cobra.Command, error) {
	return &cobra.Command{
		Use:           versionCommandUseConstant,
		Short:         versionCommandShortDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			resolver := builder.VersionResolver
			if resolver == nil {
				resolver = ResolveVersion
			}
			return printVersion(command.OutOrStdout(), resolver(command.Context()))
		},
	}, nil
}

// ResolveVersion prefers the module version recorded in the binary and falls back to Version.
func ResolveVersion(context.Context) string {
	if buildInfo, available := debug.ReadBuildInfo(); available {
		moduleVersion := strings.TrimSpace(buildInfo.Main.Version)
		if len(moduleVersion) > 0 && moduleVersion != developmentVersionConstant {
			return moduleVersion
		}
	}
	return Version
}

func printVersion(output io.Writer, version string) error {
	trimmedVersion := strings.TrimSpace(version)
	if !strings.HasPrefix(trimmedVersion, versionPrefixConstant) {
		trimmedVersion = versionPrefixConstant + trimmedVersion
	}
	_, writeError := fmt.Fprintf(output, versionOutputTemplateConstant, trimmedVersion)
	return writeError
}
