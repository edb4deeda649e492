package migrate

import (
	"github.com/spf13/cobra"

	"github.com/temirov/storybranch/internal/config"
	"github.com/temirov/storybranch/internal/dependencies"
	"github.com/temirov/storybranch/internal/prompt"
)

const (
	commandUseConstant              = "migrate"
	commandShortDescriptionConstant = "Migrate old story branch configuration to the new format"
	commandLongDescriptionConstant  = "migrate reads the legacy .story_branch configuration (and PIVOTAL_* environment variables), stores it under a project name in ~/.story_branch.yml, points the current directory at it and removes ~/.story_branch."
)

// CommandBuilder assembles the migrate command. Nil collaborators fall back to defaults.
type CommandBuilder struct {
	LoggerProvider    dependencies.LoggerProvider
	WorkingDirectory  string
	FileStoreProvider dependencies.FileStoreProvider
	EnvironmentSource config.Source
	Prompter          prompt.Prompter
}

// Build constructs the migrate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := dependencies.ResolveLogger(builder.LoggerProvider)
	output := command.OutOrStdout()

	workingDirectory, workingDirectoryError := dependencies.ResolveWorkingDirectory(builder.WorkingDirectory)
	if workingDirectoryError != nil {
		return workingDirectoryError
	}
	store, storeError := dependencies.ResolveFileStore(builder.FileStoreProvider, workingDirectory)
	if storeError != nil {
		return storeError
	}

	prompter, releasePrompter := dependencies.ResolvePrompter(builder.Prompter, command.InOrStdin(), output)
	defer releasePrompter()

	service, serviceError := NewService(ServiceDependencies{
		Logger:   logger,
		Migrator: config.NewMigrator(store, dependencies.ResolveEnvironmentSource(builder.EnvironmentSource)),
		Prompter: prompter,
		Output:   output,
		HomeFile: store.Paths().HomeFile,
	})
	if serviceError != nil {
		return serviceError
	}

	_, executeError := service.Execute()
	return executeError
}
