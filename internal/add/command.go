package add

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/temirov/storybranch/internal/dependencies"
	"github.com/temirov/storybranch/internal/prompt"
)

const (
	commandUseConstant              = "add"
	commandShortDescriptionConstant = "Add a new story branch configuration"
	commandLongDescriptionConstant  = "add asks for the tracker kind, project name and credentials, stores them as a named entry in ~/.story_branch.yml and writes a .story_branch.yml pointer in the current directory."
)

// CommandBuilder assembles the add command. Nil collaborators fall back to defaults.
type CommandBuilder struct {
	LoggerProvider    dependencies.LoggerProvider
	WorkingDirectory  string
	FileStoreProvider dependencies.FileStoreProvider
	Prompter          prompt.Prompter
}

// Build constructs the add command.
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

	service, serviceError := NewService(ServiceDependencies{Logger: logger, Store: store, Prompter: prompter, Output: output})
	if serviceError != nil {
		return serviceError
	}

	_, executeError := service.Execute(filepath.Base(workingDirectory))
	return executeError
}
