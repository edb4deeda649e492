package finish

import (
	"github.com/spf13/cobra"

	"github.com/temirov/storybranch/internal/config"
	"github.com/temirov/storybranch/internal/dependencies"
	"github.com/temirov/storybranch/internal/gitrepo"
	"github.com/temirov/storybranch/internal/prompt"
	"github.com/temirov/storybranch/internal/session"
)

const (
	commandUseConstant              = "finish"
	commandShortDescriptionConstant = "Creates a git commit message for the staged changes with a [Finishes] tag"
	commandLongDescriptionConstant  = "finish builds a commit message of the form \"[Finishes #<id>] <title>\" from the current branch name and commits the staged changes once confirmed. The tag is configurable through finish_tag."
)

// CommandBuilder assembles the finish command. Nil collaborators fall back to defaults.
type CommandBuilder struct {
	LoggerProvider               dependencies.LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	WorkingDirectory             string
	FileStoreProvider            dependencies.FileStoreProvider
	EnvironmentSource            config.Source
	Prompter                     prompt.Prompter
	HumanReadableLoggingProvider func() bool
}

// Build constructs the finish command.
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

	loader := session.Loader{
		Resolver: config.NewResolver(store, dependencies.ResolveEnvironmentSource(builder.EnvironmentSource)),
		Logger:   logger,
		Output:   output,
	}
	resolution, loaded, loadError := loader.LoadConfiguration()
	if loadError != nil || !loaded {
		return loadError
	}

	executor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.humanReadableLogging())
	if executorError != nil {
		return executorError
	}
	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor, workingDirectory)
	if managerError != nil {
		return managerError
	}

	prompter, releasePrompter := dependencies.ResolvePrompter(builder.Prompter, command.InOrStdin(), output)
	defer releasePrompter()

	service, serviceError := NewService(ServiceDependencies{
		Logger:            logger,
		RepositoryManager: repositoryManager,
		Prompter:          prompter,
		Output:            output,
	})
	if serviceError != nil {
		return serviceError
	}

	_, executeError := service.Execute(command.Context(), resolution.Entry.FinishTag)
	return executeError
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}
