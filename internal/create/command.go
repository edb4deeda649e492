package create

import (
	"github.com/spf13/cobra"

	"github.com/temirov/storybranch/internal/config"
	"github.com/temirov/storybranch/internal/dependencies"
	"github.com/temirov/storybranch/internal/gitrepo"
	"github.com/temirov/storybranch/internal/prompt"
	"github.com/temirov/storybranch/internal/session"
)

const (
	commandUseConstant              = "create"
	commandShortDescriptionConstant = "Create branch from estimated stories in pivotal tracker"
	commandLongDescriptionConstant  = "create lists the workable stories of the configured tracker, proposes a branch name built from the chosen story title and id, and creates and checks out the branch unless a similar branch already exists."
)

// CommandBuilder assembles the create command. Nil collaborators fall back to defaults.
type CommandBuilder struct {
	LoggerProvider               dependencies.LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	WorkingDirectory             string
	FileStoreProvider            dependencies.FileStoreProvider
	EnvironmentSource            config.Source
	TrackerFactory               dependencies.TrackerFactory
	Prompter                     prompt.Prompter
	HumanReadableLoggingProvider func() bool
}

// Build constructs the create command.
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
		Resolver:       config.NewResolver(store, dependencies.ResolveEnvironmentSource(builder.EnvironmentSource)),
		TrackerFactory: dependencies.ResolveTrackerFactory(builder.TrackerFactory),
		Logger:         logger,
		Output:         output,
	}
	_, storyTracker, loaded, loadError := loader.LoadTracker()
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

	_, executeError := service.Execute(command.Context(), storyTracker)
	return executeError
}

func (builder *CommandBuilder) humanReadableLogging() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}
