package migrate

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/storybranch/internal/config"
	"github.com/temirov/storybranch/internal/prompt"
)

const (
	// OldConfigurationNotFoundMessage is printed when there is nothing to migrate.
	OldConfigurationNotFoundMessage = "Old configuration not found.\nTrying to start from scratch? Use story_branch add\n"

	projectNameQuestionConstant        = "What should be this project's name?"
	projectNameRequiredMessageConstant = "A project name is required. Nothing was migrated.\n"
	migratedTemplateConstant           = "Configuration migrated to %s as %s.\n"
	homeDirectoryMessageConstant       = "The home directory cannot hold a project configuration. Run story_branch migrate from your project directory. Nothing was migrated.\n"
	legacyReadErrorTemplateConstant    = "unable to read old configuration: %w"
	migrationErrorTemplateConstant     = "unable to migrate configuration: %w"
	migratorMissingMessageConstant     = "configuration migrator not configured"
	prompterMissingMessageConstant     = "prompter not configured"
	nothingToMigrateLogConstant        = "old configuration not found"
	migrationAbortedLogConstant        = "migration aborted"
	migrationCompletedLogConstant      = "configuration migrated"
	logFieldProjectNameConstant        = "project_name"
	logFieldSourcesConstant            = "sources"
	sourceDescriptionTemplateConstant  = "%s=%s"
)

var (
	// ErrMigratorNotConfigured indicates the service has no migrator.
	ErrMigratorNotConfigured = errors.New(migratorMissingMessageConstant)
	// ErrPrompterNotConfigured indicates the service cannot ask for the project name.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)
)

// ConfigurationMigrator reads legacy configuration and stores it in the current format.
type ConfigurationMigrator interface {
	LegacyEntry() (config.Entry, map[config.Key]string, bool, error)
	Migrate(projectName string, entry config.Entry) error
}

// Prompter asks for the project name.
type Prompter interface {
	Ask(question string, defaultValue string) (string, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	Logger   *zap.Logger
	Migrator ConfigurationMigrator
	Prompter Prompter
	Output   io.Writer
	// HomeFile is reported to the user after a successful migration.
	HomeFile string
}

// Result describes the outcome of a migrate run.
type Result struct {
	ProjectName string
	Entry       config.Entry
	Migrated    bool
}

// Service migrates legacy configuration.
type Service struct {
	logger   *zap.Logger
	migrator ConfigurationMigrator
	prompter Prompter
	output   io.Writer
	homeFile string
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Migrator == nil {
		return nil, ErrMigratorNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	output := dependencies.Output
	if output == nil {
		output = io.Discard
	}
	return &Service{
		logger:   logger,
		migrator: dependencies.Migrator,
		prompter: dependencies.Prompter,
		output:   output,
		homeFile: dependencies.HomeFile,
	}, nil
}

// Execute migrates the legacy configuration under a project name chosen by the user.
// Nothing is written when no legacy configuration exists.
func (service *Service) Execute() (Result, error) {
	legacyEntry, sources, found, legacyError := service.migrator.LegacyEntry()
	if legacyError != nil {
		return Result{}, fmt.Errorf(legacyReadErrorTemplateConstant, legacyError)
	}
	if !found {
		service.logger.Info(nothingToMigrateLogConstant)
		return Result{}, service.print(OldConfigurationNotFoundMessage)
	}

	answer, askError := service.prompter.Ask(projectNameQuestionConstant, "")
	if askError != nil {
		if errors.Is(askError, prompt.ErrPromptAborted) {
			service.logger.Info(migrationAbortedLogConstant)
			return Result{}, nil
		}
		return Result{}, askError
	}
	projectName := strings.TrimSpace(answer)
	if len(projectName) == 0 {
		return Result{}, service.print(projectNameRequiredMessageConstant)
	}

	if migrationError := service.migrator.Migrate(projectName, legacyEntry); migrationError != nil {
		if errors.Is(migrationError, config.ErrProjectFileIsHomeFile) {
			return Result{}, service.print(homeDirectoryMessageConstant)
		}
		return Result{}, fmt.Errorf(migrationErrorTemplateConstant, migrationError)
	}
	service.logger.Info(
		migrationCompletedLogConstant,
		zap.String(logFieldProjectNameConstant, projectName),
		zap.Strings(logFieldSourcesConstant, describeSources(sources)),
	)
	return Result{ProjectName: projectName, Entry: legacyEntry, Migrated: true}, service.print(fmt.Sprintf(migratedTemplateConstant, service.homeFile, projectName))
}

func (service *Service) print(message string) error {
	_, writeError := io.WriteString(service.output, message)
	return writeError
}

func describeSources(sources map[config.Key]string) []string {
	descriptions := make([]string, 0, len(sources))
	for _, key := range config.EntryKeys {
		if sourceName, exists := sources[key]; exists {
			descriptions = append(descriptions, fmt.Sprintf(sourceDescriptionTemplateConstant, key, sourceName))
		}
	}
	return descriptions
}
