package session

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/temirov/storybranch/internal/config"
	"github.com/temirov/storybranch/internal/tracker"
)

const (
	// ConfigurationNotFoundMessage is printed when no source supplies an api key or a project id.
	ConfigurationNotFoundMessage = "Configuration not found. Run story_branch add to configure this project or story_branch migrate to convert an old configuration.\n"
	// InvalidTrackerConfigurationMessage is printed when the tracker lacks required credentials.
	InvalidTrackerConfigurationMessage = "Invalid tracker configuration. Check the api key, project id, tracker domain and username.\n"
	// NoStoryOnBranchMessage is printed when the current branch name does not end with a story id.
	NoStoryOnBranchMessage = "Your current branch name doesn't contain a story id.\n"

	resolverMissingMessageConstant       = "configuration resolver not configured"
	trackerFactoryMissingMessageConstant = "tracker factory not configured"
	trackerCreationErrorTemplateConstant = "unable to construct tracker: %w"
	configurationResolvedLogConstant     = "configuration resolved"
	configurationMissingLogConstant      = "configuration not found"
	trackerInvalidLogConstant            = "tracker configuration invalid"
	logFieldProjectNameConstant          = "project_name"
	logFieldTrackerConstant              = "tracker"
	logFieldSourcesConstant              = "sources"
	sourceDescriptionTemplateConstant    = "%s=%s"
)

var (
	// ErrResolverNotConfigured indicates the Loader has no configuration resolver.
	ErrResolverNotConfigured = errors.New(resolverMissingMessageConstant)
	// ErrTrackerFactoryNotConfigured indicates the Loader cannot build a tracker.
	ErrTrackerFactoryNotConfigured = errors.New(trackerFactoryMissingMessageConstant)
)

// ConfigurationResolver resolves the configuration of the current project.
type ConfigurationResolver interface {
	Resolve() (config.Resolution, error)
}

// Loader resolves configuration and trackers for a command.
type Loader struct {
	Resolver       ConfigurationResolver
	TrackerFactory func(entry config.Entry) (tracker.Tracker, error)
	Logger         *zap.Logger
	Output         io.Writer
}

// LoadConfiguration resolves the project configuration. It returns false after printing
// ConfigurationNotFoundMessage when nothing is configured.
func (loader Loader) LoadConfiguration() (config.Resolution, bool, error) {
	if loader.Resolver == nil {
		return config.Resolution{}, false, ErrResolverNotConfigured
	}

	resolution, resolveError := loader.Resolver.Resolve()
	if errors.Is(resolveError, config.ErrConfigurationNotFound) {
		loader.logger().Info(configurationMissingLogConstant)
		return config.Resolution{}, false, loader.print(ConfigurationNotFoundMessage)
	}
	if resolveError != nil {
		return config.Resolution{}, false, resolveError
	}

	loader.logger().Debug(
		configurationResolvedLogConstant,
		zap.String(logFieldProjectNameConstant, resolution.ProjectName),
		zap.String(logFieldTrackerConstant, resolution.Entry.Tracker),
		zap.Strings(logFieldSourcesConstant, describeSources(resolution.Sources)),
	)
	return resolution, true, nil
}

// LoadTracker resolves the configuration and builds its tracker. It returns false after printing
// a message when nothing is configured or the tracker credentials are incomplete.
func (loader Loader) LoadTracker() (config.Resolution, tracker.Tracker, bool, error) {
	if loader.TrackerFactory == nil {
		return config.Resolution{}, nil, false, ErrTrackerFactoryNotConfigured
	}

	resolution, configured, configurationError := loader.LoadConfiguration()
	if configurationError != nil || !configured {
		return config.Resolution{}, nil, false, configurationError
	}

	storyTracker, trackerError := loader.TrackerFactory(resolution.Entry)
	if trackerError != nil {
		return config.Resolution{}, nil, false, fmt.Errorf(trackerCreationErrorTemplateConstant, trackerError)
	}
	if !storyTracker.Valid() {
		loader.logger().Info(trackerInvalidLogConstant, zap.String(logFieldTrackerConstant, resolution.Entry.Tracker))
		return config.Resolution{}, nil, false, loader.print(InvalidTrackerConfigurationMessage)
	}
	return resolution, storyTracker, true, nil
}

func (loader Loader) logger() *zap.Logger {
	if loader.Logger == nil {
		return zap.NewNop()
	}
	return loader.Logger
}

func (loader Loader) print(message string) error {
	if loader.Output == nil {
		return nil
	}
	_, writeError := io.WriteString(loader.Output, message)
	return writeError
}

func describeSources(sources map[config.Key]string) []string {
	descriptions := make([]string, 0, len(sources))
	for key, sourceName := range sources {
		descriptions = append(descriptions, fmt.Sprintf(sourceDescriptionTemplateConstant, key, sourceName))
	}
	sort.Strings(descriptions)
	return descriptions
}
