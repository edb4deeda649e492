package config

import (
	"errors"
	"strings"
)

const configurationNotFoundMessageConstant = "configuration not found"

// ErrConfigurationNotFound indicates no source supplies an api key or a project id.
var ErrConfigurationNotFound = errors.New(configurationNotFoundMessageConstant)

// Resolution is the merged configuration of the current project.
type Resolution struct {
	ProjectName string
	Entry       Entry
	// Sources maps every resolved key to the name of the source that supplied it.
	Sources map[Key]string
}

// Resolver merges configuration sources in precedence order.
type Resolver struct {
	store       *FileStore
	environment Source
}

// NewResolver constructs a Resolver. A nil environment source disables environment lookups.
func NewResolver(store *FileStore, environment Source) *Resolver {
	return &Resolver{store: store, environment: environment}
}

// Sources returns the ordered sources consulted for the current project:
// environment, project file, home entry and legacy home file.
func (resolver *Resolver) Sources() ([]Source, string, error) {
	sources := []Source{}
	if resolver.environment != nil {
		sources = append(sources, resolver.environment)
	}

	projectFile, projectFileFound, projectFileError := resolver.store.ReadProjectFile()
	if projectFileError != nil {
		return nil, "", projectFileError
	}
	if projectFileFound {
		sources = append(sources, NewEntrySource(SourceProjectFile, projectFile.Overrides))
	}

	if len(projectFile.ProjectName) > 0 {
		homeEntry, homeEntryFound, homeEntryError := resolver.store.ReadHomeEntry(projectFile.ProjectName)
		if homeEntryError != nil {
			return nil, "", homeEntryError
		}
		if homeEntryFound {
			sources = append(sources, NewEntrySource(SourceHomeEntry, homeEntry))
		}
	}

	legacyHomeEntry, legacyHomeFound, legacyHomeError := resolver.store.ReadLegacyHomeFile()
	if legacyHomeError != nil {
		return nil, "", legacyHomeError
	}
	if legacyHomeFound {
		sources = append(sources, NewEntrySource(SourceLegacyHomeFile, legacyHomeEntry))
	}

	return sources, projectFile.ProjectName, nil
}

// Resolve merges every source and applies defaults for the tracker kind and finish tag.
func (resolver *Resolver) Resolve() (Resolution, error) {
	sources, projectName, sourcesError := resolver.Sources()
	if sourcesError != nil {
		return Resolution{}, sourcesError
	}

	defaults := NewEntrySource(SourceDefault, Entry{Tracker: DefaultTracker, FinishTag: DefaultFinishTag})
	merged, provenance := mergeSources(append(sources, defaults))
	if merged.IsEmpty() {
		return Resolution{}, ErrConfigurationNotFound
	}
	merged.Tracker = strings.ToLower(merged.Tracker)

	return Resolution{ProjectName: projectName, Entry: merged, Sources: provenance}, nil
}
