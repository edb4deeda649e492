package config

import "strings"

// Migrator converts legacy flat configuration into a named home entry.
type Migrator struct {
	store       *FileStore
	environment Source
}

// NewMigrator constructs a Migrator. A nil environment source disables environment lookups.
func NewMigrator(store *FileStore, environment Source) *Migrator {
	return &Migrator{store: store, environment: environment}
}

// LegacyEntry merges the environment, the legacy project file and the legacy home file.
// The boolean is false when none of them supplies an api key or a project id.
func (migrator *Migrator) LegacyEntry() (Entry, map[Key]string, bool, error) {
	sources := []Source{}
	if migrator.environment != nil {
		sources = append(sources, migrator.environment)
	}

	legacyProjectEntry, legacyProjectFound, legacyProjectError := migrator.store.ReadLegacyProjectFile()
	if legacyProjectError != nil {
		return Entry{}, nil, false, legacyProjectError
	}
	if legacyProjectFound {
		sources = append(sources, NewEntrySource(SourceLegacyProjectFile, legacyProjectEntry))
	}

	legacyHomeEntry, legacyHomeFound, legacyHomeError := migrator.store.ReadLegacyHomeFile()
	if legacyHomeError != nil {
		return Entry{}, nil, false, legacyHomeError
	}
	if legacyHomeFound {
		sources = append(sources, NewEntrySource(SourceLegacyHomeFile, legacyHomeEntry))
	}

	entry, provenance := mergeSources(sources)
	if entry.IsEmpty() {
		return Entry{}, nil, false, nil
	}
	return entry, provenance, true, nil
}

// Migrate stores entry under projectName in the home file, points the project file at it and
// removes the legacy home file. The legacy project file is left in place. Nothing is written
// when the project directory is the home directory.
func (migrator *Migrator) Migrate(projectName string, entry Entry) error {
	trimmedProjectName := strings.TrimSpace(projectName)
	if len(trimmedProjectName) == 0 {
		return ErrProjectNameRequired
	}
	if migrator.store.Paths().ProjectFileIsHomeFile() {
		return ErrProjectFileIsHomeFile
	}
	if writeError := migrator.store.WriteHomeEntry(trimmedProjectName, entry); writeError != nil {
		return writeError
	}
	if pointerError := migrator.store.WriteProjectPointer(trimmedProjectName); pointerError != nil {
		return pointerError
	}
	return migrator.store.RemoveLegacyHomeFile()
}
