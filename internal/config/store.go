package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	pathutils "github.com/temirov/storybranch/internal/utils/path"
)

const (
	// ConfigurationFileName is the name of both the home entries file and the project pointer file.
	ConfigurationFileName = ".story_branch.yml"
	// LegacyConfigurationFileName is the name of the flat pre-migration configuration file.
	LegacyConfigurationFileName = ".story_branch"

	configurationFilePermissions       = 0o600
	readFileFailureTemplateConstant    = "failed to read %s: %w"
	parseFileFailureTemplateConstant   = "failed to parse %s: %w"
	encodeFileFailureTemplateConstant  = "failed to encode %s: %w"
	writeFileFailureTemplateConstant   = "failed to write %s: %w"
	removeFileFailureTemplateConstant  = "failed to remove %s: %w"
	homePathFailureTemplateConstant    = "failed to locate home configuration: %w"
	homeEntryFailureTemplateConstant   = "invalid entry %q in %s: %w"
	projectNameRequiredMessageConstant = "project name must be provided"
	projectFileIsHomeMessageConstant   = "project configuration file is the home configuration file"
)

var (
	// ErrProjectNameRequired indicates an empty project name was supplied.
	ErrProjectNameRequired = errors.New(projectNameRequiredMessageConstant)
	// ErrProjectFileIsHomeFile indicates the working directory is the home directory, so a project
	// pointer would replace the home entries.
	ErrProjectFileIsHomeFile = errors.New(projectFileIsHomeMessageConstant)
)

// Paths locates the configuration files.
type Paths struct {
	HomeFile          string
	ProjectFile       string
	LegacyHomeFile    string
	LegacyProjectFile string
}

// DefaultPaths places home files in the user's home directory and project files in workingDirectory.
func DefaultPaths(homeExpander *pathutils.HomeExpander, workingDirectory string) (Paths, error) {
	homeFile, homeFileError := homeExpander.JoinHome(ConfigurationFileName)
	if homeFileError != nil {
		return Paths{}, fmt.Errorf(homePathFailureTemplateConstant, homeFileError)
	}
	legacyHomeFile, legacyHomeFileError := homeExpander.JoinHome(LegacyConfigurationFileName)
	if legacyHomeFileError != nil {
		return Paths{}, fmt.Errorf(homePathFailureTemplateConstant, legacyHomeFileError)
	}
	return Paths{
		HomeFile:          homeFile,
		ProjectFile:       filepath.Join(workingDirectory, ConfigurationFileName),
		LegacyHomeFile:    legacyHomeFile,
		LegacyProjectFile: filepath.Join(workingDirectory, LegacyConfigurationFileName),
	}, nil
}

// ProjectFileIsHomeFile reports whether the project pointer and the home entries share one file.
func (paths Paths) ProjectFileIsHomeFile() bool {
	if sameCleanPath(paths.ProjectFile, paths.HomeFile) {
		return true
	}
	projectInfo, projectStatError := os.Stat(paths.ProjectFile)
	if projectStatError != nil {
		return false
	}
	homeInfo, homeStatError := os.Stat(paths.HomeFile)
	if homeStatError != nil {
		return false
	}
	return os.SameFile(projectInfo, homeInfo)
}

func sameCleanPath(firstPath string, secondPath string) bool {
	firstAbsolute, firstError := filepath.Abs(firstPath)
	secondAbsolute, secondError := filepath.Abs(secondPath)
	if firstError != nil || secondError != nil {
		return filepath.Clean(firstPath) == filepath.Clean(secondPath)
	}
	return firstAbsolute == secondAbsolute
}

// ProjectFile is the content of the project pointer file.
type ProjectFile struct {
	ProjectName string
	Overrides   Entry
}

// FileStore reads and writes configuration files.
type FileStore struct {
	paths Paths
}

// NewFileStore constructs a FileStore for the provided paths.
func NewFileStore(paths Paths) *FileStore {
	return &FileStore{paths: paths}
}

// Paths returns the files managed by the store.
func (store *FileStore) Paths() Paths {
	return store.paths
}

// ReadHomeEntries returns every project entry of the home file. A missing file yields no entries.
func (store *FileStore) ReadHomeEntries() (map[string]Entry, error) {
	rawEntries := map[string]map[string]any{}
	if _, readError := readYAMLFile(store.paths.HomeFile, &rawEntries); readError != nil {
		return nil, readError
	}

	entries := make(map[string]Entry, len(rawEntries))
	for projectName, rawEntry := range rawEntries {
		entry, decodeError := decodeEntry(rawEntry)
		if decodeError != nil {
			return nil, fmt.Errorf(homeEntryFailureTemplateConstant, projectName, store.paths.HomeFile, decodeError)
		}
		entries[projectName] = entry
	}
	return entries, nil
}

// ReadHomeEntry returns the home entry stored under projectName.
func (store *FileStore) ReadHomeEntry(projectName string) (Entry, bool, error) {
	entries, entriesError := store.ReadHomeEntries()
	if entriesError != nil {
		return Entry{}, false, entriesError
	}
	entry, found := entries[projectName]
	return entry, found, nil
}

// WriteHomeEntry stores entry under projectName, preserving the other projects.
func (store *FileStore) WriteHomeEntry(projectName string, entry Entry) error {
	trimmedProjectName := strings.TrimSpace(projectName)
	if len(trimmedProjectName) == 0 {
		return ErrProjectNameRequired
	}
	entries, entriesError := store.ReadHomeEntries()
	if entriesError != nil {
		return entriesError
	}
	entries[trimmedProjectName] = entry
	return writeYAMLFile(store.paths.HomeFile, entries)
}

// ReadProjectFile reads the project pointer file.
func (store *FileStore) ReadProjectFile() (ProjectFile, bool, error) {
	return readFlatFile(store.paths.ProjectFile)
}

// WriteProjectPointer replaces the project pointer file with one naming projectName.
// It refuses to write when the pointer would overwrite the home entries.
func (store *FileStore) WriteProjectPointer(projectName string) error {
	trimmedProjectName := strings.TrimSpace(projectName)
	if len(trimmedProjectName) == 0 {
		return ErrProjectNameRequired
	}
	if store.paths.ProjectFileIsHomeFile() {
		return ErrProjectFileIsHomeFile
	}
	return writeYAMLFile(store.paths.ProjectFile, map[string]string{string(KeyProjectName): trimmedProjectName})
}

// ReadLegacyHomeFile reads the flat legacy file in the home directory.
func (store *FileStore) ReadLegacyHomeFile() (Entry, bool, error) {
	projectFile, found, readError := readFlatFile(store.paths.LegacyHomeFile)
	return projectFile.Overrides, found, readError
}

// ReadLegacyProjectFile reads the flat legacy file in the project directory.
func (store *FileStore) ReadLegacyProjectFile() (Entry, bool, error) {
	projectFile, found, readError := readFlatFile(store.paths.LegacyProjectFile)
	return projectFile.Overrides, found, readError
}

// RemoveLegacyHomeFile deletes the legacy home file. A missing file is not an error.
func (store *FileStore) RemoveLegacyHomeFile() error {
	removeError := os.Remove(store.paths.LegacyHomeFile)
	if removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
		return fmt.Errorf(removeFileFailureTemplateConstant, store.paths.LegacyHomeFile, removeError)
	}
	return nil
}

func readFlatFile(path string) (ProjectFile, bool, error) {
	rawValues := map[string]any{}
	found, readError := readYAMLFile(path, &rawValues)
	if readError != nil || !found {
		return ProjectFile{}, found, readError
	}

	overrides, decodeError := decodeEntry(rawValues)
	if decodeError != nil {
		return ProjectFile{}, true, fmt.Errorf(parseFileFailureTemplateConstant, path, decodeError)
	}

	projectName := ""
	if rawProjectName, hasProjectName := rawValues[string(KeyProjectName)]; hasProjectName && rawProjectName != nil {
		projectName = strings.TrimSpace(fmt.Sprint(rawProjectName))
	}
	return ProjectFile{ProjectName: projectName, Overrides: overrides}, true, nil
}

func readYAMLFile(path string, target any) (bool, error) {
	content, readError := os.ReadFile(path)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf(readFileFailureTemplateConstant, path, readError)
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return true, nil
	}
	if unmarshalError := yaml.Unmarshal(content, target); unmarshalError != nil {
		return true, fmt.Errorf(parseFileFailureTemplateConstant, path, unmarshalError)
	}
	return true, nil
}

func writeYAMLFile(path string, value any) error {
	var encoded bytes.Buffer
	encoder := yaml.NewEncoder(&encoded)
	encoder.SetIndent(2)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return fmt.Errorf(encodeFileFailureTemplateConstant, path, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(encodeFileFailureTemplateConstant, path, closeError)
	}

	if writeError := atomic.WriteFile(path, &encoded); writeError != nil {
		return fmt.Errorf(writeFileFailureTemplateConstant, path, writeError)
	}
	if chmodError := os.Chmod(path, configurationFilePermissions); chmodError != nil {
		return fmt.Errorf(writeFileFailureTemplateConstant, path, chmodError)
	}
	return nil
}
