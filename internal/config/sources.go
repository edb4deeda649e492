package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvironmentPrefix prefixes every configuration environment variable, e.g. PIVOTAL_API_KEY.
	EnvironmentPrefix = "PIVOTAL"

	// Source names reported by Resolver.
	SourceEnvironment       = "environment"
	SourceProjectFile       = "project file"
	SourceHomeEntry         = "home entry"
	SourceLegacyHomeFile    = "legacy home file"
	SourceLegacyProjectFile = "legacy project file"
	SourceDefault           = "default"
)

// Source answers lookups for configuration keys. Empty values count as absent.
type Source interface {
	Name() string
	Lookup(key Key) (string, bool)
}

// EnvironmentSource reads PIVOTAL_* environment variables.
type EnvironmentSource struct {
	viperInstance *viper.Viper
}

// NewEnvironmentSource binds the PIVOTAL environment prefix.
func NewEnvironmentSource() *EnvironmentSource {
	viperInstance := viper.New()
	viperInstance.SetEnvPrefix(EnvironmentPrefix)
	viperInstance.AutomaticEnv()
	return &EnvironmentSource{viperInstance: viperInstance}
}

// Name identifies the source.
func (source *EnvironmentSource) Name() string {
	return SourceEnvironment
}

// Lookup returns the trimmed value of PIVOTAL_<KEY>.
func (source *EnvironmentSource) Lookup(key Key) (string, bool) {
	value := strings.TrimSpace(source.viperInstance.GetString(string(key)))
	return value, len(value) > 0
}

// EntrySource exposes an Entry read from a file.
type EntrySource struct {
	name  string
	entry Entry
}

// NewEntrySource names an entry for provenance reporting.
func NewEntrySource(name string, entry Entry) EntrySource {
	return EntrySource{name: name, entry: entry}
}

// Name identifies the source.
func (source EntrySource) Name() string {
	return source.name
}

// Lookup returns the trimmed entry value for key.
func (source EntrySource) Lookup(key Key) (string, bool) {
	value := strings.TrimSpace(source.entry.Value(key))
	return value, len(value) > 0
}

// mergeSources takes every key from the first source that supplies it.
func mergeSources(sources []Source) (Entry, map[Key]string) {
	merged := Entry{}
	provenance := map[Key]string{}
	for _, key := range EntryKeys {
		for _, source := range sources {
			value, found := source.Lookup(key)
			if !found {
				continue
			}
			merged = merged.With(key, value)
			provenance[key] = source.Name()
			break
		}
	}
	return merged, provenance
}
