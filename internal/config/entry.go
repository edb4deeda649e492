package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

const (
	entryDecodeFailureTemplateConstant = "failed to decode configuration entry: %w"
	mapstructureTagNameConstant        = "mapstructure"

	// DefaultFinishTag prefixes finish commit messages when no tag is configured.
	DefaultFinishTag = "Finishes"
	// DefaultTracker is used when no tracker kind is configured.
	DefaultTracker = "pivotal_tracker"
)

// Key names a configuration value.
type Key string

// Configuration keys, shared by files and environment variables.
const (
	KeyProjectName   Key = Key("project_name")
	KeyTracker       Key = Key("tracker")
	KeyAPIKey        Key = Key("api_key")
	KeyProjectID     Key = Key("project_id")
	KeyTrackerDomain Key = Key("tracker_domain")
	KeyUsername      Key = Key("username")
	KeyExtraQuery    Key = Key("extra_query")
	KeyFinishTag     Key = Key("finish_tag")
)

// EntryKeys lists the keys stored in a configuration entry, in resolution order.
var EntryKeys = []Key{KeyTracker, KeyAPIKey, KeyProjectID, KeyTrackerDomain, KeyUsername, KeyExtraQuery, KeyFinishTag}

// Entry holds the tracker settings of one project.
type Entry struct {
	Tracker       string `mapstructure:"tracker" yaml:"tracker,omitempty"`
	APIKey        string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	ProjectID     string `mapstructure:"project_id" yaml:"project_id,omitempty"`
	TrackerDomain string `mapstructure:"tracker_domain" yaml:"tracker_domain,omitempty"`
	Username      string `mapstructure:"username" yaml:"username,omitempty"`
	ExtraQuery    string `mapstructure:"extra_query" yaml:"extra_query,omitempty"`
	FinishTag     string `mapstructure:"finish_tag" yaml:"finish_tag,omitempty"`
}

// Value returns the entry value stored under key.
func (entry Entry) Value(key Key) string {
	switch key {
	case KeyTracker:
		return entry.Tracker
	case KeyAPIKey:
		return entry.APIKey
	case KeyProjectID:
		return entry.ProjectID
	case KeyTrackerDomain:
		return entry.TrackerDomain
	case KeyUsername:
		return entry.Username
	case KeyExtraQuery:
		return entry.ExtraQuery
	case KeyFinishTag:
		return entry.FinishTag
	default:
		return ""
	}
}

// With returns a copy of the entry with key set to value.
func (entry Entry) With(key Key, value string) Entry {
	switch key {
	case KeyTracker:
		entry.Tracker = value
	case KeyAPIKey:
		entry.APIKey = value
	case KeyProjectID:
		entry.ProjectID = value
	case KeyTrackerDomain:
		entry.TrackerDomain = value
	case KeyUsername:
		entry.Username = value
	case KeyExtraQuery:
		entry.ExtraQuery = value
	case KeyFinishTag:
		entry.FinishTag = value
	}
	return entry
}

// IsEmpty reports whether neither an api key nor a project id is present.
func (entry Entry) IsEmpty() bool {
	return len(entry.APIKey) == 0 && len(entry.ProjectID) == 0
}

// decodeEntry converts a loosely typed YAML mapping into an Entry.
// Numeric values such as project ids become strings.
func decodeEntry(rawValues map[string]any) (Entry, error) {
	entry := Entry{}
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          mapstructureTagNameConstant,
		Result:           &entry,
	})
	if decoderError != nil {
		return Entry{}, fmt.Errorf(entryDecodeFailureTemplateConstant, decoderError)
	}
	if decodeError := decoder.Decode(rawValues); decodeError != nil {
		return Entry{}, fmt.Errorf(entryDecodeFailureTemplateConstant, decodeError)
	}
	return entry, nil
}
