package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/storybranch/internal/config"
)

const (
	testHomeDirectoryNameConstant    = "home"
	testProjectDirectoryNameConstant = "project"
	testFilePermissionsConstant      = 0o600
)

var testEnvironmentVariableNames = []string{
	"PIVOTAL_API_KEY",
	"PIVOTAL_PROJECT_ID",
	"PIVOTAL_TRACKER",
	"PIVOTAL_TRACKER_DOMAIN",
	"PIVOTAL_USERNAME",
	"PIVOTAL_EXTRA_QUERY",
	"PIVOTAL_FINISH_TAG",
}

// clearTrackerEnvironment blanks every PIVOTAL_* variable for the duration of the test.
func clearTrackerEnvironment(testInstance *testing.T) {
	testInstance.Helper()
	for _, variableName := range testEnvironmentVariableNames {
		testInstance.Setenv(variableName, "")
	}
}

// newTestPaths lays out a home directory and a project directory beneath one temporary root.
func newTestPaths(testInstance *testing.T, rootDirectory string, projectDirectoryName string) config.Paths {
	testInstance.Helper()
	homeDirectory := filepath.Join(rootDirectory, testHomeDirectoryNameConstant)
	projectDirectory := filepath.Join(rootDirectory, projectDirectoryName)
	require.NoError(testInstance, os.MkdirAll(homeDirectory, 0o755))
	require.NoError(testInstance, os.MkdirAll(projectDirectory, 0o755))
	return config.Paths{
		HomeFile:          filepath.Join(homeDirectory, config.ConfigurationFileName),
		ProjectFile:       filepath.Join(projectDirectory, config.ConfigurationFileName),
		LegacyHomeFile:    filepath.Join(homeDirectory, config.LegacyConfigurationFileName),
		LegacyProjectFile: filepath.Join(projectDirectory, config.LegacyConfigurationFileName),
	}
}

func writeTestFile(testInstance *testing.T, path string, content string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(path, []byte(content), testFilePermissionsConstant))
}
