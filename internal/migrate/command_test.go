package migrate_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/storybranch/internal/config"
	"github.com/temirov/storybranch/internal/migrate"
	"github.com/temirov/storybranch/internal/testsupport"
)

const (
	legacyConfigurationContentConstant = "api_key: DUMMYVALUE\nproject_id: 213976\n"
	firstProjectNameConstant           = "my-test-project"
	secondProjectNameConstant          = "my-other-project"
)

type migrateFixture struct {
	rootDirectory    string
	workingDirectory string
	store            *config.FileStore
}

func newMigrateFixture(testInstance *testing.T, rootDirectory string, projectDirectoryName string) migrateFixture {
	testInstance.Helper()
	workingDirectory := filepath.Join(rootDirectory, projectDirectoryName)
	require.NoError(testInstance, os.MkdirAll(workingDirectory, 0o755))
	store, storeError := testsupport.FileStoreProvider(rootDirectory)(workingDirectory)
	require.NoError(testInstance, storeError)
	return migrateFixture{rootDirectory: rootDirectory, workingDirectory: workingDirectory, store: store}
}

func (fixture migrateFixture) run(testInstance *testing.T, environment testsupport.EnvironmentSourceStub, prompter *testsupport.PrompterStub) string {
	testInstance.Helper()
	builder := migrate.CommandBuilder{
		WorkingDirectory:  fixture.workingDirectory,
		FileStoreProvider: testsupport.FileStoreProvider(fixture.rootDirectory),
		EnvironmentSource: environment,
		Prompter:          prompter,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetArgs([]string{})
	require.NoError(testInstance, command.Execute())
	return outputBuffer.String()
}

func TestMigrateWithoutOldConfiguration(testInstance *testing.T) {
	fixture := newMigrateFixture(testInstance, testInstance.TempDir(), "project")
	prompter := &testsupport.PrompterStub{}

	output := fixture.run(testInstance, testsupport.EnvironmentSourceStub{config.KeyAPIKey: "", config.KeyProjectID: ""}, prompter)

	require.Equal(testInstance, "Old configuration not found.\nTrying to start from scratch? Use story_branch add\n", output)
	require.Empty(testInstance, prompter.Questions)
	for _, path := range []string{fixture.store.Paths().HomeFile, fixture.store.Paths().ProjectFile} {
		_, statError := os.Stat(path)
		require.ErrorIs(testInstance, statError, os.ErrNotExist)
	}
}

func TestMigrateLegacyHomeFile(testInstance *testing.T) {
	fixture := newMigrateFixture(testInstance, testInstance.TempDir(), "project")
	require.NoError(testInstance, os.WriteFile(fixture.store.Paths().LegacyHomeFile, []byte(legacyConfigurationContentConstant), 0o600))
	prompter := &testsupport.PrompterStub{Answers: []string{firstProjectNameConstant}}

	output := fixture.run(testInstance, testsupport.EnvironmentSourceStub{}, prompter)

	require.Equal(testInstance, []string{"What should be this project's name?"}, prompter.Questions)
	require.Equal(testInstance, "Configuration migrated to "+fixture.store.Paths().HomeFile+" as my-test-project.\n", output)

	entry, found, readError := fixture.store.ReadHomeEntry(firstProjectNameConstant)
	require.NoError(testInstance, readError)
	require.True(testInstance, found)
	require.Equal(testInstance, "DUMMYVALUE", entry.APIKey)
	require.Equal(testInstance, "213976", entry.ProjectID)

	_, statError := os.Stat(fixture.store.Paths().LegacyHomeFile)
	require.ErrorIs(testInstance, statError, os.ErrNotExist)
}

func TestMigrateEnvironmentVariables(testInstance *testing.T) {
	fixture := newMigrateFixture(testInstance, testInstance.TempDir(), "project")
	prompter := &testsupport.PrompterStub{Answers: []string{firstProjectNameConstant}}

	fixture.run(testInstance, testsupport.EnvironmentSourceStub{config.KeyAPIKey: "DUMMYKEY", config.KeyProjectID: "123456"}, prompter)

	entry, found, readError := fixture.store.ReadHomeEntry(firstProjectNameConstant)
	require.NoError(testInstance, readError)
	require.True(testInstance, found)
	require.Equal(testInstance, config.Entry{APIKey: "DUMMYKEY", ProjectID: "123456"}, entry)
}

func TestMigrateTwoProjectDirectories(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	firstFixture := newMigrateFixture(testInstance, rootDirectory, "first")
	secondFixture := newMigrateFixture(testInstance, rootDirectory, "second")

	require.NoError(testInstance, os.WriteFile(firstFixture.store.Paths().LegacyProjectFile, []byte(legacyConfigurationContentConstant), 0o600))
	firstFixture.run(testInstance, testsupport.EnvironmentSourceStub{}, &testsupport.PrompterStub{Answers: []string{firstProjectNameConstant}})

	require.NoError(testInstance, os.WriteFile(secondFixture.store.Paths().LegacyProjectFile, []byte("api_key: OTHERVALUE\nproject_id: 42\n"), 0o600))
	secondFixture.run(testInstance, testsupport.EnvironmentSourceStub{}, &testsupport.PrompterStub{Answers: []string{secondProjectNameConstant}})

	entries, readError := secondFixture.store.ReadHomeEntries()
	require.NoError(testInstance, readError)
	require.Equal(testInstance, map[string]config.Entry{
		firstProjectNameConstant:  {APIKey: "DUMMYVALUE", ProjectID: "213976"},
		secondProjectNameConstant: {APIKey: "OTHERVALUE", ProjectID: "42"},
	}, entries)

	firstPointer, _, firstPointerError := firstFixture.store.ReadProjectFile()
	require.NoError(testInstance, firstPointerError)
	require.Equal(testInstance, firstProjectNameConstant, firstPointer.ProjectName)

	secondPointer, _, secondPointerError := secondFixture.store.ReadProjectFile()
	require.NoError(testInstance, secondPointerError)
	require.Equal(testInstance, secondProjectNameConstant, secondPointer.ProjectName)
}
