package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/triggerz/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPlay_DefaultScenarioGolden(t *testing.T) {
	out, err := execute(t, "play")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "play_default", []byte(out))
}

func TestPlay_Stats(t *testing.T) {
	var buf bytes.Buffer
	stats, err := Play(config.DefaultScenario(), &buf, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(8), stats.Opened)
	assert.Equal(t, int64(1), stats.Released)
	assert.Equal(t, int64(0), stats.Pending())
}

func TestPlay_ScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	content := `
name: release-on-five
policy: independent
start: [1]
cancel: [9]
release_on: [5]
events:
  - {at: 100ms, value: 1}
  - {at: 200ms, value: 1}
  - {at: 300ms, value: 5}
complete_at: 400ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	out, err := execute(t, "play", path)
	require.NoError(t, err)

	assert.Equal(t, 2, bytes.Count([]byte(out), []byte("t=300ms trigger OnNext(())")))
	assert.Contains(t, out, "t=400ms trigger OnCompleted()")
	assert.Contains(t, out, "windows opened=2 released=2 cancelled=0 preempted=0 discarded=0")
}

func TestPlay_PolicyOverride(t *testing.T) {
	out, err := execute(t, "play", "--policy", "discard-if-started")
	require.NoError(t, err)
	assert.Contains(t, out, "discarded=")
	assert.NotContains(t, out, "discarded=0")

	_, err = execute(t, "play", "--policy", "sometimes")
	assert.Error(t, err)
}

func TestPlay_MissingFile(t *testing.T) {
	_, err := execute(t, "play", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
