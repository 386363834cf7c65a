package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const abilityYAML = `
- id: ab-1
  name: Find user
  tactic: discovery
  technique:
    attack_id: T1033
    name: System Owner/User Discovery
  executors:
    linux:
      command: whoami
`

const adversaryYAML = `
id: adv-1
name: Hunter
description: Finds users
phases:
  1: [ab-1]
`

const factsYAML = `
- name: hosts
  facts:
    - {property: host.name, value: dc01}
    - {property: host.name, value: ws02}
`

// workspace holds a database path and a set of valid data documents.
type workspace struct {
	db          string
	abilities   string
	adversaries string
	facts       string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	w := workspace{
		db:          filepath.Join(dir, "armory.db"),
		abilities:   filepath.Join(dir, "abilities"),
		adversaries: filepath.Join(dir, "adversaries"),
		facts:       filepath.Join(dir, "facts.yml"),
	}
	writeDoc(t, filepath.Join(w.abilities, "discovery.yml"), abilityYAML)
	writeDoc(t, filepath.Join(w.adversaries, "hunter.yml"), adversaryYAML)
	writeDoc(t, w.facts, factsYAML)
	return w
}

func (w workspace) dataArgs() []string {
	return []string{"--abilities", w.abilities, "--adversaries", w.adversaries, "--facts", w.facts}
}

func (w workspace) reload(t *testing.T) {
	t.Helper()
	_, err := execute(t, append([]string{"reload", "--db", w.db}, w.dataArgs()...)...)
	require.NoError(t, err)
}

func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestReload_Text(t *testing.T) {
	w := newWorkspace(t)

	out, err := execute(t, append([]string{"reload", "--db", w.db}, w.dataArgs()...)...)
	require.NoError(t, err)
	assert.Equal(t, "✓ Reloaded "+w.db+": 1 abilities, 1 adversaries, 1 sources, 2 facts, 1 planners\n", out)
}

func TestReload_JSON(t *testing.T) {
	w := newWorkspace(t)

	out, err := execute(t, append([]string{"reload", "--db", w.db, "--format", "json"}, w.dataArgs()...)...)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	summary, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, w.db, summary["database"])
	assert.Equal(t, float64(1), summary["abilities"])
	assert.Equal(t, float64(2), summary["facts"])
}

func TestReload_MalformedDocument(t *testing.T) {
	w := newWorkspace(t)
	writeDoc(t, filepath.Join(w.abilities, "zz-broken.yml"), "id: ab-2\nname: Broken\n")

	out, err := execute(t, append([]string{"reload", "--db", w.db}, w.dataArgs()...)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E007]")
	assert.Contains(t, out, "zz-broken.yml")
}

func TestReload_ConfigFile(t *testing.T) {
	w := newWorkspace(t)
	configPath := filepath.Join(t.TempDir(), "armory.yml")
	writeDoc(t, configPath, `
db:
  path: `+w.db+`
data:
  abilities: `+w.abilities+`
  adversaries: `+w.adversaries+`
  facts: ""
planner:
  name: ""
`)

	out, err := execute(t, "reload", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 abilities, 1 adversaries, 0 sources, 0 facts, 0 planners")
}

func TestReload_FlagsOverrideConfigFile(t *testing.T) {
	w := newWorkspace(t)
	other := filepath.Join(t.TempDir(), "other.db")
	configPath := filepath.Join(t.TempDir(), "armory.yml")
	writeDoc(t, configPath, "db:\n  path: "+other+"\ndata:\n  abilities: /nonexistent\n")

	out, err := execute(t, "reload", "--config", configPath, "--db", w.db, "--abilities", w.abilities, "--adversaries", "", "--facts", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Reloaded "+w.db+": 1 abilities")

	_, statErr := os.Stat(other)
	assert.True(t, os.IsNotExist(statErr), "config db path should not be opened")
}

func TestReload_MissingConfigFile(t *testing.T) {
	out, err := execute(t, "reload", "--config", filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]")
}

func TestExplode_AdversaryJSON(t *testing.T) {
	w := newWorkspace(t)
	w.reload(t)

	out, err := execute(t, "explode", "adversary", "--db", w.db, "--format", "json")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	advs, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, advs, 1)

	adv := advs[0].(map[string]any)
	assert.Equal(t, "hunter", adv["name"])
	phases := adv["phases"].(map[string]any)
	require.Len(t, phases["1"], 1)
}

func TestExplode_TextWithFilters(t *testing.T) {
	w := newWorkspace(t)
	w.reload(t)

	out, err := execute(t, "explode", "ability", "--db", w.db, "-w", "ability_id=ab-1", "-w", "platform=linux")
	require.NoError(t, err)
	assert.Contains(t, out, `"ability_id": "ab-1"`)
	assert.Contains(t, out, `"test": "d2hvYW1p"`)

	out, err = execute(t, "explode", "ability", "--db", w.db, "--where", "platform=darwin")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestExplode_ChainAlias(t *testing.T) {
	w := newWorkspace(t)
	w.reload(t)

	out, err := execute(t, "explode", "chain", "--db", w.db)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestExplode_StoredRowsForMappingKinds(t *testing.T) {
	w := newWorkspace(t)
	w.reload(t)

	out, err := execute(t, "explode", "technique", "--db", w.db)
	require.NoError(t, err)
	assert.Contains(t, out, `"attack_id": "T1033"`)
}

func TestExplode_Errors(t *testing.T) {
	w := newWorkspace(t)
	w.reload(t)

	tests := []struct {
		name     string
		args     []string
		wantExit int
		wantCode string
	}{
		{"unknown kind", []string{"explode", "widget"}, ExitCommandError, "E007"},
		{"filter without value", []string{"explode", "agent", "--where", "paw"}, ExitCommandError, "E007"},
		{"unknown field", []string{"explode", "agent", "--where", "bogus=1"}, ExitFailure, "E007"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(tt.args, "--db", w.db)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.wantCode+"]")
		})
	}
}

func TestDelete(t *testing.T) {
	w := newWorkspace(t)
	w.reload(t)

	out, err := execute(t, "delete", "planner", "1", "--db", w.db)
	require.NoError(t, err)
	assert.Equal(t, "Removed 1 from core_planner\n", out)

	out, err = execute(t, "explode", "planner", "--db", w.db)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestDelete_Errors(t *testing.T) {
	w := newWorkspace(t)
	w.reload(t)

	out, err := execute(t, "delete", "group", "4", "--db", w.db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")

	out, err = execute(t, "delete", "agent", "x", "--db", w.db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestValidate_Valid(t *testing.T) {
	w := newWorkspace(t)

	out, err := execute(t, append([]string{"validate"}, w.dataArgs()...)...)
	require.NoError(t, err)
	assert.Equal(t, "✓ All documents valid (3 checked)\n", out)
}

func TestValidate_ReportsEveryBrokenFile(t *testing.T) {
	w := newWorkspace(t)
	writeDoc(t, filepath.Join(w.abilities, "missing-executors.yml"), `
id: ab-2
name: Broken
tactic: discovery
technique: {attack_id: T1082, name: System Information Discovery}
`)
	writeDoc(t, filepath.Join(w.adversaries, "syntax.yml"), "id: [unclosed\n")

	out, err := execute(t, append([]string{"validate", "--format", "json"}, w.dataArgs()...)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMalformed, resp.Error.Code)

	details, ok := resp.Error.Details.([]any)
	require.True(t, ok)
	require.Len(t, details, 2)
	assert.Contains(t, details[0], "missing-executors.yml")
	assert.Contains(t, details[1], "syntax.yml")
}

func TestValidate_DoesNotTouchStore(t *testing.T) {
	w := newWorkspace(t)

	_, err := execute(t, append([]string{"validate", "--db", w.db}, w.dataArgs()...)...)
	require.NoError(t, err)

	_, statErr := os.Stat(w.db)
	assert.True(t, os.IsNotExist(statErr))
}

func TestParseCriteria(t *testing.T) {
	criteria, err := ParseCriteria([]string{"paw=abc", "phase=2", "deactivated=null", "name=a=b"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), criteria["phase"])
	assert.Equal(t, "abc", criteria["paw"])
	assert.Nil(t, criteria["deactivated"])
	assert.Contains(t, criteria, "deactivated")
	assert.Equal(t, "a=b", criteria["name"])

	criteria, err = ParseCriteria(nil)
	require.NoError(t, err)
	assert.Nil(t, criteria)

	_, err = ParseCriteria([]string{"paw=a", "paw=b"})
	assert.Error(t, err)

	_, err = ParseCriteria([]string{"=x"})
	assert.Error(t, err)
}
