package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "armory", cmd.Use)
	assert.Contains(t, cmd.Long, "materialized views")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"reload", "explode", "delete", "validate"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	// Unset means db.path from config
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestReloadCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	reloadCmd, _, err := cmd.Find([]string{"reload"})
	require.NoError(t, err)

	for _, name := range []string{"schema", "abilities", "adversaries", "facts"} {
		assert.NotNil(t, reloadCmd.Flags().Lookup(name), name)
	}
}

func TestExplodeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	explodeCmd, _, err := cmd.Find([]string{"explode"})
	require.NoError(t, err)

	whereFlag := explodeCmd.Flags().Lookup("where")
	require.NotNil(t, whereFlag)
	assert.Equal(t, "w", whereFlag.Shorthand)
}

func TestValidateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	validateCmd, _, err := cmd.Find([]string{"validate"})
	require.NoError(t, err)

	assert.NotNil(t, validateCmd.Flags().Lookup("abilities"))
	assert.Nil(t, validateCmd.Flags().Lookup("schema"))
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "validate"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
