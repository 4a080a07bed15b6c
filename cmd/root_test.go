package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"crosswalk", "sectors"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "rampr-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestCrosswalkCommand_HasSubcommands(t *testing.T) {
	cmds := crosswalkCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"build", "validate", "load", "status"}
	for _, name := range expected {
		assert.True(t, names[name], "crosswalk should have subcommand %q", name)
	}
}

func TestCrosswalkBuildCommand_Flags(t *testing.T) {
	for _, flagName := range []string{
		"mapping", "national", "regional", "codes", "output",
		"totals-output", "weight-on", "missing-sectors", "impute-config",
		"encoding", "pad-missing",
	} {
		flag := crosswalkBuildCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "crosswalk build should have --%s flag", flagName)
	}

	pad := crosswalkBuildCmd.Flags().Lookup("pad-missing")
	require.NotNil(t, pad)
	assert.Equal(t, "false", pad.DefValue)
}

func TestCrosswalkValidateCommand_Flags(t *testing.T) {
	flag := crosswalkValidateCmd.Flags().Lookup("tolerance")
	require.NotNil(t, flag, "crosswalk validate should have --tolerance flag")
	assert.Equal(t, "1e-09", flag.DefValue)

	codes := crosswalkValidateCmd.Flags().Lookup("codes")
	require.NotNil(t, codes, "crosswalk validate should have --codes flag")
}

func TestCrosswalkLoadCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"bridge", "totals", "batch-size", "replace"} {
		flag := crosswalkLoadCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "crosswalk load should have --%s flag", flagName)
	}

	batch := crosswalkLoadCmd.Flags().Lookup("batch-size")
	require.NotNil(t, batch)
	assert.Equal(t, "0", batch.DefValue)
}

func TestCrosswalkStatusCommand_Flags(t *testing.T) {
	flag := crosswalkStatusCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "crosswalk status should have --limit flag")
	assert.Equal(t, "20", flag.DefValue)
}

func TestSectorsCommand_HasSubcommands(t *testing.T) {
	cmds := sectorsCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}
	assert.True(t, names["verify"], "sectors should have subcommand verify")
}
