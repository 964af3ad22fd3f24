package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// The server commands are deliberately argument-free. Anything trailing
// is almost always a typo, so it fails fast instead of being ignored.
func TestRunRejectsArguments(t *testing.T) {
	app := &cli.Command{
		Name:     "serveup",
		Flags:    globalFlags,
		Commands: RunCommands,
	}

	err := app.Run(context.Background(), []string{"serveup", "run", "extra"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "takes no arguments")
}

func TestSyncRejectsArguments(t *testing.T) {
	app := &cli.Command{
		Name:     "serveup",
		Flags:    globalFlags,
		Commands: RunCommands,
	}

	err := app.Run(context.Background(), []string{"serveup", "sync", "extra"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "takes no arguments")
}
