package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/ui"
)

func TestSelectRendererPlain(t *testing.T) {
	r := selectRenderer(true)
	assert.IsType(t, &ui.PlainRenderer{}, r)
}

func TestHelpListsTopics(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"help", "topics"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "qr")
	assert.Contains(t, out.String(), "paths")
	assert.Contains(t, out.String(), "config")
}

func TestHelpRendersTopic(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"help", "qr"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "QR")
}
