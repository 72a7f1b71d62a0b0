package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/poutine-maker/internal/config"
)

func TestPickCanvas(t *testing.T) {
	page, err := config.Parse([]byte(`{
	  "canvases": [
	    {"id": "a", "class": "poutine-maker-animation", "width": 10, "height": 10},
	    {"id": "b", "class": "poutine-maker-animation", "width": 10, "height": 10},
	    {"id": "c", "class": "other", "width": 10, "height": 10}
	  ]
	}`), ".json")
	require.NoError(t, err)

	c, err := pickCanvas(page, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", c.ID)

	_, err = pickCanvas(page, "")
	assert.Error(t, err, "ambiguous without --canvas")

	_, err = pickCanvas(page, "c")
	assert.Error(t, err, "not a poutine canvas")
}

func TestCommands(t *testing.T) {
	root := rootCmd()
	for _, name := range []string{"run", "snapshot"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
