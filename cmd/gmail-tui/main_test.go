package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/black-desk/gmail-tui/internal/render"
)

func TestListingFormat(t *testing.T) {
	t.Run("accepts structured formats", func(t *testing.T) {
		for token, expected := range map[string]render.Format{
			"json": render.FormatJSON,
			"yaml": render.FormatYAML,
			"toml": render.FormatTOML,
		} {
			format, err := listingFormat(token)
			require.NoError(t, err)
			assert.Equal(t, expected, format)
		}
	})

	t.Run("rejects raw before any network use", func(t *testing.T) {
		_, err := listingFormat("raw")
		assert.ErrorIs(t, err, render.ErrInvalidFormat)
	})

	t.Run("rejects unknown tokens", func(t *testing.T) {
		_, err := listingFormat("xml")
		assert.ErrorIs(t, err, render.ErrInvalidFormat)
	})
}
