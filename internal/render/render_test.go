package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Run("accepts known tokens case-insensitively", func(t *testing.T) {
		for token, expected := range map[string]Format{
			"json": FormatJSON,
			"YAML": FormatYAML,
			"Toml": FormatTOML,
			"raw":  FormatRaw,
		} {
			format, err := ParseFormat(token)
			require.NoError(t, err, token)
			assert.Equal(t, expected, format, token)
		}
	})

	t.Run("rejects unknown tokens", func(t *testing.T) {
		_, err := ParseFormat("xml")
		assert.True(t, errors.Is(err, ErrInvalidFormat))
	})
}

func TestRender(t *testing.T) {
	record := map[string]any{"subject": "Hello", "uid": 7}

	t.Run("json is indented", func(t *testing.T) {
		out, err := FormatJSON.Render(record)
		require.NoError(t, err)
		assert.Contains(t, string(out), "\"subject\": \"Hello\"")
	})

	t.Run("yaml renders keys", func(t *testing.T) {
		out, err := FormatYAML.Render(record)
		require.NoError(t, err)
		assert.Contains(t, string(out), "subject: Hello")
	})

	t.Run("toml renders keys", func(t *testing.T) {
		out, err := FormatTOML.Render(record)
		require.NoError(t, err)
		assert.Contains(t, string(out), "subject = 'Hello'")
	})

	t.Run("raw passes bytes through", func(t *testing.T) {
		raw := []byte("From: a@x\r\n\r\nbody")
		out, err := FormatRaw.Render(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, out)
	})

	t.Run("raw rejects non-bytes", func(t *testing.T) {
		_, err := FormatRaw.Render(record)
		assert.Error(t, err)
	})
}

func TestRenderList(t *testing.T) {
	list := []map[string]any{{"uid": 1}, {"uid": 2}}

	t.Run("toml wraps the list in a table", func(t *testing.T) {
		out, err := FormatTOML.RenderList("emails", list)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(out), "[[emails]]"))
	})

	t.Run("json keeps the top-level array", func(t *testing.T) {
		out, err := FormatJSON.RenderList("emails", list)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(strings.TrimSpace(string(out)), "["))
	})
}
