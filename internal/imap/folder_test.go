package imap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListLine(t *testing.T) {
	t.Run("quoted delimiter and name", func(t *testing.T) {
		info, ok := ParseListLine(`(\HasNoChildren) "/" "INBOX"`)
		require.True(t, ok)
		assert.Equal(t, []string{`\HasNoChildren`}, info.Flags)
		assert.Equal(t, "/", info.Delimiter)
		assert.Equal(t, "INBOX", info.Name)
	})

	t.Run("multiple flags", func(t *testing.T) {
		info, ok := ParseListLine(`(\HasChildren \Noselect) "/" "[Gmail]"`)
		require.True(t, ok)
		assert.Equal(t, []string{`\HasChildren`, `\Noselect`}, info.Flags)
		assert.Equal(t, "[Gmail]", info.Name)
	})

	t.Run("unquoted name", func(t *testing.T) {
		info, ok := ParseListLine(`() "." INBOX.Sent`)
		require.True(t, ok)
		assert.Empty(t, info.Flags)
		assert.Equal(t, ".", info.Delimiter)
		assert.Equal(t, "INBOX.Sent", info.Name)
	})

	t.Run("NIL delimiter", func(t *testing.T) {
		info, ok := ParseListLine(`(\HasNoChildren) NIL "Flat"`)
		require.True(t, ok)
		assert.Equal(t, "", info.Delimiter)
		assert.Equal(t, "Flat", info.Name)
	})

	t.Run("quoted name with spaces", func(t *testing.T) {
		info, ok := ParseListLine(`(\HasNoChildren) "/" "My Drafts"`)
		require.True(t, ok)
		assert.Equal(t, "My Drafts", info.Name)
	})

	t.Run("malformed lines rejected", func(t *testing.T) {
		for _, line := range []string{
			"",
			"INBOX",
			`(\HasNoChildren`,
			`(\HasNoChildren) "/"`,
			`(\HasNoChildren) "unterminated`,
		} {
			_, ok := ParseListLine(line)
			assert.False(t, ok, "line %q should not parse", line)
		}
	})
}

func TestParseFolderLines(t *testing.T) {
	got := ParseFolderLines([]string{
		`(\HasNoChildren) "/" "INBOX"`,
		`garbage`,
		`(\HasChildren) "/" "Work"`,
	})

	require.Len(t, got, 2)
	assert.Equal(t, "INBOX", got[0].Name)
	assert.Equal(t, "Work", got[1].Name)
}

func TestParseFolderLinesAllMalformed(t *testing.T) {
	assert.Empty(t, ParseFolderLines([]string{"x", "y"}))
}

func TestParseListLineFlagSet(t *testing.T) {
	info, ok := ParseListLine(`(\Marked \HasNoChildren) "/" "INBOX"`)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{`\Marked`, `\HasNoChildren`}, info.Flags)
}
