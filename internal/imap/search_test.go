package imap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/black-desk/gmail-tui/internal/models"
)

func TestSearchFiltersEmpty(t *testing.T) {
	assert.True(t, SearchFilters{}.Empty())
	assert.False(t, SearchFilters{From: "alice"}.Empty())
	assert.False(t, SearchFilters{Body: "patch"}.Empty())
}

func TestSearchFiltersCriteria(t *testing.T) {
	c := SearchFilters{From: "alice", Subject: "hello", Body: "ignored"}.criteria()

	assert.Equal(t, []string{"alice"}, c.Header.Values("From"))
	assert.Equal(t, []string{"hello"}, c.Header.Values("Subject"))
	// Body runs client-side, never as server criteria.
	assert.Empty(t, c.Header.Values("Body"))
	assert.Empty(t, c.Body)
}

func TestFilterByBody(t *testing.T) {
	emails := []*models.EmailMetadata{
		{UID: 1},
		{UID: 2},
		{UID: 3},
	}
	bodies := map[uint32][]byte{
		1: []byte("Content-Type: text/plain\r\n\r\nThe PATCH is attached\r\n"),
		2: []byte("Content-Type: text/plain\r\n\r\nnothing relevant\r\n"),
		3: []byte("Content-Type: text/html\r\n\r\n<p>a patch inside html</p>\r\n"),
	}

	matched, err := FilterByBody(emails, "patch", func(e *models.EmailMetadata) ([]byte, error) {
		return bodies[e.UID], nil
	})
	require.NoError(t, err)

	uids := make([]uint32, 0, len(matched))
	for _, e := range matched {
		uids = append(uids, e.UID)
	}
	assert.Equal(t, []uint32{1, 3}, uids)
}

func TestFilterByBodyFetchFailureDropsEmail(t *testing.T) {
	emails := []*models.EmailMetadata{{UID: 1}, {UID: 2}}

	matched, err := FilterByBody(emails, "x", func(e *models.EmailMetadata) ([]byte, error) {
		if e.UID == 1 {
			return nil, errors.New("connection reset")
		}
		return []byte("Content-Type: text/plain\r\n\r\nxyz\r\n"), nil
	})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, uint32(2), matched[0].UID)
}

func TestFilterByBodyPatternIsLiteral(t *testing.T) {
	emails := []*models.EmailMetadata{{UID: 1}}

	matched, err := FilterByBody(emails, "a.b", func(*models.EmailMetadata) ([]byte, error) {
		return []byte("Content-Type: text/plain\r\n\r\naXb\r\n"), nil
	})
	require.NoError(t, err)
	assert.Empty(t, matched)
}
