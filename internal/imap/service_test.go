package imap

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/black-desk/gmail-tui/internal/models"
)

func TestThreadContents(t *testing.T) {
	date := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	members := []*models.EmailMetadata{
		{UID: 1, Subject: "Plan", InternalDate: date},
		{UID: 2, Subject: "Re: Plan", InternalDate: date.Add(time.Hour)},
	}
	bodies := map[uint32][]byte{
		1: []byte("Content-Type: text/plain\r\n\r\nfirst body\r\n"),
		2: []byte("Content-Type: text/html\r\n\r\n<p>second body</p>\r\n"),
	}

	contents := threadContents(members, func(uid uint32) ([]byte, error) {
		return bodies[uid], nil
	})

	require.Len(t, contents, 2)
	assert.Equal(t, "Plan", contents[0]["subject"])
	assert.Contains(t, contents[0]["body_text"], "first body")
	assert.Contains(t, contents[1]["body_html"], "second body")
}

func TestThreadContentsOrderPreserved(t *testing.T) {
	members := []*models.EmailMetadata{{UID: 3}, {UID: 1}, {UID: 2}}

	contents := threadContents(members, func(uint32) ([]byte, error) {
		return []byte("Content-Type: text/plain\r\n\r\nx\r\n"), nil
	})

	require.Len(t, contents, 3)
	assert.Equal(t, uint32(3), contents[0]["uid"])
	assert.Equal(t, uint32(1), contents[1]["uid"])
	assert.Equal(t, uint32(2), contents[2]["uid"])
}

func TestThreadContentsFetchFailureKeepsMetadata(t *testing.T) {
	members := []*models.EmailMetadata{{UID: 1, Subject: "Plan"}}

	contents := threadContents(members, func(uint32) ([]byte, error) {
		return nil, errors.New("connection reset")
	})

	require.Len(t, contents, 1)
	assert.Equal(t, "Plan", contents[0]["subject"])
	assert.NotContains(t, contents[0], "body_text")
	assert.NotContains(t, contents[0], "body_html")
}
