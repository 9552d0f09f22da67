package imap

import (
	"fmt"
	"io"
	"sort"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/black-desk/gmail-tui/internal/models"
)

// headerSection requests just the header block without marking the
// message seen.
var headerSection = &imap.BodySectionName{
	BodyPartName: imap.BodyPartName{Specifier: imap.HeaderSpecifier},
	Peek:         true,
}

// fetchItems is the metadata-only fetch set: everything needed to
// build EmailMetadata without downloading bodies. The header section
// backfills the threading headers ENVELOPE omits.
func fetchItems() []imap.FetchItem {
	return []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchInternalDate,
		imap.FetchRFC822Size,
		imap.FetchFlags,
		imap.FetchUid,
		headerSection.FetchItem(),
	}
}

// selectFolder selects a folder read-only and returns its status.
func selectFolder(c *client.Client, folder string) (*imap.MailboxStatus, error) {
	status, err := c.Select(folder, true)
	if err != nil {
		return nil, fmt.Errorf("failed to select folder %q: %w", folder, err)
	}
	return status, nil
}

// FetchMetadata fetches metadata for the newest messages in a folder,
// sorted by internal date descending and trimmed to limit. A limit of
// zero or less means no limit.
func FetchMetadata(c *client.Client, folder string, limit int) ([]*models.EmailMetadata, error) {
	status, err := selectFolder(c, folder)
	if err != nil {
		return nil, err
	}
	if status.Messages == 0 {
		return nil, nil
	}

	// Fetch a window of the highest sequence numbers; internal date
	// ordering is fixed up after the fetch since sequence order only
	// approximates arrival order.
	from := uint32(1)
	if limit > 0 && status.Messages > uint32(limit) {
		from = status.Messages - uint32(limit) + 1
	}
	seqSet := new(imap.SeqSet)
	seqSet.AddRange(from, status.Messages)

	emails, err := fetchRange(c, seqSet)
	if err != nil {
		return nil, err
	}

	sortByDateDesc(emails)
	if limit > 0 && len(emails) > limit {
		emails = emails[:limit]
	}
	return emails, nil
}

// FetchByUIDs fetches metadata for a specific UID set in the currently
// relevant folder.
func FetchByUIDs(c *client.Client, folder string, uids []uint32) ([]*models.EmailMetadata, error) {
	if _, err := selectFolder(c, folder); err != nil {
		return nil, err
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, fetchItems(), messages)
	}()

	var emails []*models.EmailMetadata
	for msg := range messages {
		emails = append(emails, FromEnvelope(msg, headerReader(msg)))
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return emails, nil
}

// FetchFullMessage downloads the complete raw message for a UID.
func FetchFullMessage(c *client.Client, folder string, uid uint32) ([]byte, error) {
	if _, err := selectFolder(c, folder); err != nil {
		return nil, err
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, []imap.FetchItem{section.FetchItem(), imap.FetchUid}, messages)
	}()

	var raw []byte
	for msg := range messages {
		if body := msg.GetBody(section); body != nil {
			data, err := io.ReadAll(body)
			if err != nil {
				continue
			}
			raw = data
		}
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch message %d: %w", uid, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("message %d: %w", uid, models.ErrNotFound)
	}
	return raw, nil
}

// FindUIDByMessageID searches a folder for the message carrying the
// given Message-ID (normalized, without angle brackets).
func FindUIDByMessageID(c *client.Client, folder, messageID string) (uint32, error) {
	if _, err := selectFolder(c, folder); err != nil {
		return 0, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header.Add("Message-Id", "<"+messageID+">")

	uids, err := c.UidSearch(criteria)
	if err != nil {
		return 0, fmt.Errorf("failed to search for message ID %s: %w", messageID, err)
	}
	if len(uids) == 0 {
		return 0, fmt.Errorf("message ID %s: %w", messageID, models.ErrNotFound)
	}
	return uids[0], nil
}

// fetchRange fetches metadata for a sequence-number range.
func fetchRange(c *client.Client, seqSet *imap.SeqSet) ([]*models.EmailMetadata, error) {
	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, fetchItems(), messages)
	}()

	var emails []*models.EmailMetadata
	for msg := range messages {
		emails = append(emails, FromEnvelope(msg, headerReader(msg)))
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return emails, nil
}

// headerReader returns the header block literal from a fetch response,
// or nil when the server did not include one.
func headerReader(msg *imap.Message) io.Reader {
	if body := msg.GetBody(headerSection); body != nil {
		return body
	}
	return nil
}

// sortByDateDesc orders newest-first; undated messages sink to the
// bottom.
func sortByDateDesc(emails []*models.EmailMetadata) {
	sort.SliceStable(emails, func(i, j int) bool {
		return emails[i].InternalDate.After(emails[j].InternalDate)
	})
}
