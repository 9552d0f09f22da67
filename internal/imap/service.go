package imap

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"

	"github.com/black-desk/gmail-tui/internal/models"
	"github.com/black-desk/gmail-tui/internal/thread"
)

// Window multipliers for thread-oriented commands: threading needs
// more context than the caller asked to see, because a thread's
// members are scattered across the folder.
const (
	threadListWindowFactor = 5
	threadShowWindow       = 1000
)

// Service is the high-level mail API consumed by the CLI and the TUI.
// It borrows sessions from the pool per operation and never closes
// them.
type Service struct {
	pool     *Pool
	username string
	password string
	log      *logrus.Logger
}

// NewService creates a Service bound to one credential pair.
func NewService(pool *Pool, username, password string, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		pool:     pool,
		username: username,
		password: password,
		log:      log,
	}
}

// ListEmails returns the newest emails in a folder, newest first,
// trimmed to limit.
func (s *Service) ListEmails(folder string, limit int) ([]*models.EmailMetadata, error) {
	c, release, err := s.pool.Acquire(s.username, s.password)
	if err != nil {
		return nil, err
	}
	defer release()

	return FetchMetadata(c, folder, limit)
}

// ListThreads partitions a folder window into conversations, newest
// thread first. The fetch window is wider than the requested limit so
// that threads whose members are spread out still assemble.
func (s *Service) ListThreads(folder string, limit int) ([]*thread.EmailThread, error) {
	c, release, err := s.pool.Acquire(s.username, s.password)
	if err != nil {
		return nil, err
	}
	defer release()

	window := 0
	if limit > 0 {
		window = limit * threadListWindowFactor
	}
	emails, err := FetchMetadata(c, folder, window)
	if err != nil {
		return nil, err
	}

	threads := thread.BuildThreads(emails)
	if limit > 0 && len(threads) > limit {
		threads = threads[:limit]
	}
	return threads, nil
}

// ShowThread returns the thread containing the given message: the root
// id and the full contents of every member, ordered oldest first. The
// message ID may carry angle brackets; it is normalized before lookup.
func (s *Service) ShowThread(folder, messageID string) (string, []map[string]any, error) {
	c, release, err := s.pool.Acquire(s.username, s.password)
	if err != nil {
		return "", nil, err
	}
	defer release()

	emails, err := FetchMetadata(c, folder, threadShowWindow)
	if err != nil {
		return "", nil, err
	}

	root, members, err := thread.BuildThreadFromEmails(emails, messageID)
	if err != nil {
		return "", nil, err
	}

	contents := threadContents(members, func(uid uint32) ([]byte, error) {
		return FetchFullMessage(c, folder, uid)
	})
	return root, contents, nil
}

// threadContents expands thread members into full-content mappings. A
// failed body fetch degrades that member to its metadata alone rather
// than dropping it or aborting the thread.
func threadContents(members []*models.EmailMetadata, fetchBody func(uint32) ([]byte, error)) []map[string]any {
	contents := make([]map[string]any, 0, len(members))
	for _, member := range members {
		entry := member.ToMap()
		if raw, err := fetchBody(member.UID); err == nil {
			body := ExtractBody(raw)
			if body.Plain != "" {
				entry["body_text"] = body.Plain
			}
			if body.HTML != "" {
				entry["body_html"] = body.HTML
			}
		}
		contents = append(contents, entry)
	}
	return contents
}

// SearchEmails runs a filtered search over a folder. Header filters
// run server-side; the body filter is a client-side scan over decoded
// bodies.
func (s *Service) SearchEmails(folder string, filters SearchFilters) ([]*models.EmailMetadata, error) {
	c, release, err := s.pool.Acquire(s.username, s.password)
	if err != nil {
		return nil, err
	}
	defer release()

	uids, err := SearchUIDs(c, folder, filters)
	if err != nil {
		return nil, err
	}
	if len(uids) == 0 {
		return nil, nil
	}

	emails, err := FetchByUIDs(c, folder, uids)
	if err != nil {
		return nil, err
	}
	sortByDateDesc(emails)

	if filters.Body == "" {
		return emails, nil
	}
	return FilterByBody(emails, filters.Body, func(email *models.EmailMetadata) ([]byte, error) {
		return FetchFullMessage(c, folder, email.UID)
	})
}

// ListFolders returns the raw folder listing.
func (s *Service) ListFolders() ([]models.FolderInfo, error) {
	c, release, err := s.pool.Acquire(s.username, s.password)
	if err != nil {
		return nil, err
	}
	defer release()

	return ListFolders(c)
}

// FolderTree lists folders and builds the hierarchy in one step.
func (s *Service) FolderTree() (*Tree, error) {
	folders, err := s.ListFolders()
	if err != nil {
		return nil, err
	}
	return BuildTree(folders)
}

// CreateFolder creates a folder; false without error means the server
// rejected the request over a healthy connection.
func (s *Service) CreateFolder(name string) (bool, error) {
	c, release, err := s.pool.Acquire(s.username, s.password)
	if err != nil {
		return false, err
	}
	defer release()

	return CreateFolder(c, name)
}

// DeleteFolder removes a folder.
func (s *Service) DeleteFolder(name string) (bool, error) {
	c, release, err := s.pool.Acquire(s.username, s.password)
	if err != nil {
		return false, err
	}
	defer release()

	return DeleteFolder(c, name)
}

// RenameFolder renames a folder.
func (s *Service) RenameFolder(oldName, newName string) (bool, error) {
	c, release, err := s.pool.Acquire(s.username, s.password)
	if err != nil {
		return false, err
	}
	defer release()

	return RenameFolder(c, oldName, newName)
}

// ShowEmail resolves an identifier (a numeric UID or a Message-ID) and
// returns the full metadata-plus-body mapping for the message. When
// includeHeaders is set the result also carries a "headers" map with
// every decoded header of the raw message.
func (s *Service) ShowEmail(folder, identifier string, includeHeaders bool) (map[string]any, error) {
	raw, meta, err := s.fetchByIdentifier(folder, identifier)
	if err != nil {
		return nil, err
	}

	result := meta.ToMap()
	body := ExtractBody(raw)
	if body.Plain != "" {
		result["body_text"] = body.Plain
	}
	if body.HTML != "" {
		result["body_html"] = body.HTML
	}
	if includeHeaders {
		if headers := HeaderMap(raw); len(headers) > 0 {
			result["headers"] = headers
		}
	}
	return result, nil
}

// FetchRawEmail returns the raw RFC 822 bytes of a message located by
// UID or Message-ID.
func (s *Service) FetchRawEmail(folder, identifier string) ([]byte, error) {
	raw, _, err := s.fetchByIdentifier(folder, identifier)
	return raw, err
}

func (s *Service) fetchByIdentifier(folder, identifier string) ([]byte, *models.EmailMetadata, error) {
	c, release, err := s.pool.Acquire(s.username, s.password)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	uid, err := resolveIdentifier(c, folder, identifier)
	if err != nil {
		return nil, nil, err
	}

	raw, err := FetchFullMessage(c, folder, uid)
	if err != nil {
		return nil, nil, err
	}

	metas, err := FetchByUIDs(c, folder, []uint32{uid})
	if err != nil || len(metas) == 0 {
		// Metadata fetch is best-effort once the raw bytes are in
		// hand; fall back to parsing the message itself.
		meta := FromMessage(bytes.NewReader(raw), uid, time.Time{})
		return raw, meta, nil
	}
	return raw, metas[0], nil
}

// resolveIdentifier maps a user-supplied identifier onto a UID. All
// digits means it already is one; anything else is treated as a
// Message-ID, with surrounding angle brackets tolerated.
func resolveIdentifier(c *client.Client, folder, identifier string) (uint32, error) {
	if uid, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		return uint32(uid), nil
	}
	id := thread.NormalizeMessageID(identifier)
	if id == "" {
		return 0, fmt.Errorf("identifier %q: %w", identifier, models.ErrNotFound)
	}
	return FindUIDByMessageID(c, folder, id)
}
