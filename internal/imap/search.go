package imap

import (
	"fmt"
	"regexp"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/black-desk/gmail-tui/internal/models"
)

// SearchFilters narrows a folder search. Empty fields are ignored. The
// Body filter is applied client-side after the fetch: IMAP BODY search
// semantics vary too much across servers to trust.
type SearchFilters struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Empty reports whether no filter is set.
func (f SearchFilters) Empty() bool {
	return f.From == "" && f.To == "" && f.Subject == "" && f.Body == ""
}

// criteria converts the server-side filters into IMAP search criteria.
// The body filter is deliberately excluded.
func (f SearchFilters) criteria() *imap.SearchCriteria {
	criteria := imap.NewSearchCriteria()
	if f.From != "" {
		criteria.Header.Add("From", f.From)
	}
	if f.To != "" {
		criteria.Header.Add("To", f.To)
	}
	if f.Subject != "" {
		criteria.Header.Add("Subject", f.Subject)
	}
	return criteria
}

// SearchUIDs runs the server-side part of a search and returns
// matching UIDs.
func SearchUIDs(c *client.Client, folder string, filters SearchFilters) ([]uint32, error) {
	if _, err := selectFolder(c, folder); err != nil {
		return nil, err
	}

	uids, err := c.UidSearch(filters.criteria())
	if err != nil {
		return nil, fmt.Errorf("failed to search folder %q: %w", folder, err)
	}
	return uids, nil
}

// FilterByBody keeps only the emails whose body text matches the
// pattern, case-insensitively. The fetchBody callback downloads the
// raw message for one email; a fetch failure drops that email from the
// results rather than aborting the whole search.
func FilterByBody(emails []*models.EmailMetadata, pattern string, fetchBody func(*models.EmailMetadata) ([]byte, error)) ([]*models.EmailMetadata, error) {
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid body pattern: %w", err)
	}

	var matched []*models.EmailMetadata
	for _, email := range emails {
		raw, err := fetchBody(email)
		if err != nil {
			continue
		}
		body := ExtractBody(raw)
		if re.MatchString(body.Plain) || re.MatchString(body.HTML) {
			matched = append(matched, email)
		}
	}
	return matched, nil
}
