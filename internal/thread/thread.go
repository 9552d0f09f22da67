// Package thread derives conversation structure from Message-ID, In-Reply-To,
// and References headers alone. It performs no I/O and does not depend on any
// server-side THREAD support.
package thread

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/black-desk/gmail-tui/internal/models"
)

// messageIDPattern matches one bracketed message id inside a References
// header. Ids are separated by whitespace and/or angle brackets.
var messageIDPattern = regexp.MustCompile(`<([^<>]+)>`)

// NormalizeMessageID strips surrounding whitespace and angle brackets from a
// message id. The empty string stays empty. The operation is idempotent.
func NormalizeMessageID(messageID string) string {
	return strings.TrimFunc(messageID, func(r rune) bool {
		return unicode.IsSpace(r) || r == '<' || r == '>'
	})
}

// ParseReferences extracts every bracketed message id from a References
// header, in header order. By RFC 2822 convention the list runs oldest
// ancestor first.
func ParseReferences(references string) []string {
	if references == "" {
		return nil
	}
	matches := messageIDPattern.FindAllStringSubmatch(references, -1)
	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, match[1])
	}
	return ids
}

// FindThreadRoot determines the root message id of the thread containing a
// message. References wins over In-Reply-To: its first entry is the oldest
// ancestor. A message with neither header is its own root.
func FindThreadRoot(messageID, inReplyTo, references string) string {
	if refs := ParseReferences(references); len(refs) > 0 {
		return refs[0]
	}
	if parent := NormalizeMessageID(inReplyTo); parent != "" {
		return parent
	}
	return NormalizeMessageID(messageID)
}

// BuildThreadFromEmails finds the thread containing targetMessageID within a
// fetched batch of emails. It returns the thread root id and the member
// emails sorted ascending by internal date.
//
// The target must appear as some email's own Message-ID in the batch;
// otherwise models.ErrNotFound is returned, even if the id shows up inside
// another email's References. The caller is responsible for having fetched a
// large enough window.
func BuildThreadFromEmails(emails []*models.EmailMetadata, targetMessageID string) (string, []*models.EmailMetadata, error) {
	byMessageID := make(map[string]*models.EmailMetadata)
	for _, email := range emails {
		if id := NormalizeMessageID(email.MessageID); id != "" {
			byMessageID[id] = email
		}
	}

	// Map every known id to its thread root. Ids that only appear inside a
	// References chain are registered too, so later messages referencing any
	// ancestor resolve to the same thread.
	messageToRoot := make(map[string]string)
	for _, email := range emails {
		messageID := NormalizeMessageID(email.MessageID)
		if messageID == "" {
			continue
		}
		rootID := FindThreadRoot(messageID, email.InReplyTo, email.References)
		messageToRoot[messageID] = rootID
		for _, refID := range ParseReferences(email.References) {
			if _, known := messageToRoot[refID]; !known {
				messageToRoot[refID] = rootID
			}
		}
	}

	// The target must be some fetched email's own Message-ID. An id that
	// only shows up inside another email's References chain is not enough
	// to anchor a lookup.
	targetID := NormalizeMessageID(targetMessageID)
	if _, present := byMessageID[targetID]; !present {
		return "", nil, fmt.Errorf("message ID %s: %w in fetched emails", targetID, models.ErrNotFound)
	}
	threadRoot, ok := messageToRoot[targetID]
	if !ok {
		// The target carries no threading info at all: a singleton thread.
		threadRoot = targetID
	}

	var members []*models.EmailMetadata
	for _, email := range emails {
		id := NormalizeMessageID(email.MessageID)
		if id != "" && messageToRoot[id] == threadRoot {
			members = append(members, email)
		}
	}

	// Second pass: adopt stragglers whose own id never resolved but whose
	// References point at a message already mapped to this thread.
	for _, email := range emails {
		id := NormalizeMessageID(email.MessageID)
		if id == "" {
			continue
		}
		if _, assigned := messageToRoot[id]; assigned {
			continue
		}
		for _, refID := range ParseReferences(email.References) {
			if root, known := messageToRoot[refID]; known && root == threadRoot {
				members = append(members, email)
				messageToRoot[id] = threadRoot
				break
			}
		}
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].InternalDate.Before(members[j].InternalDate)
	})

	return threadRoot, members, nil
}

// BuildThreads partitions a batch of emails into conversations. Every email
// ends up in exactly one thread. Threads come back sorted by latest member
// date descending; a thread with no dated members sinks to the bottom.
func BuildThreads(emails []*models.EmailMetadata) []*EmailThread {
	messageToThread := make(map[string]*EmailThread)
	byMessageID := make(map[string]*models.EmailMetadata)
	for _, email := range emails {
		if id := NormalizeMessageID(email.MessageID); id != "" {
			byMessageID[id] = email
		}
	}

	var threads []*EmailThread

	for _, email := range emails {
		messageID := NormalizeMessageID(email.MessageID)
		if messageID == "" {
			continue
		}

		inReplyTo := NormalizeMessageID(email.InReplyTo)
		references := ParseReferences(email.References)

		// Resolve the thread key: a direct parent already threaded, a direct
		// parent merely known in the batch, or the most recent reference that
		// is either. Failing all of those, the email keys its own thread.
		threadID := messageID
		if inReplyTo != "" && messageToThread[inReplyTo] != nil {
			threadID = inReplyTo
		} else if _, known := byMessageID[inReplyTo]; inReplyTo != "" && known {
			threadID = inReplyTo
		} else {
			for i := len(references) - 1; i >= 0; i-- {
				refID := references[i]
				if messageToThread[refID] != nil {
					threadID = refID
					break
				}
				if _, known := byMessageID[refID]; known {
					threadID = refID
					break
				}
			}
		}

		emailThread := messageToThread[threadID]
		if emailThread == nil {
			emailThread = NewEmailThread(threadID)
			messageToThread[threadID] = emailThread
			threads = append(threads, emailThread)
		}
		emailThread.AddEmail(email)

		// Register this email's own id so later replies-to-replies resolve to
		// the same thread even before the root is independently indexed.
		if messageToThread[messageID] == nil {
			messageToThread[messageID] = emailThread
		}
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].LatestEmailDate.After(threads[j].LatestEmailDate)
	})

	return threads
}
