package thread

import (
	"sort"
	"strings"
	"time"

	"github.com/black-desk/gmail-tui/internal/models"
)

// EmailThread is a derived conversation aggregate, not server state. ThreadID
// is the normalized Message-ID of the thread's root message.
type EmailThread struct {
	ThreadID        string
	EmailCount      int
	LatestEmailDate time.Time
	Participants    map[string]struct{}
	Subject         string
	Emails          []*models.EmailMetadata
}

// NewEmailThread creates an empty thread rooted at the given message id.
func NewEmailThread(threadID string) *EmailThread {
	return &EmailThread{
		ThreadID:     threadID,
		Participants: make(map[string]struct{}),
	}
}

// AddEmail adds a member message, updating count, latest date, and the
// participant set. The subject is taken from the first email added, not the
// earliest-dated one.
func (t *EmailThread) AddEmail(email *models.EmailMetadata) {
	t.Emails = append(t.Emails, email)
	t.EmailCount = len(t.Emails)

	if email.InternalDate.After(t.LatestEmailDate) {
		t.LatestEmailDate = email.InternalDate
	}

	if email.FromAddr != "" {
		if match := messageIDPattern.FindStringSubmatch(email.FromAddr); match != nil {
			t.Participants[match[1]] = struct{}{}
		} else if strings.Contains(email.FromAddr, "@") {
			t.Participants[email.FromAddr] = struct{}{}
		}
	}

	if t.Subject == "" && email.Subject != "" {
		t.Subject = email.Subject
	}
}

// ToMap returns the serializable thread summary with sorted participants and
// member UIDs in insertion order.
func (t *EmailThread) ToMap() map[string]any {
	participants := make([]string, 0, len(t.Participants))
	for participant := range t.Participants {
		participants = append(participants, participant)
	}
	sort.Strings(participants)

	uids := make([]uint32, 0, len(t.Emails))
	for _, email := range t.Emails {
		uids = append(uids, email.UID)
	}

	result := map[string]any{
		"thread_id":    t.ThreadID,
		"email_count":  t.EmailCount,
		"participants": participants,
		"email_uids":   uids,
	}
	if !t.LatestEmailDate.IsZero() {
		result["latest_email_date"] = t.LatestEmailDate.Format(time.RFC3339)
	}
	if t.Subject != "" {
		result["subject"] = t.Subject
	}
	return result
}
