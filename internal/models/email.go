package models

import (
	"errors"
	"time"
)

// ErrNotFound indicates that a requested message, UID, or folder does not
// exist in the searched scope. It is always recoverable: callers report it as
// a user-facing message.
var ErrNotFound = errors.New("not found")

// AddressEntry is the canonical decoded form of one ENVELOPE address.
// The route field of legacy RFC 822 4-tuples is dropped at the ingestion
// boundary; nothing downstream ever sees it.
type AddressEntry struct {
	Name    string `json:"name,omitempty"`
	Mailbox string `json:"mailbox"`
	Host    string `json:"host,omitempty"`
}

// FolderInfo is one entry of a LIST response: attribute flags, the hierarchy
// delimiter, and the full folder name.
type FolderInfo struct {
	Flags     []string `json:"flags"`
	Delimiter string   `json:"delimiter"`
	Name      string   `json:"name"`
}

// EmailMetadata is the canonical metadata of one IMAP message. A UID is only
// meaningful paired with the folder it was fetched from; comparing UIDs
// across folders is invalid. Instances are constructed once per fetch
// response and never written back to the server.
//
// String fields use the empty string for "absent"; InternalDate uses the zero
// time. ToMap omits absent fields entirely instead of emitting nulls.
type EmailMetadata struct {
	UID                uint32    `json:"uid"`
	InternalDate       time.Time `json:"internal_date"`
	Subject            string    `json:"subject,omitempty"`
	FromAddr           string    `json:"from,omitempty"`
	ToAddr             string    `json:"to,omitempty"`
	CcAddr             string    `json:"cc,omitempty"`
	BccAddr            string    `json:"bcc,omitempty"`
	Date               string    `json:"date,omitempty"`
	MessageID          string    `json:"message_id,omitempty"`
	InReplyTo          string    `json:"in_reply_to,omitempty"`
	References         string    `json:"references,omitempty"`
	ContentType        string    `json:"content_type,omitempty"`
	ContentDisposition string    `json:"content_disposition,omitempty"`
	Size               uint32    `json:"size"`
	Flags              []string  `json:"flags,omitempty"`
}

// ToMap returns the serializable view of the metadata: a mapping containing
// every present field, with internal_date rendered as an ISO-8601 string and
// flags as an ordered list.
func (m *EmailMetadata) ToMap() map[string]any {
	result := map[string]any{
		"uid":  m.UID,
		"size": m.Size,
	}
	if !m.InternalDate.IsZero() {
		result["internal_date"] = m.InternalDate.Format(time.RFC3339)
	}
	for key, value := range map[string]string{
		"subject":             m.Subject,
		"from":                m.FromAddr,
		"to":                  m.ToAddr,
		"cc":                  m.CcAddr,
		"bcc":                 m.BccAddr,
		"date":                m.Date,
		"message_id":          m.MessageID,
		"in_reply_to":         m.InReplyTo,
		"references":          m.References,
		"content_type":        m.ContentType,
		"content_disposition": m.ContentDisposition,
	} {
		if value != "" {
			result[key] = value
		}
	}
	if len(m.Flags) > 0 {
		result["flags"] = append([]string(nil), m.Flags...)
	}
	return result
}
