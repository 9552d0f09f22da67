package imap

import (
	"bufio"
	"bytes"
	"io"
	"net/mail"
	"net/textproto"
	"strings"
	"time"

	"github.com/emersion/go-imap"

	"github.com/black-desk/gmail-tui/internal/models"
)

// addressEntries converts ENVELOPE address structures into the
// canonical form used everywhere downstream.
func addressEntries(addrs []*imap.Address) []models.AddressEntry {
	var entries []models.AddressEntry
	for _, a := range addrs {
		if a == nil {
			continue
		}
		entries = append(entries, models.AddressEntry{
			Name:    models.DecodeHeaderWords(a.PersonalName),
			Mailbox: a.MailboxName,
			Host:    a.HostName,
		})
	}
	return entries
}

// FromEnvelope builds metadata from an ENVELOPE-only fetch response.
// ENVELOPE never carries References and carries In-Reply-To only on
// some servers; callers that need threading headers pass the raw
// header block (BODY.PEEK[HEADER]) so those fields can be backfilled.
func FromEnvelope(msg *imap.Message, headerBlock io.Reader) *models.EmailMetadata {
	meta := &models.EmailMetadata{
		UID:          msg.Uid,
		InternalDate: msg.InternalDate,
		Size:         msg.Size,
		Flags:        append([]string(nil), msg.Flags...),
	}

	if env := msg.Envelope; env != nil {
		meta.Subject = models.DecodeHeaderWords(env.Subject)
		meta.FromAddr = models.FormatAddressList(addressEntries(env.From))
		meta.ToAddr = models.FormatAddressList(addressEntries(env.To))
		meta.CcAddr = models.FormatAddressList(addressEntries(env.Cc))
		meta.BccAddr = models.FormatAddressList(addressEntries(env.Bcc))
		if !env.Date.IsZero() {
			meta.Date = env.Date.Format(time.RFC1123Z)
		}
		meta.MessageID = env.MessageId
		meta.InReplyTo = env.InReplyTo
	}

	if headerBlock != nil {
		backfillFromHeader(meta, headerBlock)
	}

	return meta
}

// backfillFromHeader parses a raw header block and fills in the fields
// ENVELOPE omits. A malformed block is ignored; whatever the envelope
// provided stands.
func backfillFromHeader(meta *models.EmailMetadata, r io.Reader) {
	tp := textproto.NewReader(bufio.NewReader(r))
	header, err := tp.ReadMIMEHeader()
	if err != nil && len(header) == 0 {
		return
	}

	if meta.References == "" {
		meta.References = header.Get("References")
	}
	if meta.InReplyTo == "" {
		meta.InReplyTo = header.Get("In-Reply-To")
	}
	if meta.MessageID == "" {
		meta.MessageID = header.Get("Message-Id")
	}
	if meta.ContentType == "" {
		meta.ContentType = header.Get("Content-Type")
	}
	if meta.ContentDisposition == "" {
		meta.ContentDisposition = header.Get("Content-Disposition")
	}
}

// FromMessage builds metadata from a full RFC 822 byte stream. Used by
// the sequential fallback fetch path where the whole message is
// already in hand.
func FromMessage(r io.Reader, uid uint32, internalDate time.Time) *models.EmailMetadata {
	meta := &models.EmailMetadata{
		UID:          uid,
		InternalDate: internalDate,
	}

	m, err := mail.ReadMessage(r)
	if err != nil {
		return meta
	}
	fillFromHeader(meta, m.Header)
	return meta
}

// FromHeaderBlock builds metadata from a bare header block, for servers
// whose ENVELOPE responses cannot be relied on.
func FromHeaderBlock(r io.Reader, uid uint32, internalDate time.Time) *models.EmailMetadata {
	meta := &models.EmailMetadata{
		UID:          uid,
		InternalDate: internalDate,
	}

	tp := textproto.NewReader(bufio.NewReader(r))
	header, err := tp.ReadMIMEHeader()
	if err != nil && len(header) == 0 {
		return meta
	}
	fillFromHeader(meta, mail.Header(header))
	return meta
}

func fillFromHeader(meta *models.EmailMetadata, header mail.Header) {
	meta.Subject = models.DecodeHeaderWords(header.Get("Subject"))
	meta.FromAddr = decodeAddressHeader(header.Get("From"))
	meta.ToAddr = decodeAddressHeader(header.Get("To"))
	meta.CcAddr = decodeAddressHeader(header.Get("Cc"))
	meta.BccAddr = decodeAddressHeader(header.Get("Bcc"))
	meta.Date = header.Get("Date")
	meta.MessageID = header.Get("Message-Id")
	meta.InReplyTo = header.Get("In-Reply-To")
	meta.References = header.Get("References")
	meta.ContentType = header.Get("Content-Type")
	meta.ContentDisposition = header.Get("Content-Disposition")
}

// HeaderMap returns every header of a raw message as a name-to-value
// mapping, with encoded words decoded and repeated headers joined by
// ", ". An unparseable message yields nil.
func HeaderMap(raw []byte) map[string]string {
	tp := textproto.NewReader(bufio.NewReader(bytes.NewReader(raw)))
	header, err := tp.ReadMIMEHeader()
	if err != nil && len(header) == 0 {
		return nil
	}

	headers := make(map[string]string, len(header))
	for name, values := range header {
		headers[name] = models.DecodeHeaderWords(strings.Join(values, ", "))
	}
	return headers
}

// decodeAddressHeader normalizes a raw address header into the same
// display form the envelope path produces. A header that fails strict
// address parsing is kept as decoded text rather than dropped.
func decodeAddressHeader(raw string) string {
	if raw == "" {
		return ""
	}

	addrs, err := mail.ParseAddressList(raw)
	if err != nil {
		return models.DecodeHeaderWords(raw)
	}

	entries := make([]models.AddressEntry, 0, len(addrs))
	for _, a := range addrs {
		mailbox, host, _ := strings.Cut(a.Address, "@")
		entries = append(entries, models.AddressEntry{
			Name:    models.DecodeHeaderWords(a.Name),
			Mailbox: mailbox,
			Host:    host,
		})
	}
	return models.FormatAddressList(entries)
}
