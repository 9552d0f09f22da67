package models

import (
	"mime"
	"strings"

	"github.com/emersion/go-message/charset"
)

// headerDecoder decodes RFC 2047 encoded-words using go-message's extended
// charset table, which covers the legacy encodings real mail still carries.
var headerDecoder = mime.WordDecoder{CharsetReader: charset.Reader}

// DecodeHeaderWords decodes MIME encoded-words in a header value. It never
// fails: when a word cannot be decoded the raw input is returned instead, so
// a broken header degrades to its wire form rather than aborting parsing.
func DecodeHeaderWords(s string) string {
	if s == "" {
		return ""
	}
	decoded, err := headerDecoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

// FormatAddressList renders ENVELOPE addresses as a human-readable string.
// A display name containing whitespace is wrapped in double quotes; the
// mailbox is rendered as <mailbox@host>, or bare <mailbox> when the host is
// missing. Multiple addresses are joined with ", ". Empty input yields the
// empty string, which downstream serialization treats as absent.
func FormatAddressList(addresses []AddressEntry) string {
	var formatted []string
	for _, address := range addresses {
		var parts []string
		if address.Name != "" {
			name := DecodeHeaderWords(address.Name)
			if strings.Contains(name, " ") {
				name = `"` + name + `"`
			}
			parts = append(parts, name)
		}
		switch {
		case address.Mailbox != "" && address.Host != "":
			parts = append(parts, "<"+address.Mailbox+"@"+address.Host+">")
		case address.Mailbox != "":
			parts = append(parts, "<"+address.Mailbox+">")
		}
		if len(parts) > 0 {
			formatted = append(formatted, strings.Join(parts, " "))
		}
	}
	return strings.Join(formatted, ", ")
}
