package imap

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/emersion/go-message/charset"
	"github.com/jhillyerd/enmime"
)

// Body holds the extracted textual bodies of a message. Either field
// may be empty when the message carries no part of that type.
type Body struct {
	Plain string
	HTML  string
}

// ExtractBody pulls the text/plain and text/html bodies out of a raw
// message. It parses with enmime first and falls back to a manual
// multipart walk when that fails. Extraction never returns an error:
// an unparseable message yields an empty Body.
func ExtractBody(raw []byte) Body {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err == nil {
		return Body{Plain: env.Text, HTML: env.HTML}
	}
	return walkBody(raw)
}

// walkBody is the fallback extractor: walks multipart structure by
// hand, keeping the first plain and first html part found.
func walkBody(raw []byte) Body {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return Body{}
	}

	var body Body
	collectParts(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body, &body)
	return body
}

func collectParts(contentType, transferEncoding string, r io.Reader, body *Body) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return
		}
		mr := multipart.NewReader(r, boundary)
		for {
			part, err := mr.NextPart()
			if err != nil {
				return
			}
			collectParts(
				part.Header.Get("Content-Type"),
				part.Header.Get("Content-Transfer-Encoding"),
				part, body)
		}
	}

	switch mediaType {
	case "text/plain":
		if body.Plain == "" {
			body.Plain = decodePart(r, transferEncoding, params["charset"])
		}
	case "text/html":
		if body.HTML == "" {
			body.HTML = decodePart(r, transferEncoding, params["charset"])
		}
	}
}

// decodePart reads a body part, reversing its transfer encoding and
// decoding its charset. The declared charset is tried first; on
// failure the bytes are interpreted as UTF-8 with invalid sequences
// replaced.
func decodePart(r io.Reader, transferEncoding, cs string) string {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}

	raw, err := io.ReadAll(r)
	if err != nil && len(raw) == 0 {
		return ""
	}

	if cs != "" && !strings.EqualFold(cs, "utf-8") && !strings.EqualFold(cs, "us-ascii") {
		if cr, err := charset.Reader(cs, bytes.NewReader(raw)); err == nil {
			if decoded, err := io.ReadAll(cr); err == nil {
				return string(decoded)
			}
		}
	}

	return strings.ToValidUTF8(string(raw), "�")
}
