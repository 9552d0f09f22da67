package imap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBodyPlain(t *testing.T) {
	raw := []byte("From: a@example.com\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"hello world\r\n")

	body := ExtractBody(raw)
	assert.Contains(t, body.Plain, "hello world")
	assert.Empty(t, body.HTML)
}

func TestExtractBodyMultipartAlternative(t *testing.T) {
	raw := []byte("From: a@example.com\r\n" +
		"Content-Type: multipart/alternative; boundary=BOUND\r\n" +
		"\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"plain version\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>html version</p>\r\n" +
		"--BOUND--\r\n")

	body := ExtractBody(raw)
	assert.Contains(t, body.Plain, "plain version")
	assert.Contains(t, body.HTML, "html version")
}

func TestExtractBodyQuotedPrintable(t *testing.T) {
	raw := []byte("From: a@example.com\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Transfer-Encoding: quoted-printable\r\n" +
		"\r\n" +
		"caf=C3=A9\r\n")

	body := ExtractBody(raw)
	assert.Contains(t, body.Plain, "café")
}

func TestExtractBodyUnparseable(t *testing.T) {
	// Must not panic or error on arbitrary bytes.
	body := ExtractBody([]byte("not a message at all"))
	assert.Empty(t, body.HTML)
}

func TestWalkBodyFirstPartWinsPerType(t *testing.T) {
	raw := []byte("From: a@example.com\r\n" +
		"Content-Type: multipart/mixed; boundary=OUT\r\n" +
		"\r\n" +
		"--OUT\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"first plain\r\n" +
		"--OUT\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"second plain\r\n" +
		"--OUT--\r\n")

	body := walkBody(raw)
	assert.Contains(t, body.Plain, "first plain")
	assert.NotContains(t, body.Plain, "second plain")
}

func TestDecodePartCharsetFallback(t *testing.T) {
	// ISO-8859-1 bytes for "café"
	latin1 := []byte{'c', 'a', 'f', 0xE9}
	raw := []byte("From: a@example.com\r\n" +
		"Content-Type: text/plain; charset=iso-8859-1\r\n" +
		"\r\n" + string(latin1) + "\r\n")

	body := walkBody(raw)
	assert.Contains(t, body.Plain, "café")
}
