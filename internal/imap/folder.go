package imap

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/black-desk/gmail-tui/internal/models"
)

// ListFolders returns every folder visible to the session, with flags
// and hierarchy delimiter.
func ListFolders(c *client.Client) ([]models.FolderInfo, error) {
	mailboxes := make(chan *imap.MailboxInfo, 20)
	done := make(chan error, 1)
	go func() {
		done <- c.List("", "*", mailboxes)
	}()

	var folders []models.FolderInfo
	for m := range mailboxes {
		folders = append(folders, models.FolderInfo{
			Flags:     append([]string(nil), m.Attributes...),
			Delimiter: m.Delimiter,
			Name:      m.Name,
		})
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	return folders, nil
}

// ParseListLine parses a single raw LIST response line of the form
//
//	(\HasNoChildren) "/" "INBOX"
//
// into its flags, delimiter, and folder name. Returns false if the line
// does not have the expected shape.
func ParseListLine(line string) (models.FolderInfo, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "(") {
		return models.FolderInfo{}, false
	}
	end := strings.Index(line, ")")
	if end < 0 {
		return models.FolderInfo{}, false
	}

	var flags []string
	for _, f := range strings.Fields(line[1:end]) {
		flags = append(flags, f)
	}

	rest := strings.TrimSpace(line[end+1:])
	delimiter, rest, ok := takeQuotedOrAtom(rest)
	if !ok {
		return models.FolderInfo{}, false
	}
	if delimiter == "NIL" {
		delimiter = ""
	}

	name, _, ok := takeQuotedOrAtom(strings.TrimSpace(rest))
	if !ok || name == "" {
		return models.FolderInfo{}, false
	}

	return models.FolderInfo{Flags: flags, Delimiter: delimiter, Name: name}, true
}

// ParseFolderLines parses raw LIST lines, skipping any that are
// malformed.
func ParseFolderLines(lines []string) []models.FolderInfo {
	var folders []models.FolderInfo
	for _, line := range lines {
		if info, ok := ParseListLine(line); ok {
			folders = append(folders, info)
		}
	}
	return folders
}

// takeQuotedOrAtom consumes a double-quoted string or a bare atom from
// the front of s, returning the token and the remainder.
func takeQuotedOrAtom(s string) (string, string, bool) {
	if s == "" {
		return "", "", false
	}
	if s[0] == '"' {
		end := strings.Index(s[1:], `"`)
		if end < 0 {
			return "", "", false
		}
		return s[1 : 1+end], s[2+end:], true
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", true
}

// CreateFolder creates a folder on the server. Returns false without an
// error when the server rejected the operation but the connection is
// still healthy; a dead connection surfaces as an error.
func CreateFolder(c *client.Client, name string) (bool, error) {
	if err := c.Create(name); err != nil {
		return false, classifyFolderErr(c, "create", name, err)
	}
	return true, nil
}

// DeleteFolder removes a folder on the server.
func DeleteFolder(c *client.Client, name string) (bool, error) {
	if err := c.Delete(name); err != nil {
		return false, classifyFolderErr(c, "delete", name, err)
	}
	return true, nil
}

// RenameFolder renames a folder on the server.
func RenameFolder(c *client.Client, oldName, newName string) (bool, error) {
	if err := c.Rename(oldName, newName); err != nil {
		return false, classifyFolderErr(c, "rename", oldName, err)
	}
	return true, nil
}

// classifyFolderErr distinguishes a server rejection (folder exists,
// bad name) from a broken connection. A NOOP that still succeeds means
// the session is alive and the failure was a plain rejection, which
// callers report as ok=false rather than an error.
func classifyFolderErr(c *client.Client, op, name string, err error) error {
	if noopErr := c.Noop(); noopErr != nil {
		return fmt.Errorf("failed to %s folder %q: %w", op, name, err)
	}
	return nil
}
