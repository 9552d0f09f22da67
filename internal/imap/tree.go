package imap

import (
	"errors"
	"sort"
	"strings"

	"github.com/black-desk/gmail-tui/internal/models"
)

// ErrEmptyListing is returned when a tree is built from zero folders.
// An empty listing is distinct from a listing that has not been
// fetched yet; callers must not confuse the two.
var ErrEmptyListing = errors.New("empty folder listing")

// Tree is a hierarchical view of a folder listing. The delimiter is
// assumed uniform across the whole listing; mixed-delimiter listings
// are not supported.
type Tree struct {
	// Delimiter is the hierarchy separator reported by the server.
	Delimiter string
	// Children maps a parent path (empty string for the top level) to
	// the set of full child paths under it. A folder with no children
	// has no entry at its own key.
	Children map[string]map[string]struct{}
}

// BuildTree constructs a folder tree from a listing. The delimiter of
// the first folder is taken as the delimiter for the whole tree.
func BuildTree(folders []models.FolderInfo) (*Tree, error) {
	if len(folders) == 0 {
		return nil, ErrEmptyListing
	}

	t := &Tree{
		Delimiter: folders[0].Delimiter,
		Children:  make(map[string]map[string]struct{}),
	}

	for _, f := range folders {
		parent := ""
		if t.Delimiter != "" {
			if i := strings.LastIndex(f.Name, t.Delimiter); i >= 0 {
				parent = f.Name[:i]
			}
		}
		if t.Children[parent] == nil {
			t.Children[parent] = make(map[string]struct{})
		}
		t.Children[parent][f.Name] = struct{}{}
	}

	return t, nil
}

// Render returns the tree as indented text with box-drawing
// connectors, children sorted lexicographically at each level.
func (t *Tree) Render() string {
	var b strings.Builder
	t.renderLevel(&b, "", "")
	return b.String()
}

func (t *Tree) renderLevel(b *strings.Builder, parent, prefix string) {
	children := make([]string, 0, len(t.Children[parent]))
	for child := range t.Children[parent] {
		children = append(children, child)
	}
	sort.Strings(children)

	for i, child := range children {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(children)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}

		label := child
		if t.Delimiter != "" {
			if j := strings.LastIndex(child, t.Delimiter); j >= 0 {
				label = child[j+len(t.Delimiter):]
			}
		}

		b.WriteString(prefix)
		b.WriteString(connector)
		b.WriteString(label)
		b.WriteString("\n")

		t.renderLevel(b, child, childPrefix)
	}
}

// Names returns the full folder paths in depth-first render order.
func (t *Tree) Names() []string {
	var names []string
	t.collect("", &names)
	return names
}

func (t *Tree) collect(parent string, names *[]string) {
	children := make([]string, 0, len(t.Children[parent]))
	for child := range t.Children[parent] {
		children = append(children, child)
	}
	sort.Strings(children)

	for _, child := range children {
		*names = append(*names, child)
		t.collect(child, names)
	}
}
