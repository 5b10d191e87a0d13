package parser

import (
	"path/filepath"
	"strings"

	"github.com/dgallion1/kidsbook/internal/doctree"
)

// treeBuilder nests text under headings by level. Heading-aware parsers
// (markdown, html, docx) feed it blocks in document order.
type treeBuilder struct {
	root  *doctree.DocNode
	stack []builderEntry
	text  strings.Builder
}

type builderEntry struct {
	node  *doctree.DocNode
	level int
}

func newTreeBuilder() *treeBuilder {
	root := &doctree.DocNode{}
	return &treeBuilder{
		root:  root,
		stack: []builderEntry{{node: root, level: 0}},
	}
}

// heading opens a section, closing any open sections at the same or deeper level.
func (b *treeBuilder) heading(level int, title string) {
	b.flush()
	node := &doctree.DocNode{Title: title}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, node)
	b.stack = append(b.stack, builderEntry{node: node, level: level})
}

// paragraph appends a block of body text to the current section.
func (b *treeBuilder) paragraph(t string) {
	if t == "" {
		return
	}
	if b.text.Len() > 0 {
		b.text.WriteString("\n\n")
	}
	b.text.WriteString(t)
}

func (b *treeBuilder) flush() {
	t := strings.TrimSpace(b.text.String())
	b.text.Reset()
	if t == "" {
		return
	}
	top := b.stack[len(b.stack)-1].node
	if top.Text != "" {
		top.Text += "\n\n" + t
	} else {
		top.Text = t
	}
}

// tree finishes the document. Text that appeared before the first heading
// becomes a leading untitled node.
func (b *treeBuilder) tree(title string) *doctree.DocTree {
	b.flush()
	t := &doctree.DocTree{Title: title}
	if b.root.Text != "" {
		t.Children = append(t.Children, &doctree.DocNode{Text: b.root.Text})
	}
	t.Children = append(t.Children, b.root.Children...)
	return t
}

// titleFromFilename strips the directory and the given extensions.
func titleFromFilename(filename string, exts ...string) string {
	name := filepath.Base(filename)
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
