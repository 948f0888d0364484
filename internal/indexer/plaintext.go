package indexer

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// PlainTexter flattens markdown into the plain text that gets embedded.
type PlainTexter struct {
	parser goldmark.Markdown
}

// NewPlainTexter creates a PlainTexter that understands GFM tables and links.
func NewPlainTexter() *PlainTexter {
	return &PlainTexter{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Linkify, extension.Strikethrough),
		),
	}
}

// PlainText renders markdown as plain text. Block elements are separated by
// blank lines, markup and link targets are dropped, table cells are joined with " | ".
func (p *PlainTexter) PlainText(markdown string) string {
	content := []byte(markdown)
	doc := p.parser.Parser().Parse(text.NewReader(content))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		blocks = appendBlocks(blocks, n, content)
	}
	return strings.Join(blocks, "\n\n")
}

func appendBlocks(blocks []string, n ast.Node, content []byte) []string {
	switch v := n.(type) {
	case *ast.List, *ast.Blockquote:
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			blocks = appendBlocks(blocks, c, content)
		}
		return blocks
	case *ast.ListItem:
		var parts []string
		for c := v.FirstChild(); c != nil; c = c.NextSibling() {
			parts = appendBlocks(parts, c, content)
		}
		if len(parts) > 0 {
			blocks = append(blocks, strings.Join(parts, "\n"))
		}
		return blocks
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return appendNonEmpty(blocks, codeBlockText(v, content))
	case *ast.ThematicBreak, *ast.HTMLBlock:
		return blocks
	case *extast.Table:
		var rows []string
		for row := v.FirstChild(); row != nil; row = row.NextSibling() {
			if line := tableRowText(row, content); line != "" {
				rows = append(rows, line)
			}
		}
		return appendNonEmpty(blocks, strings.Join(rows, "\n"))
	default:
		return appendNonEmpty(blocks, inlineText(n, content))
	}
}

func appendNonEmpty(blocks []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		blocks = append(blocks, s)
	}
	return blocks
}

// inlineText concatenates the text of a node's inline descendants.
func inlineText(n ast.Node, content []byte) string {
	var b strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
			switch {
			case v.HardLineBreak():
				b.WriteByte('\n')
			case v.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(content))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

func codeBlockText(n ast.Node, content []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(content))
	}
	return strings.TrimRight(b.String(), "\n")
}

func tableRowText(row ast.Node, content []byte) string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cells = append(cells, inlineText(cell, content))
	}
	return strings.TrimSpace(strings.Join(cells, " | "))
}
