package extract

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// normalizeMarkdown renders markdown as the canonical line notation the
// structural parser understands: ordered list items become "N. Title"
// lines, unordered items become "- text" indented two columns per nesting
// level, headings keep their "#" prefix.
func normalizeMarkdown(src []byte) string {
	md := goldmark.New()
	doc := md.Parser().Parse(gmtext.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			b.WriteString(strings.Repeat("#", node.Level))
			b.WriteByte(' ')
			b.Write(node.Text(src))
			b.WriteByte('\n')
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph:
			if _, inItem := node.Parent().(*ast.ListItem); inItem {
				// Rendered by the list item below.
				return ast.WalkSkipChildren, nil
			}
			b.Write(node.Text(src))
			b.WriteByte('\n')
			return ast.WalkSkipChildren, nil

		case *ast.ListItem:
			writeListItem(&b, node, src)
			// Keep walking: nested lists are children of the item.
			return ast.WalkContinue, nil
		}

		return ast.WalkContinue, nil
	})

	return b.String()
}

func writeListItem(b *strings.Builder, item *ast.ListItem, src []byte) {
	list, ok := item.Parent().(*ast.List)
	if !ok {
		return
	}

	var text []byte
	switch c := item.FirstChild().(type) {
	case *ast.TextBlock:
		text = c.Text(src)
	case *ast.Paragraph:
		text = c.Text(src)
	}

	depth := listDepth(item)
	indent := strings.Repeat("  ", depth)

	if list.IsOrdered() {
		start := list.Start
		if start == 0 {
			start = 1
		}
		fmt.Fprintf(b, "%s%d. %s\n", indent, start+siblingIndex(item), text)
		return
	}

	fmt.Fprintf(b, "%s- %s\n", indent, text)
}

func siblingIndex(n ast.Node) int {
	i := 0
	for s := n.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		i++
	}
	return i
}

func listDepth(item *ast.ListItem) int {
	depth := -1
	for p := ast.Node(item); p != nil; p = p.Parent() {
		if _, ok := p.(*ast.List); ok {
			depth++
		}
	}
	return depth
}
