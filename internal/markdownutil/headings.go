// Package markdownutil provides small markdown analysis helpers shared
// by the diff summariser and the enrichment pipeline.
package markdownutil

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Headings returns the heading texts of a markdown document in order.
func Headings(source string) []string {
	src := []byte(source)
	parser := goldmark.New().Parser()
	root := parser.Parse(text.NewReader(src))

	var headings []string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			var sb strings.Builder
			lines := h.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(src))
			}
			if txt := strings.TrimSpace(sb.String()); txt != "" {
				headings = append(headings, txt)
			}
		}
		return ast.WalkContinue, nil
	})
	return headings
}

// HeadingSet returns the headings as a set for membership diffing.
func HeadingSet(source string) map[string]bool {
	set := make(map[string]bool)
	for _, h := range Headings(source) {
		set[h] = true
	}
	return set
}

// CountListItems returns the number of list items in a markdown document.
func CountListItems(source string) int {
	src := []byte(source)
	parser := goldmark.New().Parser()
	root := parser.Parse(text.NewReader(src))

	count := 0
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if _, ok := n.(*ast.ListItem); ok {
				count++
			}
		}
		return ast.WalkContinue, nil
	})
	return count
}
