package document

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// parseMarkdown walks the Markdown AST and collects the raw text of each
// block-level node as one paragraph, preserving document order.
func parseMarkdown(data []byte) []string {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(data))

	paragraphs := []string{}
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node.(type) {
		case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
			if para := blockText(node, data); para != "" {
				paragraphs = append(paragraphs, para)
			}
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			// Code blocks carry no prose worth analyzing.
			return ast.WalkSkipChildren, nil
		}

		return ast.WalkContinue, nil
	})

	return paragraphs
}

func blockText(node ast.Node, source []byte) string {
	builder := strings.Builder{}
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		builder.Write(segment.Value(source))
		builder.WriteByte(' ')
	}
	return strings.TrimSpace(builder.String())
}
