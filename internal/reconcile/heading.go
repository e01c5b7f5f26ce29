package reconcile

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Clause heading inside a markdown response: "### 제1항 목적".
var headingClauseRe = regexp.MustCompile(`^제[\s\t]*(\d+)[\s\t]*항[\s\t]*(.*)$`)

// fromHeadings is the markdown fallback tier: when a model ignores the JSON
// output format and answers with "### 제N항 …" headings instead, split the
// response into one record per clause heading. Blocks before the first
// clause heading are dropped; non-clause headings count as content.
func fromHeadings(responseText string) []Clause {
	src := []byte(responseText)
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	var clauses []Clause
	var current *Clause
	var parts []string

	flush := func() {
		if current != nil {
			current.Content = strings.TrimSpace(strings.Join(parts, "\n\n"))
			clauses = append(clauses, *current)
		}
		parts = nil
	}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			title := string(h.Text(src))
			if m := headingClauseRe.FindStringSubmatch(title); m != nil {
				flush()
				num, _ := strconv.Atoi(m[1])
				current = &Clause{Number: num, Title: strings.TrimSpace(m[2])}
				continue
			}
		}
		if current != nil {
			if t := blockText(n, src); t != "" {
				parts = append(parts, t)
			}
		}
	}
	flush()

	return clauses
}

// blockText gets the raw text of a goldmark block node. Leaf blocks carry
// their source lines directly; container blocks (lists, quotes) recurse.
func blockText(n ast.Node, src []byte) string {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := blockText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}
