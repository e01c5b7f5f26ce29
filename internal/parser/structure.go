package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/jihoonbyun/loandraft/internal/agreement"
)

// ErrNilParagraphs is returned when ParseParagraphs is handed a nil slice.
// Malformed content never errors; a document without markers simply parses
// to zero articles.
var ErrNilParagraphs = errors.New("parser: nil paragraph sequence")

// Article marker: "제 1 조	정	의", "제1조 대출약정", "제4조의2 시장붕괴".
// The bounded title group means an overlong heading line fails the match
// entirely and is treated as body text, never truncated.
var articlePattern = regexp.MustCompile(`^제[\s\t]*(\d+)[\s\t]*조(?:의[\s\t]*(\d+))?[\s\t]+(.{1,80})$`)

// A line like "제1조 제1항에 따라 …" is a cross-reference, not an article
// heading. RE2 has no negative lookahead, so the title group is re-checked
// against this prefix and the article match rejected when it fires.
var clauseRefPrefix = regexp.MustCompile(`^제[\s\t]*\d+[\s\t]*항`)

// Clause marker: "제 1 항	정	의", "제1항 차입의 종류", "제1항차입의 종류".
var clausePattern = regexp.MustCompile(`^제[\s\t]*(\d+)[\s\t]*항[\s\t]*(.{1,100})$`)

// Appendix/attachment headings end the body; everything after is dropped.
// In-body references ("부록 Ⅰ에 기재된 …") are distinguished by the trailing
// particle and do not terminate parsing.
var (
	appendixPattern    = regexp.MustCompile(`^(부록|별첨|별지|첨부)[\s\t]*[IⅠⅡⅢⅣⅤⅥⅦⅧⅨⅩ\d가-힣\-]+[\s\t]*`)
	appendixRefPattern = regexp.MustCompile(`^(부록|별첨|별지|첨부)[\s\t]*[IⅠⅡⅢⅣⅤⅥⅦⅧⅨⅩ\d가-힣\-]+[에의을를]`)
)

// Title cleanup: page-number artifacts left by the paragraph extractor.
var (
	wsRun          = regexp.MustCompile(`[\s\t]+`)
	pageDashTail   = regexp.MustCompile(`\s*-\s*\d{1,3}\s*-\s*$`)
	pageNumTail    = regexp.MustCompile(`\s+\d{1,3}$`)
	hangulNumTail  = regexp.MustCompile(`([가-힣])\d{1,2}$`)
	agreementNames = []string{"대출약정서", "약정서", "대출약정"}
)

type articleMarker struct {
	number    int
	subNumber int
	title     string
}

type clauseMarker struct {
	number int
	title  string
}

// matchArticle reports whether the paragraph is an article heading.
// Headings whose cleaned title is empty are not markers.
func matchArticle(para string) (articleMarker, bool) {
	m := articlePattern.FindStringSubmatch(para)
	if m == nil {
		return articleMarker{}, false
	}
	if clauseRefPrefix.MatchString(m[3]) {
		return articleMarker{}, false
	}
	title := cleanTitle(m[3])
	if title == "" {
		return articleMarker{}, false
	}
	num, _ := strconv.Atoi(m[1])
	sub := 0
	if m[2] != "" {
		sub, _ = strconv.Atoi(m[2])
	}
	return articleMarker{number: num, subNumber: sub, title: title}, true
}

// matchClause reports whether the paragraph is a clause heading.
func matchClause(para string) (clauseMarker, bool) {
	m := clausePattern.FindStringSubmatch(para)
	if m == nil {
		return clauseMarker{}, false
	}
	title := cleanTitle(m[2])
	if title == "" {
		return clauseMarker{}, false
	}
	num, _ := strconv.Atoi(m[1])
	return clauseMarker{number: num, title: title}, true
}

// isAppendixStart reports whether the paragraph opens an appendix or
// attachment section, excluding in-body references to one.
func isAppendixStart(para string) bool {
	if appendixRefPattern.MatchString(para) {
		return false
	}
	return appendixPattern.MatchString(para)
}

// cleanTitle normalizes whitespace runs and strips trailing page-number
// artifacts: "- 12 -" markers, isolated 1-3 digit numbers, and digits glued
// to a final Hangul syllable ("정의2").
func cleanTitle(s string) string {
	s = strings.TrimSpace(wsRun.ReplaceAllString(s, " "))
	s = pageDashTail.ReplaceAllString(s, "")
	s = pageNumTail.ReplaceAllString(s, "")
	s = hangulNumTail.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// ParseParagraphs converts the ordered paragraph sequence of a document into
// the article/clause hierarchy. It never fails on malformed input: a document
// with no article markers yields zero articles with every paragraph in the
// header. The only error is a nil input slice.
func ParseParagraphs(paragraphs []string) (*agreement.Document, error) {
	if paragraphs == nil {
		return nil, ErrNilParagraphs
	}

	doc := &agreement.Document{}
	first := findFirstArticleIndex(paragraphs)

	var (
		art    *agreement.Article
		clause *agreement.Clause
		lines  []string
	)

	closeClause := func() {
		if clause != nil {
			clause.Content = strings.Join(lines, "\n")
		}
		lines = nil
	}

	for i, para := range paragraphs {
		// Header lines are collected as-is; the appendix boundary only
		// applies once the body scan begins, so a front-matter line like
		// "첨부서류 목록" never terminates the parse.
		if i < first {
			doc.Header = append(doc.Header, para)
			continue
		}
		if isAppendixStart(para) {
			break
		}

		if am, ok := matchArticle(para); ok {
			closeClause()
			art = &agreement.Article{
				Number:     am.number,
				SubNumber:  am.subNumber,
				Title:      am.title,
				OrderIndex: len(doc.Articles),
			}
			// Default content sink until a real clause marker appears.
			clause = &agreement.Clause{Number: 0, Title: agreement.BodyClauseTitle}
			art.Clauses = []*agreement.Clause{clause}
			doc.Articles = append(doc.Articles, art)
			continue
		}

		if cm, ok := matchClause(para); ok && art != nil {
			next := &agreement.Clause{Number: cm.number, Title: cm.title}
			if len(art.Clauses) == 1 && art.Clauses[0] == clause && clause.Number == 0 {
				// First real clause replaces the synthetic sink and
				// inherits whatever body text it had accumulated.
				next.OrderIndex = 0
				art.Clauses[0] = next
			} else {
				closeClause()
				next.OrderIndex = len(art.Clauses)
				art.Clauses = append(art.Clauses, next)
			}
			clause = next
			continue
		}

		if clause != nil {
			lines = append(lines, para)
		} else {
			doc.Header = append(doc.Header, para)
		}
	}
	closeClause()

	doc.Name = headerName(doc.Header)
	return doc, nil
}

// findFirstArticleIndex locates the first article heading of the body proper,
// skipping a table of contents. A TOC is a run of headings with no text
// between them; the body shows text within a couple of paragraphs of its
// first heading (article → clause → text, or article → text).
func findFirstArticleIndex(paragraphs []string) int {
	fallback := -1
	for i, para := range paragraphs {
		if _, ok := matchArticle(para); !ok {
			continue
		}
		if fallback < 0 {
			fallback = i
		}
		window := make([]byte, 0, 5)
		for j := i; j < len(paragraphs) && j < i+5; j++ {
			window = append(window, classify(paragraphs[j]))
		}
		if len(window) >= 3 {
			if window[1] == 'C' && (window[2] == 'T' || (len(window) > 3 && window[3] == 'T')) {
				return i
			}
			if window[1] == 'T' {
				return i
			}
		}
	}
	if fallback >= 0 {
		return fallback
	}
	return 0
}

func classify(para string) byte {
	if _, ok := matchArticle(para); ok {
		return 'A'
	}
	if _, ok := matchClause(para); ok {
		return 'C'
	}
	return 'T'
}

// headerName scans the header paragraphs for an agreement title keyword and
// returns the normalized paragraph, or "" when none is found.
func headerName(header []string) string {
	for _, para := range header {
		compact := strings.NewReplacer(" ", "", "\t", "").Replace(para)
		for _, kw := range agreementNames {
			if strings.Contains(compact, kw) {
				return strings.TrimSpace(wsRun.ReplaceAllString(para, " "))
			}
		}
	}
	return ""
}
