package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jihoonbyun/loandraft/internal/agreement"
)

func TestParseParagraphs_BasicDocument(t *testing.T) {
	paragraphs := []string{
		"대출약정서",
		"제1조 목적",
		"제1항 목적",
		"본문내용A",
		"제2항 적용범위",
		"본문내용B",
		"제2조 정의",
	}

	doc, err := ParseParagraphs(paragraphs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Name != "대출약정서" {
		t.Errorf("expected name %q, got %q", "대출약정서", doc.Name)
	}
	if len(doc.Header) != 1 || doc.Header[0] != "대출약정서" {
		t.Errorf("unexpected header: %v", doc.Header)
	}
	if len(doc.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(doc.Articles))
	}

	a1 := doc.Articles[0]
	if a1.Number != 1 || a1.Title != "목적" || a1.OrderIndex != 0 {
		t.Errorf("unexpected first article: %+v", a1)
	}
	if len(a1.Clauses) != 2 {
		t.Fatalf("expected 2 clauses in article 1, got %d", len(a1.Clauses))
	}
	if a1.Clauses[0].Number != 1 || a1.Clauses[0].Title != "목적" || a1.Clauses[0].Content != "본문내용A" {
		t.Errorf("unexpected clause 1: %+v", a1.Clauses[0])
	}
	if a1.Clauses[1].Number != 2 || a1.Clauses[1].Title != "적용범위" || a1.Clauses[1].Content != "본문내용B" {
		t.Errorf("unexpected clause 2: %+v", a1.Clauses[1])
	}
	if a1.Clauses[0].OrderIndex != 0 || a1.Clauses[1].OrderIndex != 1 {
		t.Errorf("unexpected clause order indexes: %d, %d", a1.Clauses[0].OrderIndex, a1.Clauses[1].OrderIndex)
	}

	// An article without clause markers gets the synthetic body clause.
	a2 := doc.Articles[1]
	if len(a2.Clauses) != 1 {
		t.Fatalf("expected 1 clause in article 2, got %d", len(a2.Clauses))
	}
	if a2.Clauses[0].Number != 0 || a2.Clauses[0].Title != agreement.BodyClauseTitle {
		t.Errorf("expected synthetic body clause, got %+v", a2.Clauses[0])
	}
	if a2.Clauses[0].Content != "" {
		t.Errorf("expected empty content, got %q", a2.Clauses[0].Content)
	}
}

func TestParseParagraphs_BodyBeforeFirstClauseMarker(t *testing.T) {
	// Text between the article heading and the first clause marker belongs
	// to that clause, prepended to its content.
	doc, err := ParseParagraphs([]string{
		"제1조 목적",
		"서문 텍스트",
		"제1항 정의",
		"정의 내용",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(doc.Articles))
	}
	clauses := doc.Articles[0].Clauses
	if len(clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(clauses))
	}
	if clauses[0].Number != 1 || clauses[0].Title != "정의" {
		t.Errorf("unexpected clause: %+v", clauses[0])
	}
	want := "서문 텍스트\n정의 내용"
	if clauses[0].Content != want {
		t.Errorf("expected content %q, got %q", want, clauses[0].Content)
	}
}

func TestParseParagraphs_SyntheticClauseKeepsBody(t *testing.T) {
	doc, err := ParseParagraphs([]string{
		"제3조 통지",
		"모든 통지는 서면으로 한다.",
		"통지의 효력은 도달 시 발생한다.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cl := doc.Articles[0].Clauses[0]
	if cl.Number != 0 || cl.Title != agreement.BodyClauseTitle {
		t.Fatalf("expected synthetic body clause, got %+v", cl)
	}
	want := "모든 통지는 서면으로 한다.\n통지의 효력은 도달 시 발생한다."
	if cl.Content != want {
		t.Errorf("expected content %q, got %q", want, cl.Content)
	}
}

func TestParseParagraphs_AppendixTerminates(t *testing.T) {
	doc, err := ParseParagraphs([]string{
		"제1조 목적",
		"본문",
		"별첨 1 서류목록",
		"제2조 정의",
		"이후 내용",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Articles) != 1 {
		t.Fatalf("expected parsing to stop at appendix, got %d articles", len(doc.Articles))
	}
	if doc.Articles[0].Clauses[0].Content != "본문" {
		t.Errorf("unexpected content: %q", doc.Articles[0].Clauses[0].Content)
	}
}

func TestParseParagraphs_AppendixLikeHeaderLineDoesNotTerminate(t *testing.T) {
	doc, err := ParseParagraphs([]string{
		"첨부서류 목록",
		"대출약정서",
		"제1조 목적",
		"본문입니다",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Articles) != 1 {
		t.Fatalf("expected 1 body article, got %d (header=%v)", len(doc.Articles), doc.Header)
	}
	if len(doc.Header) != 2 || doc.Header[0] != "첨부서류 목록" {
		t.Errorf("expected both front-matter lines in header, got %v", doc.Header)
	}
	if doc.Articles[0].Clauses[0].Content != "본문입니다" {
		t.Errorf("unexpected content: %q", doc.Articles[0].Clauses[0].Content)
	}
}

func TestParseParagraphs_AppendixReferenceDoesNotTerminate(t *testing.T) {
	doc, err := ParseParagraphs([]string{
		"제1조 담보",
		"부록 Ⅰ에 기재된 담보를 제공한다.",
		"제2조 기타",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(doc.Articles))
	}
	if doc.Articles[0].Clauses[0].Content != "부록 Ⅰ에 기재된 담보를 제공한다." {
		t.Errorf("reference line should be clause content, got %q", doc.Articles[0].Clauses[0].Content)
	}
}

func TestParseParagraphs_SkipsTableOfContents(t *testing.T) {
	doc, err := ParseParagraphs([]string{
		"목차",
		"제1조 목적",
		"제2조 정의",
		"제1조 목적",
		"본문입니다",
		"제2조 정의",
		"정의내용",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(doc.Articles))
	}
	if len(doc.Header) != 3 {
		t.Errorf("expected TOC in header, got %v", doc.Header)
	}
	if doc.Articles[0].Clauses[0].Content != "본문입니다" {
		t.Errorf("unexpected first article content: %q", doc.Articles[0].Clauses[0].Content)
	}
}

func TestParseParagraphs_NoArticles(t *testing.T) {
	doc, err := ParseParagraphs([]string{
		"안녕하세요",
		"본 문서는 약정서입니다",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Articles) != 0 {
		t.Errorf("expected no articles, got %d", len(doc.Articles))
	}
	if len(doc.Header) != 2 {
		t.Errorf("expected all paragraphs in header, got %v", doc.Header)
	}
	if doc.Name != "본 문서는 약정서입니다" {
		t.Errorf("expected name from header keyword, got %q", doc.Name)
	}
}

func TestParseParagraphs_NilInput(t *testing.T) {
	_, err := ParseParagraphs(nil)
	if !errors.Is(err, ErrNilParagraphs) {
		t.Errorf("expected ErrNilParagraphs, got %v", err)
	}
}

func TestParseParagraphs_EmptyInput(t *testing.T) {
	doc, err := ParseParagraphs([]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Articles) != 0 || len(doc.Header) != 0 {
		t.Errorf("expected empty document, got %+v", doc)
	}
}

func TestParseParagraphs_Idempotent(t *testing.T) {
	paragraphs := []string{
		"대출약정서",
		"제1조 목적",
		"제1항 목적",
		"내용",
		"제2조의2 시장붕괴",
		"본문",
	}
	d1, err := ParseParagraphs(paragraphs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d2, err := ParseParagraphs(paragraphs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(d1, d2) {
		t.Error("expected identical documents from identical input")
	}
}

func TestMatchArticle(t *testing.T) {
	tests := []struct {
		name  string
		para  string
		ok    bool
		num   int
		sub   int
		title string
	}{
		{"plain", "제1조 대출약정", true, 1, 0, "대출약정"},
		{"spaced marker", "제 1 조 정 의", true, 1, 0, "정 의"},
		{"tabbed", "제12조\t기한의 이익 상실", true, 12, 0, "기한의 이익 상실"},
		{"sub number", "제4조의2 시장붕괴", true, 4, 2, "시장붕괴"},
		{"spaced sub number", "제 4 조의 2 시장붕괴", true, 4, 2, "시장붕괴"},
		{"page number tail", "제1조 총칙 12", true, 1, 0, "총칙"},
		{"page dash tail", "제1조 총칙 - 12 -", true, 1, 0, "총칙"},
		{"glued digit tail", "제2조 정의2", true, 2, 0, "정의"},
		{"clause cross reference", "제1조 제1항에 따라 상환한다", false, 0, 0, ""},
		{"double-spaced cross reference", "제1조  제1항 목적", false, 0, 0, ""},
		{"no title", "제1조", false, 0, 0, ""},
		{"not a marker", "대출금은 제1조에 따른다", false, 0, 0, ""},
		{"overlong title", "제1조 " + strings.Repeat("가", 81), false, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := matchArticle(tt.para)
			if ok != tt.ok {
				t.Fatalf("matchArticle(%q) ok = %v, want %v", tt.para, ok, tt.ok)
			}
			if !ok {
				return
			}
			if m.number != tt.num || m.subNumber != tt.sub || m.title != tt.title {
				t.Errorf("matchArticle(%q) = %+v, want num=%d sub=%d title=%q",
					tt.para, m, tt.num, tt.sub, tt.title)
			}
		})
	}
}

func TestMatchClause(t *testing.T) {
	tests := []struct {
		name  string
		para  string
		ok    bool
		num   int
		title string
	}{
		{"plain", "제1항 차입의 종류", true, 1, "차입의 종류"},
		{"no space before title", "제1항차입의 종류", true, 1, "차입의 종류"},
		{"spaced marker", "제 2 항 상환", true, 2, "상환"},
		{"page number tail", "제1항 목적 3", true, 1, "목적"},
		{"no title", "제1항", false, 0, ""},
		{"not a marker", "본 조 제1항을 준용한다", false, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := matchClause(tt.para)
			if ok != tt.ok {
				t.Fatalf("matchClause(%q) ok = %v, want %v", tt.para, ok, tt.ok)
			}
			if ok && (m.number != tt.num || m.title != tt.title) {
				t.Errorf("matchClause(%q) = %+v, want num=%d title=%q", tt.para, m, tt.num, tt.title)
			}
		})
	}
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"총칙 12", "총칙"},
		{"총칙 - 12 -", "총칙"},
		{"정의2", "정의"},
		{"기한의   이익\t상실", "기한의 이익 상실"},
		{"  목적  ", "목적"},
	}
	for _, tt := range tests {
		if got := cleanTitle(tt.in); got != tt.want {
			t.Errorf("cleanTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHeaderName_CompactKeywordMatch(t *testing.T) {
	name := headerName([]string{"2024년 3월", "대 출 약 정 서"})
	if name != "대 출 약 정 서" {
		t.Errorf("expected spaced title to match, got %q", name)
	}
	if headerName([]string{"계약 관련 문서"}) != "" {
		t.Error("expected no name for header without keywords")
	}
}

func TestIsAppendixStart(t *testing.T) {
	starts := []string{"부록 Ⅰ 담보목록", "별첨 1 서류목록", "별지 제1호 서식", "첨부서류 목록"}
	for _, p := range starts {
		if !isAppendixStart(p) {
			t.Errorf("expected %q to start an appendix", p)
		}
	}
	refs := []string{"부록 Ⅰ에 기재된 담보", "별지 제1호의 서식에 따라"}
	for _, p := range refs {
		if isAppendixStart(p) {
			t.Errorf("expected %q to be an in-body reference", p)
		}
	}
}
