package parser

import (
	"reflect"
	"strings"
	"testing"
)

func TestTextExtractor(t *testing.T) {
	input := "대출약정서\n\n제1조 목적\n  제1항 목적  \n본문내용\n\n"
	got, err := (&TextExtractor{}).Paragraphs(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"대출약정서", "제1조 목적", "제1항 목적", "본문내용"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTextExtractor_Empty(t *testing.T) {
	got, err := (&TextExtractor{}).Paragraphs(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no paragraphs, got %v", got)
	}
}

func TestHTMLExtractor(t *testing.T) {
	input := `<html><head><style>p{color:red}</style></head><body>
		<h1>대출약정서</h1>
		<p>제1조 <b>목적</b></p>
		<p>본문내용</p>
		<script>alert(1)</script>
		<ul><li>항목 하나</li></ul>
	</body></html>`
	got, err := (&HTMLExtractor{}).Paragraphs(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"대출약정서", "제1조 목적", "본문내용", "항목 하나"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"agreement.docx", false},
		{"agreement.txt", false},
		{"agreement.html", false},
		{"agreement.HTM", false},
		{"agreement.pdf", false},
		{"agreement.xlsx", true},
		{"agreement", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
		}
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("계약서.DOCX") {
		t.Error("extension check must be case-insensitive")
	}
	if IsSupportedExtension("계약서.hwp") {
		t.Error("hwp is not supported")
	}
}

func TestParseFile_TextDocument(t *testing.T) {
	input := "대출약정서\n제1조 목적\n제1항 목적\n본문내용\n"
	doc, err := ParseFile(strings.NewReader(input), "표준계약.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.FileName != "표준계약.txt" {
		t.Errorf("unexpected file name: %q", doc.FileName)
	}
	// The header names the agreement, so the filename fallback is unused.
	if doc.Name != "대출약정서" {
		t.Errorf("unexpected name: %q", doc.Name)
	}
	if len(doc.Articles) != 1 || doc.Articles[0].Clauses[0].Content != "본문내용" {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestParseFile_NameFallsBackToFilename(t *testing.T) {
	doc, err := ParseFile(strings.NewReader("제1조 목적\n내용\n"), "계약본.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Name != "계약본" {
		t.Errorf("expected filename-derived name, got %q", doc.Name)
	}
}
