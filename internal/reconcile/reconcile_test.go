package reconcile

import (
	"strings"
	"testing"
)

func TestReconcile_FencedJSON(t *testing.T) {
	response := "다음과 같이 작성했습니다.\n\n```json\n[\n" +
		`  {"clause_number": 1, "clause_title": "목적", "content": "본 계약의 목적은 [확인 필요]이다."},` + "\n" +
		`  {"clause_number": 2, "clause_title": "상환", "content": "차주는 2026년 12월 31일까지 상환한다."}` + "\n" +
		"]\n```\n\n이상입니다."
	clauses, tier := Reconcile(response)
	if tier != TierFencedJSON {
		t.Fatalf("expected tier %v, got %v", TierFencedJSON, tier)
	}
	if len(clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(clauses))
	}
	if clauses[0].Number != 1 || clauses[0].Title != "목적" {
		t.Errorf("unexpected first clause: %+v", clauses[0])
	}
	if !strings.Contains(clauses[0].Content, "[확인 필요]") {
		t.Errorf("expected placeholder preserved, got %q", clauses[0].Content)
	}
	if clauses[1].Number != 2 || clauses[1].Title != "상환" {
		t.Errorf("unexpected second clause: %+v", clauses[1])
	}
}

func TestReconcile_FencedBlockWithoutLanguageTag(t *testing.T) {
	response := "```\n[{\"clause_number\": 1, \"clause_title\": \"목적\", \"content\": \"내용\"}]\n```"
	clauses, tier := Reconcile(response)
	if tier != TierFencedBlock {
		t.Fatalf("expected tier %v, got %v", TierFencedBlock, tier)
	}
	if len(clauses) != 1 || clauses[0].Title != "목적" {
		t.Errorf("unexpected clauses: %+v", clauses)
	}
}

func TestReconcile_BareArray(t *testing.T) {
	response := `검토 결과는 다음과 같습니다: [{"clause_number": 1, "clause_title": "금액", "content": "대출금액은 [확인 필요]원으로 한다."}] 확인 바랍니다.`
	clauses, tier := Reconcile(response)
	if tier != TierBareArray {
		t.Fatalf("expected tier %v, got %v", TierBareArray, tier)
	}
	if len(clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(clauses))
	}
	// Brackets inside string content must not break the balanced scan.
	if clauses[0].Content != "대출금액은 [확인 필요]원으로 한다." {
		t.Errorf("unexpected content: %q", clauses[0].Content)
	}
}

func TestReconcile_MarkdownHeadings(t *testing.T) {
	response := "## 작성 결과\n\n### 제1항 목적\n\n본 계약은 대출 조건을 정한다.\n\n### 제2항 상환\n\n차주는 만기일에 상환한다.\n추가 조건은 별도 합의한다.\n"
	clauses, tier := Reconcile(response)
	if tier != TierHeading {
		t.Fatalf("expected tier %v, got %v", TierHeading, tier)
	}
	if len(clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(clauses))
	}
	if clauses[0].Number != 1 || clauses[0].Title != "목적" {
		t.Errorf("unexpected first clause: %+v", clauses[0])
	}
	if clauses[0].Content != "본 계약은 대출 조건을 정한다." {
		t.Errorf("unexpected first content: %q", clauses[0].Content)
	}
	if clauses[1].Number != 2 || clauses[1].Title != "상환" {
		t.Errorf("unexpected second clause: %+v", clauses[1])
	}
	if !strings.Contains(clauses[1].Content, "만기일에 상환한다") ||
		!strings.Contains(clauses[1].Content, "별도 합의한다") {
		t.Errorf("unexpected second content: %q", clauses[1].Content)
	}
}

func TestReconcile_PlainTextFallback(t *testing.T) {
	response := "  죄송합니다. 구조화된 응답을 생성할 수 없습니다.  "
	clauses, tier := Reconcile(response)
	if tier != TierPlainText {
		t.Fatalf("expected tier %v, got %v", TierPlainText, tier)
	}
	if len(clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(clauses))
	}
	if clauses[0].Number != 1 {
		t.Errorf("expected clause number 1, got %d", clauses[0].Number)
	}
	if clauses[0].Content != "죄송합니다. 구조화된 응답을 생성할 수 없습니다." {
		t.Errorf("expected trimmed response as content, got %q", clauses[0].Content)
	}
}

func TestReconcile_NumberAsString(t *testing.T) {
	response := "```json\n[{\"clause_number\": \"3\", \"clause_title\": \"이자\", \"content\": \"연 4.5%\"}]\n```"
	clauses, tier := Reconcile(response)
	if tier != TierFencedJSON {
		t.Fatalf("expected tier %v, got %v", TierFencedJSON, tier)
	}
	if clauses[0].Number != 3 {
		t.Errorf("expected number 3, got %d", clauses[0].Number)
	}
}

func TestReconcile_NonNumericNumberCoercesToZero(t *testing.T) {
	response := "```json\n[{\"clause_number\": \"본문\", \"clause_title\": \"\", \"content\": \"내용\"}]\n```"
	clauses, _ := Reconcile(response)
	if clauses[0].Number != 0 {
		t.Errorf("expected number 0 for non-numeric value, got %d", clauses[0].Number)
	}
}

func TestReconcile_MalformedFenceFallsThrough(t *testing.T) {
	// A fence with broken JSON must not win the tier; the heading split
	// should pick it up if present, else plain text.
	response := "```json\n[{broken\n```"
	clauses, tier := Reconcile(response)
	if tier != TierPlainText {
		t.Fatalf("expected tier %v, got %v", TierPlainText, tier)
	}
	if len(clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(clauses))
	}
}

func TestTier_String(t *testing.T) {
	tests := []struct {
		tier Tier
		want string
	}{
		{TierFencedJSON, "fenced_json"},
		{TierFencedBlock, "fenced_block"},
		{TierBareArray, "bare_array"},
		{TierHeading, "heading"},
		{TierPlainText, "plain_text"},
		{Tier(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.tier.String(); got != tt.want {
			t.Errorf("Tier(%d).String() = %q, want %q", tt.tier, got, tt.want)
		}
	}
}

func TestExtractPlainText_SingleRecord(t *testing.T) {
	response := "```json\n[{\"clause_number\": 1, \"clause_title\": \"목적\", \"content\": \"핵심 내용\"}]\n```"
	if got := ExtractPlainText(response); got != "핵심 내용" {
		t.Errorf("expected single record content, got %q", got)
	}
}

func TestExtractPlainText_MultipleRecords(t *testing.T) {
	response := "```json\n[{\"clause_number\": 1, \"content\": \"a\"}, {\"clause_number\": 2, \"content\": \"b\"}]\n```"
	if got := ExtractPlainText(response); got != response {
		t.Errorf("expected original response for multi-record array, got %q", got)
	}
}

func TestExtractPlainText_Unstructured(t *testing.T) {
	response := "그냥 텍스트"
	if got := ExtractPlainText(response); got != response {
		t.Errorf("expected original response, got %q", got)
	}
}
