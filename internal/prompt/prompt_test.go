package prompt

import (
	"strings"
	"testing"
)

func TestBuildGenerationPrompt_Structure(t *testing.T) {
	clauses := []ClauseInput{
		{Number: "1", Title: "목적", Content: "본 계약의 목적은 대출 조건을 정하는 것이다."},
		{Number: "2", Title: "금액", Content: "대출금액은 금 오억원으로 한다."},
	}
	got, err := BuildGenerationPrompt("대출금액: 금 십억원\n만기: 2027-06-30", "표준 대출약정서", clauses)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"## Term Sheet 정보",
		"대출금액: 금 십억원",
		`"표준 대출약정서"`,
		"[확인 필요]",
		"```json",
		// Clause JSON must carry unescaped Korean and numeric numbers.
		`"clause_number": 1`,
		`"clause_title": "목적"`,
		"대출금액은 금 오억원으로 한다.",
		// The count rule names the concrete clause count.
		"참조 배열이 2개면 출력도 **반드시 2개**입니다.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if strings.Contains(got, `\u`) {
		t.Error("expected Korean text to be unescaped in clause JSON")
	}
}

func TestBuildGenerationPrompt_NonNumericNumberKeptAsString(t *testing.T) {
	got, err := BuildGenerationPrompt("조건 없음", "약정서", []ClauseInput{
		{Number: "본문", Title: "", Content: "내용"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, `"clause_number": "본문"`) {
		t.Error("expected non-numeric clause number to stay a string")
	}
}

func TestBuildGenerationPrompt_EmptyClauses(t *testing.T) {
	got, err := BuildGenerationPrompt("조건", "약정서", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "[]") {
		t.Error("expected empty clause array in prompt")
	}
}

func TestSystemMessage(t *testing.T) {
	if !strings.Contains(SystemMessage, "대출약정서") {
		t.Errorf("unexpected system message: %q", SystemMessage)
	}
}
