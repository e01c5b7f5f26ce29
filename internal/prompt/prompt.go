// Package prompt builds the generation prompts sent to the drafting model.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ClauseInput is one reference clause passed to the model. Number is the
// display form ("1", "본문") so the model echoes it back unchanged.
type ClauseInput struct {
	Number  string
	Title   string
	Content string
}

type clauseJSON struct {
	ClauseNumber any    `json:"clause_number"`
	ClauseTitle  string `json:"clause_title"`
	Content      string `json:"content"`
}

// SystemMessage primes the model as a loan-agreement drafting specialist.
const SystemMessage = "당신은 대출약정서 작성 전문가입니다. 주어진 지침에 따라 정확하고 법적으로 유효한 대출약정서 조항을 작성합니다."

// BuildGenerationPrompt assembles the drafting prompt: the term sheet, the
// reference clauses as a JSON array, and the isomorphism rules — the output
// array must keep the input's count, order, clause_number and clause_title,
// substituting only term-sheet-driven values inside content. Values the term
// sheet does not cover are marked "[확인 필요]" in place.
//
// Only clause-level data goes into the prompt; the article title is reused
// from the reference agreement verbatim and never regenerated.
func BuildGenerationPrompt(termSheetText, agreementName string, clauses []ClauseInput) (string, error) {
	wire := make([]clauseJSON, 0, len(clauses))
	for _, c := range clauses {
		var num any = c.Number
		if n, err := strconv.Atoi(c.Number); err == nil {
			num = n
		}
		wire = append(wire, clauseJSON{ClauseNumber: num, ClauseTitle: c.Title, Content: c.Content})
	}

	// Korean text must survive encoding unescaped.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(wire); err != nil {
		return "", fmt.Errorf("encode clause structure: %w", err)
	}
	clauseStructure := strings.TrimRight(buf.String(), "\n")

	var sb strings.Builder
	sb.WriteString(`당신은 대출약정서 작성 전문가입니다.

## 목표
- 입력으로 제공되는 **참조 대출약정서 항 JSON 배열의 각 원소를 1:1로 대응**하여,
- **동일한 개수, 동일한 순서, 동일한 clause_number, clause_title**을 유지한 채,
- 각 content에서 **Term Sheet로 인해 바뀌어야 하는 부분만** 대체하여 출력하세요.

## 절대 규칙(강제)
1) **출력 JSON 배열의 길이는 입력 참조 배열의 길이와 반드시 동일**해야 합니다.
`)
	fmt.Fprintf(&sb, "   - 예: 참조 배열이 %d개면 출력도 **반드시 %d개**입니다.\n", len(clauses), len(clauses))
	sb.WriteString(`2) **순서 유지**: 입력 배열의 순서를 그대로 유지하세요(정렬/재배치 금지).
3) **키/값 유지**: 각 객체의 ` + "`clause_number`, `clause_title`" + `은 입력과 **완전히 동일**해야 하며, ` + "`content`" + `만 치환 대상입니다.
4) **문장 구조/형식 최대 유지**
   - 원문 content의 문장, 문단, 항목(번호/기호), 줄바꿈(\n)을 **그대로 유지**하세요.
   - **새로운 문장/문단/항목을 추가하지 말고**, **삭제하지도 마세요.**
5) **치환 범위 제한(가장 중요)**
   - Term Sheet와 **명확히 대응**되는 값(금액, 날짜, 기간, 비율, 계좌명, 당사자명, 정의, 조건 목록 등)만 해당 문자열을 **치환**하세요.
   - Term Sheet와 무관하거나 대응이 불명확한 문구는 **그대로 유지**하여 제시하세요.
6) **Term Sheet에 없는 값 처리**
   - 치환 대상 값이 Term Sheet에 없으면, **그 값/구문 자리만** 정확히 [확인 필요]로 치환하세요.
   - 문장/항 전체를 [확인 필요]로 바꾸지 마세요(부분 치환만 허용).
7) **금지사항**
   - 법률 용어/표현 임의 변경 금지
   - 원문에 없는 내용 추가 금지
   - 요약/해설/주석 추가 금지
   - 항의 분리/통합/재구성 금지

---

## Term Sheet 정보

`)
	sb.WriteString(termSheetText)
	sb.WriteString("\n\n---\n\n## 참조 대출약정서 항 (원문)\n\n")
	fmt.Fprintf(&sb, "참조 문서: %q\n\n", agreementName)
	sb.WriteString(clauseStructure)
	sb.WriteString("\n\n---\n\n## 출력 형식\n\n" +
		"**반드시 아래 JSON 형식으로만 응답하세요. 다른 설명이나 마크다운(##, ** 등)을 사용하지 마세요.**\n\n" +
		"```json\n[\n  {\n    \"clause_number\": 1,\n    \"clause_title\": \"항 제목\",\n    \"content\": \"항 내용 (원문 구조 유지, Term Sheet 값만 대체)\"\n  }\n]\n```\n\n" +
		"---\n\n## 작성 요청\n\n" +
		"- 위 참조 항들의 문장 구조와 표현을 그대로 유지하면서, Term Sheet의 구체적인 값과 명확히 오버랩되는 부분만 대체하여 JSON 배열로 출력하세요.\n" +
		"- 입력 참조 항 개수와 동일한 개수의 항을 반드시 반환하세요(누락/추가 금지).\n" +
		"- Term Sheet에 없는 정보는 해당 값/구문 자리만 \"[확인 필요]\"로 표시하세요.\n")

	return sb.String(), nil
}
