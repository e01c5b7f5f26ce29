package agreement

import "strconv"

// Document is a parsed loan agreement: header paragraphs that precede the
// first article, followed by the article/clause body.
type Document struct {
	Name     string     // Agreement display name (from header, or filename)
	FileName string     // Original upload filename
	Header   []string   // Paragraphs before the first article, in order
	Articles []*Article // Ordered top-level sections
}

// Article is one numbered section ("제N조"), optionally with a sub-number
// for inserted articles ("제N조의M").
type Article struct {
	Number     int       // N in 제N조
	SubNumber  int       // M in 제N조의M; 0 when absent
	Title      string    // Heading text, cleaned
	OrderIndex int       // Position among articles in document order
	Clauses    []*Clause // Ordered; always at least one
}

// Clause is one numbered subsection ("제N항") within an article. An article
// with no explicit clause markers carries a single synthetic clause with
// Number 0 and Title "본문".
type Clause struct {
	Number     int    // N in 제N항; 0 for the synthetic body clause
	Title      string // Heading text, cleaned
	Content    string // Body paragraphs joined with newlines
	OrderIndex int    // Position among clauses within the article
}

// BodyClauseTitle is the title of the synthetic clause created for articles
// that have no explicit 제N항 markers.
const BodyClauseTitle = "본문"

// DisplayNumber renders the article number as shown in documents:
// "N" or "N의M" (the template wraps it as 제…조).
func (a *Article) DisplayNumber() string {
	if a.SubNumber > 0 {
		return strconv.Itoa(a.Number) + "의" + strconv.Itoa(a.SubNumber)
	}
	return strconv.Itoa(a.Number)
}

// DisplayNumber renders the clause number; the synthetic body clause
// displays as 본문 rather than 제0항.
func (c *Clause) DisplayNumber() string {
	if c.Number == 0 {
		return BodyClauseTitle
	}
	return strconv.Itoa(c.Number)
}
