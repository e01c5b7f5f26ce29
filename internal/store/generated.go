package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GeneratedAgreementMeta is a working agreement's summary row.
type GeneratedAgreementMeta struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	BaseAgreementID int64     `json:"base_agreement_id,omitempty"`
	ArticleCount    int       `json:"article_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GeneratedArticle is one drafted article with provenance back to the
// reference agreement, term sheet, and the reconciliation tier that
// extracted its clauses.
type GeneratedArticle struct {
	ID             int64             `json:"id"`
	AgreementID    int64             `json:"agreement_id"`
	Number         int               `json:"article_number"`
	Display        string            `json:"article_number_display"`
	Title          string            `json:"title"`
	OrderIndex     int               `json:"order_index"`
	RefAgreementID int64             `json:"ref_agreement_id,omitempty"`
	RefArticleID   int64             `json:"ref_article_id,omitempty"`
	TermSheetText  string            `json:"term_sheet_text,omitempty"`
	ReconcileTier  string            `json:"reconcile_tier,omitempty"`
	Clauses        []GeneratedClause `json:"clauses,omitempty"`
}

// GeneratedClause is one drafted clause row.
type GeneratedClause struct {
	ID          int64  `json:"id"`
	ArticleID   int64  `json:"article_id"`
	Number      int    `json:"clause_number"`
	Display     string `json:"clause_number_display"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	OrderIndex  int    `json:"order_index"`
	RefClauseID int64  `json:"ref_clause_id,omitempty"`
}

// CreateGeneratedAgreement opens a new working agreement.
func (s *Store) CreateGeneratedAgreement(ctx context.Context, name, description string, baseAgreementID int64) (int64, error) {
	now := time.Now().Unix()
	var base any
	if baseAgreementID > 0 {
		base = baseAgreementID
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO generated_agreements (name, description, base_agreement_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`, name, description, base, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert generated agreement: %w", err)
	}
	return res.LastInsertId()
}

// ListGeneratedAgreements returns all working agreements.
func (s *Store) ListGeneratedAgreements(ctx context.Context) ([]GeneratedAgreementMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.description, COALESCE(g.base_agreement_id, 0), g.created_at, g.updated_at,
		       (SELECT COUNT(*) FROM generated_articles WHERE agreement_id = g.id)
		FROM generated_agreements g ORDER BY g.id`)
	if err != nil {
		return nil, fmt.Errorf("list generated agreements: %w", err)
	}
	defer rows.Close()

	var out []GeneratedAgreementMeta
	for rows.Next() {
		m, err := scanGeneratedMeta(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetGeneratedAgreement returns one working agreement, or nil when absent.
func (s *Store) GetGeneratedAgreement(ctx context.Context, id int64) (*GeneratedAgreementMeta, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT g.id, g.name, g.description, COALESCE(g.base_agreement_id, 0), g.created_at, g.updated_at,
		       (SELECT COUNT(*) FROM generated_articles WHERE agreement_id = g.id)
		FROM generated_agreements g WHERE g.id = ?`, id)
	m, err := scanGeneratedMeta(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get generated agreement: %w", err)
	}
	return &m, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanGeneratedMeta(r rowScanner) (GeneratedAgreementMeta, error) {
	var m GeneratedAgreementMeta
	var createdAt, updatedAt int64
	if err := r.Scan(&m.ID, &m.Name, &m.Description, &m.BaseAgreementID, &createdAt, &updatedAt, &m.ArticleCount); err != nil {
		return m, err
	}
	m.CreatedAt = time.Unix(createdAt, 0)
	m.UpdatedAt = time.Unix(updatedAt, 0)
	return m, nil
}

// DeleteGeneratedAgreement removes a working agreement and its articles.
func (s *Store) DeleteGeneratedAgreement(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM generated_agreements WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete generated agreement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SaveGeneratedArticle appends a drafted article (with its clauses) to a
// working agreement atomically and returns the article id. OrderIndex is
// assigned from the current article count.
func (s *Store) SaveGeneratedArticle(ctx context.Context, agreementID int64, art GeneratedArticle) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var order int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM generated_articles WHERE agreement_id = ?`, agreementID).Scan(&order); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}

	now := time.Now().Unix()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO generated_articles
		 (agreement_id, article_number, display, title, order_index,
		  ref_agreement_id, ref_article_id, term_sheet_text, reconcile_tier, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		agreementID, art.Number, art.Display, art.Title, order,
		nullableID(art.RefAgreementID), nullableID(art.RefArticleID),
		art.TermSheetText, art.ReconcileTier, now)
	if err != nil {
		return 0, fmt.Errorf("insert generated article: %w", err)
	}
	articleID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("generated article id: %w", err)
	}

	for i, cl := range art.Clauses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO generated_clauses
			 (article_id, clause_number, display, title, content, order_index, ref_clause_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			articleID, cl.Number, cl.Display, cl.Title, cl.Content, i, nullableID(cl.RefClauseID), now); err != nil {
			return 0, fmt.Errorf("insert generated clause %d: %w", cl.Number, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE generated_agreements SET updated_at = ? WHERE id = ?`, now, agreementID); err != nil {
		return 0, fmt.Errorf("touch agreement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return articleID, nil
}

// GetGeneratedArticles returns a working agreement's articles with clauses.
func (s *Store) GetGeneratedArticles(ctx context.Context, agreementID int64) ([]GeneratedArticle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agreement_id, article_number, display, title, order_index,
		       COALESCE(ref_agreement_id, 0), COALESCE(ref_article_id, 0), term_sheet_text, reconcile_tier
		FROM generated_articles WHERE agreement_id = ? ORDER BY order_index`, agreementID)
	if err != nil {
		return nil, fmt.Errorf("query generated articles: %w", err)
	}
	defer rows.Close()

	var articles []GeneratedArticle
	for rows.Next() {
		var a GeneratedArticle
		if err := rows.Scan(&a.ID, &a.AgreementID, &a.Number, &a.Display, &a.Title, &a.OrderIndex,
			&a.RefAgreementID, &a.RefArticleID, &a.TermSheetText, &a.ReconcileTier); err != nil {
			return nil, fmt.Errorf("scan generated article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range articles {
		clauses, err := s.GetGeneratedClauses(ctx, articles[i].ID)
		if err != nil {
			return nil, err
		}
		articles[i].Clauses = clauses
	}
	return articles, nil
}

// GetGeneratedClauses returns a drafted article's clauses in order.
func (s *Store) GetGeneratedClauses(ctx context.Context, articleID int64) ([]GeneratedClause, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, article_id, clause_number, display, title, content, order_index, COALESCE(ref_clause_id, 0)
		FROM generated_clauses WHERE article_id = ? ORDER BY order_index`, articleID)
	if err != nil {
		return nil, fmt.Errorf("query generated clauses: %w", err)
	}
	defer rows.Close()

	var clauses []GeneratedClause
	for rows.Next() {
		var c GeneratedClause
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.Number, &c.Display, &c.Title, &c.Content, &c.OrderIndex, &c.RefClauseID); err != nil {
			return nil, fmt.Errorf("scan generated clause: %w", err)
		}
		clauses = append(clauses, c)
	}
	return clauses, rows.Err()
}

// UpdateGeneratedClause edits a drafted clause's title and content.
// Returns false when no such clause exists.
func (s *Store) UpdateGeneratedClause(ctx context.Context, clauseID int64, title, content string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE generated_clauses SET title = ?, content = ? WHERE id = ?`, title, content, clauseID)
	if err != nil {
		return false, fmt.Errorf("update generated clause: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func nullableID(id int64) any {
	if id > 0 {
		return id
	}
	return nil
}
