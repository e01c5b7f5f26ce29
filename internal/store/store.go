// Package store persists reference and working (generated) agreements in
// SQLite. The parsed article/clause tree maps 1:1 onto relational rows.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jihoonbyun/loandraft/internal/agreement"
)

// Schema for all agreement tables. Applied by Open.
const Schema = `
CREATE TABLE IF NOT EXISTS agreements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	file_name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	header_text TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	agreement_id INTEGER NOT NULL REFERENCES agreements(id) ON DELETE CASCADE,
	article_number INTEGER NOT NULL,
	sub_number INTEGER NOT NULL DEFAULT 0,
	display TEXT NOT NULL,
	title TEXT NOT NULL,
	order_index INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_articles_agreement ON articles(agreement_id, order_index);
CREATE TABLE IF NOT EXISTS clauses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	article_id INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
	clause_number INTEGER NOT NULL,
	display TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	order_index INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_clauses_article ON clauses(article_id, order_index);

CREATE TABLE IF NOT EXISTS generated_agreements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	base_agreement_id INTEGER REFERENCES agreements(id) ON DELETE SET NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS generated_articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	agreement_id INTEGER NOT NULL REFERENCES generated_agreements(id) ON DELETE CASCADE,
	article_number INTEGER NOT NULL,
	display TEXT NOT NULL,
	title TEXT NOT NULL,
	order_index INTEGER NOT NULL,
	ref_agreement_id INTEGER,
	ref_article_id INTEGER,
	term_sheet_text TEXT NOT NULL DEFAULT '',
	reconcile_tier TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gen_articles_agreement ON generated_articles(agreement_id, order_index);
CREATE TABLE IF NOT EXISTS generated_clauses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	article_id INTEGER NOT NULL REFERENCES generated_articles(id) ON DELETE CASCADE,
	clause_number INTEGER NOT NULL,
	display TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	order_index INTEGER NOT NULL,
	ref_clause_id INTEGER,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_gen_clauses_article ON generated_clauses(article_id, order_index);
`

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// AgreementMeta is a reference agreement's summary row.
type AgreementMeta struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	FileName     string    `json:"file_name"`
	Description  string    `json:"description"`
	ArticleCount int       `json:"article_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// StoredArticle is a reference article row with its clauses.
type StoredArticle struct {
	ID          int64          `json:"id"`
	AgreementID int64          `json:"agreement_id"`
	Number      int            `json:"article_number"`
	SubNumber   int            `json:"sub_number"`
	Display     string         `json:"article_number_display"`
	Title       string         `json:"title"`
	OrderIndex  int            `json:"order_index"`
	Clauses     []StoredClause `json:"clauses,omitempty"`
}

// StoredClause is a reference clause row.
type StoredClause struct {
	ID         int64  `json:"id"`
	ArticleID  int64  `json:"article_id"`
	Number     int    `json:"clause_number"`
	Display    string `json:"clause_number_display"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	OrderIndex int    `json:"order_index"`
}

// SaveAgreement persists a parsed document atomically and returns its id.
func (s *Store) SaveAgreement(ctx context.Context, doc *agreement.Document) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	headerText := ""
	for i, p := range doc.Header {
		if i > 0 {
			headerText += "\n"
		}
		headerText += p
	}
	description := fmt.Sprintf("총 %d개 조항", len(doc.Articles))

	res, err := tx.ExecContext(ctx,
		`INSERT INTO agreements (name, file_name, description, header_text, created_at) VALUES (?, ?, ?, ?, ?)`,
		doc.Name, doc.FileName, description, headerText, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert agreement: %w", err)
	}
	agreementID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("agreement id: %w", err)
	}

	for _, art := range doc.Articles {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO articles (agreement_id, article_number, sub_number, display, title, order_index)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			agreementID, art.Number, art.SubNumber, art.DisplayNumber(), art.Title, art.OrderIndex)
		if err != nil {
			return 0, fmt.Errorf("insert article %d: %w", art.Number, err)
		}
		articleID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("article id: %w", err)
		}
		for _, cl := range art.Clauses {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO clauses (article_id, clause_number, display, title, content, order_index)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				articleID, cl.Number, cl.DisplayNumber(), cl.Title, cl.Content, cl.OrderIndex); err != nil {
				return 0, fmt.Errorf("insert clause %d: %w", cl.Number, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return agreementID, nil
}

// ListAgreements returns summary rows for all reference agreements.
func (s *Store) ListAgreements(ctx context.Context) ([]AgreementMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.name, a.file_name, a.description, a.created_at,
		       (SELECT COUNT(*) FROM articles WHERE agreement_id = a.id)
		FROM agreements a ORDER BY a.id`)
	if err != nil {
		return nil, fmt.Errorf("list agreements: %w", err)
	}
	defer rows.Close()

	var out []AgreementMeta
	for rows.Next() {
		var m AgreementMeta
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.Name, &m.FileName, &m.Description, &createdAt, &m.ArticleCount); err != nil {
			return nil, fmt.Errorf("scan agreement: %w", err)
		}
		m.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetAgreement returns one agreement's summary, or nil when absent.
func (s *Store) GetAgreement(ctx context.Context, id int64) (*AgreementMeta, error) {
	var m AgreementMeta
	var createdAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.name, a.file_name, a.description, a.created_at,
		       (SELECT COUNT(*) FROM articles WHERE agreement_id = a.id)
		FROM agreements a WHERE a.id = ?`, id).
		Scan(&m.ID, &m.Name, &m.FileName, &m.Description, &createdAt, &m.ArticleCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get agreement: %w", err)
	}
	m.CreatedAt = time.Unix(createdAt, 0)
	return &m, nil
}

// GetArticles returns an agreement's articles in document order, with clauses.
func (s *Store) GetArticles(ctx context.Context, agreementID int64) ([]StoredArticle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agreement_id, article_number, sub_number, display, title, order_index
		FROM articles WHERE agreement_id = ? ORDER BY order_index`, agreementID)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []StoredArticle
	for rows.Next() {
		var a StoredArticle
		if err := rows.Scan(&a.ID, &a.AgreementID, &a.Number, &a.SubNumber, &a.Display, &a.Title, &a.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range articles {
		clauses, err := s.GetClauses(ctx, articles[i].ID)
		if err != nil {
			return nil, err
		}
		articles[i].Clauses = clauses
	}
	return articles, nil
}

// GetArticle returns one article row with clauses, or nil when absent.
func (s *Store) GetArticle(ctx context.Context, articleID int64) (*StoredArticle, error) {
	var a StoredArticle
	err := s.db.QueryRowContext(ctx, `
		SELECT id, agreement_id, article_number, sub_number, display, title, order_index
		FROM articles WHERE id = ?`, articleID).
		Scan(&a.ID, &a.AgreementID, &a.Number, &a.SubNumber, &a.Display, &a.Title, &a.OrderIndex)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	clauses, err := s.GetClauses(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Clauses = clauses
	return &a, nil
}

// GetClauses returns an article's clauses in order.
func (s *Store) GetClauses(ctx context.Context, articleID int64) ([]StoredClause, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, article_id, clause_number, display, title, content, order_index
		FROM clauses WHERE article_id = ? ORDER BY order_index`, articleID)
	if err != nil {
		return nil, fmt.Errorf("query clauses: %w", err)
	}
	defer rows.Close()

	var clauses []StoredClause
	for rows.Next() {
		var c StoredClause
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.Number, &c.Display, &c.Title, &c.Content, &c.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan clause: %w", err)
		}
		clauses = append(clauses, c)
	}
	return clauses, rows.Err()
}

// DeleteAgreement removes an agreement and, via cascade, its articles and
// clauses. Returns false when no such agreement exists.
func (s *Store) DeleteAgreement(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM agreements WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete agreement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SearchArticles finds reference articles whose title contains q.
func (s *Store) SearchArticles(ctx context.Context, q string) ([]StoredArticle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, agreement_id, article_number, sub_number, display, title, order_index
		FROM articles WHERE title LIKE '%' || ? || '%' ORDER BY agreement_id, order_index`, q)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	defer rows.Close()

	var out []StoredArticle
	for rows.Next() {
		var a StoredArticle
		if err := rows.Scan(&a.ID, &a.AgreementID, &a.Number, &a.SubNumber, &a.Display, &a.Title, &a.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SearchClauses finds reference clauses whose title contains q.
func (s *Store) SearchClauses(ctx context.Context, q string) ([]StoredClause, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, article_id, clause_number, display, title, content, order_index
		FROM clauses WHERE title LIKE '%' || ? || '%' ORDER BY article_id, order_index`, q)
	if err != nil {
		return nil, fmt.Errorf("search clauses: %w", err)
	}
	defer rows.Close()

	var out []StoredClause
	for rows.Next() {
		var c StoredClause
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.Number, &c.Display, &c.Title, &c.Content, &c.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan clause: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
