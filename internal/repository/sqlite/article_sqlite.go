// Package sqlite is an embedded implementation of the metadata store for
// single-binary deployments and tests. It uses the cgo-free modernc driver
// and mirrors the Postgres implementation's contracts: fresh IDs on create,
// sql.ErrNoRows for absent rows, newest-first ordering with ID-descending
// tie-break.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"articleapi/internal/model"
	"articleapi/internal/repository"
)

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id            TEXT PRIMARY KEY,
			title         TEXT NOT NULL,
			authors       TEXT NOT NULL,
			publication_year INTEGER,
			keywords      TEXT NOT NULL DEFAULT '',
			topic         TEXT NOT NULL DEFAULT '',
			storage_key   TEXT NOT NULL UNIQUE,
			filename      TEXT NOT NULL,
			size          INTEGER NOT NULL CHECK (size >= 0),
			content_type  TEXT NOT NULL,
			owner_id      TEXT NOT NULL,
			uploaded_at   TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_uploaded_at ON articles (uploaded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_owner_id ON articles (owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_topic ON articles (topic)`,
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			full_name     TEXT NOT NULL,
			avatar_key    TEXT NOT NULL DEFAULT '',
			registered_at TIMESTAMP NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// ArticleSQLite is a SQLite implementation of repository.ArticleRepository.
type ArticleSQLite struct {
	db *sql.DB
}

// NewArticleSQLite creates a new ArticleSQLite repository.
func NewArticleSQLite(db *sql.DB) *ArticleSQLite {
	return &ArticleSQLite{db: db}
}

var _ repository.ArticleRepository = (*ArticleSQLite)(nil)

const articleColumns = `id, title, authors, publication_year, keywords, topic, storage_key, filename, size, content_type, owner_id, uploaded_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*model.Article, error) {
	var a model.Article
	var year sql.NullInt64
	if err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Authors,
		&year,
		&a.Keywords,
		&a.Topic,
		&a.StorageKey,
		&a.Filename,
		&a.Size,
		&a.ContentType,
		&a.OwnerID,
		&a.UploadedAt,
	); err != nil {
		return nil, err
	}
	if year.Valid {
		y := int(year.Int64)
		a.PublicationYear = &y
	}
	return &a, nil
}

func yearArg(a *model.Article) any {
	if a.PublicationYear == nil {
		return nil
	}
	return *a.PublicationYear
}

// Create inserts a new article row with a freshly assigned ID.
func (r *ArticleSQLite) Create(ctx context.Context, a *model.Article) (*model.Article, error) {
	id := uuid.NewString()
	const q = `
		INSERT INTO articles (id, title, authors, publication_year, keywords, topic, storage_key, filename, size, content_type, owner_id, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		id,
		a.Title,
		a.Authors,
		yearArg(a),
		a.Keywords,
		a.Topic,
		a.StorageKey,
		a.Filename,
		a.Size,
		a.ContentType,
		a.OwnerID,
		a.UploadedAt,
	)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByID fetches a single article by its ID.
func (r *ArticleSQLite) FindByID(ctx context.Context, id string) (*model.Article, error) {
	const q = `SELECT ` + articleColumns + ` FROM articles WHERE id = ?`
	return scanArticle(r.db.QueryRowContext(ctx, q, id))
}

// Update replaces the mutable fields of the row identified by a.ID.
func (r *ArticleSQLite) Update(ctx context.Context, a *model.Article) (*model.Article, error) {
	const q = `
		UPDATE articles
		SET title = ?, authors = ?, publication_year = ?, keywords = ?, topic = ?,
		    storage_key = ?, filename = ?, size = ?, content_type = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		a.Title,
		a.Authors,
		yearArg(a),
		a.Keywords,
		a.Topic,
		a.StorageKey,
		a.Filename,
		a.Size,
		a.ContentType,
		a.ID,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, sql.ErrNoRows
	}
	return r.FindByID(ctx, a.ID)
}

// Delete removes an article by ID. Returns sql.ErrNoRows if no row matched.
func (r *ArticleSQLite) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const searchWhere = `
	(?1 = '' OR LOWER(authors) LIKE '%' || LOWER(?1) || '%')
	AND (?2 = '' OR topic = ?2)
	AND (?3 = '' OR LOWER(keywords) LIKE '%' || LOWER(?3) || '%')`

// Search returns the page of rows matching the composite filter plus the
// total match count.
func (r *ArticleSQLite) Search(ctx context.Context, f repository.SearchFilter, pq repository.PageQuery) (*repository.PageResult[model.Article], error) {
	const qCount = `SELECT COUNT(*) FROM articles WHERE` + searchWhere
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, f.Author, f.Topic, f.Keyword).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + articleColumns + ` FROM articles
		WHERE` + searchWhere + `
		ORDER BY uploaded_at DESC, id DESC
		LIMIT ?4 OFFSET ?5`
	rows, err := r.db.QueryContext(ctx, qList, f.Author, f.Topic, f.Keyword, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return collectPage(rows, total)
}

// ListByOwner returns the owner's rows, newest first.
func (r *ArticleSQLite) ListByOwner(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.Article], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE owner_id = ?`, ownerID).Scan(&total); err != nil {
		return nil, err
	}

	const q = `
		SELECT ` + articleColumns + ` FROM articles
		WHERE owner_id = ?
		ORDER BY uploaded_at DESC, id DESC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, ownerID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return collectPage(rows, total)
}

const ownerSearchWhere = `
	owner_id = ?1 AND (
		LOWER(title) LIKE '%' || LOWER(?2) || '%'
		OR LOWER(authors) LIKE '%' || LOWER(?2) || '%'
		OR LOWER(keywords) LIKE '%' || LOWER(?2) || '%')`

// SearchByOwner returns the owner's rows whose title, authors or keywords
// contain query, newest first.
func (r *ArticleSQLite) SearchByOwner(ctx context.Context, ownerID, query string, pq repository.PageQuery) (*repository.PageResult[model.Article], error) {
	const qCount = `SELECT COUNT(*) FROM articles WHERE` + ownerSearchWhere
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, ownerID, query).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + articleColumns + ` FROM articles
		WHERE` + ownerSearchWhere + `
		ORDER BY uploaded_at DESC, id DESC
		LIMIT ?3 OFFSET ?4`
	rows, err := r.db.QueryContext(ctx, qList, ownerID, query, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return collectPage(rows, total)
}

// CountByOwner returns the number of rows owned by ownerID.
func (r *ArticleSQLite) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE owner_id = ?`, ownerID).Scan(&n)
	return n, err
}

// CountAll returns the total number of rows.
func (r *ArticleSQLite) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n)
	return n, err
}

// DistinctTopics returns the distinct non-blank topics, sorted.
func (r *ArticleSQLite) DistinctTopics(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT topic FROM articles WHERE topic <> '' ORDER BY topic`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return topics, nil
}

func collectPage(rows *sql.Rows, total int) (*repository.PageResult[model.Article], error) {
	defer rows.Close()

	items := make([]model.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Article]{Items: items, Total: total}, nil
}
