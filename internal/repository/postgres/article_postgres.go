package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"articleapi/internal/model"
	"articleapi/internal/repository"
)

// ArticlePostgres is a PostgreSQL implementation of repository.ArticleRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ArticlePostgres struct {
	db *sql.DB
}

// NewArticlePostgres creates a new ArticlePostgres repository.
func NewArticlePostgres(db *sql.DB) *ArticlePostgres {
	return &ArticlePostgres{db: db}
}

var _ repository.ArticleRepository = (*ArticlePostgres)(nil)

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

// Create inserts a new article row with a freshly assigned ID and returns the
// stored record.
func (r *ArticlePostgres) Create(ctx context.Context, a *model.Article) (*model.Article, error) {
	const q = `
		INSERT INTO articles (id, title, authors, publication_year, keywords, topic, storage_key, filename, size, content_type, owner_id, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + articleColumns
	row := r.db.QueryRowContext(ctx, q,
		uuid.NewString(),
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
	return scanArticle(row)
}

// FindByID fetches a single article by its ID.
func (r *ArticlePostgres) FindByID(ctx context.Context, id string) (*model.Article, error) {
	const q = `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	return scanArticle(r.db.QueryRowContext(ctx, q, id))
}

// Update replaces the mutable fields of the row identified by a.ID. Owner and
// upload time are immutable. Returns sql.ErrNoRows if the row does not exist.
func (r *ArticlePostgres) Update(ctx context.Context, a *model.Article) (*model.Article, error) {
	const q = `
		UPDATE articles
		SET title = $2, authors = $3, publication_year = $4, keywords = $5, topic = $6,
		    storage_key = $7, filename = $8, size = $9, content_type = $10
		WHERE id = $1
		RETURNING ` + articleColumns
	row := r.db.QueryRowContext(ctx, q,
		a.ID,
		a.Title,
		a.Authors,
		yearArg(a),
		a.Keywords,
		a.Topic,
		a.StorageKey,
		a.Filename,
		a.Size,
		a.ContentType,
	)
	return scanArticle(row)
}

// Delete removes an article by ID. Returns sql.ErrNoRows if no row matched.
func (r *ArticlePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM articles WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
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
	($1 = '' OR authors ILIKE '%' || $1 || '%')
	AND ($2 = '' OR topic = $2)
	AND ($3 = '' OR keywords ILIKE '%' || $3 || '%')`

// Search returns the page of rows matching the composite filter plus the
// total match count.
func (r *ArticlePostgres) Search(ctx context.Context, f repository.SearchFilter, pq repository.PageQuery) (*repository.PageResult[model.Article], error) {
	const qCount = `SELECT COUNT(*) FROM articles WHERE` + searchWhere
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, f.Author, f.Topic, f.Keyword).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + articleColumns + ` FROM articles
		WHERE` + searchWhere + `
		ORDER BY uploaded_at DESC, id DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.db.QueryContext(ctx, qList, f.Author, f.Topic, f.Keyword, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return collectPage(rows, total)
}

// ListByOwner returns the owner's rows, newest first.
func (r *ArticlePostgres) ListByOwner(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.Article], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, err
	}

	const q = `
		SELECT ` + articleColumns + ` FROM articles
		WHERE owner_id = $1
		ORDER BY uploaded_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, q, ownerID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return collectPage(rows, total)
}

const ownerSearchWhere = `
	owner_id = $1 AND (
		title ILIKE '%' || $2 || '%'
		OR authors ILIKE '%' || $2 || '%'
		OR keywords ILIKE '%' || $2 || '%')`

// SearchByOwner returns the owner's rows whose title, authors or keywords
// contain query, newest first.
func (r *ArticlePostgres) SearchByOwner(ctx context.Context, ownerID, query string, pq repository.PageQuery) (*repository.PageResult[model.Article], error) {
	const qCount = `SELECT COUNT(*) FROM articles WHERE` + ownerSearchWhere
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, ownerID, query).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + articleColumns + ` FROM articles
		WHERE` + ownerSearchWhere + `
		ORDER BY uploaded_at DESC, id DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.db.QueryContext(ctx, qList, ownerID, query, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	return collectPage(rows, total)
}

// CountByOwner returns the number of rows owned by ownerID.
func (r *ArticlePostgres) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE owner_id = $1`, ownerID).Scan(&n)
	return n, err
}

// CountAll returns the total number of rows.
func (r *ArticlePostgres) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n)
	return n, err
}

// DistinctTopics returns the distinct non-blank topics, sorted.
func (r *ArticlePostgres) DistinctTopics(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT topic FROM articles WHERE topic <> '' ORDER BY topic`
	rows, err := r.db.QueryContext(ctx, q)
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
