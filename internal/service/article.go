package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"articleapi/internal/access"
	"articleapi/internal/apperror"
	"articleapi/internal/model"
	"articleapi/internal/repository"
	"articleapi/internal/storage"
	"articleapi/internal/validate"
)

const articleKeyPrefix = "articles"

// defaultPageSize applies when the caller supplies no page size.
const defaultPageSize = 10

// FileUpload describes an incoming binary stream with the metadata the
// caller declared for it.
type FileUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// CreateArticleInput carries the metadata fields for a new article.
type CreateArticleInput struct {
	Title           string
	Authors         string
	PublicationYear *int
	Keywords        string
	Topic           string
}

// UpdateArticlePatch is a sparse patch: blank strings and a nil year mean
// "leave unchanged", never "clear".
type UpdateArticlePatch struct {
	Title           string
	Authors         string
	PublicationYear *int
	Keywords        string
	Topic           string
}

// SearchQuery holds the composite search filters plus zero-indexed paging.
type SearchQuery struct {
	Author   string
	Topic    string
	Keyword  string
	Page     int
	PageSize int
}

// ArticleListResult is the service-level DTO for paginated articles.
type ArticleListResult struct {
	Items    []model.Article `json:"data"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// ArticleService defines the catalog use cases: validated creation, sparse
// updates with binary replacement, owner-guarded deletion, and filtered,
// paginated queries.
type ArticleService interface {
	// Create validates metadata and payload, stores the binary, then persists
	// the record; the binary is rolled back if the record cannot be saved.
	Create(ctx context.Context, ownerID string, in CreateArticleInput, file FileUpload) (*model.Article, error)

	// Get returns a single article by its ID.
	Get(ctx context.Context, id string) (*model.Article, error)

	// Update applies a sparse patch and, if a file is supplied, replaces the
	// binary. The new binary is durably stored before the old one is removed
	// and before the record is committed.
	Update(ctx context.Context, id, callerID string, patch UpdateArticlePatch, file *FileUpload) (*model.Article, error)

	// Delete removes the binary (best effort) and the record.
	Delete(ctx context.Context, id, callerID string) error

	// Search returns the page of articles matching the ANDed filters,
	// newest first.
	Search(ctx context.Context, q SearchQuery) (*ArticleListResult, error)

	// ListByOwner returns the owner's articles, newest first.
	ListByOwner(ctx context.Context, ownerID string, page, pageSize int) (*ArticleListResult, error)

	// SearchByOwner returns the owner's articles whose title, authors or
	// keywords contain query.
	SearchByOwner(ctx context.Context, ownerID, query string, page, pageSize int) (*ArticleListResult, error)

	// CountByOwner returns the number of articles owned by ownerID.
	CountByOwner(ctx context.Context, ownerID string) (int, error)

	// CountAll returns the total number of articles.
	CountAll(ctx context.Context) (int, error)

	// Topics returns the distinct non-blank topic values.
	Topics(ctx context.Context) ([]string, error)

	// OpenPDF opens the stored payload for streaming, returning the record
	// alongside so callers can build a download response from the original
	// filename. NotFound if the record or its binary is missing.
	OpenPDF(ctx context.Context, id string) (io.ReadCloser, *model.Article, error)
}

// articleService is a concrete implementation of ArticleService.
type articleService struct {
	store  storage.Storage
	repo   repository.ArticleRepository
	policy validate.FilePolicy
	log    *slog.Logger
}

// NewArticleService constructs a new ArticleService. policy is the acceptance
// rule set for article payloads.
func NewArticleService(store storage.Storage, repo repository.ArticleRepository, policy validate.FilePolicy, log *slog.Logger) ArticleService {
	if log == nil {
		log = slog.Default()
	}
	return &articleService{store: store, repo: repo, policy: policy, log: log}
}

func (s *articleService) Create(ctx context.Context, ownerID string, in CreateArticleInput, file FileUpload) (*model.Article, error) {
	// All acceptance checks run before any store is touched.
	if err := validate.File(fileMeta(file), s.policy); err != nil {
		return nil, err
	}
	if err := validate.Fields(validate.ArticleFields{Title: in.Title, Authors: in.Authors, Keywords: in.Keywords}); err != nil {
		return nil, err
	}

	key := storage.NewObjectKey(articleKeyPrefix, file.Filename)
	info, err := s.store.Put(ctx, key, file.Reader, storage.PutObjectOptions{
		Size:        file.Size,
		ContentType: file.ContentType,
		Metadata:    map[string]string{"original-filename": file.Filename},
	})
	if err != nil {
		return nil, apperror.Storage("store article binary", err)
	}

	rec := &model.Article{
		Title:           strings.TrimSpace(in.Title),
		Authors:         strings.TrimSpace(in.Authors),
		PublicationYear: in.PublicationYear,
		Keywords:        in.Keywords,
		Topic:           in.Topic,
		StorageKey:      info.Key,
		Filename:        file.Filename,
		Size:            info.Size,
		ContentType:     file.ContentType,
		OwnerID:         ownerID,
		UploadedAt:      time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, rec)
	if err != nil {
		// Rollback: the record never existed, so the binary must not outlive it.
		s.cleanupBinary(ctx, info.Key)
		return nil, apperror.Storage("save article record", err)
	}
	return stored, nil
}

func (s *articleService) Get(ctx context.Context, id string) (*model.Article, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("article", id)
		}
		return nil, apperror.Storage("load article record", err)
	}
	return a, nil
}

func (s *articleService) Update(ctx context.Context, id, callerID string, patch UpdateArticlePatch, file *FileUpload) (*model.Article, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(existing, callerID, access.ActionUpdate); err != nil {
		return nil, err
	}

	merged := *existing
	applyPatch(&merged, patch)
	if err := validate.Fields(validate.ArticleFields{Title: merged.Title, Authors: merged.Authors, Keywords: merged.Keywords}); err != nil {
		return nil, err
	}

	var newKey, oldKey string
	if file != nil {
		if err := validate.File(fileMeta(*file), s.policy); err != nil {
			return nil, err
		}
		key := storage.NewObjectKey(articleKeyPrefix, file.Filename)
		info, err := s.store.Put(ctx, key, file.Reader, storage.PutObjectOptions{
			Size:        file.Size,
			ContentType: file.ContentType,
			Metadata:    map[string]string{"original-filename": file.Filename},
		})
		if err != nil {
			return nil, apperror.Storage("store article binary", err)
		}
		newKey, oldKey = info.Key, existing.StorageKey
		merged.StorageKey = info.Key
		merged.Filename = file.Filename
		merged.Size = info.Size
		merged.ContentType = file.ContentType

		// The new binary is durable; the old one goes away only now, right
		// before the record commit, so no committed record ever references a
		// missing binary.
		if oldKey != "" {
			s.cleanupBinary(ctx, oldKey)
		}
	}

	updated, err := s.repo.Update(ctx, &merged)
	if err != nil {
		if newKey != "" {
			s.cleanupBinary(ctx, newKey)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("article", id)
		}
		return nil, apperror.Storage("save article record", err)
	}
	return updated, nil
}

func (s *articleService) Delete(ctx context.Context, id, callerID string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(existing, callerID, access.ActionDelete); err != nil {
		return err
	}

	// Binary first, best effort: a failure here leaves at worst an orphaned
	// binary, never a record pointing at a missing one.
	if existing.StorageKey != "" {
		s.cleanupBinary(ctx, existing.StorageKey)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("article", id)
		}
		return apperror.Storage("delete article record", err)
	}
	return nil
}

func (s *articleService) Search(ctx context.Context, q SearchQuery) (*ArticleListResult, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	res, err := s.repo.Search(ctx, repository.SearchFilter{
		Author:  strings.TrimSpace(q.Author),
		Topic:   strings.TrimSpace(q.Topic),
		Keyword: strings.TrimSpace(q.Keyword),
	}, repository.PageQuery{Limit: size, Offset: page * size})
	if err != nil {
		return nil, apperror.Storage("search articles", err)
	}
	return listResult(res, page, size), nil
}

func (s *articleService) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) (*ArticleListResult, error) {
	page, size := normalizePage(page, pageSize)
	res, err := s.repo.ListByOwner(ctx, ownerID, repository.PageQuery{Limit: size, Offset: page * size})
	if err != nil {
		return nil, apperror.Storage("list articles", err)
	}
	return listResult(res, page, size), nil
}

func (s *articleService) SearchByOwner(ctx context.Context, ownerID, query string, page, pageSize int) (*ArticleListResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListByOwner(ctx, ownerID, page, pageSize)
	}
	page, size := normalizePage(page, pageSize)
	res, err := s.repo.SearchByOwner(ctx, ownerID, query, repository.PageQuery{Limit: size, Offset: page * size})
	if err != nil {
		return nil, apperror.Storage("search articles", err)
	}
	return listResult(res, page, size), nil
}

func (s *articleService) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	n, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return 0, apperror.Storage("count articles", err)
	}
	return n, nil
}

func (s *articleService) CountAll(ctx context.Context) (int, error) {
	n, err := s.repo.CountAll(ctx)
	if err != nil {
		return 0, apperror.Storage("count articles", err)
	}
	return n, nil
}

func (s *articleService) Topics(ctx context.Context) ([]string, error) {
	topics, err := s.repo.DistinctTopics(ctx)
	if err != nil {
		return nil, apperror.Storage("load topics", err)
	}
	return topics, nil
}

func (s *articleService) OpenPDF(ctx context.Context, id string) (io.ReadCloser, *model.Article, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, a.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, apperror.NotFound("article binary", id)
		}
		return nil, nil, apperror.Storage("open article binary", err)
	}
	return rc, a, nil
}

// cleanupBinary is best-effort removal during rollback and replacement.
// Failures are logged, never escalated; the worst outcome is an orphan
// binary reclaimable out of band.
func (s *articleService) cleanupBinary(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.WarnContext(ctx, "binary cleanup failed", "key", key, "error", err)
	}
}

// applyPatch merges the sparse patch into the record. Blank strings and a
// nil year leave the existing values unchanged.
func applyPatch(a *model.Article, p UpdateArticlePatch) {
	if v := strings.TrimSpace(p.Title); v != "" {
		a.Title = v
	}
	if v := strings.TrimSpace(p.Authors); v != "" {
		a.Authors = v
	}
	if p.PublicationYear != nil {
		a.PublicationYear = p.PublicationYear
	}
	if strings.TrimSpace(p.Keywords) != "" {
		a.Keywords = p.Keywords
	}
	if strings.TrimSpace(p.Topic) != "" {
		a.Topic = p.Topic
	}
}

// normalizePage clamps paging input: pages are zero-indexed, a non-positive
// size falls back to the default. A page past the last simply yields an
// empty result.
func normalizePage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	return page, size
}

func listResult(res *repository.PageResult[model.Article], page, size int) *ArticleListResult {
	return &ArticleListResult{Items: res.Items, Total: res.Total, Page: page, PageSize: size}
}

func fileMeta(f FileUpload) validate.FileMeta {
	return validate.FileMeta{Filename: f.Filename, ContentType: f.ContentType, Size: f.Size}
}
