package repository

// Package repository contains data access layer abstractions for the
// metadata store. Implementations live in subpackages (postgres, sqlite);
// no business logic here, strictly persistence operations. Absent rows are
// signaled with sql.ErrNoRows so callers can translate to their own
// not-found kinds.

import (
	"context"

	"articleapi/internal/model"
)

// SearchFilter holds the optional composite-search constraints. Present,
// non-blank filters are ANDed: Author and Keyword are case-insensitive
// substring matches, Topic is an exact match. Blank filters impose no
// constraint.
type SearchFilter struct {
	Author  string
	Topic   string
	Keyword string
}

// ArticleRepository defines data access for article records.
type ArticleRepository interface {
	// Create inserts a new article record. The repository always assigns a
	// fresh identifier; any ID on the input is ignored. Returns the stored
	// record.
	Create(ctx context.Context, a *model.Article) (*model.Article, error)

	// FindByID returns an article by its ID, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Article, error)

	// Update replaces all mutable fields of the record identified by a.ID.
	// Returns sql.ErrNoRows if no such record exists; it never silently no-ops.
	Update(ctx context.Context, a *model.Article) (*model.Article, error)

	// Delete removes an article by ID. Returns sql.ErrNoRows if no such
	// record exists.
	Delete(ctx context.Context, id string) error

	// Search returns the page of records matching the filter, ordered by
	// upload time descending with ID-descending tie-break, plus the total
	// match count.
	Search(ctx context.Context, f SearchFilter, pq PageQuery) (*PageResult[model.Article], error)

	// ListByOwner returns the owner's records, newest first.
	ListByOwner(ctx context.Context, ownerID string, pq PageQuery) (*PageResult[model.Article], error)

	// SearchByOwner returns the owner's records whose title, authors or
	// keywords contain query (case-insensitive), newest first.
	SearchByOwner(ctx context.Context, ownerID, query string, pq PageQuery) (*PageResult[model.Article], error)

	// CountByOwner returns the number of records owned by ownerID.
	CountByOwner(ctx context.Context, ownerID string) (int, error)

	// CountAll returns the total number of records.
	CountAll(ctx context.Context) (int, error)

	// DistinctTopics returns the distinct non-blank topic values, sorted.
	DistinctTopics(ctx context.Context) ([]string, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
