package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"articleapi/internal/model"
	"articleapi/internal/service"
)

type MockArticleService struct {
	mock.Mock
}

func (m *MockArticleService) Create(ctx context.Context, ownerID string, in service.CreateArticleInput, file service.FileUpload) (*model.Article, error) {
	args := m.Called(ctx, ownerID, in, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) Get(ctx context.Context, id string) (*model.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) Update(ctx context.Context, id, callerID string, patch service.UpdateArticlePatch, file *service.FileUpload) (*model.Article, error) {
	args := m.Called(ctx, id, callerID, patch, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleService) Delete(ctx context.Context, id, callerID string) error {
	args := m.Called(ctx, id, callerID)
	return args.Error(0)
}

func (m *MockArticleService) Search(ctx context.Context, q service.SearchQuery) (*service.ArticleListResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArticleListResult), args.Error(1)
}

func (m *MockArticleService) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) (*service.ArticleListResult, error) {
	args := m.Called(ctx, ownerID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArticleListResult), args.Error(1)
}

func (m *MockArticleService) SearchByOwner(ctx context.Context, ownerID, query string, page, pageSize int) (*service.ArticleListResult, error) {
	args := m.Called(ctx, ownerID, query, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArticleListResult), args.Error(1)
}

func (m *MockArticleService) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *MockArticleService) CountAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockArticleService) Topics(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockArticleService) OpenPDF(ctx context.Context, id string) (io.ReadCloser, *model.Article, error) {
	args := m.Called(ctx, id)
	var rc io.ReadCloser
	if args.Get(0) != nil {
		rc = args.Get(0).(io.ReadCloser)
	}
	var a *model.Article
	if args.Get(1) != nil {
		a = args.Get(1).(*model.Article)
	}
	return rc, a, args.Error(2)
}
