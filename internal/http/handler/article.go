package handler

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"articleapi/internal/http/middleware"
	"articleapi/internal/service"
)

// callerID returns the authenticated caller's user ID, or "" when the
// request is anonymous.
func callerID(c *fiber.Ctx) string {
	return middleware.UserID(c)
}

// parseYear reads an optional publication year form value. A blank value
// yields nil.
func parseYear(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &y, nil
}

// parsePaging reads the page/page_size query params, defaulting to page 0
// and size 10.
func parsePaging(c *fiber.Ctx) (page, size int, err error) {
	page, err = strconv.Atoi(c.Query("page", "0"))
	if err != nil {
		return 0, 0, fmt.Errorf("page: %w", err)
	}
	size, err = strconv.Atoi(c.Query("page_size", "10"))
	if err != nil {
		return 0, 0, fmt.Errorf("page_size: %w", err)
	}
	return page, size, nil
}

// CreateArticle handles POST /articles: multipart form with metadata fields
// plus the PDF payload under "file".
func CreateArticle(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner := callerID(c)
		if owner == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		year, err := parseYear(c.FormValue("publication_year"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_YEAR", "publication_year must be an integer")
		}

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		a, err := svc.Create(c.UserContext(), owner, service.CreateArticleInput{
			Title:           c.FormValue("title"),
			Authors:         c.FormValue("authors"),
			PublicationYear: year,
			Keywords:        c.FormValue("keywords"),
			Topic:           c.FormValue("topic"),
		}, service.FileUpload{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// GetArticle handles GET /articles/:id.
func GetArticle(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		a, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(a)
	}
}

// UpdateArticle handles PATCH /articles/:id: a sparse multipart patch with
// an optional replacement payload under "file".
func UpdateArticle(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := callerID(c)
		if caller == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		year, err := parseYear(c.FormValue("publication_year"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_YEAR", "publication_year must be an integer")
		}

		patch := service.UpdateArticlePatch{
			Title:           c.FormValue("title"),
			Authors:         c.FormValue("authors"),
			PublicationYear: year,
			Keywords:        c.FormValue("keywords"),
			Topic:           c.FormValue("topic"),
		}

		var file *service.FileUpload
		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			defer f.Close()

			ct := fh.Header.Get("Content-Type")
			if ct == "" {
				ct = "application/octet-stream"
			}
			file = &service.FileUpload{Reader: f, Filename: fh.Filename, ContentType: ct, Size: fh.Size}
		}

		a, err := svc.Update(c.UserContext(), id, caller, patch, file)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(a)
	}
}

// DeleteArticle handles DELETE /articles/:id.
func DeleteArticle(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := callerID(c)
		if caller == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		}
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id, caller); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadArticlePDF handles GET /articles/:id/pdf, streaming the stored
// payload as an attachment under its original filename.
func DownloadArticlePDF(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, a, err := svc.OpenPDF(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentType, a.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", a.Filename))
		return c.SendStream(rc, int(a.Size))
	}
}

// SearchArticles handles GET /articles with the ANDed author/topic/keyword
// filters. Blank filters match everything, so the bare route doubles as a
// listing.
func SearchArticles(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, size, err := parsePaging(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGING", "page and page_size must be integers")
		}
		res, err := svc.Search(c.UserContext(), service.SearchQuery{
			Author:   c.Query("author"),
			Topic:    c.Query("topic"),
			Keyword:  c.Query("keyword"),
			Page:     page,
			PageSize: size,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// ListTopics handles GET /articles/topics.
func ListTopics(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		topics, err := svc.Topics(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"topics": topics})
	}
}

// CountArticles handles GET /articles/count.
func CountArticles(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.CountAll(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"count": n})
	}
}

// MyArticles handles GET /my/articles. With ?q= it narrows to records whose
// title, authors or keywords contain the query.
func MyArticles(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner := callerID(c)
		if owner == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		}
		page, size, err := parsePaging(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAGING", "page and page_size must be integers")
		}

		res, err := svc.SearchByOwner(c.UserContext(), owner, c.Query("q"), page, size)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// MyArticlesCount handles GET /my/articles/count.
func MyArticlesCount(svc service.ArticleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner := callerID(c)
		if owner == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		}
		n, err := svc.CountByOwner(c.UserContext(), owner)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"count": n})
	}
}
