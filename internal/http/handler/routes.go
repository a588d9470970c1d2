package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"articleapi/internal/service"
)

// RegisterRoutes attaches all HTTP routes to the provided Fiber app.
// Handlers stay thin: parsing and status mapping here, semantics in the
// services.
func RegisterRoutes(app *fiber.App, db *sql.DB, articles service.ArticleService, profiles service.ProfileService) {
	app.Get("/openapi.yaml", OpenAPISpec())
	app.Get("/docs", DocsUI())

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Static segments before /articles/:id so "topics" and "count" are not
	// swallowed by the ID parameter.
	app.Get("/articles/topics", ListTopics(articles))
	app.Get("/articles/count", CountArticles(articles))
	app.Get("/articles", SearchArticles(articles))
	app.Post("/articles", CreateArticle(articles))
	app.Get("/articles/:id", GetArticle(articles))
	app.Patch("/articles/:id", UpdateArticle(articles))
	app.Delete("/articles/:id", DeleteArticle(articles))
	app.Get("/articles/:id/pdf", DownloadArticlePDF(articles))

	app.Get("/my/articles", MyArticles(articles))
	app.Get("/my/articles/count", MyArticlesCount(articles))

	app.Post("/users", RegisterUser(profiles))
	app.Patch("/users/me", UpdateMyProfile(profiles))
	app.Put("/users/me/avatar", UploadAvatar(profiles))
	app.Get("/users/:id", GetUser(profiles))
	app.Get("/users/:id/avatar", GetAvatar(profiles))
}
