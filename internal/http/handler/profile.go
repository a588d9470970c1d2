package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"articleapi/internal/service"
)

type registerUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type updateProfileRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// RegisterUser handles POST /users: creates the profile row for a newly
// provisioned account.
func RegisterUser(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerUserRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		u, err := svc.Register(c.UserContext(), req.Username, req.Email, req.FullName)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// GetUser handles GET /users/:id.
func GetUser(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

// UpdateMyProfile handles PATCH /users/me with a sparse JSON patch.
func UpdateMyProfile(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := callerID(c)
		if caller == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "missing caller identity")
		}
		var req updateProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		u, err := svc.UpdateProfile(c.UserContext(), caller, service.ProfilePatch{
			FullName: req.FullName,
			Email:    req.Email,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

// UploadAvatar handles PUT /users/me/avatar: multipart with the image under
// "file".
func UploadAvatar(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := callerID(c)
		if caller == "" {
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

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		u, err := svc.UploadAvatar(c.UserContext(), caller, service.FileUpload{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

// GetAvatar handles GET /users/:id/avatar, streaming the stored image.
func GetAvatar(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, _, err := svc.OpenAvatar(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStream(rc)
	}
}
