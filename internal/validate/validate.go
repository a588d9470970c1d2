// Package validate is the acceptance pipeline for incoming uploads and
// metadata. It is purely advisory: no side effects, no I/O. Checks run in a
// fixed order and short-circuit on the first failure, returning an
// apperror.Validation value with a caller-safe reason.
package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"articleapi/internal/apperror"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// FilePolicy is the acceptance rule set for one upload target. A MediaType
// ending in "/" (e.g. "image/") accepts any subtype of that type; anything
// else must match exactly.
type FilePolicy struct {
	MaxBytes  int64
	MediaType string
}

// FileMeta describes a candidate binary stream as declared by the caller.
type FileMeta struct {
	Filename    string
	ContentType string
	Size        int64
}

// File checks a candidate binary against a policy. Order matters: emptiness,
// size ceiling, content type, filename.
func File(meta FileMeta, p FilePolicy) error {
	if meta.Size <= 0 {
		return apperror.Validation("file must not be empty")
	}
	if p.MaxBytes > 0 && meta.Size > p.MaxBytes {
		return apperror.Validationf("file too large (max %d bytes)", p.MaxBytes)
	}
	if !mediaTypeAllowed(meta.ContentType, p.MediaType) {
		return apperror.Validationf("unsupported content type %q (want %s)", meta.ContentType, p.MediaType)
	}
	if strings.TrimSpace(meta.Filename) == "" {
		return apperror.Validation("filename must not be blank")
	}
	return nil
}

func mediaTypeAllowed(got, want string) bool {
	if strings.HasSuffix(want, "/") {
		return strings.HasPrefix(got, want)
	}
	return got == want
}

// ArticleFields are the metadata fields required on article creation.
// Values are trimmed before the rules apply, so whitespace-only input counts
// as blank.
type ArticleFields struct {
	Title    string `validate:"required"`
	Authors  string `validate:"required,max=500"`
	Keywords string `validate:"max=1000"`
}

// Fields validates required article metadata.
func Fields(f ArticleFields) error {
	f.Title = strings.TrimSpace(f.Title)
	f.Authors = strings.TrimSpace(f.Authors)
	if err := v.Struct(f); err != nil {
		return fieldError(err)
	}
	return nil
}

// ProfileFields are the optional fields of a profile patch. Blank values mean
// "leave unchanged" and are skipped by omitempty.
type ProfileFields struct {
	FullName string `validate:"max=100"`
	Email    string `validate:"omitempty,email"`
}

// Profile validates a sparse profile patch.
func Profile(f ProfileFields) error {
	if err := v.Struct(f); err != nil {
		return fieldError(err)
	}
	return nil
}

// fieldError maps the first validator failure to a caller-safe reason.
func fieldError(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return apperror.Validation("invalid input")
	}
	fe := errs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperror.Validationf("%s must not be blank", field)
	case "max":
		return apperror.Validationf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return apperror.Validationf("%s is not a valid email address", field)
	default:
		return apperror.Validationf("%s is invalid", field)
	}
}
