package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"articleapi/internal/apperror"
)

var pdfPolicy = FilePolicy{MaxBytes: 10 << 20, MediaType: "application/pdf"}
var imagePolicy = FilePolicy{MaxBytes: 2 << 20, MediaType: "image/"}

func TestFile(t *testing.T) {
	tests := []struct {
		name       string
		meta       FileMeta
		policy     FilePolicy
		wantReason string
	}{
		{
			name:   "valid pdf",
			meta:   FileMeta{Filename: "paper.pdf", ContentType: "application/pdf", Size: 1024},
			policy: pdfPolicy,
		},
		{
			name:       "empty file",
			meta:       FileMeta{Filename: "paper.pdf", ContentType: "application/pdf", Size: 0},
			policy:     pdfPolicy,
			wantReason: "file must not be empty",
		},
		{
			name:       "oversized",
			meta:       FileMeta{Filename: "paper.pdf", ContentType: "application/pdf", Size: 10<<20 + 1},
			policy:     pdfPolicy,
			wantReason: "file too large",
		},
		{
			name:       "wrong content type",
			meta:       FileMeta{Filename: "paper.docx", ContentType: "application/msword", Size: 1024},
			policy:     pdfPolicy,
			wantReason: "unsupported content type",
		},
		{
			name:       "blank filename",
			meta:       FileMeta{Filename: "   ", ContentType: "application/pdf", Size: 1024},
			policy:     pdfPolicy,
			wantReason: "filename must not be blank",
		},
		{
			name:   "image prefix match",
			meta:   FileMeta{Filename: "me.png", ContentType: "image/png", Size: 100},
			policy: imagePolicy,
		},
		{
			name:       "image prefix mismatch",
			meta:       FileMeta{Filename: "me.pdf", ContentType: "application/pdf", Size: 100},
			policy:     imagePolicy,
			wantReason: "unsupported content type",
		},
		{
			name:       "size check runs before content type",
			meta:       FileMeta{Filename: "big.docx", ContentType: "application/msword", Size: 3 << 20},
			policy:     imagePolicy,
			wantReason: "file too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := File(tt.meta, tt.policy)
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantReason)
		})
	}
}

func TestFields(t *testing.T) {
	longAuthors := make([]byte, 501)
	for i := range longAuthors {
		longAuthors[i] = 'a'
	}

	tests := []struct {
		name       string
		fields     ArticleFields
		wantReason string
	}{
		{
			name:   "valid",
			fields: ArticleFields{Title: "Go in Practice", Authors: "Smith, Jones"},
		},
		{
			name:       "blank title",
			fields:     ArticleFields{Title: "   ", Authors: "Smith"},
			wantReason: "title must not be blank",
		},
		{
			name:       "blank authors",
			fields:     ArticleFields{Title: "Go in Practice", Authors: "\t"},
			wantReason: "authors must not be blank",
		},
		{
			name:       "authors too long",
			fields:     ArticleFields{Title: "T", Authors: string(longAuthors)},
			wantReason: "authors must be at most 500 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Fields(tt.fields)
			if tt.wantReason == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantReason)
		})
	}
}

func TestProfile(t *testing.T) {
	assert.NoError(t, Profile(ProfileFields{}))
	assert.NoError(t, Profile(ProfileFields{FullName: "Jane Smith", Email: "jane@example.com"}))

	err := Profile(ProfileFields{Email: "not-an-email"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, err.Error(), "email is not a valid email address")
}
