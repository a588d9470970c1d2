// Package access is the ownership guard. It is stateless and pure: the
// decision depends only on the record's owner and the caller identity, both
// opaque strings compared for equality.
package access

import (
	"articleapi/internal/apperror"
	"articleapi/internal/model"
)

// Action names an operation subject to authorization.
type Action string

const (
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Authorize decides whether the caller may perform action on the article.
// Reads are always permitted; mutations only for the owning identity.
func Authorize(a *model.Article, callerID string, action Action) error {
	if action == ActionRead {
		return nil
	}
	if a.OwnerID != callerID {
		return apperror.PermissionDenied("article", a.ID)
	}
	return nil
}
