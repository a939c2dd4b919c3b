package application

import (
	"github.com/oksasatya/go-ddd-board/internal/domain/apperr"
	"github.com/oksasatya/go-ddd-board/internal/domain/entity"
)

// Authenticated fails with Unauthenticated when no identity is bound to the request.
func Authenticated(id *entity.Identity) error {
	if id == nil || id.UserID == "" {
		return apperr.ErrUnauthenticated
	}
	return nil
}

// Authorize additionally requires id to own the resource or be an admin.
func Authorize(id *entity.Identity, ownerID string) error {
	if err := Authenticated(id); err != nil {
		return err
	}
	if id.UserID != ownerID && !id.Admin {
		return apperr.ErrForbidden
	}
	return nil
}
