package business

import (
	"context"
	"errors"

	"github.com/agendahub/booking-api/internal/repository"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

// maxStoreIDLength is the length of a store-assigned identifier.
const maxStoreIDLength = 24

// looksLikeStoreID reports whether the identifier has the shape of a
// store-assigned id: at most 24 characters, all hex. This is a
// heuristic, not a guaranteed discriminator: an external auth id that
// happens to be 24 hex characters or fewer would be misrouted.
func looksLikeStoreID(id string) bool {
	if len(id) > maxStoreIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// resolveBusinessID maps a path parameter that is either a business id
// or the external auth id of a business owner onto the business's
// store-assigned id. The external path looks up the user first and
// then the first business that user owns.
func (s *Service) resolveBusinessID(ctx context.Context, idOrOwnerAuthID string) (string, error) {
	if looksLikeStoreID(idOrOwnerAuthID) {
		return idOrOwnerAuthID, nil
	}

	user, err := s.users.GetByExternalAuthID(ctx, idOrOwnerAuthID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperrors.NotFound("user")
	}
	if err != nil {
		return "", err
	}

	owned, err := s.businesses.FindFirstByOwner(ctx, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperrors.NotFound("business")
	}
	if err != nil {
		return "", err
	}

	return owned.ID, nil
}
