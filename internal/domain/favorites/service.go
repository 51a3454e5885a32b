package favorites

import (
	"context"
	"fmt"

	"openmat-france/backend/internal/domain/openmat"

	"github.com/rs/zerolog"
)

// Store is the favorites gateway; *Repo satisfies it.
type Store interface {
	Add(ctx context.Context, uid, openMatID string) error
	Remove(ctx context.Context, uid, openMatID string) error
	ListByUser(ctx context.Context, uid string) ([]string, error)
}

// Listings resolves favorite ids to full listings.
type Listings interface {
	Get(ctx context.Context, id string) (*openmat.OpenMat, error)
}

type Service struct {
	store    Store
	listings Listings
	log      zerolog.Logger
}

func NewService(store Store, listings Listings, log zerolog.Logger) *Service {
	return &Service{store: store, listings: listings, log: log}
}

func (s *Service) Add(ctx context.Context, uid, openMatID string) error {
	if uid == "" || openMatID == "" {
		return fmt.Errorf("%w: user and open mat ids required", openmat.ErrBadRequest)
	}
	// Favoriting a listing that does not exist is a 404, not a silent write.
	if _, err := s.listings.Get(ctx, openMatID); err != nil {
		return err
	}
	return s.store.Add(ctx, uid, openMatID)
}

func (s *Service) Remove(ctx context.Context, uid, openMatID string) error {
	if uid == "" || openMatID == "" {
		return fmt.Errorf("%w: user and open mat ids required", openmat.ErrBadRequest)
	}
	return s.store.Remove(ctx, uid, openMatID)
}

// List returns the user's favorited listings. Favorites pointing at
// listings that no longer resolve are skipped, not errors.
func (s *Service) List(ctx context.Context, uid string) ([]openmat.OpenMat, error) {
	ids, err := s.store.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make([]openmat.OpenMat, 0, len(ids))
	for _, id := range ids {
		m, err := s.listings.Get(ctx, id)
		if err != nil {
			s.log.Debug().Str("open_mat_id", id).Err(err).Msg("skipping unresolvable favorite")
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}
