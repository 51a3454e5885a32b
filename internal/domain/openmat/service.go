package openmat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"openmat-france/backend/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Gateway is the remote listing store. *Repo satisfies it; tests inject
// fakes so the service never needs a live backend.
type Gateway interface {
	List(ctx context.Context) ([]OpenMat, error)
	Get(ctx context.Context, id string) (*OpenMat, error)
	Create(ctx context.Context, m OpenMat) (*OpenMat, error)
}

// Mirror is the local offline copy of the listing collection.
type Mirror interface {
	SaveOpenMats(ctx context.Context, mats []OpenMat) error
	GetOpenMats(ctx context.Context) ([]OpenMat, error)
}

// Service owns the listing collection state: it fetches through the
// gateway, keeps the latest successful snapshot, mirrors it for offline
// reads, and derives filtered, paginated views.
type Service struct {
	gw     Gateway
	mirror Mirror
	log    zerolog.Logger

	mu       sync.RWMutex
	snapshot []OpenMat
	fetched  bool
}

var validate = validator.New()

func NewService(gw Gateway, mirror Mirror, log zerolog.Logger) *Service {
	return &Service{gw: gw, mirror: mirror, log: log}
}

// BrowseResult is one page of the filtered collection.
type BrowseResult struct {
	Items     []OpenMat `json:"items"`
	Page      int       `json:"page"`
	PageCount int       `json:"pageCount"`
	Total     int       `json:"total"`
	Offline   bool      `json:"offline,omitempty"`
}

// Browse fetches the collection, applies the search term and filters, and
// returns the requested page. When the gateway is unreachable it serves
// the last in-memory snapshot, then the offline mirror, rather than
// failing the request.
func (s *Service) Browse(ctx context.Context, term string, f Filters, page, size int) (*BrowseResult, error) {
	mats, offline := s.collection(ctx)

	filtered := ApplyFilters(mats, term, f)
	if page < 1 {
		page = 1
	}
	return &BrowseResult{
		Items:     Paginate(filtered, page, size),
		Page:      page,
		PageCount: PageCount(len(filtered), size),
		Total:     len(filtered),
		Offline:   offline,
	}, nil
}

// collection returns the freshest listing set available and whether it
// came from a degraded source.
func (s *Service) collection(ctx context.Context) ([]OpenMat, bool) {
	mats, err := s.gw.List(ctx)
	if err == nil {
		s.setSnapshot(mats)
		return mats, false
	}
	s.log.Warn().Err(err).Msg("listing fetch failed, serving cached view")

	s.mu.RLock()
	fetched, snap := s.fetched, s.snapshot
	s.mu.RUnlock()
	if fetched {
		return snap, true
	}

	cached, cerr := s.mirror.GetOpenMats(ctx)
	if cerr != nil {
		// The cache is best effort: degrade to empty, never propagate.
		s.log.Warn().Err(cerr).Msg("offline mirror read failed")
		return []OpenMat{}, true
	}
	sortByDate(cached)
	return cached, true
}

// Get resolves one listing, falling back to the snapshot and mirror when
// the gateway is unreachable. A listing absent everywhere is ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*OpenMat, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", ErrBadRequest)
	}
	m, err := s.gw.Get(ctx, id)
	if err == nil {
		return m, nil
	}
	if IsErrNotFound(err) {
		return nil, err
	}

	s.mu.RLock()
	for i := range s.snapshot {
		if s.snapshot[i].ID == id {
			found := s.snapshot[i]
			s.mu.RUnlock()
			return &found, nil
		}
	}
	s.mu.RUnlock()

	cached, cerr := s.mirror.GetOpenMats(ctx)
	if cerr == nil {
		for i := range cached {
			if cached[i].ID == id {
				return &cached[i], nil
			}
		}
	}
	return nil, fmt.Errorf("%w: open mat %s", ErrNotFound, id)
}

// Create validates the submission and stores it. Validation failures
// reject before any network write.
func (s *Service) Create(ctx context.Context, uid string, in CreateInput) (*OpenMat, error) {
	in.Trim()
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, validationMessage(err))
	}

	m := OpenMat{
		ClubName:     in.ClubName,
		CoachName:    in.CoachName,
		City:         in.City,
		Address:      in.Address,
		Date:         DayKey(in.Date),
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Discipline:   in.Discipline,
		Level:        in.Level,
		Speciality:   in.Speciality,
		Description:  utils.TrimMax(in.Description, 2000),
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		Website:      in.Website,
		ImageURL:     in.ImageURL,
		CreatedBy:    uid,
		CreatedAt:    time.Now().UTC(),
		SearchTokens: utils.SearchTokens(in.ClubName, in.City, in.CoachName),
	}

	out, err := s.gw.Create(ctx, m)
	if err != nil {
		return nil, err
	}

	// Keep the snapshot coherent without waiting for the next fetch.
	s.mu.Lock()
	if s.fetched {
		s.snapshot = append(s.snapshot, *out)
		sortByDate(s.snapshot)
	}
	s.mu.Unlock()
	return out, nil
}

// SyncMirror performs a one-shot resynchronization: fetch the
// authoritative collection and overwrite the local mirror. Connectivity
// restoration and startup both funnel through here.
func (s *Service) SyncMirror(ctx context.Context) error {
	mats, err := s.gw.List(ctx)
	if err != nil {
		return err
	}
	s.setSnapshot(mats)
	if err := s.mirror.SaveOpenMats(ctx, mats); err != nil {
		s.log.Warn().Err(err).Msg("offline mirror save failed")
		return nil
	}
	s.log.Info().Int("count", len(mats)).Msg("offline mirror synchronized")
	return nil
}

func (s *Service) setSnapshot(mats []OpenMat) {
	s.mu.Lock()
	s.snapshot = mats
	s.fetched = true
	s.mu.Unlock()
}

func sortByDate(mats []OpenMat) {
	sort.SliceStable(mats, func(i, j int) bool {
		return mats[i].Date < mats[j].Date
	})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", fe.Field())
		case "datetime":
			return fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", fe.Field())
		case "oneof":
			return fmt.Sprintf("%s has an unknown value", fe.Field())
		case "email", "url":
			return fmt.Sprintf("%s is not a valid %s", fe.Field(), fe.Tag())
		default:
			return fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	return "invalid submission"
}
