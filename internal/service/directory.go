package service

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"

	"github.com/giftgrove/giftgrove/internal/domain"
	"github.com/giftgrove/giftgrove/internal/usecase"
)

var tracer = otel.Tracer("directory")

// DirectoryService resolves account records for the request path, with
// a short-lived cache in front of the store. Mutation handlers always
// re-read the target through the repository; only the ambient actor
// lookup and the candidate listing go through here.
type DirectoryService struct {
	repo  usecase.UserRepository
	cache *cache.Cache
}

func NewDirectoryService(repo usecase.UserRepository) *DirectoryService {
	return &DirectoryService{
		repo:  repo,
		cache: cache.New(30*time.Second, time.Minute),
	}
}

func (s *DirectoryService) Lookup(ctx context.Context, id string) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "Directory.Service.Lookup")
	defer span.End()

	if cached, found := s.cache.Get(id); found {
		return cached.(domain.User), nil
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		return domain.User{}, err
	}

	s.cache.Set(id, user, cache.DefaultExpiration)
	return user, nil
}

// Invalidate drops a cached record after a mutation touches it.
func (s *DirectoryService) Invalidate(id string) {
	s.cache.Delete(id)
}

// Candidates lists accounts eligible to become managers of the target:
// everyone except the target itself and its current delegates.
func (s *DirectoryService) Candidates(ctx context.Context, target domain.User) ([]domain.User, error) {
	ctx, span := tracer.Start(ctx, "Directory.Service.Candidates")
	defer span.End()

	users, err := s.repo.ScanAll(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	candidates := []domain.User{}
	for _, user := range users {
		if user.ID == target.ID {
			continue
		}
		if _, ok := target.FindManager(user.ID); ok {
			continue
		}
		candidates = append(candidates, user)
	}
	return candidates, nil
}
