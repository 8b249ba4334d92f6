package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dasom-care/dasom-backend/internal/cache"
	"github.com/dasom-care/dasom-backend/internal/models"
	pgrepo "github.com/dasom-care/dasom-backend/internal/repositories/postgres"
	"github.com/dasom-care/dasom-backend/internal/utils"
)

type WelfareService interface {
	Search(ctx context.Context, keyword, region string, limit int) ([]models.WelfareService, error)
	List(ctx context.Context, offset, limit int) ([]models.WelfareService, error)
	Upsert(ctx context.Context, svc *models.WelfareService) error
}

type welfareService struct {
	repo     pgrepo.WelfareRepo
	cache    cache.Cache // may be nil
	cacheTTL time.Duration
}

func NewWelfareService(repo pgrepo.WelfareRepo, c cache.Cache, cacheTTL time.Duration) WelfareService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &welfareService{repo: repo, cache: c, cacheTTL: cacheTTL}
}

// Search is read-through cached: the assistant asks the same keyword/region
// pairs over and over.
func (s *welfareService) Search(ctx context.Context, keyword, region string, limit int) ([]models.WelfareService, error) {
	const op = "WelfareService.Search"

	keyword = strings.TrimSpace(keyword)
	region = strings.TrimSpace(region)
	if keyword == "" && region == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "keyword or region is required", nil)
	}

	key := fmt.Sprintf("welfare:search:%s:%s:%d", keyword, region, limit)
	if s.cache != nil {
		var cached []models.WelfareService
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	rows, err := s.repo.Search(ctx, keyword, region, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to search welfare services", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, rows, s.cacheTTL)
	}
	return rows, nil
}

func (s *welfareService) List(ctx context.Context, offset, limit int) ([]models.WelfareService, error) {
	const op = "WelfareService.List"

	rows, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list welfare services", err)
	}
	return rows, nil
}

func (s *welfareService) Upsert(ctx context.Context, svc *models.WelfareService) error {
	const op = "WelfareService.Upsert"

	if svc.ServiceID == "" || svc.Name == "" {
		return utils.E(utils.CodeInvalidArgument, op, "service_id and name are required", nil)
	}
	if err := s.repo.Upsert(ctx, svc); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to upsert welfare service", err)
	}
	return nil
}
