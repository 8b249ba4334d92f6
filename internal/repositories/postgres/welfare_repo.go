package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dasom-care/dasom-backend/internal/models"
	"github.com/dasom-care/dasom-backend/internal/utils"
)

type WelfareRepo interface {
	Upsert(ctx context.Context, svc *models.WelfareService) error
	GetByServiceID(ctx context.Context, serviceID string) (*models.WelfareService, error)
	Search(ctx context.Context, keyword, region string, limit int) ([]models.WelfareService, error)
	List(ctx context.Context, offset, limit int) ([]models.WelfareService, error)
}

type welfareRepo struct {
	db *gorm.DB
}

func NewWelfareRepo(db *gorm.DB) WelfareRepo {
	return &welfareRepo{db: db}
}

// Upsert keys on the portal's service_id so repeated syncs stay idempotent.
func (r *welfareRepo) Upsert(ctx context.Context, svc *models.WelfareService) error {
	svc.SyncedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "service_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "summary", "agency", "phone", "regions", "targets", "extras", "synced_at",
		}),
	}).Create(svc).Error
}

func (r *welfareRepo) GetByServiceID(ctx context.Context, serviceID string) (*models.WelfareService, error) {
	var svc models.WelfareService
	err := r.db.WithContext(ctx).Where("service_id = ?", serviceID).Take(&svc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &svc, err
}

func (r *welfareRepo) Search(ctx context.Context, keyword, region string, limit int) ([]models.WelfareService, error) {
	if limit <= 0 {
		limit = 5
	}

	q := r.db.WithContext(ctx).Model(&models.WelfareService{})
	if keyword != "" {
		like := "%" + keyword + "%"
		q = q.Where("name ILIKE ? OR summary ILIKE ?", like, like)
	}
	if region != "" {
		// regions holds both wide and narrow names, ex: ["서울특별시","강서구"]
		q = q.Where("? = ANY(regions)", region)
	}

	var rows []models.WelfareService
	err := q.Order("name ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *welfareRepo) List(ctx context.Context, offset, limit int) ([]models.WelfareService, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.WelfareService
	err := r.db.WithContext(ctx).Order("name ASC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, err
}
