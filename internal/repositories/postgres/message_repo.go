package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/dasom-care/dasom-backend/internal/models"
)

type MessageRepo interface {
	Insert(ctx context.Context, msg *models.Message) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.Message, error)
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) Insert(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListBySession returns the newest messages first.
func (r *messageRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
