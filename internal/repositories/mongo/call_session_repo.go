package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dasom-care/dasom-backend/internal/models"
	"github.com/dasom-care/dasom-backend/internal/utils"
)

type CallSessionRepository interface {
	Upsert(ctx context.Context, s *models.CallSession) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.CallSession, error)
	Touch(ctx context.Context, sessionID string, at time.Time) error
	End(ctx context.Context, sessionID string, endedAt time.Time) error
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.CallSession, error)
}

type callSessionRepo struct {
	col *mongo.Collection
}

func NewCallSessionRepo(db *mongo.Database) CallSessionRepository {
	return &callSessionRepo{col: db.Collection("call_sessions")}
}

// Upsert keeps reconnects from duplicating the record.
func (r *callSessionRepo) Upsert(ctx context.Context, s *models.CallSession) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	set := bson.M{
		"active":           s.Active,
		"last_activity_at": s.LastActivityAt,
	}
	if s.UserID != "" {
		set["user_id"] = s.UserID
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": s.SessionID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"session_id": s.SessionID, "created_at": s.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *callSessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.CallSession, error) {
	var s models.CallSession
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *callSessionRepo) Touch(ctx context.Context, sessionID string, at time.Time) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"last_activity_at": at.UTC()}},
	)
	return err
}

func (r *callSessionRepo) End(ctx context.Context, sessionID string, endedAt time.Time) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{
			"active":   false,
			"ended_at": endedAt.UTC(),
		}},
	)
	return err
}

func (r *callSessionRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.CallSession, error) {
	if limit <= 0 {
		limit = 50
	}
	cur, err := r.col.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CallSession
	err = cur.All(ctx, &out)
	return out, err
}
