package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dasom-care/dasom-backend/internal/models"
	mongorepo "github.com/dasom-care/dasom-backend/internal/repositories/mongo"
	pgrepo "github.com/dasom-care/dasom-backend/internal/repositories/postgres"
	"github.com/dasom-care/dasom-backend/internal/storage"
	"github.com/dasom-care/dasom-backend/internal/utils"
)

// CallHistoryService owns the durable side of a call: the session record and
// the append-only message log. It backs the realtime core's CallStore and
// HistorySink contracts and the history read API.
type CallHistoryService interface {
	StartCall(ctx context.Context, sessionID, userID string) error
	EndCall(ctx context.Context, sessionID string) error
	AppendMessage(ctx context.Context, sessionID, role, msgType, content string, audio []byte) error

	GetCall(ctx context.Context, sessionID string) (*models.CallSession, error)
	ListCalls(ctx context.Context, userID string, limit int64) ([]models.CallSession, error)
	ListMessages(ctx context.Context, sessionID string, limit int) ([]models.Message, error)
}

type callHistoryService struct {
	calls    mongorepo.CallSessionRepository
	messages pgrepo.MessageRepo
	archive  storage.Uploader // may be nil
}

func NewCallHistoryService(calls mongorepo.CallSessionRepository, messages pgrepo.MessageRepo, archive storage.Uploader) CallHistoryService {
	return &callHistoryService{calls: calls, messages: messages, archive: archive}
}

func (s *callHistoryService) StartCall(ctx context.Context, sessionID, userID string) error {
	const op = "CallHistoryService.StartCall"

	if sessionID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	now := time.Now().UTC()
	err := s.calls.Upsert(ctx, &models.CallSession{
		SessionID:      sessionID,
		UserID:         userID,
		Active:         true,
		CreatedAt:      now,
		LastActivityAt: now,
	})
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to open call record", err)
	}
	return nil
}

func (s *callHistoryService) EndCall(ctx context.Context, sessionID string) error {
	const op = "CallHistoryService.EndCall"

	if sessionID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	if err := s.calls.End(ctx, sessionID, time.Now().UTC()); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to close call record", err)
	}
	return nil
}

func (s *callHistoryService) AppendMessage(ctx context.Context, sessionID, role, msgType, content string, audio []byte) error {
	const op = "CallHistoryService.AppendMessage"

	if sessionID == "" || role == "" || content == "" {
		return utils.E(utils.CodeInvalidArgument, op, "session_id, role, and content are required", nil)
	}

	now := time.Now().UTC()
	msg := &models.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Type:      msgType,
		Content:   content,
		Timestamp: now,
	}

	if len(audio) > 0 && s.archive != nil {
		object := fmt.Sprintf("calls/%s/%s.mp3", sessionID, msg.ID)
		url, err := s.archive.Upload(ctx, object, "audio/mpeg", bytes.NewReader(audio))
		if err == nil {
			meta, _ := json.Marshal(map[string]string{"audio_url": url})
			msg.Metadata = datatypes.JSON(meta)
		}
		// archive failures do not block the append
	}

	if err := s.messages.Insert(ctx, msg); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to insert message", err)
	}
	_ = s.calls.Touch(ctx, sessionID, now)
	return nil
}

func (s *callHistoryService) GetCall(ctx context.Context, sessionID string) (*models.CallSession, error) {
	const op = "CallHistoryService.GetCall"

	out, err := s.calls.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "call not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load call", err)
	}
	return out, nil
}

func (s *callHistoryService) ListCalls(ctx context.Context, userID string, limit int64) ([]models.CallSession, error) {
	const op = "CallHistoryService.ListCalls"

	out, err := s.calls.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list calls", err)
	}
	return out, nil
}

func (s *callHistoryService) ListMessages(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	const op = "CallHistoryService.ListMessages"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	out, err := s.messages.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list messages", err)
	}
	return out, nil
}
