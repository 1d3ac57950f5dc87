package eventlog

import (
	"context"
	"fmt"

	"github.com/Settj76/ecom/db"
	"github.com/Settj76/ecom/models"

	"go.uber.org/zap"
)

// DefaultLimit is the number of entries shown on the activity page.
const DefaultLimit = 50

type EventLogService struct {
	repository db.EventLogRepository
	dbManager  *db.DBManager
	logger     *zap.Logger
}

func NewEventLogService(repository db.EventLogRepository, dbManager *db.DBManager, logger *zap.Logger) *EventLogService {
	return &EventLogService{
		repository: repository,
		dbManager:  dbManager,
		logger:     logger,
	}
}

// GetAll returns up to limit entries, newest first.
func (s *EventLogService) GetAll(ctx context.Context, limit int) ([]models.EventLog, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	logs, err := s.repository.FindLatest(ctx, limit)
	if err != nil {
		return nil, err
	}
	return deref(logs), nil
}

// GetAllByRecordID returns up to limit entries about one backend record.
func (s *EventLogService) GetAllByRecordID(ctx context.Context, recordID string, limit int) ([]models.EventLog, error) {
	logs, err := s.repository.FindAllByRecordID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return deref(logs), nil
}

func (s *EventLogService) CreateOne(ctx context.Context, eventLog *models.EventLog) error {
	if eventLog.Description == "" {
		eventLog.Description = generateDescription(eventLog.Type, "")
	}
	return s.dbManager.CreateEventLog(ctx, s.repository, eventLog)
}

// Record appends an activity entry for a completed admin mutation. The
// mutation has already happened on the backend, so a failure here is logged
// rather than returned.
func (s *EventLogService) Record(ctx context.Context, eventType models.EEventLogType, actorID, recordID, subject string) {
	entry := &models.EventLog{
		Type:        eventType,
		Description: generateDescription(eventType, subject),
		ActorID:     actorID,
		RecordID:    recordID,
	}
	if err := s.CreateOne(ctx, entry); err != nil {
		s.logger.Error("failed to record activity",
			zap.String("type", string(eventType)),
			zap.String("record_id", recordID),
			zap.Error(err))
	}
}

func generateDescription(eventType models.EEventLogType, subject string) string {
	if subject == "" {
		subject = "unknown"
	}
	switch eventType {
	case models.ProductCreated:
		return fmt.Sprintf("Product [%s] created", subject)
	case models.ProductUpdated:
		return fmt.Sprintf("Product [%s] updated", subject)
	case models.ProductDeleted:
		return fmt.Sprintf("Product [%s] deleted", subject)
	case models.UserUpdated:
		return fmt.Sprintf("User [%s] updated", subject)
	case models.UserDeleted:
		return fmt.Sprintf("User [%s] deleted", subject)
	case models.UserRegistered:
		return fmt.Sprintf("User [%s] registered", subject)
	default:
		return "Event occurred"
	}
}

func deref(logs []*models.EventLog) []models.EventLog {
	out := make([]models.EventLog, 0, len(logs))
	for _, l := range logs {
		out = append(out, *l)
	}
	return out
}
