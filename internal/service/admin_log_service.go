package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"creatememe/internal/apperr"
	"creatememe/internal/domain"
	"creatememe/internal/logger"
)

// AdminLogService writes the append-only admin audit trail.
type AdminLogService struct {
	repo AdminLogStore
	log  *slog.Logger
}

func NewAdminLogService(repo AdminLogStore) *AdminLogService {
	return &AdminLogService{repo: repo, log: logger.With("component", "admin_log")}
}

// Record appends an entry. Failures are logged and never block the action
// being recorded.
func (s *AdminLogService) Record(ctx context.Context, adminID int64, action string, targetID any, details map[string]interface{}) {
	entry := &domain.AdminLog{
		AdminID:  adminID,
		Action:   action,
		TargetID: fmt.Sprint(targetID),
	}
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			entry.Details = string(b)
		}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.Error("failed to create admin log", "error", err, "action", action, "admin_id", adminID)
	}
}

func (s *AdminLogService) List(ctx context.Context, page domain.Page) ([]domain.AdminLog, int64, error) {
	out, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return out, total, nil
}
