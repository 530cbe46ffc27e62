package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/models"
	"gorm.io/gorm"
)

const (
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionApprove    = "approve"
	ActionReject     = "reject"
	ActionUndo       = "undo_reject"
	ActionSoftDelete = "soft_delete"
	ActionRestore    = "restore"
	ActionSendEmail  = "send_email"
	ActionBroadcast  = "broadcast_email"
	ActionLogin      = "login"
)

// AuditEntry describes one administrative mutation.
type AuditEntry struct {
	Action     string
	EntityType string
	EntityID   uint
	Details    string
	IP         string
	// AuthMethod defaults to the method of the admin principal carried by
	// the transaction's context.
	AuthMethod string
}

type AuditFilter struct {
	ActionType string
	EntityType string
	EntityID   uint
}

// AuditService appends to and reads the audit_logs table. There is no update
// or delete path.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// RecordTx writes the entry inside tx so it commits or rolls back with the
// mutation it describes.
func (s *AuditService) RecordTx(tx *gorm.DB, e AuditEntry) error {
	if e.AuthMethod == "" && tx.Statement != nil {
		if p, ok := auth.PrincipalFrom(tx.Statement.Context); ok {
			e.AuthMethod = p.Method
		}
	}
	entry := models.AuditLog{
		ActionType: e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    e.Details,
		IPAddress:  e.IP,
		AuthMethod: e.AuthMethod,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// Record writes the entry on its own. A failure is logged rather than
// returned because the mutation has already been applied.
func (s *AuditService) Record(ctx context.Context, e AuditEntry) {
	if err := s.RecordTx(s.db.WithContext(ctx), e); err != nil {
		slog.Error("audit log write failed",
			"action", e.Action,
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
			"error", err,
		)
	}
}

func (s *AuditService) List(ctx context.Context, f AuditFilter, page, limit int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.ActionType != "" {
		query = query.Where("action_type = ?", f.ActionType)
	}
	if f.EntityType != "" {
		query = query.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != 0 {
		query = query.Where("entity_id = ?", f.EntityID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (s *AuditService) ListSystemLogs(ctx context.Context, level string, page, limit int) ([]models.SystemLog, int64, error) {
	var logs []models.SystemLog
	var total int64

	query := s.db.WithContext(ctx).Model(&models.SystemLog{})
	if level != "" {
		query = query.Where("level = ?", level)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("timestamp DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
