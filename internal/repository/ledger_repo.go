package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mathisDlmr/Tutut-sub000/internal/model"
	pkgerrors "github.com/mathisDlmr/Tutut-sub000/pkg/errors"
)

// LedgerRepository 课时台账数据访问接口
type LedgerRepository interface {
	Create(ctx context.Context, entry *model.AccountingLedgerEntry) error
	Get(ctx context.Context, userID, weekID string) (*model.AccountingLedgerEntry, error)
	ListByWeek(ctx context.Context, weekID string) ([]model.AccountingLedgerEntry, error)
	UpdateHours(ctx context.Context, entry *model.AccountingLedgerEntry) error
	SetLocked(ctx context.Context, userID, weekID string, locked bool, callerID string) (int64, error)
	SetComment(ctx context.Context, userID, weekID string, comment *string, callerID string) (int64, error)
}

type ledgerRepo struct {
	db *gorm.DB
}

// NewLedgerRepo 创建 LedgerRepository 实例
func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) Create(ctx context.Context, entry *model.AccountingLedgerEntry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if pkgerrors.IsDuplicateKey(err) {
		// 并发重算已先行创建
		return pkgerrors.ErrOptimisticLock
	}
	return err
}

func (r *ledgerRepo) Get(ctx context.Context, userID, weekID string) (*model.AccountingLedgerEntry, error) {
	var entry model.AccountingLedgerEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND week_id = ?", userID, weekID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ledgerRepo) ListByWeek(ctx context.Context, weekID string) ([]model.AccountingLedgerEntry, error) {
	var list []model.AccountingLedgerEntry
	err := r.db.WithContext(ctx).
		Where("week_id = ?", weekID).
		Order("user_id ASC").
		Find(&list).Error
	return list, err
}

// UpdateHours 乐观锁覆盖课时，已锁定的条目不会被匹配
func (r *ledgerRepo) UpdateHours(ctx context.Context, entry *model.AccountingLedgerEntry) error {
	oldVersion := entry.Version
	result := r.db.WithContext(ctx).
		Model(&model.AccountingLedgerEntry{}).
		Where("ledger_entry_id = ? AND version = ? AND is_locked = ?", entry.LedgerEntryID, oldVersion, false).
		Updates(map[string]interface{}{
			"hours":      entry.Hours,
			"updated_by": entry.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version = oldVersion + 1
	return nil
}

func (r *ledgerRepo) SetLocked(ctx context.Context, userID, weekID string, locked bool, callerID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.AccountingLedgerEntry{}).
		Where("user_id = ? AND week_id = ?", userID, weekID).
		Updates(map[string]interface{}{
			"is_locked":  locked,
			"updated_by": callerID,
			"version":    gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

// SetComment 备注可在锁定状态下修改
func (r *ledgerRepo) SetComment(ctx context.Context, userID, weekID string, comment *string, callerID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.AccountingLedgerEntry{}).
		Where("user_id = ? AND week_id = ?", userID, weekID).
		Updates(map[string]interface{}{
			"comment":    comment,
			"updated_by": callerID,
			"version":    gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}
