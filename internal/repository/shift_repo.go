package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/MosaSabaSaba/scheduling/internal/model"
	apperrors "github.com/MosaSabaSaba/scheduling/pkg/errors"
)

// ShiftRepository 班次数据访问接口
// 换班台账随班次一并读取；写入通过下方两个事务方法保证原子性
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	List(ctx context.Context, employeeID string, start, end *time.Time) ([]model.Shift, error)
	Update(ctx context.Context, shift *model.Shift) error
	Delete(ctx context.Context, id string) error

	// AppendSwapRequest 向班次台账追加一条换班申请
	AppendSwapRequest(ctx context.Context, swap *model.SwapRequest) error

	// ResolveSwap 将 pending 申请置为终态，approved 时同时转移班次归属
	// 两个写入在同一事务内提交：
	//   - 申请状态的条件更新仅命中仍为 pending 的行，落空返回 ErrOptimisticLock
	//   - 归属转移以读取时的 version 做条件更新，版本不符返回 ErrOptimisticLock
	ResolveSwap(ctx context.Context, swapID, status, shiftID string, newOwnerID *string, expectedVersion int) error
}

// shiftRepo ShiftRepository 的 GORM 实现
type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo 创建 ShiftRepository 实例
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("SwapRequests", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("shift_id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) List(ctx context.Context, employeeID string, start, end *time.Time) ([]model.Shift, error) {
	db := r.db.WithContext(ctx).Model(&model.Shift{})

	if employeeID != "" {
		db = db.Where("employee_id = ?", employeeID)
	}
	if start != nil && end != nil {
		db = db.Where("start_time >= ? AND start_time <= ?", *start, *end)
	}

	var shifts []model.Shift
	err := db.
		Preload("SwapRequests", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("start_time ASC").
		Find(&shifts).Error
	if err != nil {
		return nil, err
	}
	return shifts, nil
}

func (r *shiftRepo) Update(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).
		Omit("SwapRequests").
		Save(shift).Error
}

func (r *shiftRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("shift_id = ?", id).
		Delete(&model.Shift{}).Error
}

func (r *shiftRepo) AppendSwapRequest(ctx context.Context, swap *model.SwapRequest) error {
	return r.db.WithContext(ctx).Create(swap).Error
}

func (r *shiftRepo) ResolveSwap(ctx context.Context, swapID, status, shiftID string, newOwnerID *string, expectedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.SwapRequest{}).
			Where("swap_request_id = ? AND status = ?", swapID, model.SwapStatusPending).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 并发回应已先一步终结该申请
			return apperrors.ErrOptimisticLock
		}

		if newOwnerID != nil {
			res = tx.Model(&model.Shift{}).
				Where("shift_id = ? AND version = ?", shiftID, expectedVersion).
				Updates(map[string]interface{}{
					"employee_id": *newOwnerID,
					"version":     gorm.Expr("version + 1"),
					"updated_at":  time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.ErrOptimisticLock
			}
		}

		return nil
	})
}
