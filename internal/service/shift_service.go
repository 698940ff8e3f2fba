package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MosaSabaSaba/scheduling/internal/dto"
	"github.com/MosaSabaSaba/scheduling/internal/model"
	"github.com/MosaSabaSaba/scheduling/internal/policy"
	"github.com/MosaSabaSaba/scheduling/internal/realtime"
	"github.com/MosaSabaSaba/scheduling/internal/repository"
)

// ── 班次模块业务错误 ──

var (
	ErrShiftNotFound    = errors.New("班次不存在")
	ErrInvalidTimeRange = errors.New("开始时间必须早于结束时间")
)

// ShiftService 班次业务接口
// 所有变更在提交成功后才发布实时事件，收件人取自已提交的记录
type ShiftService interface {
	Create(ctx context.Context, req *dto.CreateShiftRequest, caller policy.Identity) (*dto.ShiftResponse, error)
	GetByID(ctx context.Context, id string, caller policy.Identity) (*dto.ShiftResponse, error)
	List(ctx context.Context, req *dto.ShiftListRequest, caller policy.Identity) ([]dto.ShiftResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, caller policy.Identity) (*dto.ShiftResponse, error)
	Delete(ctx context.Context, id string, caller policy.Identity) error
}

type shiftService struct {
	repo   *repository.Repository
	pub    Publisher
	logger *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(repo *repository.Repository, pub Publisher, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, pub: pub, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *shiftService) Create(ctx context.Context, req *dto.CreateShiftRequest, caller policy.Identity) (*dto.ShiftResponse, error) {
	if !policy.CanMutateShift(caller) {
		return nil, ErrForbidden
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, ErrInvalidTimeRange
	}

	shift := &model.Shift{
		EmployeeID: req.EmployeeID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Notes:      req.Notes,
	}
	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		s.logger.Error("创建班次失败", zap.Error(err))
		return nil, err
	}

	resp := toShiftResponse(shift)
	s.pub.Publish(realtime.EventShiftCreated, resp, shift.EmployeeID, realtime.ChannelManagers)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *shiftService) GetByID(ctx context.Context, id string, caller policy.Identity) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if !policy.CanViewShift(caller, shift) {
		return nil, ErrForbidden
	}

	resp := toShiftResponse(shift)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *shiftService) List(ctx context.Context, req *dto.ShiftListRequest, caller policy.Identity) ([]dto.ShiftResponse, error) {
	// 非经理只能看到自己的班次
	employeeID := ""
	if !caller.IsManager() {
		employeeID = caller.ID
	}

	shifts, err := s.repo.Shift.List(ctx, employeeID, req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Error("列出班次失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, toShiftResponse(&shifts[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *shiftService) Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, caller policy.Identity) (*dto.ShiftResponse, error) {
	if !policy.CanMutateShift(caller) {
		return nil, ErrForbidden
	}

	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.EmployeeID != nil {
		shift.EmployeeID = *req.EmployeeID
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}
	if req.Notes != nil {
		shift.Notes = *req.Notes
	}
	if !shift.StartTime.Before(shift.EndTime) {
		return nil, ErrInvalidTimeRange
	}

	if err := s.repo.Shift.Update(ctx, shift); err != nil {
		s.logger.Error("更新班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toShiftResponse(shift)
	s.pub.Publish(realtime.EventShiftUpdated, resp, shift.EmployeeID, realtime.ChannelManagers)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *shiftService) Delete(ctx context.Context, id string, caller policy.Identity) error {
	if !policy.CanMutateShift(caller) {
		return ErrForbidden
	}

	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Shift.Delete(ctx, id); err != nil {
		s.logger.Error("删除班次失败", zap.String("id", id), zap.Error(err))
		return err
	}

	resp := toShiftResponse(shift)
	s.pub.Publish(realtime.EventShiftDeleted, resp, shift.EmployeeID, realtime.ChannelManagers)
	return nil
}

// ── 内部辅助方法 ──

func toShiftResponse(shift *model.Shift) dto.ShiftResponse {
	swaps := make([]dto.SwapRequestResponse, 0, len(shift.SwapRequests))
	for i := range shift.SwapRequests {
		swaps = append(swaps, toSwapRequestResponse(&shift.SwapRequests[i]))
	}
	return dto.ShiftResponse{
		ID:           shift.ShiftID,
		EmployeeID:   shift.EmployeeID,
		StartTime:    shift.StartTime.Format(time.RFC3339),
		EndTime:      shift.EndTime.Format(time.RFC3339),
		Notes:        shift.Notes,
		SwapRequests: swaps,
		CreatedAt:    shift.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    shift.UpdatedAt.Format(time.RFC3339),
	}
}

func toSwapRequestResponse(swap *model.SwapRequest) dto.SwapRequestResponse {
	return dto.SwapRequestResponse{
		ID:          swap.SwapRequestID,
		ShiftID:     swap.ShiftID,
		RequestedBy: swap.RequestedBy,
		RequestedTo: swap.RequestedTo,
		Status:      swap.Status,
		Notes:       swap.Notes,
		CreatedAt:   swap.CreatedAt.Format(time.RFC3339),
	}
}
