package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MosaSabaSaba/scheduling/internal/dto"
	"github.com/MosaSabaSaba/scheduling/internal/model"
	"github.com/MosaSabaSaba/scheduling/internal/policy"
	"github.com/MosaSabaSaba/scheduling/internal/realtime"
	"github.com/MosaSabaSaba/scheduling/internal/repository"
)

// ── 换班模块业务错误 ──

var (
	ErrSwapNotFound = errors.New("换班申请不存在")
	ErrSwapResolved = errors.New("换班申请已被处理")
	ErrSwapNoTarget = errors.New("开放式换班申请没有目标员工，无法批准")
)

// SwapService 换班工作流引擎
// 状态机：pending → approved | rejected，均为终态；
// 批准同时将班次归属转移给申请的目标员工（单向转移，不自动生成补偿班次）
type SwapService interface {
	SubmitSwap(ctx context.Context, shiftID string, req *dto.SubmitSwapRequest, caller policy.Identity) (*dto.ShiftResponse, error)
	RespondToSwap(ctx context.Context, shiftID, swapID string, req *dto.RespondSwapRequest, caller policy.Identity) (*dto.ShiftResponse, error)
}

type swapService struct {
	repo   *repository.Repository
	pub    Publisher
	logger *zap.Logger
}

// NewSwapService 创建 SwapService 实例
func NewSwapService(repo *repository.Repository, pub Publisher, logger *zap.Logger) SwapService {
	return &swapService{repo: repo, pub: pub, logger: logger}
}

// ────────────────────── SubmitSwap ──────────────────────

func (s *swapService) SubmitSwap(ctx context.Context, shiftID string, req *dto.SubmitSwapRequest, caller policy.Identity) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", shiftID), zap.Error(err))
		return nil, err
	}

	if !policy.CanSubmitSwap(caller, shift) {
		return nil, ErrForbidden
	}

	swap := &model.SwapRequest{
		ShiftID:     shiftID,
		RequestedBy: caller.ID,
		RequestedTo: req.RequestedTo,
		Status:      model.SwapStatusPending,
		Notes:       req.Notes,
	}
	if err := s.repo.Shift.AppendSwapRequest(ctx, swap); err != nil {
		s.logger.Error("追加换班申请失败", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}

	// 重新读取以返回含新台账条目的完整班次
	updated, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		s.logger.Error("查询班次失败", zap.String("id", shiftID), zap.Error(err))
		return nil, err
	}

	resp := toShiftResponse(updated)
	s.publishSwapEvent(realtime.EventShiftSwapRequested, resp, updated.EmployeeID, swap)
	return &resp, nil
}

// ────────────────────── RespondToSwap ──────────────────────

func (s *swapService) RespondToSwap(ctx context.Context, shiftID, swapID string, req *dto.RespondSwapRequest, caller policy.Identity) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", shiftID), zap.Error(err))
		return nil, err
	}

	swap := shift.FindSwapRequest(swapID)
	if swap == nil {
		return nil, ErrSwapNotFound
	}

	if !policy.CanRespondToSwap(caller, swap) {
		return nil, ErrForbidden
	}

	// 终态不可再变更：重复回应报冲突，而非静默忽略
	if swap.Resolved() {
		return nil, ErrSwapResolved
	}

	approved := req.Approved != nil && *req.Approved

	status := model.SwapStatusRejected
	var newOwner *string
	if approved {
		if swap.RequestedTo == nil {
			return nil, ErrSwapNoTarget
		}
		status = model.SwapStatusApproved
		newOwner = swap.RequestedTo
	}

	// 状态翻转与归属转移在同一事务内提交；
	// 以读取时的 version 做条件更新，并发写入会让后到者失败而不是互相覆盖
	if err := s.repo.Shift.ResolveSwap(ctx, swapID, status, shiftID, newOwner, shift.Version); err != nil {
		return nil, err
	}

	updated, err := s.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		s.logger.Error("查询班次失败", zap.String("id", shiftID), zap.Error(err))
		return nil, err
	}

	resp := toShiftResponse(updated)
	s.publishSwapEvent(realtime.EventShiftSwapResponded, resp, updated.EmployeeID, swap)
	return &resp, nil
}

// ── 内部辅助方法 ──

// publishSwapEvent 换班事件发往申请人、目标员工、班次归属员工与经理频道
// 收件人取自已提交的记录；同一连接命中多个频道时由 Hub 去重
func (s *swapService) publishSwapEvent(event string, payload dto.ShiftResponse, ownerID string, swap *model.SwapRequest) {
	recipients := []string{swap.RequestedBy, ownerID, realtime.ChannelManagers}
	if swap.RequestedTo != nil {
		recipients = append(recipients, *swap.RequestedTo)
	}
	s.pub.Publish(event, payload, recipients...)
}
