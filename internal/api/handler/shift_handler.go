package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/MosaSabaSaba/scheduling/internal/dto"
	"github.com/MosaSabaSaba/scheduling/internal/service"
	apperrors "github.com/MosaSabaSaba/scheduling/pkg/errors"
	"github.com/MosaSabaSaba/scheduling/pkg/response"
)

// ShiftHandler 班次模块 HTTP 处理器（含换班工作流）
type ShiftHandler struct {
	shiftSvc service.ShiftService
	swapSvc  service.SwapService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService, swapSvc service.SwapService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc, swapSvc: swapSvc}
}

// ListShifts 获取班次列表（可选时间范围；非经理仅见自己的班次）
// GET /api/v1/shifts
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	var req dto.ShiftListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	shifts, err := h.shiftSvc.List(c.Request.Context(), &req, caller)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": shifts})
}

// GetShift 获取班次详情
// GET /api/v1/shifts/:id
func (h *ShiftHandler) GetShift(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.GetByID(c.Request.Context(), id, caller)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// CreateShift 创建班次（仅经理）
// POST /api/v1/shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, shift)
}

// UpdateShift 更新班次（仅经理）
// PUT /api/v1/shifts/:id
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.Update(c.Request.Context(), id, &req, caller)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// DeleteShift 删除班次（仅经理）
// DELETE /api/v1/shifts/:id
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	if err := h.shiftSvc.Delete(c.Request.Context(), id, caller); err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, nil)
}

// SubmitSwap 发起换班申请（班次归属员工或经理）
// POST /api/v1/shifts/:id/swap-request
func (h *ShiftHandler) SubmitSwap(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "班次ID不能为空")
		return
	}

	var req dto.SubmitSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	shift, err := h.swapSvc.SubmitSwap(c.Request.Context(), id, &req, caller)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// RespondToSwap 回应换班申请（目标员工或经理）
// PUT /api/v1/shifts/:id/swap-request/:swapId
func (h *ShiftHandler) RespondToSwap(c *gin.Context) {
	id := c.Param("id")
	swapID := c.Param("swapId")
	if id == "" || swapID == "" {
		response.BadRequest(c, 10001, "班次ID与申请ID不能为空")
		return
	}

	var req dto.RespondSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	shift, err := h.swapSvc.RespondToSwap(c.Request.Context(), id, swapID, &req, caller)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// handleShiftError 统一处理班次模块业务错误
func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 13001, "班次不存在")
	case errors.Is(err, service.ErrSwapNotFound):
		response.NotFound(c, 13002, "换班申请不存在")
	case errors.Is(err, service.ErrSwapResolved):
		response.Conflict(c, 13003, "换班申请已被处理")
	case errors.Is(err, apperrors.ErrOptimisticLock):
		response.Conflict(c, 13004, "班次已被其他操作修改，请刷新后重试")
	case errors.Is(err, service.ErrSwapNoTarget):
		response.BadRequest(c, 13005, "开放式换班申请没有目标员工，无法批准")
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, 13006, "开始时间必须早于结束时间")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "无权执行该操作")
	default:
		response.InternalError(c)
	}
}
