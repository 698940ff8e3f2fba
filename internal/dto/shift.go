package dto

import "time"

// ── 班次模块 DTO ──

// CreateShiftRequest 创建班次请求（仅经理）
type CreateShiftRequest struct {
	EmployeeID string    `json:"employee_id" binding:"required,uuid"`
	StartTime  time.Time `json:"start_time"  binding:"required"`
	EndTime    time.Time `json:"end_time"    binding:"required"`
	Notes      string    `json:"notes"       binding:"omitempty,max=500"`
}

// UpdateShiftRequest 更新班次请求（仅经理）
type UpdateShiftRequest struct {
	EmployeeID *string    `json:"employee_id" binding:"omitempty,uuid"`
	StartTime  *time.Time `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Notes      *string    `json:"notes"       binding:"omitempty,max=500"`
}

// ShiftListRequest 班次列表查询参数
// 时间范围可选；非经理只能看到自己的班次（Service 层裁剪）
type ShiftListRequest struct {
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date"   time_format:"2006-01-02"`
}

// SubmitSwapRequest 发起换班申请请求
type SubmitSwapRequest struct {
	RequestedTo *string `json:"requested_to" binding:"omitempty,uuid"` // 为空表示面向任意员工
	Notes       string  `json:"notes"        binding:"omitempty,max=500"`
}

// RespondSwapRequest 回应换班申请请求
// Approved 用指针以区分「未提供」与显式 false
type RespondSwapRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// SwapRequestResponse 换班申请响应
type SwapRequestResponse struct {
	ID          string  `json:"id"`
	ShiftID     string  `json:"shift_id"`
	RequestedBy string  `json:"requested_by"`
	RequestedTo *string `json:"requested_to,omitempty"`
	Status      string  `json:"status"`
	Notes       string  `json:"notes,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// ShiftResponse 班次响应，含按创建时间升序的换班台账
type ShiftResponse struct {
	ID           string                `json:"id"`
	EmployeeID   string                `json:"employee_id"`
	StartTime    string                `json:"start_time"`
	EndTime      string                `json:"end_time"`
	Notes        string                `json:"notes,omitempty"`
	SwapRequests []SwapRequestResponse `json:"swap_requests"`
	CreatedAt    string                `json:"created_at"`
	UpdatedAt    string                `json:"updated_at"`
}
