package dto

import "github.com/MosaSabaSaba/scheduling/internal/model"

// ── 员工模块 DTO ──

// CreateEmployeeRequest 创建员工请求（仅经理）
type CreateEmployeeRequest struct {
	Name         string                 `json:"name"         binding:"required,min=2,max=100"`
	Email        string                 `json:"email"        binding:"required,email"`
	Password     string                 `json:"password"     binding:"required,min=8,max=72"`
	Role         string                 `json:"role"         binding:"omitempty,oneof=employee manager"`
	Phone        string                 `json:"phone"        binding:"omitempty,max=30"`
	Position     string                 `json:"position"     binding:"omitempty,max=100"`
	Notes        string                 `json:"notes"        binding:"omitempty,max=500"`
	Availability model.WeekAvailability `json:"availability" binding:"omitempty"`
}

// UpdateEmployeeRequest 更新员工请求（仅经理）
type UpdateEmployeeRequest struct {
	Name         *string                 `json:"name"         binding:"omitempty,min=2,max=100"`
	Email        *string                 `json:"email"        binding:"omitempty,email"`
	Phone        *string                 `json:"phone"        binding:"omitempty,max=30"`
	Position     *string                 `json:"position"     binding:"omitempty,max=100"`
	Notes        *string                 `json:"notes"        binding:"omitempty,max=500"`
	Availability *model.WeekAvailability `json:"availability" binding:"omitempty"`
}

// EmployeeResponse 员工信息响应（脱敏）
type EmployeeResponse struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	Phone        string                 `json:"phone,omitempty"`
	Position     string                 `json:"position,omitempty"`
	Notes        string                 `json:"notes,omitempty"`
	Availability model.WeekAvailability `json:"availability,omitempty"`
	CreatedAt    string                 `json:"created_at"`
}
