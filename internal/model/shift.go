package model

import "time"

// ── 换班申请状态机：pending → approved | rejected，均为终态 ──

const (
	SwapStatusPending  = "pending"
	SwapStatusApproved = "approved"
	SwapStatusRejected = "rejected"
)

// Shift 班次表 — 对应 shifts
// SwapRequests 按创建时间升序，构成班次的换班申请台账
type Shift struct {
	ShiftID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	EmployeeID string    `gorm:"type:uuid;not null;index"                       json:"employee_id"`
	StartTime  time.Time `gorm:"not null"                                       json:"start_time"`
	EndTime    time.Time `gorm:"not null"                                       json:"end_time"`
	Notes      string    `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	VersionedModel

	// 关联
	Employee     *Employee     `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"employee,omitempty"`
	SwapRequests []SwapRequest `gorm:"foreignKey:ShiftID"                          json:"swap_requests,omitempty"`
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }

// FindSwapRequest 在台账中查找指定申请，未找到返回 nil
func (s *Shift) FindSwapRequest(swapID string) *SwapRequest {
	for i := range s.SwapRequests {
		if s.SwapRequests[i].SwapRequestID == swapID {
			return &s.SwapRequests[i]
		}
	}
	return nil
}

// SwapRequest 换班申请表 — 对应 swap_requests
// 生命周期完全隶属于其班次；创建后不再独立删除，终态后不再变更
type SwapRequest struct {
	SwapRequestID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"swap_request_id"`
	ShiftID       string    `gorm:"type:uuid;not null;index"                       json:"shift_id"`
	RequestedBy   string    `gorm:"type:uuid;not null"                             json:"requested_by"`
	RequestedTo   *string   `gorm:"type:uuid"                                      json:"requested_to,omitempty"` // 为空表示面向任意员工
	Status        string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`                 // pending | approved | rejected
	Notes         string    `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (SwapRequest) TableName() string { return "swap_requests" }

// Resolved 申请是否已处于终态
func (r *SwapRequest) Resolved() bool {
	return r.Status != SwapStatusPending
}
