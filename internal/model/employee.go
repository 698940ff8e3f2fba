package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ── 角色封闭枚举 ──

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
)

// ── PostgreSQL JSONB 自定义类型 ──

// DayAvailability 单日空闲时段
type DayAvailability struct {
	Available bool   `json:"available"`
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
}

// WeekAvailability 每周空闲登记，键为星期（monday..sunday）
// 对应 PostgreSQL JSONB 列，实现 GORM Scanner/Valuer 接口
type WeekAvailability map[string]DayAvailability

// Scan 将 JSONB 文本解析为 WeekAvailability
func (w *WeekAvailability) Scan(src interface{}) error {
	if src == nil {
		*w = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("WeekAvailability.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(data, w)
}

// Value 将 WeekAvailability 序列化为 JSONB 文本
func (w WeekAvailability) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	return json.Marshal(w)
}

// Employee 员工表 — 对应 employees
type Employee struct {
	EmployeeID   string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"employee_id"`
	Name         string           `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string           `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string           `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string           `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"` // employee | manager
	Phone        string           `gorm:"type:varchar(30)"                               json:"phone,omitempty"`
	Position     string           `gorm:"type:varchar(100)"                              json:"position,omitempty"`
	Notes        string           `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	Availability WeekAvailability `gorm:"type:jsonb"                                     json:"availability,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }
