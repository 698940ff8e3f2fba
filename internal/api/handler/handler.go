package handler

import "github.com/MosaSabaSaba/scheduling/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	Employee *EmployeeHandler
	Shift    *ShiftHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		Employee: NewEmployeeHandler(svc.Employee),
		Shift:    NewShiftHandler(svc.Shift, svc.Swap),
		Export:   NewExportHandler(svc.Export),
	}
}
