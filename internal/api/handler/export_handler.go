package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MosaSabaSaba/scheduling/internal/dto"
	"github.com/MosaSabaSaba/scheduling/internal/service"
	"github.com/MosaSabaSaba/scheduling/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportShifts 导出班次表为 Excel（仅经理）
// GET /api/v1/export/shifts?start_date=&end_date=
func (h *ExportHandler) ExportShifts(c *gin.Context) {
	var req dto.ShiftListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportShifts(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrExportNoShifts) {
			response.NotFound(c, 14001, "指定范围内没有班次")
			return
		}
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportCalendar 导出当前员工的班次日历 (iCalendar)
// GET /api/v1/export/calendar
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	caller, ok := MustGetIdentity(c)
	if !ok {
		return
	}

	content, err := h.exportSvc.ExportCalendar(c.Request.Context(), caller.ID)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shifts.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(content))
}
