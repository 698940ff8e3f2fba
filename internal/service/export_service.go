package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/MosaSabaSaba/scheduling/internal/dto"
	"github.com/MosaSabaSaba/scheduling/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportNoShifts = errors.New("指定范围内没有班次")

// ExportService 导出业务接口
//
// 设计说明：
//   - 排班表导出为 Excel (.xlsx)，供经理下载
//   - 日历导出为 iCalendar (RFC 5545)，员工可订阅到日历应用
//   - Excel 以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
type ExportService interface {
	// ExportShifts 将时间范围内的全部班次导出为 Excel
	ExportShifts(ctx context.Context, req *dto.ShiftListRequest) (*bytes.Buffer, string, error)

	// ExportCalendar 将指定员工的班次序列化为 iCalendar 文本
	ExportCalendar(ctx context.Context, employeeID string) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ────────────────────── ExportShifts ──────────────────────

func (s *exportService) ExportShifts(ctx context.Context, req *dto.ShiftListRequest) (*bytes.Buffer, string, error) {
	shifts, err := s.repo.Shift.List(ctx, "", req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, "", err
	}
	if len(shifts) == 0 {
		return nil, "", ErrExportNoShifts
	}

	// 员工姓名索引
	employees, err := s.repo.Employee.List(ctx)
	if err != nil {
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, "", err
	}
	names := make(map[string]string, len(employees))
	for i := range employees {
		names[employees[i].EmployeeID] = employees[i].Name
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	headers := []string{"日期", "开始时间", "结束时间", "员工", "备注"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, shift := range shifts {
		name := names[shift.EmployeeID]
		if name == "" {
			name = shift.EmployeeID
		}
		values := []interface{}{
			shift.StartTime.Format("2006-01-02"),
			shift.StartTime.Format("15:04"),
			shift.EndTime.Format("15:04"),
			name,
			shift.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "A", "E", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 文件失败", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("shifts_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ────────────────────── ExportCalendar ──────────────────────

func (s *exportService) ExportCalendar(ctx context.Context, employeeID string) (string, error) {
	shifts, err := s.repo.Shift.List(ctx, employeeID, nil, nil)
	if err != nil {
		s.logger.Error("查询班次失败", zap.String("employee_id", employeeID), zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//scheduling//shift-calendar//CN")

	for i := range shifts {
		shift := &shifts[i]
		event := cal.AddEvent(shift.ShiftID)
		event.SetCreatedTime(shift.CreatedAt)
		event.SetStartAt(shift.StartTime)
		event.SetEndAt(shift.EndTime)
		event.SetSummary("工作班次")
		if shift.Notes != "" {
			event.SetDescription(shift.Notes)
		}
	}

	return cal.Serialize(), nil
}
