package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/MosaSabaSaba/scheduling/internal/model"
	apperrors "github.com/MosaSabaSaba/scheduling/pkg/errors"
)

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[string]*model.Employee
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.Employee)}
}

func (m *mockEmployeeRepo) Create(_ context.Context, employee *model.Employee) error {
	if employee.EmployeeID == "" {
		employee.EmployeeID = fmt.Sprintf("emp-%d", len(m.employees)+1)
	}
	m.employees[employee.EmployeeID] = employee
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	if e, ok := m.employees[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetByEmail(_ context.Context, email string) (*model.Employee, error) {
	for _, e := range m.employees {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) List(_ context.Context) ([]model.Employee, error) {
	var result []model.Employee
	for _, e := range m.employees {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, employee *model.Employee) error {
	m.employees[employee.EmployeeID] = employee
	return nil
}

func (m *mockEmployeeRepo) Delete(_ context.Context, id string) error {
	delete(m.employees, id)
	return nil
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts  map[string]*model.Shift
	swapSeq int

	// resolveHook 在 ResolveSwap 执行前调用，用于模拟读取与提交之间的并发写入
	resolveHook func()
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: make(map[string]*model.Shift)}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		shift.ShiftID = fmt.Sprintf("shift-%d", len(m.shifts)+1)
	}
	if shift.Version == 0 {
		shift.Version = 1
	}
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) List(_ context.Context, employeeID string, start, end *time.Time) ([]model.Shift, error) {
	var result []model.Shift
	for _, s := range m.shifts {
		if employeeID != "" && s.EmployeeID != employeeID {
			continue
		}
		if start != nil && end != nil && (s.StartTime.Before(*start) || s.StartTime.After(*end)) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockShiftRepo) Update(_ context.Context, shift *model.Shift) error {
	if _, ok := m.shifts[shift.ShiftID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string) error {
	delete(m.shifts, id)
	return nil
}

func (m *mockShiftRepo) AppendSwapRequest(_ context.Context, swap *model.SwapRequest) error {
	shift, ok := m.shifts[swap.ShiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if swap.SwapRequestID == "" {
		m.swapSeq++
		swap.SwapRequestID = fmt.Sprintf("swap-%d", m.swapSeq)
	}
	if swap.CreatedAt.IsZero() {
		swap.CreatedAt = time.Now()
	}
	shift.SwapRequests = append(shift.SwapRequests, *swap)
	return nil
}

// ResolveSwap 复刻真实实现的条件更新语义：
// 仅命中仍为 pending 的申请；归属转移校验读取时的 version
func (m *mockShiftRepo) ResolveSwap(_ context.Context, swapID, status, shiftID string, newOwnerID *string, expectedVersion int) error {
	if m.resolveHook != nil {
		m.resolveHook()
	}
	shift, ok := m.shifts[shiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	swap := shift.FindSwapRequest(swapID)
	if swap == nil || swap.Status != model.SwapStatusPending {
		return apperrors.ErrOptimisticLock
	}
	if newOwnerID != nil && shift.Version != expectedVersion {
		return apperrors.ErrOptimisticLock
	}

	swap.Status = status
	if newOwnerID != nil {
		shift.EmployeeID = *newOwnerID
		shift.Version++
	}
	return nil
}

// ── Mock Publisher ──

type publishedEvent struct {
	event      string
	payload    interface{}
	recipients []string
}

type mockPublisher struct {
	events []publishedEvent
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{}
}

func (m *mockPublisher) Publish(event string, payload interface{}, recipients ...string) {
	m.events = append(m.events, publishedEvent{
		event:      event,
		payload:    payload,
		recipients: recipients,
	})
}

func (m *mockPublisher) hasRecipient(i int, id string) bool {
	if i >= len(m.events) {
		return false
	}
	for _, r := range m.events[i].recipients {
		if r == id {
			return true
		}
	}
	return false
}
