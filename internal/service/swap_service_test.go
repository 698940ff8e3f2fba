package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MosaSabaSaba/scheduling/internal/dto"
	"github.com/MosaSabaSaba/scheduling/internal/model"
	"github.com/MosaSabaSaba/scheduling/internal/policy"
	"github.com/MosaSabaSaba/scheduling/internal/realtime"
	"github.com/MosaSabaSaba/scheduling/internal/repository"
	apperrors "github.com/MosaSabaSaba/scheduling/pkg/errors"
)

func newSwapTestEnv() (SwapService, *mockShiftRepo, *mockPublisher) {
	shiftRepo := newMockShiftRepo()
	pub := newMockPublisher()
	repo := &repository.Repository{
		Employee: newMockEmployeeRepo(),
		Shift:    shiftRepo,
	}
	svc := NewSwapService(repo, pub, zap.NewNop())
	return svc, shiftRepo, pub
}

func seedShift(t *testing.T, repo *mockShiftRepo, ownerID string) *model.Shift {
	t.Helper()
	shift := &model.Shift{
		EmployeeID: ownerID,
		StartTime:  time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC),
	}
	if err := repo.Create(context.Background(), shift); err != nil {
		t.Fatalf("准备班次失败: %v", err)
	}
	return shift
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// ── SubmitSwap ──

func TestSubmitSwap_OwnerCreatesPending(t *testing.T) {
	svc, repo, pub := newSwapTestEnv()
	shift := seedShift(t, repo, "e1")

	caller := policy.Identity{ID: "e1", Role: model.RoleEmployee}
	req := &dto.SubmitSwapRequest{RequestedTo: strPtr("e2"), Notes: "周二有事"}

	resp, err := svc.SubmitSwap(context.Background(), shift.ShiftID, req, caller)
	if err != nil {
		t.Fatalf("SubmitSwap 应成功: %v", err)
	}
	if len(resp.SwapRequests) != 1 {
		t.Fatalf("应追加一条换班申请, 实际 %d 条", len(resp.SwapRequests))
	}
	swap := resp.SwapRequests[0]
	if swap.Status != model.SwapStatusPending {
		t.Errorf("新申请状态应为 pending, 实际 %q", swap.Status)
	}
	if swap.RequestedBy != "e1" {
		t.Errorf("RequestedBy 应为申请人 e1, 实际 %q", swap.RequestedBy)
	}
	if swap.RequestedTo == nil || *swap.RequestedTo != "e2" {
		t.Errorf("RequestedTo 应为 e2, 实际 %v", swap.RequestedTo)
	}
	if resp.EmployeeID != "e1" {
		t.Errorf("发起申请不应改变班次归属, 实际归属 %q", resp.EmployeeID)
	}

	if len(pub.events) != 1 || pub.events[0].event != realtime.EventShiftSwapRequested {
		t.Fatalf("应发布一次 %s 事件, 实际 %+v", realtime.EventShiftSwapRequested, pub.events)
	}
	for _, id := range []string{"e1", "e2", realtime.ChannelManagers} {
		if !pub.hasRecipient(0, id) {
			t.Errorf("事件收件人应包含 %q, 实际 %v", id, pub.events[0].recipients)
		}
	}
}

func TestSubmitSwap_OpenRequestWithoutTarget(t *testing.T) {
	svc, repo, _ := newSwapTestEnv()
	shift := seedShift(t, repo, "e1")

	caller := policy.Identity{ID: "e1", Role: model.RoleEmployee}
	resp, err := svc.SubmitSwap(context.Background(), shift.ShiftID, &dto.SubmitSwapRequest{}, caller)
	if err != nil {
		t.Fatalf("开放式申请（无目标员工）应允许发起: %v", err)
	}
	if resp.SwapRequests[0].RequestedTo != nil {
		t.Errorf("开放式申请 RequestedTo 应为空, 实际 %v", resp.SwapRequests[0].RequestedTo)
	}
}

func TestSubmitSwap_NonOwnerForbidden(t *testing.T) {
	svc, repo, pub := newSwapTestEnv()
	shift := seedShift(t, repo, "e1")

	// e3 既不是班次归属员工也不是经理
	caller := policy.Identity{ID: "e3", Role: model.RoleEmployee}
	_, err := svc.SubmitSwap(context.Background(), shift.ShiftID, &dto.SubmitSwapRequest{RequestedTo: strPtr("e2")}, caller)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("非归属员工发起申请应返回 ErrForbidden, 实际 %v", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("鉴权失败不应发布事件, 实际 %d 条", len(pub.events))
	}
	if len(repo.shifts[shift.ShiftID].SwapRequests) != 0 {
		t.Errorf("鉴权失败不应写入申请")
	}
}

func TestSubmitSwap_ManagerOnBehalf(t *testing.T) {
	svc, repo, _ := newSwapTestEnv()
	shift := seedShift(t, repo, "e1")

	caller := policy.Identity{ID: "m1", Role: model.RoleManager}
	resp, err := svc.SubmitSwap(context.Background(), shift.ShiftID, &dto.SubmitSwapRequest{RequestedTo: strPtr("e2")}, caller)
	if err != nil {
		t.Fatalf("经理应可代任意班次发起申请: %v", err)
	}
	if resp.SwapRequests[0].RequestedBy != "m1" {
		t.Errorf("RequestedBy 应记录实际发起人 m1, 实际 %q", resp.SwapRequests[0].RequestedBy)
	}
}

func TestSubmitSwap_ShiftNotFound(t *testing.T) {
	svc, _, _ := newSwapTestEnv()
	caller := policy.Identity{ID: "e1", Role: model.RoleEmployee}
	_, err := svc.SubmitSwap(context.Background(), "missing", &dto.SubmitSwapRequest{}, caller)
	if !errors.Is(err, ErrShiftNotFound) {
		t.Fatalf("班次不存在应返回 ErrShiftNotFound, 实际 %v", err)
	}
}

// ── RespondToSwap ──

func submitPending(t *testing.T, svc SwapService, shiftID, by string, to *string) string {
	t.Helper()
	resp, err := svc.SubmitSwap(context.Background(), shiftID, &dto.SubmitSwapRequest{RequestedTo: to}, policy.Identity{ID: by, Role: model.RoleEmployee})
	if err != nil {
		t.Fatalf("准备换班申请失败: %v", err)
	}
	return resp.SwapRequests[len(resp.SwapRequests)-1].ID
}

func TestRespondToSwap_ApproveTransfersOwnership(t *testing.T) {
	svc, repo, pub := newSwapTestEnv()
	shift := seedShift(t, repo, "e1")
	swapID := submitPending(t, svc, shift.ShiftID, "e1", strPtr("e2"))
	pub.events = nil

	manager := policy.Identity{ID: "m1", Role: model.RoleManager}
	resp, err := svc.RespondToSwap(context.Background(), shift.ShiftID, swapID, &dto.RespondSwapRequest{Approved: boolPtr(true)}, manager)
	if err != nil {
		t.Fatalf("经理批准应成功: %v", err)
	}
	if resp.EmployeeID != "e2" {
		t.Errorf("批准后班次归属应转移给目标员工 e2, 实际 %q", resp.EmployeeID)
	}
	if resp.SwapRequests[0].Status != model.SwapStatusApproved {
		t.Errorf("申请状态应为 approved, 实际 %q", resp.SwapRequests[0].Status)
	}

	// e1 的其余班次不受影响；本例验证仅目标班次被改写
	if repo.shifts[shift.ShiftID].Version != 2 {
		t.Errorf("归属转移应递增 version, 实际 %d", repo.shifts[shift.ShiftID].Version)
	}

	if len(pub.events) != 1 || pub.events[0].event != realtime.EventShiftSwapResponded {
		t.Fatalf("应发布一次 %s 事件, 实际 %+v", realtime.EventShiftSwapResponded, pub.events)
	}
	for _, id := range []string{"e1", "e2", realtime.ChannelManagers} {
		if !pub.hasRecipient(0, id) {
			t.Errorf("事件收件人应包含 %q, 实际 %v", id, pub.events[0].recipients)
		}
	}
}

func TestRespondToSwap_RejectKeepsOwnership(t *testing.T) {
	svc, repo, _ := newSwapTestEnv()
	shift := seedShift(t, repo, "e1")
	swapID := submitPending(t, svc, shift.ShiftID, "e1", strPtr("e2"))

	target := policy.Identity{ID: "e2", Role: model.RoleEmployee}
	resp, err := svc.RespondToSwap(context.Background(), shift.ShiftID, swapID, &dto.RespondSwapRequest{Approved: boolPtr(false)}, target)
	if err != nil {
		t.Fatalf("目标员工拒绝应成功: %v", err)
	}
	if resp.EmployeeID != "e1" {
		t.Errorf("拒绝不应改变班次归属, 实际 %q", resp.EmployeeID)
	}
	if resp.SwapRequests[0].Status != model.SwapStatusRejected {
		t.Errorf("申请状态应为 rejected, 实际 %q", resp.SwapRequests[0].Status)
	}
	if repo.shifts[shift.ShiftID].Version != 1 {
		t.Errorf("拒绝不应递增 version, 实际 %d", repo.shifts[shift.ShiftID].Version)
	}
}

func TestRespondToSwap_TargetCanApprove(t *testing.T) {
	svc, repo, _ := newSwapTestEnv()
	shift := seedShift(t, repo, "e1")
	swapID := submitPending(t, svc, shift.ShiftID, "e1", strPtr("e2"))

	target := policy.Identity{ID: "e2", Role: model.RoleEmployee}
	resp, err := svc.RespondToSwap(context.Background(), shift.ShiftID, swapID, &dto.RespondSwapRequest{Approved: boolPtr(true)}, target)
	if err != nil {
		t.Fatalf("目标员工批准应成功: %v", err)
	}
	if resp.EmployeeID != "e2" {
		t.Errorf("批准后班次归属应为 e2, 实际 %q", resp.EmployeeID)
	}
}

func TestRespondToSwap_SecondResponseConflicts(t *testing.T) {
	svc, repo, _ := newSwapTestEnv()
	shift := seedShift(t, repo, "e1")
	swapID := submitPending(t, svc, shift.ShiftID, "e1", strPtr("e2"))

	manager := policy.Identity{ID: "m1", Role: model.RoleManager}
	ctx := context.Background()
	if _, err := svc.RespondToSwap(ctx, shift.ShiftID, swapID, &dto.RespondSwapRequest{Approved: boolPtr(false)}, manager); err != nil {
		t.Fatalf("首次回应应成功: %v", err)
	}

	// 终态后再次回应：无论批准还是拒绝都应报冲突
	_, err := svc.RespondToSwap(ctx, shift.ShiftID, swapID, &dto.RespondSwapRequest{Approved: boolPtr(true)}, manager)
	if !errors.Is(err, ErrSwapResolved) {
		t.Fatalf("重复回应应返回 ErrSwapResolved, 实际 %v", err)
	}
	if repo.shifts[shift.ShiftID].EmployeeID != "e1" {
		t.Errorf("冲突的回应不应产生归属转移")
	}
}

func TestRespondToSwap_OwnerButNotTargetForbidden(t *testing.T) {
	svc, repo, _ := newSwapTestEnv()
	shift := seedShift(t, repo, "e1")
	swapID := submitPending(t, svc, shift.ShiftID, "e1", strPtr("e2"))

	// e1 是班次归属员工和申请人，但不是申请的目标员工
	owner := policy.Identity{ID: "e1", Role: model.RoleEmployee}
	_, err := svc.RespondToSwap(context.Background(), shift.ShiftID, swapID, &dto.RespondSwapRequest{Approved: boolPtr(true)}, owner)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("归属员工（非目标）回应应返回 ErrForbidden, 实际 %v", err)
	}
}

func TestRespondToSwap_ApproveOpenRequestRejected(t *testing.T) {
	svc, repo, _ := newSwapTestEnv()
	shift := seedShift(t, repo, "e1")
	swapID := submitPending(t, svc, shift.ShiftID, "e1", nil)

	manager := policy.Identity{ID: "m1", Role: model.RoleManager}
	_, err := svc.RespondToSwap(context.Background(), shift.ShiftID, swapID, &dto.RespondSwapRequest{Approved: boolPtr(true)}, manager)
	if !errors.Is(err, ErrSwapNoTarget) {
		t.Fatalf("批准无目标的开放式申请应返回 ErrSwapNoTarget, 实际 %v", err)
	}

	// 拒绝开放式申请则正常
	resp, err := svc.RespondToSwap(context.Background(), shift.ShiftID, swapID, &dto.RespondSwapRequest{Approved: boolPtr(false)}, manager)
	if err != nil {
		t.Fatalf("拒绝开放式申请应成功: %v", err)
	}
	if resp.SwapRequests[0].Status != model.SwapStatusRejected {
		t.Errorf("申请状态应为 rejected, 实际 %q", resp.SwapRequests[0].Status)
	}
}

func TestRespondToSwap_SwapNotFound(t *testing.T) {
	svc, repo, _ := newSwapTestEnv()
	shift := seedShift(t, repo, "e1")

	manager := policy.Identity{ID: "m1", Role: model.RoleManager}
	_, err := svc.RespondToSwap(context.Background(), shift.ShiftID, "missing", &dto.RespondSwapRequest{Approved: boolPtr(true)}, manager)
	if !errors.Is(err, ErrSwapNotFound) {
		t.Fatalf("申请不存在应返回 ErrSwapNotFound, 实际 %v", err)
	}
}

func TestRespondToSwap_StaleVersionConflicts(t *testing.T) {
	svc, repo, _ := newSwapTestEnv()
	shift := seedShift(t, repo, "e1")
	swapID := submitPending(t, svc, shift.ShiftID, "e1", strPtr("e2"))

	// 读取后、提交前班次被并发改写（version 前移）
	repo.resolveHook = func() {
		repo.shifts[shift.ShiftID].Version = 5
	}

	manager := policy.Identity{ID: "m1", Role: model.RoleManager}
	_, err := svc.RespondToSwap(context.Background(), shift.ShiftID, swapID, &dto.RespondSwapRequest{Approved: boolPtr(true)}, manager)
	if !errors.Is(err, apperrors.ErrOptimisticLock) {
		t.Fatalf("version 不匹配应返回 ErrOptimisticLock, 实际 %v", err)
	}
	if repo.shifts[shift.ShiftID].EmployeeID != "e1" {
		t.Errorf("冲突失败不应转移归属")
	}
}

// 完整场景：e1 向 e2 发起换班，经理批准，班次转给 e2，台账保留终态记录
func TestSwapWorkflow_EndToEnd(t *testing.T) {
	svc, repo, pub := newSwapTestEnv()
	shift := seedShift(t, repo, "e1")

	e1 := policy.Identity{ID: "e1", Role: model.RoleEmployee}
	submitted, err := svc.SubmitSwap(context.Background(), shift.ShiftID, &dto.SubmitSwapRequest{RequestedTo: strPtr("e2"), Notes: "换周五"}, e1)
	if err != nil {
		t.Fatalf("发起申请应成功: %v", err)
	}
	swapID := submitted.SwapRequests[0].ID

	manager := policy.Identity{ID: "m1", Role: model.RoleManager}
	final, err := svc.RespondToSwap(context.Background(), shift.ShiftID, swapID, &dto.RespondSwapRequest{Approved: boolPtr(true)}, manager)
	if err != nil {
		t.Fatalf("批准应成功: %v", err)
	}

	if final.EmployeeID != "e2" {
		t.Errorf("最终归属应为 e2, 实际 %q", final.EmployeeID)
	}
	if len(final.SwapRequests) != 1 || final.SwapRequests[0].Status != model.SwapStatusApproved {
		t.Errorf("台账应保留一条 approved 记录, 实际 %+v", final.SwapRequests)
	}
	if final.SwapRequests[0].Notes != "换周五" {
		t.Errorf("申请备注应保留, 实际 %q", final.SwapRequests[0].Notes)
	}
	if len(pub.events) != 2 {
		t.Fatalf("全流程应发布两次事件, 实际 %d", len(pub.events))
	}
	if pub.events[0].event != realtime.EventShiftSwapRequested || pub.events[1].event != realtime.EventShiftSwapResponded {
		t.Errorf("事件顺序应为申请→回应, 实际 %v, %v", pub.events[0].event, pub.events[1].event)
	}
}
