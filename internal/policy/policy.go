package policy

import "github.com/MosaSabaSaba/scheduling/internal/model"

// Identity 已认证调用者的身份（从 Token 解出，显式传入每个操作）
type Identity struct {
	ID   string
	Role string
}

// IsManager 调用者是否为经理
func (i Identity) IsManager() bool {
	return i.Role == model.RoleManager
}

// ValidRole 角色是否属于封闭枚举 {employee, manager}
func ValidRole(role string) bool {
	return role == model.RoleEmployee || role == model.RoleManager
}

// ── 纯授权判定函数：无 I/O，无副作用 ──

// CanViewShift 经理或班次归属员工可查看班次
func CanViewShift(caller Identity, shift *model.Shift) bool {
	return caller.IsManager() || caller.ID == shift.EmployeeID
}

// CanMutateShift 仅经理可直接创建/更新/删除班次
func CanMutateShift(caller Identity) bool {
	return caller.IsManager()
}

// CanSubmitSwap 经理或班次归属员工可发起换班申请
func CanSubmitSwap(caller Identity, shift *model.Shift) bool {
	return caller.IsManager() || caller.ID == shift.EmployeeID
}

// CanRespondToSwap 经理或换班申请的目标员工可回应申请
// 班次当前归属员工若既非目标也非经理，同样无权回应
func CanRespondToSwap(caller Identity, swap *model.SwapRequest) bool {
	if caller.IsManager() {
		return true
	}
	return swap.RequestedTo != nil && caller.ID == *swap.RequestedTo
}
