package realtime

import "time"

// ChannelManagers 所有经理共享的保留频道
// 普通频道以员工 ID 为地址，每个连接固定归属自己的身份频道
const ChannelManagers = "managers"

// ── 事件类型：每次已提交的变更对应一条事件，负载为变更后的实体 ──

const (
	EventShiftCreated       = "shift_created"
	EventShiftUpdated       = "shift_updated"
	EventShiftDeleted       = "shift_deleted"
	EventShiftSwapRequested = "shift_swap_requested"
	EventShiftSwapResponded = "shift_swap_responded"
)

// Message 推送给客户端的事件消息
type Message struct {
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
