package realtime

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(hub *Hub, employeeID string, manager bool) *Client {
	return NewClient(hub, nil, employeeID, manager, zap.NewNop())
}

// drain 读空发送队列并返回消息数
func drain(t *testing.T, c *Client) []Message {
	t.Helper()
	var msgs []Message
	for {
		select {
		case data := <-c.send:
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("消息应为合法 JSON: %v", err)
			}
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func TestPublish_FanOut(t *testing.T) {
	hub := NewHub(zap.NewNop())

	e1 := newTestClient(hub, "e1", false)
	e2 := newTestClient(hub, "e2", false)
	e4 := newTestClient(hub, "e4", false)
	m1 := newTestClient(hub, "m1", true)
	for _, c := range []*Client{e1, e2, e4, m1} {
		hub.Register(c)
	}

	hub.Publish(EventShiftSwapRequested, map[string]string{"shift_id": "s1"}, "e1", "e2", ChannelManagers)

	if got := drain(t, e1); len(got) != 1 || got[0].Event != EventShiftSwapRequested {
		t.Errorf("申请人 e1 应收到恰好 1 条事件, 实际 %d", len(got))
	}
	if got := drain(t, e2); len(got) != 1 {
		t.Errorf("目标员工 e2 应收到恰好 1 条事件, 实际 %d", len(got))
	}
	if got := drain(t, e4); len(got) != 0 {
		t.Errorf("无关员工 e4 不应收到事件, 实际 %d", len(got))
	}
	if got := drain(t, m1); len(got) != 1 {
		t.Errorf("经理应通过 managers 频道收到恰好 1 条事件, 实际 %d", len(got))
	}
}

func TestPublish_DedupeAcrossChannels(t *testing.T) {
	hub := NewHub(zap.NewNop())

	// 经理同时是事件的直接收件人：身份频道与 managers 频道各命中一次
	m1 := newTestClient(hub, "m1", true)
	hub.Register(m1)

	hub.Publish(EventShiftSwapResponded, nil, "m1", ChannelManagers)

	if got := drain(t, m1); len(got) != 1 {
		t.Errorf("同一连接命中多个频道仍应只投递 1 条, 实际 %d", len(got))
	}
}

func TestPublish_OfflineRecipientSilentlyDropped(t *testing.T) {
	hub := NewHub(zap.NewNop())

	e1 := newTestClient(hub, "e1", false)
	hub.Register(e1)

	// e2 不在线：不报错，在线的 e1 正常收到
	hub.Publish(EventShiftCreated, nil, "e1", "e2")

	if got := drain(t, e1); len(got) != 1 {
		t.Errorf("在线收件人应收到事件, 实际 %d", len(got))
	}
}

func TestPublish_FullBufferDoesNotBlock(t *testing.T) {
	hub := NewHub(zap.NewNop())

	e1 := newTestClient(hub, "e1", false)
	hub.Register(e1)

	// 填满发送缓冲后继续发布：应跳过而非阻塞
	for i := 0; i < cap(e1.send)+10; i++ {
		hub.Publish(EventShiftUpdated, nil, "e1")
	}

	if got := drain(t, e1); len(got) != cap(e1.send) {
		t.Errorf("缓冲满后多余事件应被丢弃, 实际收到 %d", len(got))
	}
}

func TestUnregister_RemovesFromAllChannels(t *testing.T) {
	hub := NewHub(zap.NewNop())

	m1 := newTestClient(hub, "m1", true)
	hub.Register(m1)
	hub.Unregister(m1)

	// 注销后发送队列已关闭
	if _, ok := <-m1.send; ok {
		t.Errorf("注销后发送队列应已关闭")
	}

	// 两个频道都已清空，再发布不会 panic
	hub.Publish(EventShiftCreated, nil, "m1", ChannelManagers)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if len(hub.channels) != 0 {
		t.Errorf("注销后频道表应为空, 实际 %d", len(hub.channels))
	}
}

func TestUnregister_Idempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())

	e1 := newTestClient(hub, "e1", false)
	hub.Register(e1)
	hub.Unregister(e1)
	// 重复注销不应 panic（send 只关闭一次）
	hub.Unregister(e1)
}
