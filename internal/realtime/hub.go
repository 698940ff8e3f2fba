package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub 维护活跃连接与频道成员关系，负责事件扇出
// 成员关系仅存在于进程内：连接建立时加入，断开时移除，不做持久化
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Client]bool
	logger   *zap.Logger
}

// NewHub 创建 Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		channels: make(map[string]map[*Client]bool),
		logger:   logger,
	}
}

// Register 将连接加入其身份频道；经理额外加入 managers 频道
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.join(client, client.employeeID)
	if client.manager {
		h.join(client, ChannelManagers)
	}

	h.logger.Info("实时连接已注册",
		zap.String("employee_id", client.employeeID),
		zap.Bool("manager", client.manager),
	)
}

// Unregister 将连接从所有频道移除并关闭其发送队列
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := false
	for name, members := range h.channels {
		if members[client] {
			delete(members, client)
			removed = true
			if len(members) == 0 {
				delete(h.channels, name)
			}
		}
	}
	if removed {
		close(client.send)
		h.logger.Info("实时连接已注销", zap.String("employee_id", client.employeeID))
	}
}

// Publish 向指定频道集合扇出一条事件
// 尽力投递：接收方不在线即静默丢弃，发送缓冲已满同样跳过，
// 调用方不感知任何投递结果
func (h *Hub) Publish(event string, payload interface{}, recipients ...string) {
	msg := Message{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("序列化实时事件失败", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	// 同一连接即便同时命中多个目标频道（如经理本人也是当事员工），
	// 每次 Publish 也至多投递一次
	delivered := make(map[*Client]bool)
	for _, recipient := range recipients {
		if recipient == "" {
			continue
		}
		for client := range h.channels[recipient] {
			if delivered[client] {
				continue
			}
			delivered[client] = true
			select {
			case client.send <- data:
			default:
				h.logger.Warn("连接发送缓冲已满，事件被丢弃",
					zap.String("employee_id", client.employeeID),
					zap.String("event", event),
				)
			}
		}
	}
}

// join 调用方须持有写锁
func (h *Hub) join(client *Client, channel string) {
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[*Client]bool)
	}
	h.channels[channel][client] = true
}
