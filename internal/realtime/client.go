package realtime

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client 一条已通过握手认证的 WebSocket 连接
type Client struct {
	employeeID string
	manager    bool
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	logger     *zap.Logger
}

// NewClient 创建 Client
func NewClient(hub *Hub, conn *websocket.Conn, employeeID string, manager bool, logger *zap.Logger) *Client {
	return &Client{
		employeeID: employeeID,
		manager:    manager,
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 64),
		logger:     logger,
	}
}

// ReadPump 维持读循环以处理控制帧并感知断开
// 事件发布统一由服务端变更提交后触发，客户端上行的业务消息一律忽略
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket 读取异常",
					zap.String("employee_id", c.employeeID),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// WritePump 将发送队列中的事件写入连接，并定期发送心跳
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
