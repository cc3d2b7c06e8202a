package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub giữ các kết nối websocket của trang danh sách.
// Server chỉ phát tín hiệu "có thay đổi", client tự gọi lại API để lấy dữ liệu,
// thay cho cơ chế polling định kỳ.

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Clients map[*websocket.Conn]*Client
	Mutex   sync.RWMutex
}

var H = Hub{
	Clients: make(map[*websocket.Conn]*Client),
}

// Register thêm client mới và khởi động pump ghi.
// Vòng đọc do handler giữ để phát hiện client đóng kết nối.
func (h *Hub) Register(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	h.Clients[conn] = client

	go h.writePump(client)
}

// Unregister gỡ client
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.Clients[conn]; ok {
		close(client.Send)
		delete(h.Clients, conn)
	}
}

// Broadcast gửi message cho toàn bộ client
func (h *Hub) Broadcast(data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.Clients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// GetStats trả số client đang kết nối (cho health check)
func (h *Hub) GetStats() map[string]int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	return map[string]int{
		"clients": len(h.Clients),
	}
}

// BroadcastPDFListChanged phát tín hiệu danh sách PDF đã thay đổi
func BroadcastPDFListChanged() {
	H.Broadcast([]byte(`{"type": "pdf_list_changed"}`))
}

// BroadcastUserListChanged phát tín hiệu danh sách user đã thay đổi
func BroadcastUserListChanged() {
	H.Broadcast([]byte(`{"type": "user_list_changed"}`))
}

func (h *Hub) writePump(client *Client) {
	defer func() {
		client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()
	}()
	for msg := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
