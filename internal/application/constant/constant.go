package constant

// Ключи атрибутов slog
const (
	Error  = "error"
	ConnID = "conn_id"
	RoomID = "room_id"
)
