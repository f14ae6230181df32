package output

// RoomState - фаза комнаты, вычисляется из started/startTime и текущего времени
type RoomState string

const (
	RoomStateLobby  RoomState = "LOBBY"
	RoomStateArmed  RoomState = "ARMED"
	RoomStateActive RoomState = "ACTIVE"
)

// MemberInfo - участник комнаты в том виде, в каком его видит клиент
type MemberInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

// RoomSnapshot - полный снимок комнаты для события roomUpdate.
// Участники перечислены в порядке входа.
type RoomSnapshot struct {
	ID        string       `json:"id"`
	Seed      int64        `json:"seed"`
	Members   []MemberInfo `json:"members"`
	Started   bool         `json:"started"`
	StartTime *int64       `json:"startTime"`
	State     RoomState    `json:"state"`
}

// RoomInfo - краткая информация о комнате для HTTP API
type RoomInfo struct {
	ID      string `json:"id"`
	Members int    `json:"members"`
	Started bool   `json:"started"`
}
