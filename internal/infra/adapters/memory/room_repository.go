package memory

import (
	"sync"

	"github.com/qrave1/RhythmDuel/internal/application/metric"
	"github.com/qrave1/RhythmDuel/internal/domain/models"
)

// попыток на одной длине кода, после чего длина растёт на 1
const codeAttemptsPerLength = 8

// RoomRepository - реестр открытых комнат процесса
type RoomRepository interface {
	// Create выдаёт свободный код и регистрирует комнату.
	// init вызывается до того, как комната станет видна через Get.
	Create(seed int64, init func(room *models.Room)) *models.Room
	Get(id string) (*models.Room, bool)
	// Delete идемпотентен
	Delete(id string)

	// Обратный индекс соединение -> комнаты
	Bind(connID, roomID string)
	Unbind(connID, roomID string)
	RoomsOf(connID string) []string
}

type roomRepository struct {
	rooms map[string]*models.Room

	// memberships хранит map[conn_id]set[room_id]
	memberships map[string]map[string]struct{}

	generate CodeGenerator

	mu sync.RWMutex
}

func NewRoomRepository(generate CodeGenerator) RoomRepository {
	if generate == nil {
		generate = NanoidCode
	}

	return &roomRepository{
		rooms:       make(map[string]*models.Room),
		memberships: make(map[string]map[string]struct{}),
		generate:    generate,
	}
}

func (r *roomRepository) Create(seed int64, init func(room *models.Room)) *models.Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := models.NewRoom(r.freeCode(), seed)
	if init != nil {
		init(room)
	}

	r.rooms[room.ID()] = room

	metric.IncrementRoomsOpen()

	return room
}

// freeCode вызывается под mu
func (r *roomRepository) freeCode() string {
	for size := RoomCodeLength; ; size++ {
		for range codeAttemptsPerLength {
			code := models.NormalizeRoomID(r.generate(size))
			if code == "" {
				continue
			}

			if _, taken := r.rooms[code]; !taken {
				return code
			}
		}
	}
}

func (r *roomRepository) Get(id string) (*models.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[models.NormalizeRoomID(id)]
	return room, ok
}

func (r *roomRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id = models.NormalizeRoomID(id)

	if _, ok := r.rooms[id]; !ok {
		return
	}

	delete(r.rooms, id)

	metric.DecrementRoomsOpen()
}

func (r *roomRepository) Bind(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.memberships[connID]
	if !ok {
		set = make(map[string]struct{}, 1)
		r.memberships[connID] = set
	}

	set[roomID] = struct{}{}
}

func (r *roomRepository) Unbind(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.memberships[connID]
	if !ok {
		return
	}

	delete(set, roomID)

	if len(set) == 0 {
		delete(r.memberships, connID)
	}
}

func (r *roomRepository) RoomsOf(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomIDs := make([]string, 0, len(r.memberships[connID]))
	for roomID := range r.memberships[connID] {
		roomIDs = append(roomIDs, roomID)
	}

	return roomIDs
}
