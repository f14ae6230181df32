package models

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qrave1/RhythmDuel/internal/domain/output"
)

// RoomCapacity - максимальное число участников дуэли
const RoomCapacity = 2

// Room - комната дуэли. id и seed неизменны, остальное защищено mu:
// вызывающий держит Lock на время мутации и рассылки, чтобы порядок
// событий для клиентов совпадал с порядком изменений.
type Room struct {
	id   string
	seed int64

	mu        sync.Mutex
	members   map[string]*Member
	order     []string
	started   bool
	startTime *time.Time
	closed    bool

	// peers - копия order для пересылки попаданий без захвата mu
	peers atomic.Pointer[[]string]
}

func NewRoom(id string, seed int64) *Room {
	r := &Room{
		id:      id,
		seed:    seed,
		members: make(map[string]*Member, RoomCapacity),
	}
	r.publishPeers()

	return r
}

// NormalizeRoomID приводит код комнаты к верхнему регистру
func NormalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func (r *Room) ID() string { return r.id }

func (r *Room) Seed() int64 { return r.seed }

func (r *Room) Lock() { r.mu.Lock() }

func (r *Room) Unlock() { r.mu.Unlock() }

// Методы ниже вызываются под Lock.

// AddMember добавляет участника с ready=false. Повторный вход меняет только имя,
// а в лобби ещё и снимает готовность.
// Закрытая (уже удалённая из реестра) комната считается ненайденной.
func (r *Room) AddMember(connID, name string) error {
	if r.closed {
		return ErrRoomNotFound
	}

	if m, ok := r.members[connID]; ok {
		m.DisplayName = NormalizeDisplayName(name)
		// во время дуэли готовность не сбрасывается: started и ready остаются согласованы
		if !r.started {
			m.Ready = false
		}
		return nil
	}

	if len(r.members) >= RoomCapacity {
		return ErrRoomFull
	}

	r.members[connID] = NewMember(connID, name)
	r.order = append(r.order, connID)
	r.publishPeers()

	return nil
}

// RemoveMember возвращает false, если участника не было
func (r *Room) RemoveMember(connID string) bool {
	if _, ok := r.members[connID]; !ok {
		return false
	}

	delete(r.members, connID)
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == connID })
	r.publishPeers()

	return true
}

func (r *Room) SetReady(connID string, ready bool) error {
	m, ok := r.members[connID]
	if !ok {
		return ErrNotMember
	}

	m.Ready = ready

	return nil
}

func (r *Room) IsMember(connID string) bool {
	_, ok := r.members[connID]
	return ok
}

func (r *Room) MemberCount() int {
	return len(r.members)
}

func (r *Room) IsEmpty() bool {
	return len(r.members) == 0
}

func (r *Room) Started() bool {
	return r.started
}

// CanStart - комната в лобби, участников ровно два и оба готовы
func (r *Room) CanStart() bool {
	if r.started || len(r.members) != RoomCapacity {
		return false
	}

	for _, m := range r.members {
		if !m.Ready {
			return false
		}
	}

	return true
}

// Arm фиксирует время синхронного старта
func (r *Room) Arm(startTime time.Time) {
	r.started = true
	r.startTime = &startTime
}

// Reset возвращает комнату в лобби для реванша
func (r *Room) Reset() {
	r.started = false
	r.startTime = nil

	for _, m := range r.members {
		m.Ready = false
	}
}

// Close помечает комнату удалённой, последующие AddMember вернут ErrRoomNotFound
func (r *Room) Close() {
	r.closed = true
}

func (r *Room) State(now time.Time) output.RoomState {
	switch {
	case !r.started:
		return output.RoomStateLobby
	case now.Before(*r.startTime):
		return output.RoomStateArmed
	default:
		return output.RoomStateActive
	}
}

// MemberIDs - участники в порядке входа
func (r *Room) MemberIDs() []string {
	return slices.Clone(r.order)
}

func (r *Room) Snapshot(now time.Time) output.RoomSnapshot {
	snapshot := output.RoomSnapshot{
		ID:      r.id,
		Seed:    r.seed,
		Members: make([]output.MemberInfo, 0, len(r.order)),
		Started: r.started,
		State:   r.State(now),
	}

	for _, id := range r.order {
		m := r.members[id]
		snapshot.Members = append(snapshot.Members, output.MemberInfo{
			ID:    m.ConnID,
			Name:  m.DisplayName,
			Ready: m.Ready,
		})
	}

	if r.startTime != nil {
		ms := r.startTime.UnixMilli()
		snapshot.StartTime = &ms
	}

	return snapshot
}

// Peers читается без Lock: горячий путь пересылки попаданий не ждёт остальные события
func (r *Room) Peers() []string {
	return *r.peers.Load()
}

func (r *Room) publishPeers() {
	peers := slices.Clone(r.order)
	r.peers.Store(&peers)
}
