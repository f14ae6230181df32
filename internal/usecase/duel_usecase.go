package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/qrave1/RhythmDuel/internal/application/constant"
	"github.com/qrave1/RhythmDuel/internal/application/metric"
	"github.com/qrave1/RhythmDuel/internal/domain/events"
	"github.com/qrave1/RhythmDuel/internal/domain/models"
	"github.com/qrave1/RhythmDuel/internal/domain/output"
	"github.com/qrave1/RhythmDuel/internal/infra/adapters/memory"
)

// DefaultCountdown - задержка между готовностью обоих игроков и стартом
const DefaultCountdown = 3 * time.Second

// AckFunc получает ответ на createRoom/joinRoom до рассылки roomUpdate
type AckFunc func(events.AckEvent)

// SeedFunc выдаёт seed новой комнаты
type SeedFunc func() int64

// RandomSeed - seed в диапазоне [0, 1e9)
func RandomSeed() int64 {
	return rand.Int64N(1_000_000_000)
}

// Notifier доставляет сообщение соединению
type Notifier interface {
	Write(connID string, payload any)
}

type DuelUsecase interface {
	CreateRoom(ctx context.Context, connID, name string, ack AckFunc) error
	JoinRoom(ctx context.Context, connID, roomID, name string, ack AckFunc) error
	LeaveRoom(ctx context.Context, connID, roomID string)

	SetReady(ctx context.Context, connID, roomID string, ready bool)
	RelayHit(ctx context.Context, connID string, hit events.HitEvent)
	EndDuel(ctx context.Context, connID, roomID, winner string)

	// Disconnect выводит соединение из всех комнат, где оно числится
	Disconnect(ctx context.Context, connID string)

	RoomInfo(ctx context.Context, roomID string) (output.RoomInfo, error)
}

type duelUsecase struct {
	roomRepo memory.RoomRepository
	notifier Notifier

	clock     clockwork.Clock
	countdown time.Duration
	seed      SeedFunc
}

func NewDuelUsecase(
	roomRepo memory.RoomRepository,
	notifier Notifier,
	clock clockwork.Clock,
	countdown time.Duration,
	seed SeedFunc,
) DuelUsecase {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if countdown <= 0 {
		countdown = DefaultCountdown
	}
	if seed == nil {
		seed = RandomSeed
	}

	return &duelUsecase{
		roomRepo:  roomRepo,
		notifier:  notifier,
		clock:     clock,
		countdown: countdown,
		seed:      seed,
	}
}

func (s *duelUsecase) CreateRoom(ctx context.Context, connID, name string, ack AckFunc) error {
	s.leaveAll(ctx, connID)

	room := s.roomRepo.Create(s.seed(), func(room *models.Room) {
		// комната ещё не видна через Get, создатель всегда первый
		_ = room.AddMember(connID, name)
	})

	room.Lock()
	defer room.Unlock()

	s.roomRepo.Bind(connID, room.ID())

	slog.InfoContext(ctx, "room created", slog.String(constant.RoomID, room.ID()), slog.String(constant.ConnID, connID))

	ack(events.AckEvent{OK: true, RoomID: room.ID()})
	s.broadcast(room, events.RoomUpdate(room.Snapshot(s.clock.Now())))

	return nil
}

func (s *duelUsecase) JoinRoom(ctx context.Context, connID, roomID, name string, ack AckFunc) error {
	roomID = models.NormalizeRoomID(roomID)

	if err := s.enterRoom(ctx, connID, roomID, name, ack); err != nil {
		return err
	}

	// Соединение состоит не больше чем в одной комнате.
	// Прежние комнаты покидаются только после успешного входа и вне Lock новой.
	for _, prev := range s.roomRepo.RoomsOf(connID) {
		if prev != roomID {
			s.LeaveRoom(ctx, connID, prev)
		}
	}

	return nil
}

func (s *duelUsecase) enterRoom(ctx context.Context, connID, roomID, name string, ack AckFunc) error {
	room, ok := s.roomRepo.Get(roomID)
	if !ok {
		return s.rejectJoin(ctx, connID, roomID, models.ErrRoomNotFound, ack)
	}

	room.Lock()
	defer room.Unlock()

	if err := room.AddMember(connID, name); err != nil {
		return s.rejectJoin(ctx, connID, roomID, err, ack)
	}

	s.roomRepo.Bind(connID, room.ID())

	slog.InfoContext(ctx, "joined room", slog.String(constant.RoomID, room.ID()), slog.String(constant.ConnID, connID))

	ack(events.AckEvent{OK: true, RoomID: room.ID()})
	s.broadcast(room, events.RoomUpdate(room.Snapshot(s.clock.Now())))

	return nil
}

func (s *duelUsecase) rejectJoin(ctx context.Context, connID, roomID string, err error, ack AckFunc) error {
	reason := "room_not_found"
	if errors.Is(err, models.ErrRoomFull) {
		reason = "room_full"
	}

	metric.RecordJoinRejection(reason)

	slog.InfoContext(
		ctx,
		"join rejected",
		slog.String(constant.RoomID, roomID),
		slog.String(constant.ConnID, connID),
		slog.Any(constant.Error, err),
	)

	ack(events.AckEvent{OK: false, Error: err.Error()})

	return err
}

func (s *duelUsecase) LeaveRoom(ctx context.Context, connID, roomID string) {
	room, ok := s.roomRepo.Get(roomID)
	if !ok {
		return
	}

	room.Lock()
	defer room.Unlock()

	if !room.RemoveMember(connID) {
		return
	}

	s.roomRepo.Unbind(connID, room.ID())

	slog.InfoContext(ctx, "left room", slog.String(constant.RoomID, room.ID()), slog.String(constant.ConnID, connID))

	if room.IsEmpty() {
		room.Close()
		s.roomRepo.Delete(room.ID())

		slog.InfoContext(ctx, "room deleted", slog.String(constant.RoomID, room.ID()))

		return
	}

	// Соперник ушёл посреди дуэли: оставшийся возвращается в лобби
	if room.Started() {
		room.Reset()
	}

	s.broadcast(room, events.RoomUpdate(room.Snapshot(s.clock.Now())))
}

func (s *duelUsecase) Disconnect(ctx context.Context, connID string) {
	s.leaveAll(ctx, connID)
}

func (s *duelUsecase) leaveAll(ctx context.Context, connID string) {
	for _, roomID := range s.roomRepo.RoomsOf(connID) {
		s.LeaveRoom(ctx, connID, roomID)
	}
}

func (s *duelUsecase) SetReady(ctx context.Context, connID, roomID string, ready bool) {
	room, ok := s.roomRepo.Get(roomID)
	if !ok {
		return
	}

	room.Lock()
	defer room.Unlock()

	if err := room.SetReady(connID, ready); err != nil {
		return
	}

	now := s.clock.Now()

	s.broadcast(room, events.RoomUpdate(room.Snapshot(now)))

	if !room.CanStart() {
		return
	}

	startTime := now.Add(s.countdown)
	room.Arm(startTime)

	metric.RecordDuelStart()

	slog.InfoContext(
		ctx,
		"duel armed",
		slog.String(constant.RoomID, room.ID()),
		slog.Time("start_time", startTime),
	)

	s.broadcast(room, events.Envelope{
		Type: events.TypeStartDuel,
		Data: events.StartDuelEvent{
			StartTime: startTime.UnixMilli(),
			Seed:      room.Seed(),
		},
	})
}

// RelayHit не берёт Lock комнаты: состояние не меняется, а список соперников читается атомарно
func (s *duelUsecase) RelayHit(ctx context.Context, connID string, hit events.HitEvent) {
	room, ok := s.roomRepo.Get(hit.RoomID)
	if !ok {
		return
	}

	peers := room.Peers()
	if !slices.Contains(peers, connID) {
		return
	}

	msg := events.Envelope{
		Type: events.TypeOpponentHit,
		Data: events.OpponentHitEvent{
			Lane:   hit.Lane,
			TimeMs: hit.TimeMs,
			From:   connID,
		},
	}

	for _, id := range peers {
		if id == connID {
			continue
		}

		s.notifier.Write(id, msg)
		metric.RecordHitRelayed()
	}
}

func (s *duelUsecase) EndDuel(ctx context.Context, connID, roomID, winner string) {
	room, ok := s.roomRepo.Get(roomID)
	if !ok {
		return
	}

	room.Lock()
	defer room.Unlock()

	if !room.IsMember(connID) {
		return
	}

	s.broadcast(room, events.Envelope{
		Type: events.TypeDuelEnded,
		Data: events.DuelEndedEvent{Winner: winner},
	})

	room.Reset()

	metric.RecordDuelEnd()

	slog.InfoContext(ctx, "duel ended", slog.String(constant.RoomID, room.ID()), slog.String("winner", winner))

	s.broadcast(room, events.RoomUpdate(room.Snapshot(s.clock.Now())))
}

func (s *duelUsecase) RoomInfo(ctx context.Context, roomID string) (output.RoomInfo, error) {
	room, ok := s.roomRepo.Get(roomID)
	if !ok {
		return output.RoomInfo{}, models.ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()

	return output.RoomInfo{
		ID:      room.ID(),
		Members: room.MemberCount(),
		Started: room.Started(),
	}, nil
}

// broadcast вызывается под Lock комнаты
func (s *duelUsecase) broadcast(room *models.Room, msg events.Envelope) {
	for _, id := range room.MemberIDs() {
		s.notifier.Write(id, msg)
	}
}
