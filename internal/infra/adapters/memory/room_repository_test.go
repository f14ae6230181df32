package memory

import (
	"regexp"
	"testing"

	"github.com/qrave1/RhythmDuel/internal/domain/models"
)

var roomCodeRe = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestNanoidCode(t *testing.T) {
	seen := make(map[string]struct{})

	for range 1000 {
		code := NanoidCode(RoomCodeLength)
		if !roomCodeRe.MatchString(code) {
			t.Fatalf("code %q is not a 6 char uppercase code", code)
		}
		seen[code] = struct{}{}
	}

	if len(seen) < 990 {
		t.Fatalf("only %d unique codes out of 1000", len(seen))
	}
}

func TestCreateRetriesOnCollision(t *testing.T) {
	codes := []string{"aaaaaa", "AAAAAA", "AAAAAA", "bbbbbb"}
	next := 0
	gen := func(size int) string {
		code := codes[next]
		next++
		return code
	}

	repo := NewRoomRepository(gen)

	first := repo.Create(1, nil)
	second := repo.Create(2, nil)

	if first.ID() != "AAAAAA" {
		t.Fatalf("first id = %q, want AAAAAA", first.ID())
	}
	if second.ID() != "BBBBBB" {
		t.Fatalf("second id = %q, want BBBBBB", second.ID())
	}
	if next != len(codes) {
		t.Fatalf("generator called %d times, want %d", next, len(codes))
	}
}

func TestCreateGrowsCodeWhenLengthExhausted(t *testing.T) {
	var sizes []int
	gen := func(size int) string {
		sizes = append(sizes, size)
		if size == RoomCodeLength {
			return "TAKEN1"
		}
		return "FRESH12"
	}

	repo := NewRoomRepository(gen)
	repo.Create(1, nil)

	room := repo.Create(2, nil)
	if room.ID() != "FRESH12" {
		t.Fatalf("id = %q, want FRESH12", room.ID())
	}
	if last := sizes[len(sizes)-1]; last != RoomCodeLength+1 {
		t.Fatalf("last size = %d, want %d", last, RoomCodeLength+1)
	}
}

func TestCreateRunsInitBeforePublish(t *testing.T) {
	repo := NewRoomRepository(nil)

	room := repo.Create(99, func(room *models.Room) {
		if _, ok := repo.(*roomRepository).rooms[room.ID()]; ok {
			t.Errorf("room visible before init finished")
		}
		_ = room.AddMember("creator", "Creator")
	})

	got, ok := repo.Get(room.ID())
	if !ok || got != room {
		t.Fatalf("created room not found")
	}
	if got.Seed() != 99 || got.MemberCount() != 1 {
		t.Fatalf("seed=%d members=%d", got.Seed(), got.MemberCount())
	}
}

func TestGetAndDelete(t *testing.T) {
	repo := NewRoomRepository(func(int) string { return "ROOM01" })
	repo.Create(1, nil)

	if _, ok := repo.Get("room01"); !ok {
		t.Fatalf("lowercase lookup failed")
	}

	repo.Delete("ROOM01")
	repo.Delete("ROOM01")

	for _, id := range []string{"ROOM01", "room01"} {
		if _, ok := repo.Get(id); ok {
			t.Fatalf("room %s still present after delete", id)
		}
	}
}

func TestMembershipIndex(t *testing.T) {
	repo := NewRoomRepository(nil)

	repo.Bind("c1", "AAAAAA")
	repo.Bind("c1", "BBBBBB")
	repo.Bind("c2", "AAAAAA")

	if got := repo.RoomsOf("c1"); len(got) != 2 {
		t.Fatalf("c1 rooms = %v", got)
	}

	repo.Unbind("c1", "AAAAAA")
	repo.Unbind("c1", "BBBBBB")
	repo.Unbind("c1", "BBBBBB")

	if got := repo.RoomsOf("c1"); len(got) != 0 {
		t.Fatalf("c1 rooms after unbind = %v", got)
	}
	if got := repo.RoomsOf("c2"); len(got) != 1 || got[0] != "AAAAAA" {
		t.Fatalf("c2 rooms = %v", got)
	}
}
