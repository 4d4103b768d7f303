package memory

import (
	"sync"

	"github.com/AdityaChoudhary01/ParikshaNode-sub000/internal/app"
)

// RoomRegistry is an in-memory implementation of app.RoomRegistry. Rooms live
// only for as long as this process does.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*app.Room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]*app.Room),
	}
}

func (r *RoomRegistry) GetOrCreate(quizID, hostID string) *app.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[quizID]; ok {
		return room
	}
	room := app.NewRoom(quizID, hostID)
	r.rooms[quizID] = room
	return room
}

func (r *RoomRegistry) Get(quizID string) (*app.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[quizID]
	return room, ok
}

func (r *RoomRegistry) DeleteIfEmpty(quizID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[quizID]
	if !ok {
		return
	}
	if room.IsEmpty() {
		delete(r.rooms, quizID)
	}
}

// All returns a point-in-time list of live rooms; used by the disconnect scan.
func (r *RoomRegistry) All() []*app.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]*app.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}
