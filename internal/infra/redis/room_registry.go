package redis

import (
	"context"
	"sync"
	"time"

	"github.com/AdityaChoudhary01/ParikshaNode-sub000/internal/app"
	"github.com/redis/go-redis/v9"
)

// RoomRegistry is a Redis-aware implementation of app.RoomRegistry.
// Notes:
//   - Rooms themselves stay in-process; a single logical room must be served
//     by a single server instance, and the broadcast path is in-memory.
//   - Redis only marks room liveness, which makes active rooms observable
//     across the fleet (and could later route a cross-instance pub/sub
//     projector).
type RoomRegistry struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	rooms  map[string]*app.Room
}

func NewRoomRegistry(client *redis.Client, ttl time.Duration) *RoomRegistry {
	return &RoomRegistry{
		client: client,
		ttl:    ttl,
		rooms:  make(map[string]*app.Room),
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
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), r.key(quizID), "1", r.ttl).Err()
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
		_ = r.client.Del(context.Background(), r.key(quizID)).Err()
	}
}

func (r *RoomRegistry) All() []*app.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rooms := make([]*app.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (r *RoomRegistry) key(quizID string) string {
	return "quiz:room:" + quizID
}
