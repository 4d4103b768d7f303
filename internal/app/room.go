package app

import (
	"sort"
	"sync"
	"time"

	"github.com/AdityaChoudhary01/ParikshaNode-sub000/internal/domain"
)

const (
	// DefaultAutoTime is the per-question timer used when the host starts an
	// auto-mode room without an explicit duration.
	DefaultAutoTime = 30 * time.Second
	// DefaultPointsPerCorrect is awarded for each correct answer unless the
	// start options override it.
	DefaultPointsPerCorrect = 10
)

// StartOptions configures one play-through when the host starts a room.
type StartOptions struct {
	Mode     domain.Mode
	AutoTime time.Duration // per-question timer in auto mode; DefaultAutoTime if zero
	Points   int           // score per correct answer; DefaultPointsPerCorrect if zero
}

// Room coordinates one live play-through of a quiz. A single mutex guards all
// room state, so every mutation (join, leave, start, advance, answer) is one
// critical section; the fetched question list is pinned at start time, which
// keeps quiz I/O out of the lock entirely. Each mutation ends by pushing a
// fresh redacted snapshot to every subscriber.
type Room struct {
	quizID string
	hostID string

	mu            sync.Mutex
	status        domain.Status
	mode          domain.Mode
	autoTime      time.Duration
	points        int
	questions     []domain.Question
	questionIndex int
	current       *domain.QuestionView
	participants  []*domain.Participant
	subscribers   map[chan domain.RoomSnapshot]struct{}

	// timerGen invalidates callbacks from timers the room has already left
	// behind: the armed callback captures the generation and rechecks it under
	// the lock before advancing.
	timer    *time.Timer
	timerGen uint64
}

// NewRoom creates a waiting room for quizID hosted by hostID.
func NewRoom(quizID, hostID string) *Room {
	return &Room{
		quizID:        quizID,
		hostID:        hostID,
		status:        domain.StatusWaiting,
		mode:          domain.ModeManual,
		autoTime:      DefaultAutoTime,
		points:        DefaultPointsPerCorrect,
		questionIndex: -1,
		subscribers:   make(map[chan domain.RoomSnapshot]struct{}),
	}
}

// QuizID returns the quiz identifier the room is keyed by.
func (r *Room) QuizID() string { return r.quizID }

// HostID returns the quiz creator's user id. The host is excluded from the
// leaderboard and from the all-answered early advance.
func (r *Room) HostID() string { return r.hostID }

// Join adds a new participant or, for a known userId, rebinds it to the new
// connection. Score survives the rebind. The returned flag reports a rejoin.
func (r *Room) Join(userID, username, connID string) (domain.RoomSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p := r.findLocked(userID); p != nil {
		p.Username = username
		p.ConnectionID = connID
		return r.broadcastLocked(username + " reconnected"), true
	}

	r.participants = append(r.participants, &domain.Participant{
		UserID:            userID,
		Username:          username,
		ConnectionID:      connID,
		Score:             0,
		LastAnsweredIndex: -1,
	})
	return r.broadcastLocked(username + " joined"), false
}

// Leave removes the participant whose current connection is connID. A stale
// disconnect that arrives after the user already reconnected does not match
// (the rebind replaced the connection id) and is a no-op. The second result
// reports whether the room is now empty.
func (r *Room) Leave(connID string) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.participants {
		if p.ConnectionID != connID {
			continue
		}
		r.participants = append(r.participants[:i], r.participants[i+1:]...)
		if len(r.participants) == 0 {
			r.stopTimerLocked()
			return true, true
		}
		r.broadcastLocked(p.Username + " left")
		return true, false
	}
	return false, len(r.participants) == 0
}

// Start transitions the room from waiting to in-progress, pins the question
// list for the play-through, and immediately advances to the first question.
func (r *Room) Start(opts StartOptions, questions []domain.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusWaiting {
		return domain.ErrBadTransition
	}

	r.mode = opts.Mode
	r.autoTime = opts.AutoTime
	if r.autoTime <= 0 {
		r.autoTime = DefaultAutoTime
	}
	r.points = opts.Points
	if r.points <= 0 {
		r.points = DefaultPointsPerCorrect
	}
	r.questions = questions
	r.questionIndex = -1
	r.status = domain.StatusInProgress
	r.advanceLocked("Quiz started!")
	return nil
}

// NextQuestion is the host's manual advance. It is accepted only while the
// room is in progress in manual mode; anything else is a silent no-op so a
// command racing a state change cannot fault the room.
func (r *Room) NextQuestion() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusInProgress || r.mode != domain.ModeManual {
		return false
	}
	r.advanceLocked("")
	return true
}

// SubmitAnswer scores one answer for userID against the authoritative
// question. Stale, duplicate, and out-of-state submissions are rejected
// without touching room state. On acceptance the participant's score and
// answered marker update atomically under the room lock, and in auto mode a
// full house of answers advances immediately.
func (r *Room) SubmitAnswer(userID string, questionIndex int, answer string) (domain.AnswerAck, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusInProgress || questionIndex != r.questionIndex {
		return domain.AnswerAck{}, false
	}
	p := r.findLocked(userID)
	if p == nil {
		return domain.AnswerAck{}, false
	}
	if p.LastAnsweredIndex == questionIndex {
		// Already scored for this question; the first answer stands.
		return domain.AnswerAck{}, false
	}

	q := r.questions[questionIndex]
	correct := answer == q.CorrectAnswer
	if correct {
		p.Score += r.points
	}
	p.LastAnsweredIndex = questionIndex

	ack := domain.AnswerAck{Correct: correct, Message: "Wrong answer."}
	if correct {
		ack.Message = "Correct!"
	}

	if r.mode == domain.ModeAuto && r.allAnsweredLocked() {
		r.advanceLocked("Everyone answered!")
	} else {
		r.broadcastLocked("")
	}
	return ack, true
}

// Subscribe registers a snapshot channel and sends the current state as the
// first message. The caller must invoke cancel to avoid leaks.
func (r *Room) Subscribe() (<-chan domain.RoomSnapshot, func()) {
	ch := make(chan domain.RoomSnapshot, 8)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	initial := r.snapshotLocked("")
	r.mu.Unlock()

	ch <- initial

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

// IsEmpty reports whether the room has no participants.
func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants) == 0
}

// Snapshot returns the current redacted room state.
func (r *Room) Snapshot() domain.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked("")
}

// advanceLocked cancels any pending timer, moves to the next question or the
// finished state, resets the per-question answered markers, broadcasts, and
// re-arms the timer in auto mode. Callers hold the lock.
func (r *Room) advanceLocked(message string) {
	r.stopTimerLocked()
	r.questionIndex++

	if r.questionIndex >= len(r.questions) {
		r.status = domain.StatusFinished
		r.current = nil
		if message == "" {
			message = "Quiz finished!"
		}
		r.broadcastLocked(message)
		return
	}

	q := r.questions[r.questionIndex]
	r.current = &domain.QuestionView{
		Index:   r.questionIndex,
		Text:    q.Text,
		Options: append([]string(nil), q.Options...),
	}
	for _, p := range r.participants {
		p.LastAnsweredIndex = -1
	}
	r.broadcastLocked(message)

	if r.mode == domain.ModeAuto {
		r.armTimerLocked()
	}
}

func (r *Room) armTimerLocked() {
	r.timerGen++
	gen := r.timerGen
	r.timer = time.AfterFunc(r.autoTime, func() { r.timerFired(gen) })
}

func (r *Room) timerFired(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.timerGen || r.status != domain.StatusInProgress {
		// The room advanced (or finished) while this callback was pending.
		return
	}
	r.advanceLocked("Time's up!")
}

func (r *Room) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	// Bump the generation even if Stop lost the race with a firing callback;
	// the callback rechecks it under the lock and gives up.
	r.timerGen++
}

func (r *Room) allAnsweredLocked() bool {
	players := 0
	for _, p := range r.participants {
		if p.UserID == r.hostID {
			continue
		}
		players++
		if p.LastAnsweredIndex != r.questionIndex {
			return false
		}
	}
	return players > 0
}

func (r *Room) findLocked(userID string) *domain.Participant {
	for _, p := range r.participants {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (r *Room) broadcastLocked(message string) domain.RoomSnapshot {
	snap := r.snapshotLocked(message)
	for ch := range r.subscribers {
		select {
		case ch <- snap:
		default:
			// Snapshots are last-write-wins: drop the stale one a slow
			// subscriber has not drained yet and push the newest.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (r *Room) snapshotLocked(message string) domain.RoomSnapshot {
	views := make([]domain.ParticipantView, 0, len(r.participants))
	entries := make([]domain.LeaderboardEntry, 0, len(r.participants))
	for _, p := range r.participants {
		views = append(views, domain.ParticipantView{
			UserID:   p.UserID,
			Username: p.Username,
			Score:    p.Score,
			Answered: r.status == domain.StatusInProgress && p.LastAnsweredIndex == r.questionIndex,
		})
		if p.UserID == r.hostID {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID:   p.UserID,
			Username: p.Username,
			Score:    p.Score,
		})
	}

	// Score descending; ties keep join order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	var current *domain.QuestionView
	if r.current != nil {
		cp := *r.current
		current = &cp
	}

	return domain.RoomSnapshot{
		QuizID:          r.quizID,
		Status:          r.status,
		Participants:    views,
		Leaderboard:     entries,
		CurrentQuestion: current,
		QuestionIndex:   r.questionIndex,
		Mode:            r.mode,
		AutoTimeSeconds: int(r.autoTime / time.Second),
		Message:         message,
	}
}
