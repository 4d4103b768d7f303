package app

import (
	"context"
	"time"

	"github.com/AdityaChoudhary01/ParikshaNode-sub000/internal/domain"
	"github.com/AdityaChoudhary01/ParikshaNode-sub000/internal/logging"
)

// RoomRegistry abstracts how live rooms are stored (in-memory, Redis-marked).
type RoomRegistry interface {
	GetOrCreate(quizID, hostID string) *Room
	Get(quizID string) (*Room, bool)
	DeleteIfEmpty(quizID string)
	All() []*Room
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Options tunes play-through defaults; zero values fall back to the package
// defaults.
type Options struct {
	PointsPerCorrect int
	DefaultAutoTime  time.Duration
}

// RoomService contains the live-room use cases. Protocol violations (stale or
// out-of-order commands, unknown rooms, non-host commands) are logged at debug
// and dropped without touching room state. Only quiz lookup failures surface
// as errors, and those abandon the one operation they occurred in.
type RoomService struct {
	rooms   RoomRegistry
	quizzes QuizRepository
	log     *logging.Logger
	opts    Options
}

func NewRoomService(rooms RoomRegistry, quizzes QuizRepository, log *logging.Logger, opts Options) *RoomService {
	if opts.PointsPerCorrect <= 0 {
		opts.PointsPerCorrect = DefaultPointsPerCorrect
	}
	if opts.DefaultAutoTime <= 0 {
		opts.DefaultAutoTime = DefaultAutoTime
	}
	return &RoomService{rooms: rooms, quizzes: quizzes, log: log, opts: opts}
}

// Join registers or rebinds a participant. The quiz is loaded first, both to
// reject unknown quizzes and to learn the creator id that marks the host.
func (s *RoomService) Join(ctx context.Context, quizID, userID, username, connID string) (domain.RoomSnapshot, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}

	room := s.rooms.GetOrCreate(quizID, quiz.CreatedBy)
	snap, rejoined := room.Join(userID, username, connID)
	if rejoined {
		s.log.WithRoom(quizID).WithField("user_id", userID).Info("participant reconnected")
	} else {
		s.log.WithRoom(quizID).WithField("user_id", userID).Info("participant joined")
	}
	return snap, nil
}

// StartQuiz begins the play-through. Host only, waiting rooms only. The
// question list is fetched here, before any room lock is taken, and pinned on
// the room for the rest of the game.
func (s *RoomService) StartQuiz(ctx context.Context, quizID, userID string, mode domain.Mode, autoTimeSeconds int) error {
	room, ok := s.rooms.Get(quizID)
	if !ok {
		s.log.WithRoom(quizID).Debug("start ignored: no room")
		return domain.ErrRoomNotFound
	}
	if userID != room.HostID() {
		s.log.WithRoom(quizID).WithField("user_id", userID).Debug("start ignored: not host")
		return domain.ErrNotHost
	}

	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		// Abandon the start; the room stays in waiting, nothing is broadcast.
		s.log.WithRoom(quizID).WithError(err).Error("start abandoned: quiz lookup failed")
		return err
	}

	autoTime := time.Duration(autoTimeSeconds) * time.Second
	if autoTime <= 0 {
		autoTime = s.opts.DefaultAutoTime
	}
	if err := room.Start(StartOptions{
		Mode:     mode,
		AutoTime: autoTime,
		Points:   s.opts.PointsPerCorrect,
	}, quiz.Questions); err != nil {
		s.log.WithRoom(quizID).Debug("start ignored: room already started")
		return err
	}
	s.log.WithRoom(quizID).WithField("mode", mode.String()).Info("quiz started")
	return nil
}

// NextQuestion is the host's manual advance; ignored for non-hosts, unknown
// rooms, auto mode, and rooms that are not in progress.
func (s *RoomService) NextQuestion(ctx context.Context, quizID, userID string) {
	room, ok := s.rooms.Get(quizID)
	if !ok {
		return
	}
	if userID != room.HostID() {
		s.log.WithRoom(quizID).WithField("user_id", userID).Debug("next ignored: not host")
		return
	}
	if room.NextQuestion() {
		s.log.WithRoom(quizID).Debug("advanced to next question")
	}
}

// SubmitAnswer records one answer. The returned flag reports whether the
// submission was accepted; rejected submissions produce no ack and no
// broadcast.
func (s *RoomService) SubmitAnswer(ctx context.Context, quizID, userID string, questionIndex int, answer string) (domain.AnswerAck, bool) {
	room, ok := s.rooms.Get(quizID)
	if !ok {
		return domain.AnswerAck{}, false
	}
	ack, accepted := room.SubmitAnswer(userID, questionIndex, answer)
	if accepted {
		s.log.WithRoom(quizID).WithFields(map[string]interface{}{
			"user_id":  userID,
			"question": questionIndex,
			"correct":  ack.Correct,
		}).Debug("answer recorded")
	}
	return ack, accepted
}

// Leave handles a closed connection: every room is scanned for a participant
// whose current connection id matches, and a room that empties is removed.
func (s *RoomService) Leave(ctx context.Context, connID string) {
	for _, room := range s.rooms.All() {
		removed, empty := room.Leave(connID)
		if !removed {
			continue
		}
		s.log.WithRoom(room.QuizID()).Info("participant left")
		if empty {
			s.rooms.DeleteIfEmpty(room.QuizID())
			s.log.WithRoom(room.QuizID()).Info("room removed")
		}
	}
}

// Subscribe returns a channel that receives room snapshots. The caller must
// invoke the returned cancel function to avoid leaks.
func (s *RoomService) Subscribe(_ context.Context, quizID string) (<-chan domain.RoomSnapshot, func(), error) {
	room, ok := s.rooms.Get(quizID)
	if !ok {
		return nil, nil, domain.ErrRoomNotFound
	}
	ch, cancel := room.Subscribe()
	return ch, cancel, nil
}
