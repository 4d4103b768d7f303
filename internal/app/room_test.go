package app

import (
	"testing"
	"time"

	"github.com/AdityaChoudhary01/ParikshaNode-sub000/internal/domain"
)

func testQuestions() []domain.Question {
	return []domain.Question{
		{Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: "4"},
		{Text: "Which planet is red?", Options: []string{"Venus", "Mars"}, CorrectAnswer: "Mars"},
		{Text: "Capital of France?", Options: []string{"Paris", "Lyon"}, CorrectAnswer: "Paris"},
	}
}

func manualStart(t *testing.T, r *Room) {
	t.Helper()
	if err := r.Start(StartOptions{Mode: domain.ModeManual}, testQuestions()); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestJoinCreatesParticipantsWithZeroScore(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("u1", "Alice", "c1")
	room.Join("u2", "Bob", "c2")
	room.Join("u3", "Carol", "c3")

	snap := room.Snapshot()
	if len(snap.Participants) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(snap.Participants))
	}
	for _, p := range snap.Participants {
		if p.Score != 0 {
			t.Fatalf("expected zero score for %s, got %d", p.UserID, p.Score)
		}
	}
	if snap.Status != domain.StatusWaiting || snap.QuestionIndex != -1 {
		t.Fatalf("expected waiting room at index -1, got %v/%d", snap.Status, snap.QuestionIndex)
	}
}

func TestJoinSameUserRebindsConnection(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("u1", "Alice", "c1")
	if _, rejoined := room.Join("u1", "Alice", "c2"); !rejoined {
		t.Fatalf("expected rejoin for known user")
	}
	if snap := room.Snapshot(); len(snap.Participants) != 1 {
		t.Fatalf("expected 1 participant after rejoin, got %d", len(snap.Participants))
	}
}

func TestStartTransitionsOnce(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("u1", "Alice", "c1")

	manualStart(t, room)
	snap := room.Snapshot()
	if snap.Status != domain.StatusInProgress || snap.QuestionIndex != 0 {
		t.Fatalf("expected in-progress at index 0, got %v/%d", snap.Status, snap.QuestionIndex)
	}
	if snap.CurrentQuestion == nil || snap.CurrentQuestion.Index != 0 {
		t.Fatalf("expected projected question 0, got %+v", snap.CurrentQuestion)
	}

	if err := room.Start(StartOptions{Mode: domain.ModeManual}, testQuestions()); err != domain.ErrBadTransition {
		t.Fatalf("expected second start rejected, got %v", err)
	}
	if snap := room.Snapshot(); snap.QuestionIndex != 0 {
		t.Fatalf("second start must not move the room, got index %d", snap.QuestionIndex)
	}
}

func TestAdvancePastLastQuestionFinishes(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("u1", "Alice", "c1")
	manualStart(t, room)

	for i := 0; i < 3; i++ {
		if !room.NextQuestion() {
			t.Fatalf("advance %d rejected", i)
		}
	}

	snap := room.Snapshot()
	if snap.Status != domain.StatusFinished {
		t.Fatalf("expected finished, got %v", snap.Status)
	}
	if snap.CurrentQuestion != nil {
		t.Fatalf("expected no current question when finished")
	}

	// finished is terminal
	if room.NextQuestion() {
		t.Fatalf("advance after finish must be a no-op")
	}
	if after := room.Snapshot(); after.QuestionIndex != snap.QuestionIndex {
		t.Fatalf("finished room moved from %d to %d", snap.QuestionIndex, after.QuestionIndex)
	}
}

func TestSubmitAnswerScoresAgainstAuthoritativeQuestion(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("u1", "Alice", "c1")
	manualStart(t, room)

	ack, accepted := room.SubmitAnswer("u1", 0, "4")
	if !accepted || !ack.Correct {
		t.Fatalf("expected correct accepted answer, got accepted=%v ack=%+v", accepted, ack)
	}
	snap := room.Snapshot()
	if snap.Participants[0].Score != DefaultPointsPerCorrect {
		t.Fatalf("expected %d points, got %d", DefaultPointsPerCorrect, snap.Participants[0].Score)
	}
}

func TestDuplicateSubmissionIgnored(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("u1", "Alice", "c1")
	manualStart(t, room)

	if _, accepted := room.SubmitAnswer("u1", 0, "3"); !accepted {
		t.Fatalf("first answer should be accepted")
	}
	if _, accepted := room.SubmitAnswer("u1", 0, "4"); accepted {
		t.Fatalf("second answer for the same question must be ignored")
	}
	if snap := room.Snapshot(); snap.Participants[0].Score != 0 {
		t.Fatalf("second answer must not rescore, got %d", snap.Participants[0].Score)
	}
}

func TestStaleSubmissionIgnored(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("u1", "Alice", "c1")
	manualStart(t, room)
	room.NextQuestion() // now at index 1

	if _, accepted := room.SubmitAnswer("u1", 0, "4"); accepted {
		t.Fatalf("submission for a past question must be ignored")
	}
	if _, accepted := room.SubmitAnswer("u1", 5, "4"); accepted {
		t.Fatalf("submission for a future question must be ignored")
	}
	if snap := room.Snapshot(); snap.Participants[0].Score != 0 {
		t.Fatalf("stale submissions must not score, got %d", snap.Participants[0].Score)
	}
}

func TestUnknownParticipantIgnored(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("u1", "Alice", "c1")
	manualStart(t, room)

	if _, accepted := room.SubmitAnswer("ghost", 0, "4"); accepted {
		t.Fatalf("unknown participant must not score")
	}
}

func TestLeaderboardExcludesHostAndSortsByScore(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("host-1", "Host", "c0")
	room.Join("u1", "Alice", "c1")
	room.Join("u2", "Bob", "c2")
	manualStart(t, room)

	room.SubmitAnswer("u2", 0, "4") // correct
	room.SubmitAnswer("u1", 0, "3") // wrong

	snap := room.Snapshot()
	if len(snap.Leaderboard) != 2 {
		t.Fatalf("expected host excluded, got %d entries", len(snap.Leaderboard))
	}
	if snap.Leaderboard[0].UserID != "u2" {
		t.Fatalf("expected Bob on top, got %+v", snap.Leaderboard)
	}
	for _, e := range snap.Leaderboard {
		if e.UserID == "host-1" {
			t.Fatalf("host must never appear in the leaderboard")
		}
	}
}

func TestManualRoundResetsAnsweredMarkers(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("host-1", "Host", "c0")
	room.Join("a", "Alice", "c1")
	room.Join("b", "Bob", "c2")
	manualStart(t, room)

	if ack, ok := room.SubmitAnswer("a", 0, "4"); !ok || !ack.Correct {
		t.Fatalf("expected Alice correct, got ok=%v ack=%+v", ok, ack)
	}
	if ack, ok := room.SubmitAnswer("b", 0, "5"); !ok || ack.Correct {
		t.Fatalf("expected Bob wrong, got ok=%v ack=%+v", ok, ack)
	}

	if !room.NextQuestion() {
		t.Fatalf("host advance rejected")
	}
	snap := room.Snapshot()
	if snap.QuestionIndex != 1 {
		t.Fatalf("expected index 1, got %d", snap.QuestionIndex)
	}
	for _, p := range snap.Participants {
		if p.Answered {
			t.Fatalf("answered markers must reset on advance, %s still marked", p.UserID)
		}
	}
	if snap.Leaderboard[0].UserID != "a" || snap.Leaderboard[1].UserID != "b" {
		t.Fatalf("expected Alice above Bob, got %+v", snap.Leaderboard)
	}

	// both can answer the new question
	if _, ok := room.SubmitAnswer("a", 1, "Mars"); !ok {
		t.Fatalf("Alice should be able to answer question 1")
	}
	if _, ok := room.SubmitAnswer("b", 1, "Venus"); !ok {
		t.Fatalf("Bob should be able to answer question 1")
	}
}

func TestAutoModeAdvancesWhenEveryoneAnswered(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("host-1", "Host", "c0")
	room.Join("a", "Alice", "c1")
	room.Join("b", "Bob", "c2")
	// Timer far in the future: only the all-answered path can move the room.
	if err := room.Start(StartOptions{Mode: domain.ModeAuto, AutoTime: time.Hour}, testQuestions()); err != nil {
		t.Fatalf("start: %v", err)
	}

	room.SubmitAnswer("a", 0, "4")
	if snap := room.Snapshot(); snap.QuestionIndex != 0 {
		t.Fatalf("room advanced before everyone answered")
	}
	room.SubmitAnswer("b", 0, "3")

	snap := room.Snapshot()
	if snap.QuestionIndex != 1 {
		t.Fatalf("expected immediate advance after full participation, got index %d", snap.QuestionIndex)
	}
}

func TestAutoModeTimerAdvances(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("u1", "Alice", "c1")
	updates, cancel := room.Subscribe()
	defer cancel()

	if err := room.Start(StartOptions{Mode: domain.ModeAuto, AutoTime: 50 * time.Millisecond}, testQuestions()); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-updates:
			if snap.QuestionIndex >= 1 {
				if snap.Message != "Time's up!" {
					t.Fatalf("expected time's-up message, got %q", snap.Message)
				}
				return
			}
		case <-deadline:
			t.Fatalf("timer never advanced the room")
		}
	}
}

func TestManualNextIgnoredInAutoMode(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("u1", "Alice", "c1")
	if err := room.Start(StartOptions{Mode: domain.ModeAuto, AutoTime: time.Hour}, testQuestions()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if room.NextQuestion() {
		t.Fatalf("manual advance must be rejected in auto mode")
	}
}

func TestStaleTimerNeverFiresAfterAdvance(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("host-1", "Host", "c0")
	room.Join("u1", "Alice", "c1")
	if err := room.Start(StartOptions{Mode: domain.ModeAuto, AutoTime: 250 * time.Millisecond}, testQuestions()); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Answer before the timer fires; the early advance re-arms a fresh timer
	// and the old one must not double-advance.
	room.SubmitAnswer("u1", 0, "4")
	if snap := room.Snapshot(); snap.QuestionIndex != 1 {
		t.Fatalf("expected early advance to index 1, got %d", snap.QuestionIndex)
	}

	time.Sleep(300 * time.Millisecond)
	snap := room.Snapshot()
	// Only the re-armed timer may have moved the room one more step.
	if snap.QuestionIndex > 2 {
		t.Fatalf("stale timer double-advanced the room to %d", snap.QuestionIndex)
	}
}

func TestReconnectPreservesScoreAndStaleLeaveIsNoop(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("u1", "Alice", "conn-old")
	manualStart(t, room)
	room.SubmitAnswer("u1", 0, "4")

	// Reconnect with a fresh connection id, then the old connection's
	// delayed disconnect arrives.
	room.Join("u1", "Alice", "conn-new")
	if removed, _ := room.Leave("conn-old"); removed {
		t.Fatalf("stale disconnect must not remove a reconnected participant")
	}

	snap := room.Snapshot()
	if len(snap.Participants) != 1 || snap.Participants[0].Score != DefaultPointsPerCorrect {
		t.Fatalf("expected score preserved across reconnect, got %+v", snap.Participants)
	}
}

func TestLeaveRemovesParticipantAndReportsEmpty(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("u1", "Alice", "c1")
	room.Join("u2", "Bob", "c2")

	if removed, empty := room.Leave("c1"); !removed || empty {
		t.Fatalf("expected removal without emptying, got removed=%v empty=%v", removed, empty)
	}
	if removed, empty := room.Leave("c2"); !removed || !empty {
		t.Fatalf("expected room to empty, got removed=%v empty=%v", removed, empty)
	}
	if removed, _ := room.Leave("c2"); removed {
		t.Fatalf("second leave for same connection must be a no-op")
	}
}

func TestSubmitBeforeStartIgnored(t *testing.T) {
	room := NewRoom("quiz-1", "host-1")
	room.Join("u1", "Alice", "c1")
	if _, accepted := room.SubmitAnswer("u1", 0, "4"); accepted {
		t.Fatalf("answers must be rejected while waiting")
	}
}
