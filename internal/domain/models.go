package domain

// Participant is one connected player (or the host) inside a live room.
type Participant struct {
	UserID       string
	Username     string
	ConnectionID string
	Score        int
	// LastAnsweredIndex is -1 until the participant answers the current
	// question; it is reset to -1 every time the room advances.
	LastAnsweredIndex int
}

// LeaderboardEntry is a snapshot-friendly view of a participant's standing.
type LeaderboardEntry struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// ParticipantView is the redacted participant shape sent to clients.
type ParticipantView struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Answered bool   `json:"answered"`
}

// QuestionView is the redacted projection of the active question. It never
// carries the correct answer.
type QuestionView struct {
	Index   int      `json:"questionIndex"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// RoomSnapshot is the authoritative full-state push sent to every connection
// in a room after each state change. Clients reconcile from the most recent
// snapshot only; there are no delta updates.
type RoomSnapshot struct {
	QuizID          string             `json:"quizId"`
	Status          Status             `json:"status"`
	Participants    []ParticipantView  `json:"participants"`
	Leaderboard     []LeaderboardEntry `json:"leaderboard"`
	CurrentQuestion *QuestionView      `json:"currentQuestion"`
	QuestionIndex   int                `json:"currentQuestionIndex"`
	Mode            Mode               `json:"mode"`
	AutoTimeSeconds int                `json:"autoTimeSeconds"`
	Message         string             `json:"message,omitempty"`
}

// AnswerAck is the private acknowledgement returned to the submitting
// connection only.
type AnswerAck struct {
	Correct bool   `json:"isCorrect"`
	Message string `json:"message"`
}

// Question models one quiz question. CorrectAnswer is authoritative server
// data and must never leave the process through a snapshot.
type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	TimerSeconds  int      `json:"timer,omitempty"`
}

// Quiz is a collection of questions plus the creator identity that marks the
// room host.
type Quiz struct {
	ID        string     `json:"id"`
	CreatedBy string     `json:"createdBy"`
	Questions []Question `json:"questions"`
}
