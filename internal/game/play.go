package game

import "slices"

// Start validates the host-triggered start request and moves the room into
// the countdown. Guards are checked in the order a caller would want the
// failure reported: host, phase, roster, question set.
func (r *Room) Start(callerID string) error {
	if callerID != r.HostID {
		return ErrNotHost
	}
	if r.State != StateLobby {
		return ErrAlreadyStarted
	}
	if len(r.Players) < 1 {
		return ErrNoPlayers
	}
	if len(r.Questions) == 0 {
		return ErrNoQuestions
	}
	r.State = StateCountdown
	return nil
}

// BeginQuestions transitions Countdown -> InProgress on the terminal tick.
func (r *Room) BeginQuestions() bool {
	if r.State != StateCountdown {
		return false
	}
	r.State = StateInProgress
	return true
}

func (r *Room) CurrentQuestion() (Question, bool) {
	if r.Current >= len(r.Questions) {
		return Question{}, false
	}
	return r.Questions[r.Current], true
}

type AnswerOutcome struct {
	Player    *Player
	IsCorrect bool
	Record    AnswerRecord
	Finished  bool
}

// SubmitAnswer evaluates one answer against the current question, appends
// it to the history and advances the question pointer. Reaching the end of
// the question set finishes the game. Nothing is mutated on error.
func (r *Room) SubmitAnswer(id string, choice int) (AnswerOutcome, error) {
	switch r.State {
	case StateLobby, StateCountdown:
		return AnswerOutcome{}, ErrNotStarted
	case StateFinished:
		return AnswerOutcome{}, ErrGameOver
	}
	if r.Current >= len(r.Questions) {
		return AnswerOutcome{}, ErrGameOver
	}

	p := r.FindPlayer(id)
	if p == nil {
		return AnswerOutcome{}, ErrNotInRoom
	}

	q := r.Questions[r.Current]
	if choice < 0 || choice >= len(q.Options) {
		return AnswerOutcome{}, ErrInvalidOption
	}

	correct := choice == q.Correct
	if correct {
		p.Score++
	}

	rec := AnswerRecord{
		QuestionIndex: r.Current,
		QuestionText:  q.Text,
		PlayerID:      p.ID,
		Username:      p.Username,
		Answer:        choice,
		AnswerText:    q.Options[choice],
		Correct:       q.Correct,
		IsCorrect:     correct,
	}
	r.History = append(r.History, rec)
	r.Current++

	out := AnswerOutcome{Player: p, IsCorrect: correct, Record: rec}
	if r.Current >= len(r.Questions) {
		r.State = StateFinished
		out.Finished = true
	}
	return out, nil
}

type Rank struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Rankings returns the leaderboard sorted by score descending. The sort is
// stable so ties keep the players' join order.
func (r *Room) Rankings() []Rank {
	ranks := make([]Rank, 0, len(r.Players))
	for _, p := range r.Players {
		ranks = append(ranks, Rank{PlayerID: p.ID, Username: p.Username, Score: p.Score})
	}
	slices.SortStableFunc(ranks, func(a, b Rank) int {
		return b.Score - a.Score
	})
	return ranks
}
