package game

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"trivia-session-service/internal/domain"
)

// defaultTimeLimit applies when neither the question nor the service
// configuration names a limit.
const defaultTimeLimit = 20 * time.Second

// SessionStore abstracts the process-wide code->session registry
// (in-memory, Redis-marked, etc).
type SessionStore interface {
	Create(hostID, quizID string, questions []domain.Question) (*Session, error)
	Lookup(code string) (*Session, bool)
	Remove(code string)
	RemoveByConnection(connID string) (*Session, Participant, bool)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// StatsRecorder persists the completion report of a finished game.
type StatsRecorder interface {
	RecordGameStats(ctx context.Context, stats domain.GameStats) error
}

// GameService is the session controller: every action a host or player may
// invoke, the authority checks, phase transitions, timer lifecycle, and the
// outbound broadcast contract.
type GameService struct {
	sessions     SessionStore
	quizzes      QuizRepository
	stats        StatsRecorder
	clock        clockwork.Clock
	defaultLimit time.Duration
	log          zerolog.Logger
}

func NewGameService(store SessionStore, quizzes QuizRepository, stats StatsRecorder, clock clockwork.Clock, defaultLimit time.Duration, log zerolog.Logger) *GameService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if defaultLimit <= 0 {
		defaultLimit = defaultTimeLimit
	}
	return &GameService{
		sessions:     store,
		quizzes:      quizzes,
		stats:        stats,
		clock:        clock,
		defaultLimit: defaultLimit,
		log:          log,
	}
}

// CreateSession materializes a quiz into a new lobby-phase session and
// returns its join code. The caller must own the quiz, and the quiz must
// contain at least one question.
func (g *GameService) CreateSession(ctx context.Context, hostID, quizID string) (string, error) {
	quiz, err := g.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return "", err
	}
	if quiz.OwnerID != "" && quiz.OwnerID != hostID {
		return "", domain.ErrNotQuizOwner
	}
	if len(quiz.Questions) == 0 {
		return "", domain.ErrNoQuestions
	}
	session, err := g.sessions.Create(hostID, quizID, quiz.Questions)
	if err != nil {
		return "", err
	}
	g.log.Info().Str("code", session.Code()).Str("quiz", quizID).Msg("session created")
	return session.Code(), nil
}

// CodeStatus reports whether a code identifies a live session and its phase.
func (g *GameService) CodeStatus(code string) (domain.Phase, bool) {
	session, ok := g.sessions.Lookup(code)
	if !ok {
		return "", false
	}
	return session.Phase(), true
}

// Subscribe attaches a push-event channel to the session identified by code.
// The caller must invoke the returned cancel function to avoid leaks.
func (g *GameService) Subscribe(code string) (<-chan Event, func(), error) {
	session, ok := g.sessions.Lookup(code)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// JoinAsHost attaches the designated host's connection to the session and
// broadcasts the lobby roster. A reconnecting host supersedes any prior host
// connection, so the session never carries two.
func (g *GameService) JoinAsHost(code, connID, userID string) error {
	session, ok := g.sessions.Lookup(code)
	if !ok {
		return domain.ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.phase == domain.PhaseEnded {
		return domain.ErrSessionNotFound
	}
	if userID == "" || userID != session.hostID {
		return domain.ErrNotHost
	}
	for id, p := range session.participants {
		if p.IsHost {
			delete(session.participants, id)
		}
	}
	session.participants[connID] = &Participant{
		ConnID:      connID,
		UserID:      userID,
		DisplayName: userID,
		IsHost:      true,
	}
	session.broadcastLocked(g.lobbyEventLocked(session))
	return nil
}

// JoinAsPlayer registers a player connection while the session is still in
// the lobby. Late joins are rejected, not queued.
func (g *GameService) JoinAsPlayer(code, connID, userID, displayName string) error {
	session, ok := g.sessions.Lookup(code)
	if !ok {
		return domain.ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.phase != domain.PhaseLobby {
		return domain.ErrAlreadyStarted
	}
	if displayName == "" {
		displayName = userID
	}
	if displayName == "" {
		displayName = placeholderName(connID)
	}
	session.participants[connID] = &Participant{
		ConnID:      connID,
		UserID:      userID,
		DisplayName: displayName,
	}
	session.broadcastLocked(g.lobbyEventLocked(session))
	return nil
}

// StartGame transitions the session out of the lobby into its first
// question. Host-only.
func (g *GameService) StartGame(code, connID string) error {
	session, ok := g.sessions.Lookup(code)
	if !ok {
		return domain.ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if !g.isHostLocked(session, connID) {
		return domain.ErrNotHost
	}
	if session.phase != domain.PhaseLobby {
		return domain.ErrAlreadyStarted
	}
	if len(session.questions) == 0 {
		return domain.ErrNoQuestions
	}
	g.beginQuestionLocked(session)
	return nil
}

// SkipQuestion ends the current question ahead of its timer. Host-only;
// converges on the same end-question path as natural expiry.
func (g *GameService) SkipQuestion(code, connID string) error {
	session, ok := g.sessions.Lookup(code)
	if !ok {
		return domain.ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if !g.isHostLocked(session, connID) {
		return domain.ErrNotHost
	}
	g.endQuestionLocked(session)
	return nil
}

// NextQuestion advances past the leaderboard: either into the next question
// or, when the list is exhausted, into the terminal ended phase. Host-only.
func (g *GameService) NextQuestion(code, connID string) error {
	session, ok := g.sessions.Lookup(code)
	if !ok {
		return domain.ErrSessionNotFound
	}

	session.mu.Lock()
	if !g.isHostLocked(session, connID) {
		session.mu.Unlock()
		return domain.ErrNotHost
	}
	if session.phase != domain.PhaseLeaderboard {
		// Advancing is only legal between questions; anything else is a
		// client racing its own state.
		session.mu.Unlock()
		return domain.ErrAlreadyStarted
	}
	if session.questionIdx+1 >= len(session.questions) {
		g.endGameLocked(session)
		session.mu.Unlock()
		g.sessions.Remove(code)
		return nil
	}
	g.beginQuestionLocked(session)
	session.mu.Unlock()
	return nil
}

// SubmitAnswer records a player's selection for the live question. All
// invalid cases (wrong phase, unknown participant, duplicate, past the
// deadline) are deliberate no-ops: a client racing the deadline or
// double-clicking is expected, not an error.
func (g *GameService) SubmitAnswer(code, connID string, option int) {
	session, ok := g.sessions.Lookup(code)
	if !ok {
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.phase != domain.PhaseQuestion {
		return
	}
	p, ok := session.participants[connID]
	if !ok || p.IsHost || p.Answered {
		return
	}
	now := g.clock.Now()
	if now.After(session.questionEnd) {
		return
	}

	question := session.questions[session.questionIdx]
	result := Score(option == question.Correct, now, session.questionStart, session.questionEnd)
	p.Answered = true
	p.Selection = option
	p.AnsweredAt = now
	p.Awarded = result.Points
	p.Score += result.Points

	for _, player := range session.playersLocked() {
		if !player.Answered {
			return
		}
	}
	// Every player answered: end early instead of waiting out the timer.
	g.endQuestionLocked(session)
}

// Disconnect cleans up a departing connection. A departing host force-ends
// the whole session; a departing player just shrinks the roster.
func (g *GameService) Disconnect(connID string) {
	session, participant, ok := g.sessions.RemoveByConnection(connID)
	if !ok {
		return
	}

	if participant.IsHost {
		session.mu.Lock()
		g.endGameLocked(session)
		session.mu.Unlock()
		g.sessions.Remove(session.Code())
		g.log.Info().Str("code", session.Code()).Msg("host disconnected, session force-ended")
		return
	}

	session.mu.Lock()
	session.broadcastLocked(g.lobbyEventLocked(session))
	session.mu.Unlock()
}

// beginQuestionLocked advances to the next question: resets every player's
// transient state, stamps the timing window, broadcasts the question without
// its answer, and arms a cancellable timer for natural expiry.
func (g *GameService) beginQuestionLocked(s *Session) {
	s.cancelTimerLocked()
	s.questionIdx++
	question := s.questions[s.questionIdx]

	for _, p := range s.participants {
		p.Answered = false
		p.Selection = 0
		p.AnsweredAt = time.Time{}
		p.Awarded = 0
	}

	limit := time.Duration(question.TimeLimit) * time.Second
	if limit <= 0 {
		limit = g.defaultLimit
	}
	s.questionStart = g.clock.Now()
	s.questionEnd = s.questionStart.Add(limit)
	s.phase = domain.PhaseQuestion

	s.broadcastLocked(Event{Type: EventQuestionStarted, Payload: QuestionStartedPayload{
		Index:   s.questionIdx,
		Prompt:  question.Prompt,
		Options: question.Options,
		EndsAt:  s.questionEnd,
	}})

	cancel := make(chan struct{})
	s.timerCancel = cancel
	gen := s.timerGen
	timer := g.clock.NewTimer(limit)
	go g.runQuestionTimer(s, gen, timer, cancel)
}

// runQuestionTimer waits out one question's clock. Cancellation is the
// common path (skip or all-answered); a panic here is logged and contained
// so one session's timer can never take down its neighbours.
func (g *GameService) runQuestionTimer(s *Session, gen uint64, timer clockwork.Timer, cancel <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error().Interface("panic", r).Str("code", s.Code()).Msg("question timer failed")
		}
	}()

	select {
	case <-timer.Chan():
		g.expireQuestion(s, gen)
	case <-cancel:
		if !timer.Stop() {
			select {
			case <-timer.Chan():
			default:
			}
		}
	}
}

// expireQuestion is the timer's natural-expiry path. The generation check,
// taken together with the phase check inside endQuestionLocked, guarantees a
// stale timer that lost the race against an early termination does nothing.
func (g *GameService) expireQuestion(s *Session, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.timerGen {
		return
	}
	g.endQuestionLocked(s)
}

// endQuestionLocked is the single race-prone transition: timer expiry, host
// skip, and the last answer all converge here. The phase check makes a
// duplicate invocation a no-op, so results broadcast exactly once.
func (g *GameService) endQuestionLocked(s *Session) {
	if s.phase != domain.PhaseQuestion {
		return
	}
	s.cancelTimerLocked()
	s.phase = domain.PhaseLeaderboard

	question := s.questions[s.questionIdx]
	fullMs := s.questionEnd.Sub(s.questionStart).Milliseconds()

	players := s.playersLocked()
	results := make([]ParticipantResult, 0, len(players))
	for _, p := range players {
		if p.Answered {
			selected := p.Selection
			results = append(results, ParticipantResult{
				DisplayName: p.DisplayName,
				Selected:    &selected,
				Correct:     p.Selection == question.Correct,
				Points:      p.Awarded,
				ElapsedMs:   p.AnsweredAt.Sub(s.questionStart).Milliseconds(),
			})
			continue
		}
		results = append(results, ParticipantResult{
			DisplayName: p.DisplayName,
			ElapsedMs:   fullMs,
		})
	}
	sortResults(results)

	s.broadcastLocked(Event{Type: EventQuestionEnded, Payload: QuestionEndedPayload{
		Index:       s.questionIdx,
		Correct:     question.Correct,
		Results:     results,
		Leaderboard: s.leaderboardLocked(),
	}})
}

// endGameLocked is the terminal transition, shared by the natural end of the
// question list and a host disconnect. Stats are reported at most once,
// guarded by the session's completion flag.
func (g *GameService) endGameLocked(s *Session) {
	s.cancelTimerLocked()
	s.phase = domain.PhaseEnded

	s.broadcastLocked(Event{Type: EventGameEnded, Payload: GameEndedPayload{
		Code:        s.code,
		Leaderboard: s.leaderboardLocked(),
	}})

	// A lobby that never started has nothing worth reporting.
	if s.statsRecorded || g.stats == nil || s.questionIdx < 0 {
		return
	}
	s.statsRecorded = true

	stats := domain.GameStats{
		QuizID:    s.quizID,
		Code:      s.code,
		WinnerIDs: s.winnersLocked(),
	}
	for _, p := range s.playersLocked() {
		if p.UserID != "" {
			stats.PlayerIDs = append(stats.PlayerIDs, p.UserID)
		}
	}

	go func() {
		ctx, cancelCtx := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelCtx()
		if err := g.stats.RecordGameStats(ctx, stats); err != nil {
			g.log.Error().Err(err).Str("code", stats.Code).Msg("record game stats failed")
		}
	}()
}

func (g *GameService) isHostLocked(s *Session, connID string) bool {
	p, ok := s.participants[connID]
	return ok && p.IsHost
}

func (g *GameService) lobbyEventLocked(s *Session) Event {
	return Event{Type: EventLobby, Payload: LobbyPayload{
		Code:   s.code,
		Phase:  s.phase,
		Roster: s.rosterLocked(),
	}}
}

func placeholderName(connID string) string {
	if len(connID) > 8 {
		connID = connID[:8]
	}
	return "guest-" + connID
}
