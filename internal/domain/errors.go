package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no live session matches a code.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotHost is returned when a host-only action is invoked by someone else.
	ErrNotHost = errors.New("forbidden: caller is not the host")
	// ErrAlreadyStarted is returned when joining a session that has left the lobby.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrNoQuestions is returned when starting a session with an empty quiz.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNotQuizOwner is returned when a caller creates a session for a quiz they do not own.
	ErrNotQuizOwner = errors.New("forbidden: caller does not own the quiz")
)
