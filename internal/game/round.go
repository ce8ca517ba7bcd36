package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/geode-sdk/GeodeDiscord/internal/quotes"
)

var (
	// ErrNoQuotes means the guessing game has nothing to ask about
	ErrNoQuotes = errors.New("no quotes stored yet")
	// ErrNoOpponents means only one quoted author is known
	ErrNoOpponents = errors.New("not enough quoted authors to play")
	// ErrRoundActive means the user already has an unresolved round
	ErrRoundActive = errors.New("a round is already running for this user")
	// ErrUnknownRound means no active round matches the interaction
	ErrUnknownRound = errors.New("no active round for this message")
	// ErrNotYourRound means someone else's round was clicked
	ErrNotYourRound = errors.New("this round belongs to another player")
)

// QuoteSource is the slice of the quote store the game needs
type QuoteSource interface {
	Random(ctx context.Context) (*quotes.Quote, error)
	Roster(ctx context.Context, excludeAuthor string) ([]quotes.RosterEntry, error)
	CountByAuthor(ctx context.Context, authorID string) (int64, error)
}

// Round is one "who said this" prompt waiting for an answer
type Round struct {
	ResponseID string // prompt message ID, set when the round is tracked
	ChannelID  string
	UserID     string
	Quote      quotes.Quote
	Options    []quotes.RosterEntry // shuffled, contains the correct author
	StartedAt  time.Time

	timer *time.Timer
}

// Result is a resolved round together with the updated counters
type Result struct {
	Round     *Round
	TimedOut  bool
	Correct   bool
	Stats     GuessStats
	Persisted bool // false when the counters could not be durably saved
}

// TimeoutFunc is called when a round expires without a guess
type TimeoutFunc func(result *Result)

// ManagerConfig holds round manager configuration
type ManagerConfig struct {
	Options int           // total choices per round, correct author included
	Timeout time.Duration // how long a round waits for a guess
}

// Manager runs guessing rounds: it builds the options, tracks the open
// prompts and resolves them on a button press or on timeout. Rounds of
// different users are independent; one user has at most one open round.
type Manager struct {
	source    QuoteSource
	store     *Store
	config    ManagerConfig
	logger    *slog.Logger
	onTimeout TimeoutFunc

	rngMu sync.Mutex
	rng   *rand.Rand

	mu     sync.Mutex
	active map[string]*Round // by response message ID
	byUser map[string]string // user ID -> response message ID
}

// NewManager creates a round manager. onTimeout may be nil.
func NewManager(source QuoteSource, store *Store, config ManagerConfig, logger *slog.Logger, onTimeout TimeoutFunc) *Manager {
	if config.Options <= 0 {
		config.Options = 5
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	return &Manager{
		source:    source,
		store:     store,
		config:    config,
		logger:    logger,
		onTimeout: onTimeout,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		active:    make(map[string]*Round),
		byUser:    make(map[string]string),
	}
}

// Start builds a new round for the user: a random quote plus a shuffled set
// of plausible authors. The round is not live until Track is called with the
// ID of the posted prompt message; the user stays reserved in between, so a
// second Start is rejected even before Track. A started round that cannot be
// posted must be released with Cancel.
func (m *Manager) Start(ctx context.Context, userID string) (*Round, error) {
	m.mu.Lock()
	if _, busy := m.byUser[userID]; busy {
		m.mu.Unlock()
		return nil, ErrRoundActive
	}
	// reserved until Track or Cancel; "" means no prompt posted yet
	m.byUser[userID] = ""
	m.mu.Unlock()

	round, err := m.buildRound(ctx, userID)
	if err != nil {
		m.releaseReservation(userID)
		return nil, err
	}
	return round, nil
}

func (m *Manager) buildRound(ctx context.Context, userID string) (*Round, error) {
	quote, err := m.source.Random(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to pick a quote: %w", err)
	}
	if quote == nil {
		return nil, ErrNoQuotes
	}

	roster, err := m.source.Roster(ctx, quote.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to build roster: %w", err)
	}
	if len(roster) == 0 {
		return nil, ErrNoOpponents
	}

	count, err := m.source.CountByAuthor(ctx, quote.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to weigh author: %w", err)
	}
	correct := quotes.RosterEntry{UserID: quote.AuthorID, Count: count}

	m.rngMu.Lock()
	options := SelectCandidates(correct, roster, m.config.Options, m.rng)
	m.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	m.rngMu.Unlock()

	return &Round{
		UserID:    userID,
		Quote:     *quote,
		Options:   options,
		StartedAt: time.Now(),
	}, nil
}

// Cancel releases a started round whose prompt was never posted. Tracked
// rounds are not cancellable; they resolve or time out.
func (m *Manager) Cancel(round *Round) {
	if round == nil || round.ResponseID != "" {
		return
	}
	m.releaseReservation(round.UserID)
}

func (m *Manager) releaseReservation(userID string) {
	m.mu.Lock()
	if responseID, ok := m.byUser[userID]; ok && responseID == "" {
		delete(m.byUser, userID)
	}
	m.mu.Unlock()
}

// Track registers the posted prompt and arms the round timeout
func (m *Manager) Track(round *Round, channelID, responseID string) {
	round.ChannelID = channelID
	round.ResponseID = responseID

	m.mu.Lock()
	m.active[responseID] = round
	m.byUser[round.UserID] = responseID
	round.timer = time.AfterFunc(m.config.Timeout, func() {
		m.expire(responseID)
	})
	m.mu.Unlock()

	m.logger.Debug("round started",
		"user_id", round.UserID,
		"response_id", responseID,
		"quote", round.Quote.Name,
		"options", len(round.Options),
	)
}

// Resolve settles the round behind the prompt message with the user's guess.
// The guess and the counters are written in one transaction; a failed write
// still yields a Result, with Persisted false.
func (m *Manager) Resolve(ctx context.Context, responseID, userID, guessedID string) (*Result, error) {
	round, err := m.take(responseID, userID)
	if err != nil {
		return nil, err
	}
	return m.settle(ctx, round, guessedID, false)
}

// expire resolves a round as "no guess": it still flows through the streak
// counters as a non-correct outcome, resetting the streak.
func (m *Manager) expire(responseID string) {
	m.mu.Lock()
	round, ok := m.active[responseID]
	if ok {
		delete(m.active, responseID)
		delete(m.byUser, round.UserID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	result, err := m.settle(context.Background(), round, "", true)
	if err != nil {
		m.logger.Error("failed to settle expired round", "response_id", responseID, "error", err)
		return
	}
	if m.onTimeout != nil {
		m.onTimeout(result)
	}
}

func (m *Manager) take(responseID, userID string) (*Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	round, ok := m.active[responseID]
	if !ok {
		return nil, ErrUnknownRound
	}
	if round.UserID != userID {
		return nil, ErrNotYourRound
	}

	delete(m.active, responseID)
	delete(m.byUser, round.UserID)
	if round.timer != nil {
		round.timer.Stop()
	}
	return round, nil
}

func (m *Manager) settle(ctx context.Context, round *Round, guessedID string, timedOut bool) (*Result, error) {
	outcome := Outcome{
		ResponseID:     round.ResponseID,
		UserID:         round.UserID,
		GuessedID:      guessedID,
		CorrectID:      round.Quote.AuthorID,
		QuoteMessageID: round.Quote.MessageID,
		GuessedAt:      time.Now(),
	}

	stats, persisted, err := m.store.RecordOutcome(ctx, outcome)
	if err != nil {
		return nil, err
	}

	return &Result{
		Round:     round,
		TimedOut:  timedOut,
		Correct:   outcome.Correct(),
		Stats:     stats,
		Persisted: persisted,
	}, nil
}
