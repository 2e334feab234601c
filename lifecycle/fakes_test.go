package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"solarena/models"
)

// fakeStore is an in-memory Store with the same conditional-update
// semantics as the real one, so race behavior can be tested without a
// database.
type fakeStore struct {
	mu       sync.Mutex
	nextID   uint
	sessions map[uint]*models.GameSession
	users    map[string]*models.User
	moves    []models.MoveRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: make(map[uint]*models.GameSession),
		users:    make(map[string]*models.User),
	}
}

func (f *fakeStore) CreateSession(ctx context.Context, session *models.GameSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	session.ID = f.nextID
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	dup := *session
	f.sessions[session.ID] = &dup
	return nil
}

func (f *fakeStore) GetSession(ctx context.Context, id uint) (*models.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	dup := *session
	return &dup, nil
}

func (f *fakeStore) FindExactWaiting(ctx context.Context, kind string, wager int64, excludeWallet string) (*models.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var oldest *models.GameSession
	for _, s := range f.sessions {
		if s.GameKind != kind || s.WagerLamports != wager || s.Status != models.StatusWaiting {
			continue
		}
		if s.PlayerB != "" || s.PlayerA == excludeWallet {
			continue
		}
		if oldest == nil || s.CreatedAt.Before(oldest.CreatedAt) {
			oldest = s
		}
	}
	if oldest == nil {
		return nil, nil
	}
	dup := *oldest
	return &dup, nil
}

func (f *fakeStore) FindCompatibleWaiting(ctx context.Context, kind string, maxWager int64, excludeWallet string, limit int) ([]models.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found []models.GameSession
	for _, s := range f.sessions {
		if s.GameKind != kind || s.WagerLamports > maxWager || s.Status != models.StatusWaiting {
			continue
		}
		if s.PlayerB != "" || s.PlayerA == excludeWallet {
			continue
		}
		found = append(found, *s)
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].WagerLamports != found[j].WagerLamports {
			return found[i].WagerLamports > found[j].WagerLamports
		}
		return found[i].CreatedAt.Before(found[j].CreatedAt)
	})
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (f *fakeStore) BindOpponent(ctx context.Context, id uint, wallet string) (*models.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok || session.Status != models.StatusWaiting || session.PlayerB != "" || session.PlayerA == wallet {
		return nil, ErrOpponentUnavailable
	}
	session.PlayerB = wallet
	session.Status = models.StatusMatched
	dup := *session
	return &dup, nil
}

func (f *fakeStore) MarkDeposit(ctx context.Context, id uint, asPlayerA bool, txRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok || (session.Status != models.StatusMatched && session.Status != models.StatusActive) {
		return fmt.Errorf("%w: deposit precondition failed", ErrStaleSessionState)
	}
	if asPlayerA {
		session.PlayerADeposited = true
		session.PlayerATxRef = txRef
	} else {
		session.PlayerBDeposited = true
		session.PlayerBTxRef = txRef
	}
	return nil
}

func (f *fakeStore) ActivateSession(ctx context.Context, id uint, startedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok || session.Status != models.StatusMatched || !session.PlayerADeposited || !session.PlayerBDeposited {
		return false, nil
	}
	session.Status = models.StatusActive
	t := startedAt
	session.StartedAt = &t
	return true, nil
}

func (f *fakeStore) CompleteSession(ctx context.Context, id uint, winnerWallet string, state json.RawMessage, completedAt time.Time, deltas map[string]StatsDelta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok || session.Status != models.StatusActive {
		return fmt.Errorf("%w: session is no longer active", ErrStaleSessionState)
	}
	session.Status = models.StatusCompleted
	session.WinnerWallet = winnerWallet
	session.State = state
	t := completedAt
	session.CompletedAt = &t
	for wallet, delta := range deltas {
		user, ok := f.users[wallet]
		if !ok {
			return fmt.Errorf("stats update found no user %s", wallet)
		}
		user.TotalGamesPlayed += delta.GamesPlayed
		user.TotalGamesWon += delta.GamesWon
		user.TotalEarnings += delta.Earnings
	}
	return nil
}

func (f *fakeStore) UpdateSessionState(ctx context.Context, id uint, expectedStatus string, state json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok || session.Status != expectedStatus {
		return fmt.Errorf("%w: session is no longer %s", ErrStaleSessionState, expectedStatus)
	}
	session.State = state
	return nil
}

func (f *fakeStore) DeleteWaiting(ctx context.Context, id uint, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok || session.Status != models.StatusWaiting || session.PlayerA != owner {
		return fmt.Errorf("%w: session is not waiting anymore", ErrStaleSessionState)
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeStore) EnsureUser(ctx context.Context, wallet string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[wallet]; !ok {
		f.users[wallet] = &models.User{WalletAddress: wallet}
	}
	return nil
}

func (f *fakeStore) RecordMove(ctx context.Context, move *models.MoveRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, m := range f.moves {
		if m.GameSessionID == move.GameSessionID {
			count++
		}
	}
	move.MoveNumber = count + 1
	f.moves = append(f.moves, *move)
	return nil
}

func (f *fakeStore) Leaderboard(ctx context.Context, limit int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []models.User
	for _, u := range f.users {
		if u.TotalGamesPlayed > 0 {
			users = append(users, *u)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].TotalGamesWon != users[j].TotalGamesWon {
			return users[i].TotalGamesWon > users[j].TotalGamesWon
		}
		return users[i].TotalEarnings > users[j].TotalEarnings
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (f *fakeStore) QueueStats(ctx context.Context, kind string, wager int64) (*QueueStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &QueueStats{AvgWaitSeconds: 12}
	for _, s := range f.sessions {
		if kind != "" && s.GameKind != kind {
			continue
		}
		switch s.Status {
		case models.StatusWaiting:
			if wager == 0 || s.WagerLamports == wager {
				stats.PlayersWaiting++
			}
		case models.StatusMatched, models.StatusActive:
			stats.GamesInProgress++
		}
	}
	return stats, nil
}

func (f *fakeStore) user(wallet string) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[wallet]; ok {
		return *u
	}
	return models.User{}
}

func (f *fakeStore) movesFor(sessionID uint) []models.MoveRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MoveRecord
	for _, m := range f.moves {
		if m.GameSessionID == sessionID {
			out = append(out, m)
		}
	}
	return out
}

// fakeLedger returns canned verdicts per transfer reference.
type fakeLedger struct {
	mu          sync.Mutex
	verdicts    map[string]TransferStatus
	verifyCalls int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{verdicts: make(map[string]TransferStatus)}
}

func (f *fakeLedger) confirmRef(ref string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verdicts[ref] = TransferSucceeded
}

func (f *fakeLedger) GetBalance(ctx context.Context, wallet string) (int64, error) {
	return 10 * models.LamportsPerSOL, nil
}

func (f *fakeLedger) CreateTransfer(ctx context.Context, from, to string, lamports int64) (string, error) {
	return "unsigned-tx", nil
}

func (f *fakeLedger) SubmitAndConfirm(ctx context.Context, signedTx string) (string, error) {
	return "submitted-sig", nil
}

func (f *fakeLedger) VerifyTransfer(ctx context.Context, reference string) (TransferStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if status, ok := f.verdicts[reference]; ok {
		return status, nil
	}
	return TransferNotFound, nil
}

func (f *fakeLedger) RequestTestFunds(ctx context.Context, wallet string, lamports int64) (string, error) {
	return "airdrop-sig", nil
}

// fakeChannel records published events.
type fakeChannel struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	SessionID uint
	Event     string
	Payload   interface{}
}

func (f *fakeChannel) Join(ctx context.Context, sessionID uint) error { return nil }

func (f *fakeChannel) Publish(ctx context.Context, sessionID uint, event string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{SessionID: sessionID, Event: event, Payload: payload})
	return nil
}

func (f *fakeChannel) Subscribe(ctx context.Context, sessionID uint, event string, handler Handler) (func(), error) {
	return func() {}, nil
}

func (f *fakeChannel) eventNames(sessionID uint) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, e := range f.events {
		if e.SessionID == sessionID {
			names = append(names, e.Event)
		}
	}
	return names
}
