// Package lifecycle is the game-session protocol: matchmaking intake,
// deposit confirmation, move exchange and prize settlement, driven as a
// state machine over the record store. All cross-process coordination
// happens through the store's conditional updates; the realtime channel
// is a latency optimization only.
package lifecycle

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"solarena/engine/checkers"
	chessengine "solarena/engine/chess"
	"solarena/engine/coinflip"
	"solarena/engine/connectfour"
	"solarena/models"
)

// Orchestrator coordinates the record store, the ledger service and the
// realtime channel. It performs no internal retries: every failed
// precondition is reported so the caller can re-fetch and decide.
type Orchestrator struct {
	store   Store
	ledger  Ledger
	channel Channel // optional; nil disables push
	logger  *zap.Logger

	now     func() time.Time
	entropy io.Reader
}

// NewOrchestrator wires the collaborators. channel may be nil; clients
// then rely on polling alone.
func NewOrchestrator(store Store, ledger Ledger, channel Channel, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:   store,
		ledger:  ledger,
		channel: channel,
		logger:  logger,
		now:     time.Now,
		entropy: rand.Reader,
	}
}

// Intake enters matchmaking: bind to the oldest exact-wager waiting
// session, or offer compatible lower-wager candidates, or open a new
// waiting session. A wallet is never matched against itself. Losing a
// bind race surfaces as ErrOpponentUnavailable; the caller restarts.
func (o *Orchestrator) Intake(ctx context.Context, kind, wallet string, wagerLamports int64) (*MatchResult, error) {
	if !models.ValidGameKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameKind, kind)
	}
	if wagerLamports <= 0 || wagerLamports%models.WagerStep != 0 {
		return nil, fmt.Errorf("%w: got %d lamports", ErrInvalidWager, wagerLamports)
	}
	if err := o.store.EnsureUser(ctx, wallet); err != nil {
		return nil, fmt.Errorf("ensuring user record: %w", err)
	}

	result, err := resolveMatch(ctx, o.store, o.logger, kind, wallet, wagerLamports)
	if err != nil {
		return nil, err
	}
	if result.Matched {
		o.publish(ctx, result.Session.ID, EventMatchFound, sessionEvent(result.Session))
	}
	return result, nil
}

// Accept explicitly joins one of the candidate sessions offered by
// Intake. The bind is conditional; a lost race or vanished session is
// ErrOpponentUnavailable.
func (o *Orchestrator) Accept(ctx context.Context, sessionID uint, wallet string) (*models.GameSession, error) {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PlayerA == wallet {
		return nil, fmt.Errorf("%w: cannot join own session", ErrOpponentUnavailable)
	}
	if err := o.store.EnsureUser(ctx, wallet); err != nil {
		return nil, fmt.Errorf("ensuring user record: %w", err)
	}
	bound, err := o.store.BindOpponent(ctx, sessionID, wallet)
	if err != nil {
		return nil, err
	}
	o.publish(ctx, bound.ID, EventMatchFound, sessionEvent(bound))
	return bound, nil
}

// CheckMatch is the polling fallback for matchmaking status.
func (o *Orchestrator) CheckMatch(ctx context.Context, sessionID uint) (*models.GameSession, error) {
	return o.store.GetSession(ctx, sessionID)
}

// GetSession fetches the authoritative session record.
func (o *Orchestrator) GetSession(ctx context.Context, sessionID uint) (*models.GameSession, error) {
	return o.store.GetSession(ctx, sessionID)
}

// ConfirmDeposit verifies the referenced escrow transfer with the
// ledger and marks the participant's deposit flag. Re-confirming an
// already-confirmed deposit is a no-op success so client retries are
// harmless. When the second flag lands, the session turns active and
// the start time is stamped.
func (o *Orchestrator) ConfirmDeposit(ctx context.Context, sessionID uint, wallet, txRef string) (*models.GameSession, error) {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(wallet) {
		return nil, ErrNotParticipant
	}
	asPlayerA := wallet == session.PlayerA

	// Idempotency: a deposit already on record needs no re-verification.
	if (asPlayerA && session.PlayerADeposited) || (!asPlayerA && session.PlayerBDeposited) {
		return session, nil
	}
	if session.Status != models.StatusMatched {
		return nil, fmt.Errorf("%w: session is %s, expected %s", ErrStaleSessionState, session.Status, models.StatusMatched)
	}

	status, err := o.ledger.VerifyTransfer(ctx, txRef)
	if err != nil {
		return nil, fmt.Errorf("verifying transfer %s: %w", txRef, err)
	}
	if status != TransferSucceeded {
		return nil, fmt.Errorf("%w: ledger reports %s for %s", ErrTransferUnconfirmed, status, txRef)
	}

	if err := o.store.MarkDeposit(ctx, sessionID, asPlayerA, txRef); err != nil {
		return nil, err
	}

	session, err = o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.PlayerADeposited && session.PlayerBDeposited && session.Status == models.StatusMatched {
		activated, err := o.store.ActivateSession(ctx, sessionID, o.now())
		if err != nil {
			return nil, err
		}
		if activated {
			session, err = o.store.GetSession(ctx, sessionID)
			if err != nil {
				return nil, err
			}
			o.publish(ctx, sessionID, EventSessionActive, sessionEvent(session))
		}
	}
	o.publish(ctx, sessionID, EventDepositStatus, map[string]interface{}{
		"wallet":        wallet,
		"bothDeposited": session.PlayerADeposited && session.PlayerBDeposited,
	})
	return session, nil
}

// RecordResult closes an active session: fixes the winner, stores the
// result payload and applies both participants' stats in one store
// transaction. An empty winner records a draw (no earnings move).
func (o *Orchestrator) RecordResult(ctx context.Context, sessionID uint, winnerWallet string, payload json.RawMessage) (*models.GameSession, error) {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: session is %s, expected %s", ErrStaleSessionState, session.Status, models.StatusActive)
	}
	if winnerWallet != "" && !session.HasParticipant(winnerWallet) {
		return nil, ErrNotParticipant
	}

	deltas := settlementDeltas(session, winnerWallet)
	if err := o.store.CompleteSession(ctx, sessionID, winnerWallet, payload, o.now(), deltas); err != nil {
		return nil, err
	}

	session, err = o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	o.publish(ctx, sessionID, EventSessionCompleted, sessionEvent(session))
	o.logger.Info("session completed",
		zap.Uint("sessionID", sessionID),
		zap.String("winner", winnerWallet),
		zap.Int64("pot", session.PotLamports()),
	)
	return session, nil
}

// settlementDeltas computes both sides' bookkeeping: the winner takes
// the pot minus the fee fixed at intake, the loser is down one wager,
// and a draw just counts a game for each.
func settlementDeltas(session *models.GameSession, winnerWallet string) map[string]StatsDelta {
	deltas := map[string]StatsDelta{
		session.PlayerA: {GamesPlayed: 1},
		session.PlayerB: {GamesPlayed: 1},
	}
	if winnerWallet == "" {
		return deltas
	}
	payout := session.PotLamports() - session.HouseFeeLamports
	loser := session.Opponent(winnerWallet)
	deltas[winnerWallet] = StatsDelta{GamesPlayed: 1, GamesWon: 1, Earnings: payout}
	deltas[loser] = StatsDelta{GamesPlayed: 1, Earnings: -session.WagerLamports}
	return deltas
}

// Withdraw cancels a waiting session before anyone joined. Once an
// opponent is bound there is no cancellation, only forfeit.
func (o *Orchestrator) Withdraw(ctx context.Context, sessionID uint, requester string) error {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.PlayerA != requester {
		return ErrNotParticipant
	}
	return o.store.DeleteWaiting(ctx, sessionID, requester)
}

// Forfeit is the opt-in loss for a matched-and-active game: the
// opponent wins the pot and settlement runs as usual.
func (o *Orchestrator) Forfeit(ctx context.Context, sessionID uint, quitter string) (*models.GameSession, error) {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(quitter) {
		return nil, ErrNotParticipant
	}
	if session.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: session is %s, expected %s", ErrStaleSessionState, session.Status, models.StatusActive)
	}
	payload, _ := json.Marshal(map[string]string{"reason": "forfeit", "forfeitedBy": quitter})
	o.publish(ctx, sessionID, EventResign, map[string]string{"forfeitedBy": quitter})
	return o.RecordResult(ctx, sessionID, session.Opponent(quitter), payload)
}

// FlipResult is the outcome of a resolved coin-flip session.
type FlipResult struct {
	Outcome      coinflip.Outcome `json:"result"`
	RandomByte   byte             `json:"randomSeed"`
	WinnerWallet string           `json:"winner"`
	FeeLamports  int64            `json:"houseFeeLamports"`
	Payout       int64            `json:"winnerPayoutLamports"`
}

// FlipCoin resolves an active coin-flip session with one secure draw
// and settles it. Player A holds callA, player B callB.
func (o *Orchestrator) FlipCoin(ctx context.Context, sessionID uint, callA, callB string) (*FlipResult, error) {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.GameKind != models.KindCoinFlip {
		return nil, fmt.Errorf("%w: session is %s, not %s", ErrUnknownGameKind, session.GameKind, models.KindCoinFlip)
	}
	if session.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: session is %s, expected %s", ErrStaleSessionState, session.Status, models.StatusActive)
	}
	if !coinflip.ValidCall(callA) || !coinflip.ValidCall(callB) {
		return nil, fmt.Errorf("%w: want %q or %q", coinflip.ErrInvalidCall, coinflip.Heads, coinflip.Tails)
	}

	outcome, drawn, err := coinflip.Flip(o.entropy)
	if err != nil {
		return nil, err
	}
	winner := session.PlayerA
	if coinflip.Resolve(coinflip.Outcome(callA), coinflip.Outcome(callB), outcome) == 1 {
		winner = session.PlayerB
	}
	_, fee, payout := coinflip.Payout(session.WagerLamports)

	payload, _ := json.Marshal(map[string]interface{}{
		"result":        outcome,
		"player1Choice": callA,
		"player2Choice": callB,
		"randomByte":    drawn,
		"winner":        winner,
	})
	if _, err := o.RecordResult(ctx, sessionID, winner, payload); err != nil {
		return nil, err
	}
	return &FlipResult{
		Outcome:      outcome,
		RandomByte:   drawn,
		WinnerWallet: winner,
		FeeLamports:  fee,
		Payout:       payout,
	}, nil
}

// QueueStats reports matchmaking queue depth and wait estimates.
func (o *Orchestrator) QueueStats(ctx context.Context, kind string, wagerLamports int64) (*QueueStats, error) {
	return o.store.QueueStats(ctx, kind, wagerLamports)
}

// Leaderboard lists the top players by wins and earnings.
func (o *Orchestrator) Leaderboard(ctx context.Context, limit int) ([]models.User, error) {
	return o.store.Leaderboard(ctx, limit)
}

// publish is best-effort: push failures are logged, never propagated,
// because clients always have the polled record store to fall back on.
func (o *Orchestrator) publish(ctx context.Context, sessionID uint, event string, payload interface{}) {
	if o.channel == nil {
		return
	}
	if err := o.channel.Publish(ctx, sessionID, event, payload); err != nil {
		o.logger.Warn("realtime publish failed",
			zap.Uint("sessionID", sessionID),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

// sessionEvent shapes a session for channel payloads without leaking GORM
// bookkeeping columns.
func sessionEvent(s *models.GameSession) map[string]interface{} {
	return map[string]interface{}{
		"gameId":   s.ID,
		"gameKind": s.GameKind,
		"playerA":  s.PlayerA,
		"playerB":  s.PlayerB,
		"status":   s.Status,
		"wager":    models.LamportsToSol(s.WagerLamports),
		"winner":   s.WinnerWallet,
	}
}

// --- move exchange -------------------------------------------------

type checkersMove struct {
	From checkers.Position `json:"from"`
	To   checkers.Position `json:"to"`
}

type connectFourMove struct {
	Column int `json:"column"`
}

type chessMove struct {
	Move string `json:"move"`
}

// SubmitMove validates and applies one move on an active session's
// authoritative state blob, appends it to the move log, relays it over
// the channel and, when the move ends the game, settles the session.
// Player A always owns the first-moving color (red / white).
func (o *Orchestrator) SubmitMove(ctx context.Context, sessionID uint, wallet string, moveData json.RawMessage) (json.RawMessage, error) {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(wallet) {
		return nil, ErrNotParticipant
	}
	if session.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: session is %s, expected %s", ErrStaleSessionState, session.Status, models.StatusActive)
	}

	var (
		state  json.RawMessage
		winner string
		drawn  bool
	)
	switch session.GameKind {
	case models.KindCheckers:
		state, winner, err = o.applyCheckersMove(session, wallet, moveData)
	case models.KindConnectFour:
		state, winner, drawn, err = o.applyConnectFourMove(session, wallet, moveData)
	case models.KindChess:
		state, winner, drawn, err = o.applyChessMove(session, wallet, moveData)
	default:
		return nil, fmt.Errorf("%w: %s has no move exchange", ErrUnknownGameKind, session.GameKind)
	}
	if err != nil {
		return nil, err
	}

	if winner != "" || drawn {
		if _, err := o.RecordResult(ctx, sessionID, winner, state); err != nil {
			return nil, err
		}
	} else if err := o.store.UpdateSessionState(ctx, sessionID, models.StatusActive, state); err != nil {
		return nil, err
	}

	if err := o.store.RecordMove(ctx, &models.MoveRecord{
		GameSessionID: sessionID,
		PlayerWallet:  wallet,
		MoveData:      moveData,
	}); err != nil {
		o.logger.Warn("move log append failed", zap.Uint("sessionID", sessionID), zap.Error(err))
	}
	o.publish(ctx, sessionID, EventMove, map[string]interface{}{
		"wallet": wallet,
		"move":   json.RawMessage(moveData),
		"state":  json.RawMessage(state),
	})
	return state, nil
}

func (o *Orchestrator) applyCheckersMove(session *models.GameSession, wallet string, moveData json.RawMessage) (json.RawMessage, string, error) {
	var mv checkersMove
	if err := json.Unmarshal(moveData, &mv); err != nil {
		return nil, "", fmt.Errorf("%w: %v", checkers.ErrIllegalMove, err)
	}

	state := checkers.NewState()
	if len(session.State) > 0 {
		if err := json.Unmarshal(session.State, &state); err != nil {
			return nil, "", fmt.Errorf("decoding checkers state: %w", err)
		}
	}

	color := checkers.Red
	if wallet == session.PlayerB {
		color = checkers.Black
	}
	if state.Turn != color {
		return nil, "", fmt.Errorf("%w: not your turn", checkers.ErrIllegalMove)
	}

	next, err := state.Apply(mv.From, mv.To)
	if err != nil {
		return nil, "", err
	}
	blob, err := json.Marshal(next)
	if err != nil {
		return nil, "", err
	}
	if next.Status == checkers.Won {
		return blob, walletForColor(session, next.Winner == checkers.Red), nil
	}
	return blob, "", nil
}

func (o *Orchestrator) applyConnectFourMove(session *models.GameSession, wallet string, moveData json.RawMessage) (json.RawMessage, string, bool, error) {
	var mv connectFourMove
	if err := json.Unmarshal(moveData, &mv); err != nil {
		return nil, "", false, fmt.Errorf("%w: %v", connectfour.ErrIllegalMove, err)
	}

	state := connectfour.NewState()
	if len(session.State) > 0 {
		if err := json.Unmarshal(session.State, &state); err != nil {
			return nil, "", false, fmt.Errorf("decoding connect-four state: %w", err)
		}
	}

	color := connectfour.Red
	if wallet == session.PlayerB {
		color = connectfour.Yellow
	}
	if state.Turn != color {
		return nil, "", false, fmt.Errorf("%w: not your turn", connectfour.ErrIllegalMove)
	}

	next, err := state.Drop(mv.Column)
	if err != nil {
		return nil, "", false, err
	}
	blob, err := json.Marshal(next)
	if err != nil {
		return nil, "", false, err
	}
	switch next.Status {
	case connectfour.Won:
		return blob, walletForColor(session, next.Winner == connectfour.Red), false, nil
	case connectfour.Draw:
		return blob, "", true, nil
	}
	return blob, "", false, nil
}

func (o *Orchestrator) applyChessMove(session *models.GameSession, wallet string, moveData json.RawMessage) (json.RawMessage, string, bool, error) {
	var mv chessMove
	if err := json.Unmarshal(moveData, &mv); err != nil {
		return nil, "", false, fmt.Errorf("%w: %v", chessengine.ErrIllegalMove, err)
	}

	fen := chessengine.StartFEN()
	if len(session.State) > 0 {
		var snap chessengine.Snapshot
		if err := json.Unmarshal(session.State, &snap); err != nil {
			return nil, "", false, fmt.Errorf("decoding chess state: %w", err)
		}
		if snap.FEN != "" {
			fen = snap.FEN
		}
	}

	turn, err := chessengine.Turn(fen)
	if err != nil {
		return nil, "", false, err
	}
	side := chessengine.White
	if wallet == session.PlayerB {
		side = chessengine.Black
	}
	if turn != side {
		return nil, "", false, fmt.Errorf("%w: not your turn", chessengine.ErrIllegalMove)
	}

	snap, err := chessengine.Apply(fen, mv.Move)
	if err != nil {
		return nil, "", false, err
	}
	blob, err := json.Marshal(snap)
	if err != nil {
		return nil, "", false, err
	}
	switch snap.Outcome {
	case chessengine.White:
		return blob, session.PlayerA, false, nil
	case chessengine.Black:
		return blob, session.PlayerB, false, nil
	case chessengine.Drawn:
		return blob, "", true, nil
	}
	return blob, "", false, nil
}

// walletForColor maps the first-moving color to player A.
func walletForColor(session *models.GameSession, firstMover bool) string {
	if firstMover {
		return session.PlayerA
	}
	return session.PlayerB
}

// IsIllegalMove reports whether err is any engine's input rejection.
func IsIllegalMove(err error) bool {
	return errors.Is(err, checkers.ErrIllegalMove) ||
		errors.Is(err, connectfour.ErrIllegalMove) ||
		errors.Is(err, chessengine.ErrIllegalMove) ||
		errors.Is(err, coinflip.ErrInvalidCall)
}
