package ledger

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"solarena/lifecycle"
)

// SolanaLedger talks to a Solana RPC node. It never holds keys: escrow
// deposits are built unsigned here, signed client-side, and only
// verified server-side by signature.
type SolanaLedger struct {
	client  *rpc.Client
	logger  *zap.Logger
	network string
}

var _ lifecycle.Ledger = (*SolanaLedger)(nil)

func NewSolanaLedger(rpcURL, network string, logger *zap.Logger) *SolanaLedger {
	return &SolanaLedger{
		client:  rpc.New(rpcURL),
		logger:  logger,
		network: network,
	}
}

func (l *SolanaLedger) GetBalance(ctx context.Context, wallet string) (int64, error) {
	pubkey, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return 0, fmt.Errorf("invalid wallet address: %w", err)
	}
	out, err := l.client.GetBalance(ctx, pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, err
	}
	return int64(out.Value), nil
}

// CreateTransfer returns the base64-encoded unsigned transaction. The
// blockhash it carries expires after roughly a minute, so the client
// must sign and submit promptly.
func (l *SolanaLedger) CreateTransfer(ctx context.Context, from, to string, lamports int64) (string, error) {
	fromKey, err := solana.PublicKeyFromBase58(from)
	if err != nil {
		return "", fmt.Errorf("invalid sender address: %w", err)
	}
	toKey, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return "", fmt.Errorf("invalid recipient address: %w", err)
	}
	recent, err := l.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("fetch blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(uint64(lamports), fromKey, toKey).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(fromKey),
	)
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func (l *SolanaLedger) SubmitAndConfirm(ctx context.Context, signedTx string) (string, error) {
	sig, err := l.client.SendEncodedTransaction(ctx, signedTx)
	if err != nil {
		return "", fmt.Errorf("broadcast transaction: %w", err)
	}

	// Poll until the cluster confirms or the deadline hits.
	deadline := time.Now().Add(45 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return sig.String(), ctx.Err()
		case <-time.After(2 * time.Second):
		}
		statuses, err := l.client.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			l.logger.Warn("signature status poll failed", zap.Error(err))
			continue
		}
		if len(statuses.Value) == 0 || statuses.Value[0] == nil {
			continue
		}
		st := statuses.Value[0]
		if st.Err != nil {
			return sig.String(), fmt.Errorf("transaction failed on chain: %v", st.Err)
		}
		if st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
			return sig.String(), nil
		}
	}
	return sig.String(), fmt.Errorf("transaction %s not confirmed before deadline", sig)
}

func (l *SolanaLedger) VerifyTransfer(ctx context.Context, reference string) (lifecycle.TransferStatus, error) {
	sig, err := solana.SignatureFromBase58(reference)
	if err != nil {
		return lifecycle.TransferFailed, fmt.Errorf("invalid transaction signature: %w", err)
	}
	maxVersion := uint64(0)
	tx, err := l.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if err != nil {
		l.logger.Info("transaction lookup failed",
			zap.String("signature", reference), zap.Error(err))
		return lifecycle.TransferNotFound, nil
	}
	if tx == nil || tx.Meta == nil {
		return lifecycle.TransferNotFound, nil
	}
	if tx.Meta.Err != nil {
		return lifecycle.TransferFailed, nil
	}
	return lifecycle.TransferSucceeded, nil
}

func (l *SolanaLedger) RequestTestFunds(ctx context.Context, wallet string, lamports int64) (string, error) {
	if l.network == "mainnet-beta" {
		return "", fmt.Errorf("airdrops are not available on %s", l.network)
	}
	pubkey, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return "", fmt.Errorf("invalid wallet address: %w", err)
	}
	sig, err := l.client.RequestAirdrop(ctx, pubkey, uint64(lamports), rpc.CommitmentConfirmed)
	if err != nil {
		return "", err
	}
	return sig.String(), nil
}
