package lifecycle

import "context"

// TransferStatus is the ledger's verdict on a transfer reference.
type TransferStatus string

const (
	TransferSucceeded TransferStatus = "succeeded"
	TransferFailed    TransferStatus = "failed"
	TransferNotFound  TransferStatus = "not-found"
)

// Ledger is the blockchain collaborator. Amounts are lamports. The
// orchestrator only ever consumes verdicts; custody and signing stay
// with the client wallet.
type Ledger interface {
	GetBalance(ctx context.Context, wallet string) (int64, error)

	// CreateTransfer builds an unsigned transfer, returned serialized
	// for the client wallet to sign.
	CreateTransfer(ctx context.Context, from, to string, lamports int64) (string, error)

	// SubmitAndConfirm broadcasts a signed transaction and waits,
	// bounded, for confirmation. The returned reference is what
	// VerifyTransfer accepts later.
	SubmitAndConfirm(ctx context.Context, signedTx string) (string, error)

	VerifyTransfer(ctx context.Context, reference string) (TransferStatus, error)

	// RequestTestFunds airdrops lamports on test networks.
	RequestTestFunds(ctx context.Context, wallet string, lamports int64) (string, error)
}
