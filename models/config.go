package models

// Config holds connection settings loaded from config.json.
type Config struct {
	DBHost     string `json:"db_host"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_sslmode"`

	SolanaRPCURL  string `json:"solana_rpc_url"`
	SolanaNetwork string `json:"solana_network"` // "devnet" or "mainnet-beta"
	EscrowWallet  string `json:"escrow_wallet"`  // escrow account receiving deposits
	HouseWallet   string `json:"house_wallet"`   // receives the pot fee
}
