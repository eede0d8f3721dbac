package models

// Transaction types accepted by the pipeline.
const (
	TypeDeposit  = "deposit"
	TypeWithdraw = "withdraw"
)

// TransactionRequest is the immutable input of one pipeline run,
// identified externally by a caller-generated transaction id.
type TransactionRequest struct {
	WalletID string `json:"wallet_id" bson:"wallet_id"`
	Symbol   string `json:"symbol" bson:"symbol"`
	Amount   string `json:"amount" bson:"amount"`
	Type     string `json:"type" bson:"type"`
}

// Asset is one (symbol, balance) pair of a wallet, balance rendered
// with two fractional digits.
type Asset struct {
	Symbol  string `json:"symbol"`
	Balance string `json:"balance"`
}
