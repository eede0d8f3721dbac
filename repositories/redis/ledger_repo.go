package redis

import (
	// Go Internal Packages
	"context"
	stderrors "errors"
	"fmt"
	"sort"

	// Local Packages
	errors "tx-pipeline/errors"
	models "tx-pipeline/models"

	// External Packages
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerRepository stores per-wallet balances as a redis hash keyed by
// "wallet:{walletId}:cryptos" with one field per symbol. A balance of
// exactly zero is represented by field absence, never a stored zero.
type LedgerRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewLedgerRepository(client *redis.Client, logger *zap.Logger) *LedgerRepository {
	return &LedgerRepository{client: client, logger: logger}
}

func balanceKey(walletID string) string {
	return fmt.Sprintf("wallet:%s:cryptos", walletID)
}

// Deposit increments the stored balance unconditionally. Increments
// are commutative, so no conflict detection is needed.
func (r *LedgerRepository) Deposit(ctx context.Context, walletID, symbol string, amount decimal.Decimal) error {
	err := r.client.HIncrByFloat(ctx, balanceKey(walletID), symbol, amount.InexactFloat64()).Err()
	if err != nil {
		return errors.E(errors.Internal, "failed to credit balance", err)
	}
	return nil
}

// Withdraw debits the stored balance under optimistic concurrency:
// the key is watched, the balance read and checked, and the debit
// committed in a transaction that aborts if the key was modified in
// between. A debit that drives the balance to zero or below deletes
// the field instead of storing the remainder.
func (r *LedgerRepository) Withdraw(ctx context.Context, walletID, symbol string, amount decimal.Decimal) error {
	key := balanceKey(walletID)

	txf := func(tx *redis.Tx) error {
		current, err := r.readBalance(ctx, tx, key, symbol)
		if err != nil {
			return err
		}

		if current.LessThan(amount) {
			r.logger.Warn("insufficient balance",
				zap.String("wallet_id", walletID),
				zap.String("symbol", symbol),
				zap.String("current", current.String()),
				zap.String("requested", amount.String()))
			return errors.InsufficientBalanceErr()
		}

		newBalance := current.Sub(amount)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if newBalance.LessThanOrEqual(decimal.Zero) {
				pipe.HDel(ctx, key, symbol)
			} else {
				pipe.HSet(ctx, key, symbol, newBalance.String())
			}
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txf, key)
	if stderrors.Is(err, redis.TxFailedErr) {
		return errors.ConcurrentModificationErr()
	}
	return err
}

// Balances returns every (symbol, balance) pair of a wallet, sorted by
// symbol, balances rendered with two fractional digits.
func (r *LedgerRepository) Balances(ctx context.Context, walletID string) ([]models.Asset, error) {
	entries, err := r.client.HGetAll(ctx, balanceKey(walletID)).Result()
	if err != nil {
		return nil, errors.E(errors.Internal, "failed to read balances", err)
	}

	assets := make([]models.Asset, 0, len(entries))
	for symbol, balance := range entries {
		d, err := decimal.NewFromString(balance)
		if err != nil {
			r.logger.Error("unparseable stored balance",
				zap.String("wallet_id", walletID), zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		assets = append(assets, models.Asset{Symbol: symbol, Balance: d.StringFixed(2)})
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Symbol < assets[j].Symbol })
	return assets, nil
}

func (r *LedgerRepository) readBalance(ctx context.Context, tx *redis.Tx, key, symbol string) (decimal.Decimal, error) {
	raw, err := tx.HGet(ctx, key, symbol).Result()
	if stderrors.Is(err, redis.Nil) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, errors.E(errors.Internal, "failed to read balance", err)
	}
	current, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.E(errors.Internal, "unparseable stored balance", err)
	}
	return current, nil
}
