package errors

import "fmt"

func InvalidParamsErr(err error) error {
	return E(Invalid, "invalid params", err)
}

func InvalidBodyErr(err error) error {
	return E(Invalid, "invalid request body", err)
}

func EmptyParamErr(field string) error {
	ve := ValidationErrs()
	ve.Add(field, "cannot be empty")
	return E(Invalid, "validation failed", ve.Err())
}

// InsufficientBalanceErr signals a withdrawal larger than the stored
// balance. Business rejection, never retried.
func InsufficientBalanceErr() error {
	return E(InsufficientBalance, "Insufficient balance.", nil)
}

// ConcurrentModificationErr signals that the watched balance changed
// between read and commit. Transient, retried by the step policy.
func ConcurrentModificationErr() error {
	return E(Conflict, "Balance was modified by another transaction. Please retry.", nil)
}

// UnsupportedTypeErr signals a transaction type the publisher has no
// channel for.
func UnsupportedTypeErr(txType string) error {
	return E(Unsupported, fmt.Sprintf("Unsupported transaction type: %s", txType), nil)
}

// TxNotFoundErr signals a status query for an unknown transaction id.
func TxNotFoundErr(id string) error {
	return E(NotFound, "Transaction not found.", fmt.Errorf("no execution record for %s", id))
}
