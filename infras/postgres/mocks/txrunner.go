package mocks

import (
	"context"
	"medsched/infras/postgres"

	"github.com/jmoiron/sqlx"
)

type txRunnerImpl struct {
}

// WithTx implements postgres.TxRunner. The callback runs with a nil
// transaction; repository mocks never dereference it.
func (t *txRunnerImpl) WithTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func NewTxRunner() postgres.TxRunner {
	return &txRunnerImpl{}
}
