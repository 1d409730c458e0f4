package txmanager

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func TestGetExecutor(t *testing.T) {
	db := &sqlx.DB{}
	tx := &sqlx.Tx{}

	ctx := context.Background()
	assert.False(t, IsInTransaction(ctx))
	assert.Same(t, db, GetExecutor(ctx, db))

	txCtx := WithTx(ctx, tx)
	assert.True(t, IsInTransaction(txCtx))
	assert.Same(t, tx, GetExecutor(txCtx, db))
}

func TestWithTx_NilIsNotATransaction(t *testing.T) {
	ctx := WithTx(context.Background(), nil)

	assert.False(t, IsInTransaction(ctx))
}
