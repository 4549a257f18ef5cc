package dbmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperation(t *testing.T) {
	assert.Equal(t, "select", operation("SELECT id FROM bookings"))
	assert.Equal(t, "insert", operation("  INSERT INTO bookings (id) VALUES ($1)"))
	assert.Equal(t, "commit", operation("COMMIT"))
	assert.Equal(t, "select", operation("SELECT(1)"))
	assert.Equal(t, "unknown", operation(""))
}

func TestGetExecutor_WithoutTx(t *testing.T) {
	db := &DB{}
	ctx := context.Background()

	assert.False(t, IsInTransaction(ctx))
	assert.Same(t, db, GetExecutor(ctx, db))
}

func TestGetExecutor_WithTx(t *testing.T) {
	db := &DB{}
	tx := &Tx{parent: db}
	ctx := WithTx(context.Background(), tx)

	assert.True(t, IsInTransaction(ctx))
	assert.Same(t, tx, GetExecutor(ctx, db))
}
