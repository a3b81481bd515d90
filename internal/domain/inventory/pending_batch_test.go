package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBatch(t *testing.T, quantities ...int) *PendingBatch {
	t.Helper()
	b, err := NewPendingBatch("AcmeCo", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	for i, q := range quantities {
		_, err := b.AddLine(uuid.New(), uuid.New(), q, i+1)
		require.NoError(t, err)
	}
	return b
}

func commitLines(b *PendingBatch) []CommitLine {
	lines := make([]CommitLine, len(b.Items))
	for i, it := range b.Items {
		lines[i] = CommitLine{LineID: it.ID, Quantity: it.Quantity}
	}
	return lines
}

func TestNewPendingBatch(t *testing.T) {
	b := newTestBatch(t, 10, 5)
	assert.Equal(t, BatchStatusPending, b.Status)
	assert.Len(t, b.Items, 2)
	assert.Equal(t, 15, b.TotalQuantity())
	assert.Equal(t, b.ID, b.Items[0].BatchID)

	_, err := NewPendingBatch(" ", time.Now())
	assert.Error(t, err)
	_, err = NewPendingBatch("AcmeCo", time.Time{})
	assert.Error(t, err)
}

func TestPendingBatch_AddLine(t *testing.T) {
	b := newTestBatch(t)
	_, err := b.AddLine(uuid.New(), uuid.New(), 0, 1)
	assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	assert.Empty(t, b.Items)
}

func TestPendingBatch_UpdateQuantities(t *testing.T) {
	t.Run("replaces every quantity", func(t *testing.T) {
		b := newTestBatch(t, 10, 5)
		err := b.UpdateQuantities(map[uuid.UUID]int{b.Items[0].ID: 7, b.Items[1].ID: 3})
		require.NoError(t, err)
		assert.Equal(t, 7, b.Items[0].Quantity)
		assert.Equal(t, 3, b.Items[1].Quantity)
	})

	t.Run("missing line rejects all", func(t *testing.T) {
		b := newTestBatch(t, 10, 5)
		err := b.UpdateQuantities(map[uuid.UUID]int{b.Items[0].ID: 7})
		require.Error(t, err)
		assert.Contains(t, err.Error(), b.Items[1].ID.String())
		assert.Equal(t, 10, b.Items[0].Quantity)
	})

	t.Run("non-positive quantity rejects all", func(t *testing.T) {
		b := newTestBatch(t, 10, 5)
		err := b.UpdateQuantities(map[uuid.UUID]int{b.Items[0].ID: 7, b.Items[1].ID: 0})
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
		assert.Equal(t, 10, b.Items[0].Quantity)
	})

	t.Run("terminal batch is frozen", func(t *testing.T) {
		b := newTestBatch(t, 10)
		require.NoError(t, b.Cancel())
		err := b.UpdateQuantities(map[uuid.UUID]int{b.Items[0].ID: 1})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestPendingBatch_PrepareCommit(t *testing.T) {
	t.Run("applies confirmed quantities", func(t *testing.T) {
		b := newTestBatch(t, 10, 5, 2)
		lines := commitLines(b)
		lines[1].Quantity = 6
		require.NoError(t, b.PrepareCommit(lines))
		assert.Equal(t, 6, b.Items[1].Quantity)
	})

	t.Run("omitted line is rejected", func(t *testing.T) {
		b := newTestBatch(t, 10, 5, 2)
		err := b.PrepareCommit(commitLines(b)[:2])
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeIDSetMismatch, de.Code)
		assert.Contains(t, err.Error(), "Submitted 2 lines")
	})

	t.Run("zero quantity counts as omitted", func(t *testing.T) {
		b := newTestBatch(t, 10, 5)
		lines := commitLines(b)
		lines[0].Quantity = 0
		assert.Error(t, b.PrepareCommit(lines))
		assert.Equal(t, 10, b.Items[0].Quantity)
	})

	t.Run("foreign line is rejected", func(t *testing.T) {
		b := newTestBatch(t, 10)
		lines := append(commitLines(b), CommitLine{LineID: uuid.New(), Quantity: 1})
		assert.Error(t, b.PrepareCommit(lines))
	})
}

func TestPendingBatch_Transitions(t *testing.T) {
	actor, err := identity.NewSystemUser("")
	require.NoError(t, err)
	now := time.Now()

	t.Run("pending to done", func(t *testing.T) {
		b := newTestBatch(t, 1)
		require.NoError(t, b.MarkDone(actor, now))
		assert.Equal(t, BatchStatusDone, b.Status)
		assert.Equal(t, &actor.ID, b.ProcessedByID)
		require.NotNil(t, b.ProcessedAt)
		assert.True(t, b.Status.IsTerminal())
		assert.Equal(t, 2, b.Version)
	})

	t.Run("pending to canceled", func(t *testing.T) {
		b := newTestBatch(t, 1)
		require.NoError(t, b.Cancel())
		assert.Equal(t, BatchStatusCanceled, b.Status)
		assert.Nil(t, b.ProcessedAt)
	})

	t.Run("terminal states do not move", func(t *testing.T) {
		done := newTestBatch(t, 1)
		require.NoError(t, done.MarkDone(actor, now))
		assert.ErrorIs(t, done.Cancel(), shared.ErrInvalidState)
		assert.ErrorIs(t, done.MarkDone(actor, now), shared.ErrInvalidState)

		canceled := newTestBatch(t, 1)
		require.NoError(t, canceled.Cancel())
		assert.ErrorIs(t, canceled.MarkDone(actor, now), shared.ErrInvalidState)
		assert.ErrorIs(t, canceled.PrepareCommit(commitLines(canceled)), shared.ErrInvalidState)
	})
}
