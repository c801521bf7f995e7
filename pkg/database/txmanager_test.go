package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counterStore struct {
	value int
}

func (s *counterStore) Snapshot() any {
	return s.value
}

func (s *counterStore) Restore(snapshot any) {
	if v, ok := snapshot.(int); ok {
		s.value = v
	}
}

func TestMemoryTxManager(t *testing.T) {
	ctx := context.Background()

	t.Run("success commits", func(t *testing.T) {
		store := &counterStore{value: 1}
		txm := NewMemoryTxManager(store)

		err := txm.RunInTx(ctx, func(context.Context) error {
			store.value = 2
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, store.value)
	})

	t.Run("failure restores every store", func(t *testing.T) {
		a := &counterStore{value: 1}
		b := &counterStore{value: 10}
		txm := NewMemoryTxManager(a, b)

		boom := errors.New("midway failure")
		err := txm.RunInTx(ctx, func(context.Context) error {
			a.value = 2
			b.value = 20
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, a.value)
		assert.Equal(t, 10, b.value)
	})
}
