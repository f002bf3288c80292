package events

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var nextSequenceSQL = regexp.QuoteMeta(`INSERT INTO event_sequences (partition_key, last_sequence, updated_at)`)

func TestNextSequence(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(nextSequenceSQL).
		WithArgs("cart-1").
		WillReturnRows(sqlmock.NewRows([]string{"last_sequence"}).AddRow(int64(7)))
	mock.ExpectCommit()

	seq, err := NewSequenceRepository(db).NextSequence(context.Background(), "cart-1")
	require.NoError(t, err)
	require.Equal(t, int64(7), seq)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNextSequenceRollsBackOnQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(nextSequenceSQL).
		WithArgs("cart-err").
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	_, err = NewSequenceRepository(db).NextSequence(context.Background(), "cart-err")
	require.Error(t, err)
	require.Contains(t, err.Error(), "increment sequence")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNextSequenceBeginError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("begin failed"))

	_, err = NewSequenceRepository(db).NextSequence(context.Background(), "cart-1")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNextSequenceRequiresPartitionKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSequenceRepository(db).NextSequence(context.Background(), "")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemorySequencesIncrementPerPartition(t *testing.T) {
	ctx := context.Background()
	seqs := NewMemorySequences()

	for want := int64(1); want <= 3; want++ {
		got, err := seqs.NextSequence(ctx, "cart-1")
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	got, err := seqs.NextSequence(ctx, "cart-2")
	require.NoError(t, err)
	require.Equal(t, int64(1), got)

	_, err = seqs.NextSequence(ctx, "")
	require.Error(t, err)
}
