package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"seatpao/internal/models"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmedMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := newValkeyClient(db, time.Hour)

	mock.ExpectGet("payments:confirmed:cs_1").RedisNil()

	confirmed, err := client.Confirmed(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Nil(t, confirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmedHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := newValkeyClient(db, time.Hour)

	mock.ExpectGet("payments:confirmed:cs_1").SetVal(`{"booking_id":"b-1","transaction_id":"pi_1"}`)

	confirmed, err := client.Confirmed(context.Background(), "cs_1")
	require.NoError(t, err)
	require.NotNil(t, confirmed)
	assert.Equal(t, "b-1", confirmed.BookingID)
	assert.Equal(t, "pi_1", confirmed.TransactionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmedError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := newValkeyClient(db, time.Hour)

	mock.ExpectGet("payments:confirmed:cs_1").SetErr(errors.New("connection refused"))

	_, err := client.Confirmed(context.Background(), "cs_1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkConfirmed(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := newValkeyClient(db, 72*time.Hour)

	mock.ExpectSet("payments:confirmed:cs_1", `{"booking_id":"b-1","transaction_id":"pi_1"}`, 72*time.Hour).SetVal("OK")

	err := client.MarkConfirmed(context.Background(), "cs_1", models.ConfirmedSession{BookingID: "b-1", TransactionID: "pi_1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
