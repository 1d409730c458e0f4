package availability

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

var testDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func testDay() domain.DayAvailability {
	return domain.BuildDayAvailability(
		testDate,
		[]types.TimeString{"08:00", "09:00"},
		[]*domain.Reservation{{Time: "09:00", Status: domain.StatusPending}},
	)
}

func encoded(t *testing.T, version int64) []byte {
	t.Helper()
	data, err := json.Marshal(toCached(testDay(), version))
	require.NoError(t, err)
	return data
}

func TestCache_GetHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := New(db, time.Minute)

	mock.ExpectGet("availability:version:2025-03-10").SetVal("2")
	mock.ExpectGet("availability:2025-03-10").SetVal(string(encoded(t, 2)))

	day, version, err := cache.Get(context.Background(), testDate)

	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, testDay(), *day)
	assert.Equal(t, int64(2), version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := New(db, time.Minute)

	mock.ExpectGet("availability:version:2025-03-10").RedisNil()
	mock.ExpectGet("availability:2025-03-10").RedisNil()

	day, version, err := cache.Get(context.Background(), testDate)

	require.NoError(t, err)
	assert.Nil(t, day)
	assert.Equal(t, int64(0), version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetEntryFromOlderVersionIsMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := New(db, time.Minute)

	mock.ExpectGet("availability:version:2025-03-10").SetVal("3")
	mock.ExpectGet("availability:2025-03-10").SetVal(string(encoded(t, 2)))

	day, version, err := cache.Get(context.Background(), testDate)

	require.NoError(t, err)
	assert.Nil(t, day)
	assert.Equal(t, int64(3), version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := New(db, time.Minute)

	mock.ExpectGet("availability:version:2025-03-10").SetErr(errors.New("connection refused"))

	_, _, err := cache.Get(context.Background(), testDate)

	assert.ErrorIs(t, err, ErrCacheRead)
}

func TestCache_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := New(db, 5*time.Minute)

	mock.ExpectWatch("availability:version:2025-03-10")
	mock.ExpectGet("availability:version:2025-03-10").SetVal("4")
	mock.ExpectTxPipeline()
	mock.ExpectSet("availability:2025-03-10", encoded(t, 4), 5*time.Minute).SetVal("OK")
	mock.ExpectTxPipelineExec()

	require.NoError(t, cache.Set(context.Background(), testDay(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_SetSkippedWhenVersionChanged(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := New(db, 5*time.Minute)

	mock.ExpectWatch("availability:version:2025-03-10")
	mock.ExpectGet("availability:version:2025-03-10").SetVal("5")

	require.NoError(t, cache.Set(context.Background(), testDay(), 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_InvalidateBetweenReadAndFillKeepsStaleDayOut(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := New(db, time.Minute)
	ctx := context.Background()

	// читатель промахивается при версии 0
	mock.ExpectGet("availability:version:2025-03-10").RedisNil()
	mock.ExpectGet("availability:2025-03-10").RedisNil()
	// писатель фиксирует изменение и инвалидирует дату
	mock.ExpectIncr("availability:version:2025-03-10").SetVal(1)
	mock.ExpectDel("availability:2025-03-10").SetVal(0)
	// запоздалое заполнение видит новую версию и ничего не пишет
	mock.ExpectWatch("availability:version:2025-03-10")
	mock.ExpectGet("availability:version:2025-03-10").SetVal("1")
	// следующий читатель снова промахивается
	mock.ExpectGet("availability:version:2025-03-10").SetVal("1")
	mock.ExpectGet("availability:2025-03-10").RedisNil()

	day, version, err := cache.Get(ctx, testDate)
	require.NoError(t, err)
	require.Nil(t, day)

	require.NoError(t, cache.Invalidate(ctx, testDate))
	require.NoError(t, cache.Set(ctx, testDay(), version))

	day, version, err = cache.Get(ctx, testDate)
	require.NoError(t, err)
	assert.Nil(t, day)
	assert.Equal(t, int64(1), version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_InvalidateDeduplicatesDates(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := New(db, time.Minute)

	other := testDate.AddDate(0, 0, 1)
	mock.ExpectIncr("availability:version:2025-03-10").SetVal(1)
	mock.ExpectIncr("availability:version:2025-03-11").SetVal(1)
	mock.ExpectDel("availability:2025-03-10", "availability:2025-03-11").SetVal(1)

	err := cache.Invalidate(context.Background(), testDate, other, testDate.Add(10*time.Hour))

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoop(t *testing.T) {
	var c Noop

	day, _, err := c.Get(context.Background(), testDate)
	assert.NoError(t, err)
	assert.Nil(t, day)
	assert.NoError(t, c.Set(context.Background(), testDay(), 0))
	assert.NoError(t, c.Invalidate(context.Background(), testDate))
}
