package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocpp-platform/ocpp-runtime/internal/config"
	"github.com/ocpp-platform/ocpp-runtime/internal/storage"
)

func TestNewRedisStorage(t *testing.T) {
	cfg := config.RedisConfig{
		Addr:     "localhost:6379",
		Password: "",
		DB:       0,
	}

	// NewRedisStorage pings on construction; this only exercises the
	// happy path against a reachable local Redis. Connection-failure
	// behavior belongs in integration tests.
	store, err := storage.NewRedisStorage(cfg)
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.NotNil(t, store.Client)

	err = store.Close()
	assert.NoError(t, err)
}

func TestRedisStorage_SetGetDeleteConnection(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rdb := &storage.RedisStorage{Client: db, Prefix: "affinity:"}
	ctx := context.Background()

	chargePointID := "CP001"
	instanceID := "centralsystem-0"
	ttl := 5 * time.Minute
	key := "affinity:CP001"

	mock.ExpectSet(key, instanceID, ttl).SetVal("OK")
	err := rdb.SetConnection(ctx, chargePointID, instanceID, ttl)
	require.NoError(t, err)

	mock.ExpectGet(key).SetVal(instanceID)
	retrieved, err := rdb.GetConnection(ctx, chargePointID)
	require.NoError(t, err)
	assert.Equal(t, instanceID, retrieved)

	mock.ExpectGet(key).SetErr(redis.Nil)
	retrieved, err = rdb.GetConnection(ctx, chargePointID)
	assert.ErrorIs(t, err, redis.Nil)
	assert.Empty(t, retrieved)

	mock.ExpectDel(key).SetVal(1)
	err = rdb.DeleteConnection(ctx, chargePointID)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorage_RefreshConnection(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rdb := &storage.RedisStorage{Client: db, Prefix: "affinity:"}
	ctx := context.Background()

	key := "affinity:CP005"
	ttl := 5 * time.Minute

	mock.ExpectExpire(key, ttl).SetVal(true)
	err := rdb.RefreshConnection(ctx, "CP005", "centralsystem-0", ttl)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorage_RefreshConnection_RecreatesExpiredEntry(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rdb := &storage.RedisStorage{Client: db, Prefix: "affinity:"}
	ctx := context.Background()

	key := "affinity:CP006"
	instanceID := "centralsystem-0"
	ttl := 5 * time.Minute

	mock.ExpectExpire(key, ttl).SetVal(false)
	mock.ExpectSet(key, instanceID, ttl).SetVal("OK")
	err := rdb.RefreshConnection(ctx, "CP006", instanceID, ttl)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorage_SetConnection_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rdb := &storage.RedisStorage{Client: db, Prefix: "affinity:"}
	ctx := context.Background()

	key := "affinity:CP002"
	expectedErr := errors.New("redis set error")
	mock.ExpectSet(key, "centralsystem-0", 5*time.Minute).SetErr(expectedErr)
	err := rdb.SetConnection(ctx, "CP002", "centralsystem-0", 5*time.Minute)
	assert.ErrorIs(t, err, expectedErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorage_GetConnection_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rdb := &storage.RedisStorage{Client: db, Prefix: "affinity:"}
	ctx := context.Background()

	key := "affinity:CP003"
	expectedErr := errors.New("redis get error")
	mock.ExpectGet(key).SetErr(expectedErr)
	retrieved, err := rdb.GetConnection(ctx, "CP003")
	assert.ErrorIs(t, err, expectedErr)
	assert.Empty(t, retrieved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorage_DeleteConnection_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rdb := &storage.RedisStorage{Client: db, Prefix: "affinity:"}
	ctx := context.Background()

	key := "affinity:CP004"
	expectedErr := errors.New("redis del error")
	mock.ExpectDel(key).SetErr(expectedErr)
	err := rdb.DeleteConnection(ctx, "CP004")
	assert.ErrorIs(t, err, expectedErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorage_Close(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rdb := &storage.RedisStorage{Client: db, Prefix: "affinity:"}

	err := rdb.Close()
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
