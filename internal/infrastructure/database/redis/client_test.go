package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/turtacn/ChemHammer/pkg/errors"
)

func TestNewClient_ConnectionFailed(t *testing.T) {
	client, err := NewClient(context.Background(), ClientConfig{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	}, nil)
	assert.Nil(t, client)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeCacheError))
}

func TestApplyDefaults(t *testing.T) {
	cfg := ClientConfig{}
	applyDefaults(&cfg)
	assert.Positive(t, cfg.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 3*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestClient_PingAndClose(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := NewClientFromUniversal(db, nil)

	mock.ExpectPing().SetVal("PONG")
	require.NoError(t, client.Ping(context.Background()))
	mock.ExpectPing().SetVal("PONG")
	require.NoError(t, client.Check(context.Background()))
	assert.Equal(t, "redis", client.Name())
	assert.Same(t, db, client.Underlying())

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	assert.True(t, errors.Is(client.Ping(context.Background()), ErrClientClosed))

	_, err := client.get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.ErrorIs(t, client.set(context.Background(), "k", "v", 0), ErrClientClosed)
	assert.ErrorIs(t, client.del(context.Background(), "k"), ErrClientClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
