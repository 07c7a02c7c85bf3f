package lib

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisClient(t *testing.T) {
	client, mock := redismock.NewClientMock()
	rd := NewRedisClient(client)
	assert.Same(t, client, rd)
	assert.Same(t, client, GetRedisClient())

	mock.ExpectSet("user1:fcm", "token1", 0).SetVal("OK")
	err := rd.Set(context.Background(), "user1:fcm", "token1", 0).Err()
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
