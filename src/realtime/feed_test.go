package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"rewards/src/types"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestFeedPublishesToTableChannel(t *testing.T) {
	rd, mock := redismock.NewClientMock()
	feed := NewFeed(rd)

	c := types.Change{Table: "transactions", Op: types.CHANGE_UPDATE, Key: "u1"}
	payload, _ := json.Marshal(c)
	mock.ExpectPublish("realtime:transactions", payload).SetVal(1)

	err := feed.Publish(context.Background(), c)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
