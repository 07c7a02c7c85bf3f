// Package realtime carries change notifications from the write path to
// live read-model subscriptions. The feed rides on redis pub/sub: one
// channel per table, payloads are table/op/key triples and never row data.
// Consumers react by re-reading the whole filtered query.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"rewards/src/types"

	"github.com/redis/go-redis/v9"
)

// Publisher is the write-path half of the feed.
type Publisher interface {
	Publish(ctx context.Context, c types.Change) error
}

// Subscriber registers for change notifications on one table, optionally
// scoped to a single key (equality filter). Empty key matches everything.
type Subscriber interface {
	Subscribe(ctx context.Context, table string, key string) (<-chan types.Change, func())
}

type Feed struct {
	rd *redis.Client
}

func NewFeed(rd *redis.Client) *Feed {
	return &Feed{rd: rd}
}

func channelFor(table string) string {
	return fmt.Sprintf("realtime:%s", table)
}

func (f *Feed) Publish(ctx context.Context, c types.Change) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return f.rd.Publish(ctx, channelFor(c.Table), b).Err()
}

func (f *Feed) Subscribe(ctx context.Context, table string, key string) (<-chan types.Change, func()) {
	ps := f.rd.Subscribe(ctx, channelFor(table))
	out := make(chan types.Change, 16)
	done := make(chan struct{})

	go func() {
		defer close(out)
		ch := ps.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var c types.Change
				if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
					log.Printf("[realtime] Skipping undecodable notification on %s: %s\n", msg.Channel, err.Error())
					continue
				}
				if key != "" && c.Key != key {
					continue
				}
				select {
				case out <- c:
				default:
					// Slow consumer; dropping is fine, the next
					// notification triggers the same full reload.
					log.Printf("[realtime] Dropping notification for %s, consumer is behind\n", table)
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			if err := ps.Close(); err != nil {
				log.Printf("[realtime] Error closing subscription on %s: %s\n", table, err.Error())
			}
		})
	}
	return out, cancel
}
