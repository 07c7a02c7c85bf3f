package lib

import (
	"fmt"
	"log"
	"os"

	"github.com/pusher/pusher-http-go/v5"
)

var pusherClient *pusher.Client

func GetPusherClient() *pusher.Client {
	if pusherClient != nil {
		return pusherClient
	}
	pusherClient = &pusher.Client{
		AppID:   os.Getenv("PUSHER_APP_ID"),
		Key:     os.Getenv("PUSHER_KEY"),
		Secret:  os.Getenv("PUSHER_SECRET"),
		Cluster: os.Getenv("PUSHER_CLUSTER"),
	}
	return pusherClient
}

// PusherTriggerUser pushes an event to one user's private channel. The
// mobile client binds to user-<uid> for instant transaction updates.
func PusherTriggerUser(uid string, event string, data any) {
	client := GetPusherClient()
	channel := fmt.Sprintf("user-%s", uid)
	if err := client.Trigger(channel, event, data); err != nil {
		log.Printf("[pusher] Error triggering %s on %s: %s\n", event, channel, err.Error())
	}
}
