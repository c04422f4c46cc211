package lib

import (
	"os"

	"github.com/pusher/pusher-http-go/v5"
)

var pusherClient *pusher.Client

// NewPusherClient Override the pusher client instance
func NewPusherClient(c *pusher.Client) {
	pusherClient = c
}

func GetPusherClient() *pusher.Client {
	if pusherClient != nil {
		return pusherClient
	}
	pusherClient = &pusher.Client{
		AppID:   os.Getenv("PUSHER_APP_ID"),
		Key:     os.Getenv("PUSHER_KEY"),
		Secret:  os.Getenv("PUSHER_SECRET"),
		Cluster: os.Getenv("PUSHER_CLUSTER"),
		Secure:  true,
	}
	return pusherClient
}

// PusherTrigger sends one event on a channel, initializing the client lazily.
func PusherTrigger(channel string, event string, data any) error {
	return GetPusherClient().Trigger(channel, event, data)
}
