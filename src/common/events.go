package common

import (
	"context"
	"fmt"
	"log"
	"pbs/src/lib"
	"pbs/src/types"

	"firebase.google.com/go/v4/messaging"
)

// Publisher is the lifecycle event side channel. Exactly one event goes out
// per state transition; a lost event never affects lifecycle correctness.
type Publisher interface {
	Publish(topic string, event string, payload types.JSONB)
}

type sideChannelPublisher struct{}

func (sideChannelPublisher) Publish(topic string, event string, payload types.JSONB) {
	body := types.JSONB{"event": event}
	for k, v := range payload {
		body[k] = v
	}
	go func() {
		if err := lib.KafkaProduceMessage(fmt.Sprintf("%s_producer", topic), topic, body); err != nil {
			log.Printf("[events] Error producing %s to %s: %s\n", event, topic, err.Error())
		}
	}()
	go func() {
		if err := lib.PusherTrigger(topic, event, body); err != nil {
			log.Printf("[events] Error triggering pusher event %s: %s\n", event, err.Error())
		}
	}()
}

var publisher Publisher = sideChannelPublisher{}

// UsePublisher Replace publisher instance with custom implementation
func UsePublisher(p Publisher) {
	publisher = p
}

func PublishTransition(topic string, event string, payload types.JSONB) {
	publisher.Publish(topic, event, payload)
}

// Notifier delivers the human-facing side of a transition to one party. Best
// effort like the event publisher.
type Notifier interface {
	Notify(uid string, email string, title string, bodyText string)
}

type fanoutNotifier struct{}

// Notify pushes an FCM message and an email. Both channels are best effort
// and never block or fail a transition.
func (fanoutNotifier) Notify(uid string, email string, title string, bodyText string) {
	go func() {
		if email == "" {
			return
		}
		if err := lib.SendMailMessage(email, title, bodyText); err != nil {
			log.Printf("[notify] Error sending mail to %s: %s\n", email, err.Error())
		}
	}()
	go func() {
		if uid == "" {
			return
		}
		rd := lib.GetRedisClient()
		if rd == nil {
			return
		}
		token := rd.JSONGet(context.Background(), fmt.Sprintf("%s:fcm", uid), "$.token").Val()
		if token == "" {
			return
		}
		fcm, err := lib.GetFirebaseMessaging()
		if err != nil {
			log.Printf("[notify] Could not retrieve FCM instance: %s\n", err.Error())
			return
		}
		_, err = fcm.Send(context.Background(), &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  bodyText,
			},
		})
		if err != nil {
			log.Printf("[notify] Error sending push to %s: %s\n", uid, err.Error())
		}
	}()
}

var notifier Notifier = fanoutNotifier{}

// UseNotifier Replace notifier instance with custom implementation
func UseNotifier(n Notifier) {
	notifier = n
}

func NotifyUser(uid string, email string, title string, bodyText string) {
	notifier.Notify(uid, email, title, bodyText)
}
