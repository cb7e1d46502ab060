package tracking

import (
	"log"
	"net/http"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/matst80/slask-builder/pkg/messaging"
)

type RabbitTracking struct {
	country    string
	connection *amqp.Connection
	outbound   *messaging.OutboundQueue[any]
}

const trackingTopic = "tracking"

func NewRabbitTracking(url, country string) (*RabbitTracking, error) {
	ret := RabbitTracking{
		connection: nil,
		country:    country,
	}
	err := ret.connect(url)
	if err != nil {
		return nil, err
	}
	ret.outbound = messaging.NewOutboundQueue(ret.publishBatch, 32)
	return &ret, nil
}

func (t *RabbitTracking) connect(url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	t.connection = conn
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	return messaging.DefineTopic(ch, "global", trackingTopic)
}

func (t *RabbitTracking) Close() error {
	return t.connection.Close()
}

// send only enqueues, delivery happens in publishBatch.
func (t *RabbitTracking) send(data any) {
	t.outbound.Add(data)
}

func (t *RabbitTracking) publishBatch(events []any) {
	for _, ev := range events {
		if err := messaging.SendChange(t.connection, "global", trackingTopic, ev); err != nil {
			log.Println("Error publishing tracking event: ", err)
		}
	}
}

type BaseEvent struct {
	SessionId int    `json:"session_id"`
	Country   string `json:"country,omitempty"`
	Context   string `json:"context,omitempty"`
	Event     uint16 `json:"event"`
}

type Session struct {
	*BaseEvent
	UserAgent    string `json:"user_agent,omitempty"`
	Ip           string `json:"ip,omitempty"`
	Language     string `json:"language,omitempty"`
	PragmaHeader string `json:"pragma,omitempty"`
}

type StepChoiceEvent struct {
	*BaseEvent
	Field string `json:"field"`
	Value string `json:"value"`
}

type ToggleEvent struct {
	*BaseEvent
	SlotKey string `json:"slot"`
	Item    uint   `json:"item"`
}

type AddToCartEvent struct {
	*BaseEvent
	SubmissionId string `json:"submission_id"`
	ItemCount    int    `json:"item_count"`
}

func (rt *RabbitTracking) TrackSession(sessionId int, r *http.Request) {
	ip := r.Header.Get("X-Real-Ip")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}

	rt.send(Session{
		BaseEvent:    &BaseEvent{Event: 0, SessionId: sessionId, Country: rt.country, Context: "b2c"},
		Language:     r.Header.Get("Accept-Language"),
		UserAgent:    r.UserAgent(),
		Ip:           ip,
		PragmaHeader: r.Header.Get("Pragma"),
	})
}

func (rt *RabbitTracking) TrackStepChoice(sessionId int, field string, value string) {
	rt.send(&StepChoiceEvent{
		BaseEvent: &BaseEvent{Event: 1, SessionId: sessionId, Country: rt.country, Context: "b2c"},
		Field:     field,
		Value:     value,
	})
}

func (rt *RabbitTracking) TrackToggle(sessionId int, slotKey string, variantId uint) {
	rt.send(&ToggleEvent{
		BaseEvent: &BaseEvent{Event: 2, SessionId: sessionId, Country: rt.country, Context: "b2c"},
		SlotKey:   slotKey,
		Item:      variantId,
	})
}

func (rt *RabbitTracking) TrackAddToCart(sessionId int, submissionId string, itemCount int) {
	rt.send(&AddToCartEvent{
		BaseEvent:    &BaseEvent{Event: 3, SessionId: sessionId, Country: rt.country, Context: "b2c"},
		SubmissionId: submissionId,
		ItemCount:    itemCount,
	})
}
