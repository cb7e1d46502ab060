package messaging

import (
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/matst80/slask-builder/pkg/cart"
)

// RabbitNotifier broadcasts cart notifications after successful
// submissions. Publishing is fire-and-forget; errors are logged and
// never reach the shopper.
type RabbitNotifier struct {
	prefix     string
	connection *amqp.Connection
}

func NewRabbitNotifier(url, prefix string) (*RabbitNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := DefineTopic(ch, prefix, CartChanged); err != nil {
		conn.Close()
		return nil, err
	}
	if err := DefineTopic(ch, prefix, ItemAdded); err != nil {
		conn.Close()
		return nil, err
	}
	return &RabbitNotifier{
		prefix:     prefix,
		connection: conn,
	}, nil
}

func (n *RabbitNotifier) CartChanged(snapshot *cart.Snapshot) {
	if err := SendChange(n.connection, n.prefix, CartChanged, snapshot); err != nil {
		log.Printf("failed to publish cart_changed: %v", err)
	}
}

func (n *RabbitNotifier) ItemAdded(snapshot *cart.Snapshot) {
	if err := SendChange(n.connection, n.prefix, ItemAdded, snapshot); err != nil {
		log.Printf("failed to publish item_added: %v", err)
	}
}

// OnCatalogUpdated invokes fn for every catalog update announcement.
// Listening runs in the background for the lifetime of the connection.
func (n *RabbitNotifier) OnCatalogUpdated(fn func()) error {
	ch, err := n.connection.Channel()
	if err != nil {
		return err
	}
	if err := DefineTopic(ch, n.prefix, CatalogUpdated); err != nil {
		ch.Close()
		return err
	}
	return ListenToTopic(ch, n.prefix, CatalogUpdated, func(d amqp.Delivery) error {
		fn()
		return nil
	})
}

func (n *RabbitNotifier) Close() error {
	return n.connection.Close()
}
