package broker

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrBrokerClosed = errors.New("broker: closed")
	ErrTopicEmpty   = errors.New("broker: topic must not be empty")
)

// Message is a single unit of work flowing through the broker.
type Message struct {
	Topic   string
	Payload []byte
}

// MessageBroker is a minimal in-process pub/sub broker used to decouple
// notification producers from delivery workers.
type MessageBroker struct {
	mu       sync.RWMutex
	subs     map[string][]chan Message
	closed   bool
	capacity int
	log      *logrus.Logger
}

// NewMessageBroker creates a broker whose subscriber channels hold up to
// capacity undelivered messages each.
func NewMessageBroker(capacity int) *MessageBroker {
	if capacity <= 0 {
		capacity = 64
	}
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	return &MessageBroker{
		subs:     make(map[string][]chan Message),
		capacity: capacity,
		log:      l,
	}
}

// Publish delivers a message to every subscriber of its topic. Slow
// subscribers with full buffers are skipped rather than blocking the
// producer.
func (b *MessageBroker) Publish(ctx context.Context, msg Message) error {
	if msg.Topic == "" {
		return ErrTopicEmpty
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBrokerClosed
	}

	for _, ch := range b.subs[msg.Topic] {
		select {
		case ch <- msg:
		case <-ctx.Done():
			return ctx.Err()
		default:
			b.log.WithField("topic", msg.Topic).Warn("dropping message for slow subscriber")
		}
	}
	return nil
}

// Subscribe returns a channel of messages for the topic and a cancel
// function that removes the subscription.
func (b *MessageBroker) Subscribe(topic string) (<-chan Message, func(), error) {
	if topic == "" {
		return nil, nil, ErrTopicEmpty
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, nil, ErrBrokerClosed
	}

	ch := make(chan Message, b.capacity)
	b.subs[topic] = append(b.subs[topic], ch)

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		chans := b.subs[topic]
		for i, c := range chans {
			if c == ch {
				b.subs[topic] = append(chans[:i], chans[i+1:]...)
				close(c)
				return
			}
		}
	}

	return ch, cancel, nil
}

// Close shuts the broker down and closes every subscriber channel.
func (b *MessageBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for topic, chans := range b.subs {
		for _, ch := range chans {
			close(ch)
		}
		delete(b.subs, topic)
	}
}
