package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var ErrPoolExhausted = errors.New("no channels available in pool")

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// ChannelPool keeps up to size channels on one connection, each with the
// durable queue already declared. Channels the broker closes are replaced
// on the next Get.
type ChannelPool struct {
	conn      *amqp.Connection
	open      func() (Channel, error)
	channels  chan Channel
	mu        sync.Mutex
	live      int
	size      int
	closed    bool
	queueName string
	log       *zap.Logger
}

func NewChannelPool(url, queueName string, size int, log *zap.Logger) (*ChannelPool, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	open := func() (Channel, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
			ch.Close()
			return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
		}
		return ch, nil
	}

	pool, err := newPool(size, queueName, open, log)
	if err != nil {
		conn.Close()
		return nil, err
	}
	pool.conn = conn

	log.Info("rabbitmq channel pool ready", zap.Int("size", pool.size), zap.String("queue", queueName))
	return pool, nil
}

func newPool(size int, queueName string, open func() (Channel, error), log *zap.Logger) (*ChannelPool, error) {
	if size <= 0 {
		size = 1
	}
	pool := &ChannelPool{
		open:      open,
		channels:  make(chan Channel, size),
		size:      size,
		queueName: queueName,
		log:       log,
	}
	for i := 0; i < size; i++ {
		ch, err := open()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("create channel %d: %w", i, err)
		}
		pool.live++
		pool.channels <- ch
	}
	return pool, nil
}

// Get takes an idle channel, or opens a new one while fewer than size are
// alive.
func (p *ChannelPool) Get() (Channel, error) {
	for {
		select {
		case ch, ok := <-p.channels:
			if !ok {
				return nil, ErrPoolExhausted
			}
			if !ch.IsClosed() {
				return ch, nil
			}
			p.discard()
		default:
			return p.grow()
		}
	}
}

func (p *ChannelPool) grow() (Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.live >= p.size {
		return nil, ErrPoolExhausted
	}
	ch, err := p.open()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p.live++
	return ch, nil
}

func (p *ChannelPool) discard() {
	p.mu.Lock()
	p.live--
	p.mu.Unlock()
}

// Put hands a channel back. A closed channel frees its slot for Get to
// refill; a surplus channel is closed.
func (p *ChannelPool) Put(ch Channel) {
	if ch == nil {
		return
	}
	if ch.IsClosed() {
		p.log.Warn("rabbitmq channel closed, slot will be reopened", zap.String("queue", p.queueName))
		p.discard()
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		ch.Close()
		p.live--
		return
	}
	select {
	case p.channels <- ch:
	default:
		ch.Close()
		p.live--
	}
}

func (p *ChannelPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true

	close(p.channels)
	for ch := range p.channels {
		ch.Close()
		p.live--
	}
	if p.conn != nil {
		p.conn.Close()
	}
	p.log.Info("rabbitmq channel pool closed")
}
