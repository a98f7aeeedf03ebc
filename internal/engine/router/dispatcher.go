package router

import (
	"context"
	"sync"

	"gastino/internal/common/logger"
	"gastino/internal/models"
)

// Processor routes one inbound message end to end.
type Processor interface {
	Process(ctx context.Context, msg *models.InboundMessage)
}

// Dispatcher fans inbound messages out across conversations while keeping
// each conversation strictly in receipt order. One goroutine drains one
// conversation key at a time; distinct keys run concurrently.
type Dispatcher struct {
	processor Processor
	logger    logger.Logger

	mu     sync.Mutex
	queues map[string][]*models.InboundMessage
	active map[string]bool
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(p Processor, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		processor: p,
		logger:    log,
		queues:    make(map[string][]*models.InboundMessage),
		active:    make(map[string]bool),
	}
}

// dispatchKey identifies one conversation: the tenant channel plus the guest,
// or the staff group for group messages.
func dispatchKey(msg *models.InboundMessage) string {
	if msg.GroupID != "" {
		return msg.ChannelID + "|" + msg.GroupID
	}
	return msg.ChannelID + "|" + msg.From
}

// Submit enqueues a message for its conversation. Returns false once the
// dispatcher is shutting down.
func (d *Dispatcher) Submit(msg *models.InboundMessage) bool {
	key := dispatchKey(msg)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("message rejected during shutdown", map[string]interface{}{
			"channel_id": msg.ChannelID,
		})
		return false
	}
	d.queues[key] = append(d.queues[key], msg)
	if !d.active[key] {
		d.active[key] = true
		d.wg.Add(1)
		go d.drain(key)
	}
	d.mu.Unlock()
	return true
}

// drain processes one conversation's queue to exhaustion, then parks.
func (d *Dispatcher) drain(key string) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		queue := d.queues[key]
		if len(queue) == 0 {
			d.active[key] = false
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		msg := queue[0]
		d.queues[key] = queue[1:]
		d.mu.Unlock()

		d.processor.Process(context.Background(), msg)
	}
}

// Shutdown stops accepting messages and waits for in-flight conversations to
// drain, bounded by ctx.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
