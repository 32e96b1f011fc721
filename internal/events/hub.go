// Package events fans post and approval changes out to subscribers and
// streams them back to calendar clients.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"postplanner/internal/common"
)

const queueSize = 1000

// Hub is the process-wide common.Subject. NotifyAsync hands events to a
// fixed pool of workers; Notify runs observers on the caller's goroutine.
type Hub struct {
	observers  map[string]common.Observer
	queue      chan common.ChangeEvent
	workerPool int
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.RWMutex
	wg         sync.WaitGroup
	once       sync.Once
	log        *zap.Logger
}

func NewHub(workerPoolSize int, log *zap.Logger) *Hub {
	if workerPoolSize <= 0 {
		workerPoolSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		observers:  make(map[string]common.Observer),
		queue:      make(chan common.ChangeEvent, queueSize),
		workerPool: workerPoolSize,
		ctx:        ctx,
		cancel:     cancel,
		log:        log,
	}

	for i := 0; i < workerPoolSize; i++ {
		h.wg.Add(1)
		go h.processEvents()
	}

	return h
}

func (h *Hub) Subscribe(observer common.Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers[observer.Name()] = observer
	h.log.Info("observer subscribed", zap.String("observer", observer.Name()))
}

func (h *Hub) Unsubscribe(observer common.Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.observers, observer.Name())
	h.log.Info("observer unsubscribed", zap.String("observer", observer.Name()))
}

func (h *Hub) Notify(event common.ChangeEvent) {
	h.mu.RLock()
	observers := make([]common.Observer, 0, len(h.observers))
	for _, obs := range h.observers {
		observers = append(observers, obs)
	}
	h.mu.RUnlock()

	for _, observer := range observers {
		if err := observer.Update(event); err != nil {
			h.log.Warn("observer update failed",
				zap.String("observer", observer.Name()),
				zap.String("event", string(event.Type)),
				zap.Error(err))
		}
	}
}

// NotifyAsync never blocks; a full queue drops the event.
func (h *Hub) NotifyAsync(event common.ChangeEvent) {
	select {
	case <-h.ctx.Done():
		return
	default:
	}

	select {
	case h.queue <- event:
	case <-h.ctx.Done():
	default:
		h.log.Warn("event queue full, dropping event",
			zap.String("event", string(event.Type)),
			zap.String("team_id", event.TeamID))
	}
}

func (h *Hub) processEvents() {
	defer h.wg.Done()

	for {
		select {
		case event := <-h.queue:
			h.Notify(event)
		case <-h.ctx.Done():
			h.drain()
			return
		}
	}
}

// drain delivers whatever is still queued at shutdown.
func (h *Hub) drain() {
	for {
		select {
		case event := <-h.queue:
			h.Notify(event)
		default:
			return
		}
	}
}

// Shutdown stops the workers after the queue is drained. It is safe to call twice.
func (h *Hub) Shutdown() {
	h.once.Do(func() {
		h.cancel()
		h.wg.Wait()
		h.log.Info("event hub shutdown complete")
	})
}
