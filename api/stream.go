package api

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"medboard-api/domain"
)

// Per-subscriber buffer. A viewer that cannot drain this many events loses
// the overflow; there is no replay or backlog.
const subscriberBuffer = 64

const keepaliveInterval = 15 * time.Second

type event struct {
	Name    string
	Payload any
}

// Broker fans events out to connected SSE viewers. Each subscriber receives
// events in broadcast order; slow subscribers drop rather than block the
// broadcaster.
type Broker struct {
	logger *log.Logger

	mu   sync.Mutex
	subs map[chan event]struct{}
}

// NewBroker creates an empty broker.
func NewBroker(logger *log.Logger) *Broker {
	return &Broker{logger: logger, subs: make(map[chan event]struct{})}
}

func (b *Broker) subscribe() chan event {
	ch := make(chan event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) unsubscribe(ch chan event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Broadcast delivers the event to every current subscriber. Viewers that
// connect afterwards never see it.
func (b *Broker) Broadcast(name string, payload any) {
	ev := event{Name: name, Payload: payload}
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			if b.logger != nil {
				b.logger.WithField("event", name).Warn("slow stream subscriber, dropping event")
			}
		}
	}
	b.mu.Unlock()
}

func writeSSE(w io.Writer, name string, payload any) error {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}

// streamBoard serves the live event stream. Every new viewer first receives
// a board-state snapshot, then named events in broadcast order.
func streamBoard(store Storage, broker *Broker, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}

		ctx := c.Request().Context()
		ch := broker.subscribe()
		defer broker.unsubscribe(ch)

		items, err := store.LoadAll(ctx)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		if err := writeSSE(c.Response(), domain.EventBoardState, itemsResponse{Items: items}); err != nil {
			return err
		}
		flusher.Flush()

		keepalive := time.NewTicker(keepaliveInterval)
		defer keepalive.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-ch:
				if err := writeSSE(c.Response(), ev.Name, ev.Payload); err != nil {
					return err
				}
				flusher.Flush()
			case <-keepalive.C:
				if _, err := fmt.Fprint(c.Response(), ": keepalive\n\n"); err != nil {
					return err
				}
				flusher.Flush()
			}
		}
	}
}
