package store

import (
	"context"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// Topic identifies a set of rows a subscription depends on. Writes publish
// the topics they touched; subscriptions on those topics re-query and emit a
// fresh snapshot.
type Topic string

const (
	StudentsTopic Topic = "students"
	ClassesTopic  Topic = "classes"
)

func RosterTopic(classID string) Topic        { return Topic("roster/" + classID) }
func AttendanceTopic(classID string) Topic    { return Topic("attendance/" + classID) }
func AnnouncementsTopic(classID string) Topic { return Topic("announcements/" + classID) }

type subscriber struct {
	topics map[Topic]struct{}
	kick   chan struct{} // capacity 1; coalesces bursts of writes
}

type hub struct {
	subs *xsync.MapOf[uint64, *subscriber]
	next atomic.Uint64
}

func newHub() *hub {
	return &hub{subs: xsync.NewMapOf[uint64, *subscriber]()}
}

func (h *hub) register(topics []Topic) (uint64, *subscriber) {
	set := make(map[Topic]struct{}, len(topics))
	for _, t := range topics {
		set[t] = struct{}{}
	}
	sb := &subscriber{topics: set, kick: make(chan struct{}, 1)}
	id := h.next.Add(1)
	h.subs.Store(id, sb)
	return id, sb
}

func (h *hub) unregister(id uint64) {
	h.subs.Delete(id)
}

// publish never blocks: a subscriber whose kick slot is already full has a
// requery pending anyway.
func (h *hub) publish(topics ...Topic) {
	h.subs.Range(func(_ uint64, sb *subscriber) bool {
		for _, t := range topics {
			if _, ok := sb.topics[t]; ok {
				select {
				case sb.kick <- struct{}{}:
				default:
				}
				break
			}
		}
		return true
	})
}

// Subscription delivers full fresh snapshots of a query result until
// cancelled. Delivery is last-value-wins: if the consumer has not taken the
// previous snapshot yet it is replaced, never queued.
type Subscription[T any] struct {
	updates chan T
	cancel  context.CancelFunc
}

// Updates is closed once the subscription is cancelled (or its context ends).
func (s *Subscription[T]) Updates() <-chan T { return s.updates }

func (s *Subscription[T]) Cancel() { s.cancel() }

// Watch emits an initial snapshot of query and re-emits after every write
// published on any of topics. The delivery goroutine owns the updates
// channel; writers are never blocked by a slow consumer.
func Watch[T any](ctx context.Context, s *Store, topics []Topic, query func(context.Context) (T, error)) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{updates: make(chan T, 1), cancel: cancel}
	id, sb := s.hub.register(topics)

	go func() {
		defer close(sub.updates)
		defer s.hub.unregister(id)
		for {
			snap, err := query(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Warn().Err(err).Msg("subscription requery failed")
				}
			} else {
				replace(sub.updates, snap)
			}
			select {
			case <-ctx.Done():
				return
			case <-sb.kick:
			}
		}
	}()
	return sub
}

// replace puts snap into ch, displacing an unconsumed older snapshot.
func replace[T any](ch chan T, snap T) {
	select {
	case ch <- snap:
		return
	default:
	}
	select { // drop the stale snapshot if the consumer didn't beat us to it
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
