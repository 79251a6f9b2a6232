package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/clubhub-dev/clubhub/internal/domain"
)

type State int

const (
	StateDisconnected State = iota
	StateJoining
	StateLive
)

func (s State) String() string {
	switch s {
	case StateJoining:
		return "joining"
	case StateLive:
		return "live"
	default:
		return "disconnected"
	}
}

// Lister fetches a page of root messages; in production this is the API
// client, in tests a stub.
type Lister interface {
	ListMessages(ctx context.Context, forum domain.ForumId, page int) ([]*domain.Message, error)
}

// Subscriber joins a forum room. The returned channel closes when the
// subscription ends (context cancel or transport failure).
type Subscriber interface {
	Subscribe(ctx context.Context, forum domain.ForumId) (<-chan domain.Event, error)
}

// Controller drives one forum view through Disconnected -> Joining -> Live.
// Any subscribe or fetch failure lands back in Disconnected: the session
// stays usable and the caller may simply Join again.
type Controller struct {
	lister     Lister
	subscriber Subscriber
	logger     *slog.Logger

	mu     sync.Mutex
	state  State
	forum  domain.ForumId
	roots  []*domain.Message
	cancel context.CancelFunc
	done   chan struct{}
}

func NewController(lister Lister, subscriber Subscriber, logger *slog.Logger) *Controller {
	return &Controller{
		lister:     lister,
		subscriber: subscriber,
		logger:     logger,
		state:      StateDisconnected,
	}
}

// Join subscribes to the forum's room and loads the first page. On any
// failure the controller tears the partial subscription down and reports the
// error; it never crashes the session.
func (c *Controller) Join(ctx context.Context, forum domain.ForumId) error {
	c.Leave()

	c.mu.Lock()
	c.state = StateJoining
	c.forum = forum
	c.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)

	// subscribe before the fetch so no event emitted in between is missed;
	// the idempotent merge absorbs any overlap
	events, err := c.subscriber.Subscribe(runCtx, forum)
	if err != nil {
		cancel()
		c.disconnect()
		c.logger.Warn("room subscription failed", "forum", forum, "error", err)
		return err
	}

	roots, err := c.lister.ListMessages(runCtx, forum, 1)
	if err != nil {
		cancel()
		c.disconnect()
		c.logger.Warn("initial fetch failed", "forum", forum, "error", err)
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.state = StateLive
	c.roots = roots
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go c.run(events, done)
	return nil
}

// Leave unsubscribes and releases local state. Safe to call in any state and
// on every exit path; the projection is rebuilt on the next Join.
func (c *Controller) Leave() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	c.disconnect()
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages returns the current projection snapshot.
func (c *Controller) Messages() []*domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roots
}

func (c *Controller) run(events <-chan domain.Event, done chan struct{}) {
	defer close(done)
	for ev := range events {
		c.mu.Lock()
		roots, err := Apply(c.roots, ev)
		c.roots = roots
		c.mu.Unlock()
		if err != nil {
			// desync: drop the event, a refetch on rejoin reconciles
			c.logger.Warn("dropping unmergeable event", "type", ev.Type, "forum", ev.Forum, "error", err)
		}
	}
	// channel closed underneath us: transport is gone
	c.disconnect()
}

func (c *Controller) disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateDisconnected
	c.roots = nil
}
