// Package execution implements the message-passing execution client: a
// single-consumer processing loop fed by a concurrent FIFO queue, bridging
// typed commands and events to the serialized request/subscription channels
// of an external execution service.
package execution

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"golang.org/x/time/rate"

	"github.com/chadury2021/nautilus-trader-s/errs"
	"github.com/chadury2021/nautilus-trader-s/internal/account"
	"github.com/chadury2021/nautilus-trader-s/internal/bus"
	"github.com/chadury2021/nautilus-trader-s/internal/clock"
	"github.com/chadury2021/nautilus-trader-s/internal/codec"
	"github.com/chadury2021/nautilus-trader-s/internal/message"
	"github.com/chadury2021/nautilus-trader-s/internal/strategy"
	"github.com/chadury2021/nautilus-trader-s/internal/transport"
)

const subscribeMaxBackoff = 30 * time.Second

// State tracks the client lifecycle: Created -> Connected -> Disconnected ->
// Disposed. Connect and Disconnect are idempotent; Dispose is idempotent and
// terminal.
type State string

const (
	// StateCreated is the initial state after New.
	StateCreated State = "created"
	// StateConnected means both transport workers and the loop are running.
	StateConnected State = "connected"
	// StateDisconnected means the workers and loop are stopped.
	StateDisconnected State = "disconnected"
	// StateDisposed means transport resources are released; terminal.
	StateDisposed State = "disposed"
)

// Config carries the client's own settings. QueueSize <= 0 selects an
// unbounded queue (the original live-trading default); the queue then grows
// without limit under sustained overload. CommandsPerSecond throttles
// outbound sends; 0 disables throttling.
type Config struct {
	Endpoint          transport.Endpoint
	QueueSize         int
	CommandsPerSecond float64
}

// Options injects every collaborator explicitly; there are no shared mutable
// defaults.
type Options struct {
	Clock        clock.Clock
	Commands     codec.CommandCodec
	Events       codec.EventCodec
	Responses    codec.ResponseCodec
	Requests     transport.RequestChannel
	Subscription transport.SubscriptionChannel
	Strategies   *strategy.Registry
	Account      *account.Account
	Portfolio    *account.Portfolio
	Logger       *log.Logger
}

// Client bridges typed domain commands and events to an external execution
// service, enforcing a single total order over command execution and event
// handling.
type Client struct {
	cfg   Config
	clock clock.Clock

	commands  codec.CommandCodec
	events    codec.EventCodec
	responses codec.ResponseCodec

	requests     transport.RequestChannel
	subscription transport.SubscriptionChannel
	strategies   *strategy.Registry

	// Account and portfolio are opaque pass-through state for the strategy
	// layer; the client never inspects their contents.
	account   *account.Account
	portfolio *account.Portfolio

	logger  *log.Logger
	queue   *bus.Queue
	limiter *rate.Limiter
	metrics *clientMetrics

	mu         sync.Mutex
	state      State
	loopCancel context.CancelFunc
	loop       *conc.WaitGroup

	pendingMu sync.Mutex
	pending   map[uuid.UUID]time.Time
}

// New validates the configuration and dependencies and constructs a client in
// the Created state.
func New(cfg Config, opts Options) (*Client, error) {
	if err := cfg.Endpoint.Validate(); err != nil {
		return nil, err
	}
	if cfg.CommandsPerSecond < 0 {
		return nil, errs.New("execution", errs.CodeInvalidConfig,
			errs.WithMessage("commands per second must not be negative"))
	}
	for _, dep := range []struct {
		name    string
		missing bool
	}{
		{"clock", opts.Clock == nil},
		{"command codec", opts.Commands == nil},
		{"event codec", opts.Events == nil},
		{"response codec", opts.Responses == nil},
		{"request channel", opts.Requests == nil},
		{"subscription channel", opts.Subscription == nil},
		{"strategy registry", opts.Strategies == nil},
		{"account", opts.Account == nil},
		{"portfolio", opts.Portfolio == nil},
		{"logger", opts.Logger == nil},
	} {
		if dep.missing {
			return nil, errs.New("execution", errs.CodeInvalidConfig,
				errs.WithMessage(dep.name+" required"))
		}
	}

	var limiter *rate.Limiter
	if cfg.CommandsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.CommandsPerSecond), 1)
	}

	return &Client{
		cfg:          cfg,
		clock:        opts.Clock,
		commands:     opts.Commands,
		events:       opts.Events,
		responses:    opts.Responses,
		requests:     opts.Requests,
		subscription: opts.Subscription,
		strategies:   opts.Strategies,
		account:      opts.Account,
		portfolio:    opts.Portfolio,
		logger:       opts.Logger,
		queue:        bus.NewQueue(cfg.QueueSize),
		limiter:      limiter,
		metrics:      newClientMetrics(),
		state:        StateCreated,
		pending:      make(map[uuid.UUID]time.Time),
	}, nil
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens the request channel, subscribes the event topic (retrying
// with exponential backoff until ctx is cancelled), and starts the processing
// loop. Connecting an already connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateConnected:
		return nil
	case StateDisposed:
		return errs.New("execution", errs.CodeUnavailable, errs.WithMessage("client disposed"))
	}

	if err := c.requests.Open(ctx, c.onReply); err != nil {
		return errs.New("execution", errs.CodeTransport,
			errs.WithMessage("open request channel"), errs.WithCause(err))
	}
	if err := c.subscribeWithRetry(ctx); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	c.loopCancel = cancel
	c.loop = &conc.WaitGroup{}
	c.loop.Go(func() { c.run(loopCtx) })

	c.state = StateConnected
	c.logger.Printf("connected to %s (commands :%d, events :%d, topic %q)",
		c.cfg.Endpoint.Host, c.cfg.Endpoint.CommandPort, c.cfg.Endpoint.EventPort, c.cfg.Endpoint.Topic)
	return nil
}

func (c *Client) subscribeWithRetry(ctx context.Context) error {
	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.MaxInterval = subscribeMaxBackoff

	for {
		err := c.subscription.Subscribe(ctx, c.cfg.Endpoint.Topic, c.onFrame)
		if err == nil {
			return nil
		}
		c.logger.Printf("subscribe %q failed, retrying: %v", c.cfg.Endpoint.Topic, err)

		sleep := backoffCfg.NextBackOff()
		if sleep == backoff.Stop {
			sleep = subscribeMaxBackoff
		}
		select {
		case <-ctx.Done():
			return errs.New("execution", errs.CodeTransport,
				errs.WithMessage("subscribe aborted"), errs.WithCause(ctx.Err()))
		case <-time.After(sleep):
		}
	}
}

// Disconnect unsubscribes the event topic and stops the processing loop.
// Items already enqueued but not yet processed may be dropped; every such
// drop is visible through the queue length logged here. Disconnecting a
// client that is not connected is a no-op.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected {
		return nil
	}

	if err := c.subscription.Unsubscribe(ctx, c.cfg.Endpoint.Topic); err != nil {
		c.logger.Printf("unsubscribe %q: %v", c.cfg.Endpoint.Topic, err)
	}
	c.loopCancel()
	c.loop.Wait()
	c.loopCancel = nil
	c.loop = nil

	if pending := c.queue.Len(); pending > 0 {
		c.logger.Printf("disconnected with %d unprocessed items in queue", pending)
	}
	c.state = StateDisconnected
	c.logger.Print("disconnected")
	return nil
}

// Dispose releases the underlying transport channels. It disconnects first if
// needed; afterwards no operation on the client is valid. Dispose is
// idempotent.
func (c *Client) Dispose(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateDisposed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.Disconnect(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDisposed {
		return nil
	}
	if err := c.requests.Close(ctx); err != nil {
		c.logger.Printf("close request channel: %v", err)
	}
	if err := c.subscription.Close(ctx); err != nil {
		c.logger.Printf("close subscription channel: %v", err)
	}
	c.queue.Close()
	c.state = StateDisposed
	c.logger.Print("disposed")
	return nil
}

// ExecuteCommand enqueues a command for asynchronous processing and returns
// immediately. The caller is never blocked; a full bounded queue rejects the
// command with bus.ErrQueueFull and the drop is logged.
func (c *Client) ExecuteCommand(cmd message.Command) error {
	if err := c.queue.Push(cmd); err != nil {
		c.logger.Printf("command %s dropped: %v", cmd.MessageID(), err)
		c.metrics.droppedItems.Add(context.Background(), 1)
		return err
	}
	c.metrics.commandsEnqueued.Add(context.Background(), 1)
	return nil
}

// HandleEvent enqueues an inbound event for asynchronous processing and
// returns immediately. Enqueuing through the same queue as commands is what
// guarantees events and commands interleave in one total order.
func (c *Client) HandleEvent(evt message.Event) error {
	if err := c.queue.Push(evt); err != nil {
		c.logger.Printf("event %s dropped: %v", evt.MessageID(), err)
		c.metrics.droppedItems.Add(context.Background(), 1)
		return err
	}
	return nil
}

// QueueLen reports the number of unprocessed items.
func (c *Client) QueueLen() int { return c.queue.Len() }

// Account exposes the account state; AccountState events refresh it on the
// processing loop before strategies see them.
func (c *Client) Account() *account.Account { return c.account }

// Portfolio exposes the position portfolio maintained by the strategy layer.
func (c *Client) Portfolio() *account.Portfolio { return c.portfolio }
