// Package venue provides an in-process simulated execution service. It
// implements both transport channel contracts, decodes command frames with
// the same codecs as the client, acknowledges each command with a correlated
// response, and emits the resulting order lifecycle events to subscribers.
// It backs paper trading in cmd/trader and the integration tests.
package venue

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	concpool "github.com/sourcegraph/conc/pool"

	"github.com/chadury2021/nautilus-trader-s/errs"
	"github.com/chadury2021/nautilus-trader-s/internal/clock"
	"github.com/chadury2021/nautilus-trader-s/internal/codec"
	"github.com/chadury2021/nautilus-trader-s/internal/message"
	"github.com/chadury2021/nautilus-trader-s/internal/order"
)

const inboundBuffer = 1024

// Config sets the venue's account answers and fill behaviour.
type Config struct {
	Currency        string
	Balance         decimal.Decimal
	MarginBalance   decimal.Decimal
	MarginAvailable decimal.Decimal
	// FillPrice is used for market fills, where the order itself carries no
	// price.
	FillPrice decimal.Decimal
}

func (c Config) normalize() Config {
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.FillPrice.IsZero() {
		c.FillPrice = decimal.NewFromInt(1)
	}
	return c
}

// Venue is the simulated execution service. One Venue value serves as both
// the request channel and the subscription channel of an execution client.
type Venue struct {
	cfg       Config
	commands  codec.CommandCodec
	events    codec.EventCodec
	responses codec.ResponseCodec
	clock     clock.Clock
	logger    *log.Logger
	metrics   *venueMetrics

	inbound chan []byte
	ctx     context.Context
	cancel  context.CancelFunc
	workers conc.WaitGroup
	started sync.Once
	stopped sync.Once

	mu          sync.Mutex
	onReply     func(frame []byte)
	subscribers map[string][]func(topic string, frame []byte)
	working     map[string]order.Order
	closed      bool
}

// New constructs a venue; Start (or the client's Connect via Open) must be
// called before commands are processed.
func New(cfg Config, commands codec.CommandCodec, events codec.EventCodec, responses codec.ResponseCodec, clk clock.Clock, logger *log.Logger) *Venue {
	ctx, cancel := context.WithCancel(context.Background())
	return &Venue{
		cfg:         cfg.normalize(),
		commands:    commands,
		events:      events,
		responses:   responses,
		clock:       clk,
		logger:      logger,
		metrics:     newVenueMetrics(),
		inbound:     make(chan []byte, inboundBuffer),
		ctx:         ctx,
		cancel:      cancel,
		subscribers: make(map[string][]func(topic string, frame []byte)),
		working:     make(map[string]order.Order),
	}
}

// Start launches the single command-processing goroutine; commands are
// handled strictly in arrival order.
func (v *Venue) Start() {
	v.started.Do(func() {
		v.workers.Go(v.process)
	})
}

// Open implements transport.RequestChannel.
func (v *Venue) Open(_ context.Context, onReply func(frame []byte)) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return errs.New("venue", errs.CodeUnavailable, errs.WithMessage("venue closed"))
	}
	v.onReply = onReply
	v.Start()
	return nil
}

// Send implements transport.RequestChannel; the frame is queued for the
// processing goroutine.
func (v *Venue) Send(_ context.Context, frame []byte) error {
	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return errs.New("venue", errs.CodeUnavailable, errs.WithMessage("venue closed"))
	}
	select {
	case v.inbound <- append([]byte(nil), frame...):
		return nil
	default:
		return errs.New("venue", errs.CodeTransport, errs.WithMessage("inbound buffer full"))
	}
}

// Subscribe implements transport.SubscriptionChannel.
func (v *Venue) Subscribe(_ context.Context, topic string, onFrame func(topic string, frame []byte)) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return errs.New("venue", errs.CodeUnavailable, errs.WithMessage("venue closed"))
	}
	v.subscribers[topic] = append(v.subscribers[topic], onFrame)
	return nil
}

// Unsubscribe implements transport.SubscriptionChannel; it removes every
// subscriber for the topic.
func (v *Venue) Unsubscribe(_ context.Context, topic string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.subscribers, topic)
	return nil
}

// Close implements both channel contracts; safe to call once per channel.
func (v *Venue) Close(context.Context) error {
	v.stopped.Do(func() {
		v.mu.Lock()
		v.closed = true
		v.mu.Unlock()
		v.cancel()
		v.workers.Wait()
	})
	return nil
}

func (v *Venue) process() {
	for {
		select {
		case <-v.ctx.Done():
			return
		case frame := <-v.inbound:
			v.handleFrame(frame)
		}
	}
}

func (v *Venue) handleFrame(frame []byte) {
	cmd, err := v.commands.DecodeCommand(frame)
	if err != nil {
		v.logger.Printf("undecodable command frame: %v", err)
		v.metrics.recordCommandRejected(v.ctx, "undecodable_frame")
		v.reply(message.MessageRejected{
			Base:   message.NewBase(v.clock.TimeNow()),
			Reason: fmt.Sprintf("undecodable frame: %v", err),
		})
		return
	}

	v.metrics.recordCommandProcessed(v.ctx, fmt.Sprintf("%T", cmd))
	v.reply(message.MessageReceived{
		Base:          message.NewBase(v.clock.TimeNow()),
		CorrelationID: cmd.MessageID(),
		ReceivedType:  fmt.Sprintf("%T", cmd),
	})

	switch m := cmd.(type) {
	case message.SubmitOrder:
		v.acceptOrder(m.Trader, m.Order)
	case message.SubmitAtomicOrder:
		v.acceptOrder(m.Trader, m.Atomic.Entry)
	case message.ModifyOrder:
		v.modifyOrder(m)
	case message.CancelOrder:
		v.cancelOrder(m)
	case message.CollateralInquiry:
		v.emit(message.AccountState{
			Base:            message.NewBase(v.clock.TimeNow()),
			Trader:          m.Trader,
			Currency:        v.cfg.Currency,
			Balance:         v.cfg.Balance,
			MarginBalance:   v.cfg.MarginBalance,
			MarginAvailable: v.cfg.MarginAvailable,
		})
	default:
		panic(fmt.Sprintf("venue: unhandled command variant %T", cmd))
	}
}

func (v *Venue) acceptOrder(trader string, o order.Order) {
	now := func() message.Base { return message.NewBase(v.clock.TimeNow()) }
	v.emit(message.OrderSubmitted{Base: now(), Trader: trader, OrderID: o.ID})
	v.emit(message.OrderAccepted{Base: now(), Trader: trader, OrderID: o.ID})

	if o.Type == order.TypeMarket {
		v.emit(message.OrderFilled{
			Base:           now(),
			Trader:         trader,
			OrderID:        o.ID,
			FillPrice:      v.cfg.FillPrice,
			FilledQuantity: o.Quantity,
		})
		return
	}

	v.mu.Lock()
	v.working[o.ID] = o
	v.mu.Unlock()
	v.emit(message.OrderWorking{Base: now(), Trader: trader, OrderID: o.ID})
}

func (v *Venue) modifyOrder(cmd message.ModifyOrder) {
	v.mu.Lock()
	o, known := v.working[cmd.OrderID]
	if known {
		o.Quantity = cmd.ModifiedQuantity
		o.Price = cmd.ModifiedPrice
		v.working[cmd.OrderID] = o
	}
	v.mu.Unlock()

	if !known {
		v.emit(message.OrderCancelReject{
			Base:    message.NewBase(v.clock.TimeNow()),
			Trader:  cmd.Trader,
			OrderID: cmd.OrderID,
			Reason:  "order not working",
		})
		return
	}
	v.emit(message.OrderModified{
		Base:             message.NewBase(v.clock.TimeNow()),
		Trader:           cmd.Trader,
		OrderID:          cmd.OrderID,
		ModifiedQuantity: cmd.ModifiedQuantity,
		ModifiedPrice:    cmd.ModifiedPrice,
	})
}

func (v *Venue) cancelOrder(cmd message.CancelOrder) {
	v.mu.Lock()
	_, known := v.working[cmd.OrderID]
	if known {
		delete(v.working, cmd.OrderID)
	}
	v.mu.Unlock()

	if !known {
		v.emit(message.OrderCancelReject{
			Base:    message.NewBase(v.clock.TimeNow()),
			Trader:  cmd.Trader,
			OrderID: cmd.OrderID,
			Reason:  "order not working",
		})
		return
	}
	v.emit(message.OrderCancelled{
		Base:    message.NewBase(v.clock.TimeNow()),
		Trader:  cmd.Trader,
		OrderID: cmd.OrderID,
	})
}

func (v *Venue) reply(rsp message.Response) {
	frame, err := v.responses.EncodeResponse(rsp)
	if err != nil {
		v.logger.Printf("encode response: %v", err)
		return
	}
	v.mu.Lock()
	onReply := v.onReply
	v.mu.Unlock()
	if onReply == nil {
		return
	}
	onReply(frame)
}

// emit publishes one event to every subscriber; subscribers receive events in
// emission order because emit completes its fan-out before the next emit.
func (v *Venue) emit(evt message.Event) {
	frame, err := v.events.EncodeEvent(evt)
	if err != nil {
		v.logger.Printf("encode event: %v", err)
		return
	}

	v.mu.Lock()
	type delivery struct {
		topic string
		fn    func(topic string, frame []byte)
	}
	var targets []delivery
	for topic, fns := range v.subscribers {
		for _, fn := range fns {
			targets = append(targets, delivery{topic: topic, fn: fn})
		}
	}
	v.mu.Unlock()

	if len(targets) == 0 {
		return
	}
	p := concpool.New().WithMaxGoroutines(len(targets))
	for _, target := range targets {
		p.Go(func() { target.fn(target.topic, frame) })
	}
	p.Wait()
	v.metrics.recordEventPublished(v.ctx, fmt.Sprintf("%T", evt), len(targets))
}
