package cart

import (
	"context"
	"errors"
	"log"
	"time"
)

// ErrClosed is returned by calls on a closed Cart.
var ErrClosed = errors.New("cart closed")

const callTimeout = 2 * time.Second

type command struct {
	action *Action
	reply  chan State
}

// Cart owns one cart state in a goroutine so writes are serialized through a channel.
type Cart struct {
	storage  Storage[State]
	logger   *log.Logger
	commands chan command
	quit     chan struct{}
}

// New loads the saved state once and starts the owning goroutine.
func New(storage Storage[State], logger *log.Logger) *Cart {
	if logger == nil {
		logger = log.Default()
	}
	initial := State{Items: []Item{}}
	if saved, ok, err := storage.Load(); err != nil {
		logger.Printf("cart: could not load saved state, starting empty: %v", err)
	} else if ok {
		initial = Reduce(initial, SetState(saved))
	}

	c := &Cart{
		storage:  storage,
		logger:   logger,
		commands: make(chan command),
		quit:     make(chan struct{}),
	}
	go c.loop(initial)
	return c
}

func (c *Cart) loop(state State) {
	for {
		select {
		case cmd := <-c.commands:
			if cmd.action != nil {
				state = Reduce(state, *cmd.action)
				if err := c.storage.Save(state); err != nil {
					c.logger.Printf("cart: could not save state: %v", err)
				}
			}
			cmd.reply <- state
		case <-c.quit:
			return
		}
	}
}

func (c *Cart) call(ctx context.Context, a *Action) (State, error) {
	reply := make(chan State, 1)
	select {
	case c.commands <- command{action: a, reply: reply}:
	case <-c.quit:
		return State{}, ErrClosed
	case <-ctx.Done():
		return State{}, ctx.Err()
	case <-time.After(callTimeout):
		return State{}, errors.New("cart is busy")
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Dispatch applies a and returns the new state.
func (c *Cart) Dispatch(ctx context.Context, a Action) (State, error) {
	return c.call(ctx, &a)
}

// State returns the current state without changing it.
func (c *Cart) State(ctx context.Context) (State, error) {
	return c.call(ctx, nil)
}

// Close stops the goroutine. Later calls fail with ErrClosed.
func (c *Cart) Close() {
	select {
	case <-c.quit:
	default:
		close(c.quit)
	}
}
