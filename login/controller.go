package login

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/monerokon/xmrpos-login/authclient"
	"github.com/monerokon/xmrpos-login/loginform"
	"github.com/monerokon/xmrpos-login/logutil"
	"github.com/monerokon/xmrpos-login/urlutil"
)

var (
	// ErrAttemptInFlight is returned by Submit while a previous attempt has
	// not resolved. The state is left untouched.
	ErrAttemptInFlight = errors.New("login attempt already in flight")

	// ErrNilForm is returned by Submit when called without a form.
	ErrNilForm = errors.New("login form is nil")

	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("login controller is closed")
)

// AuthClient performs the remote credential check. *authclient.Client and
// *authclient.Mock satisfy it.
type AuthClient interface {
	Login(ctx context.Context, instanceURL urlutil.NormalizedURL, vendorID int, username, password string) (*authclient.Session, error)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for attempt lifecycle messages.
func WithLogger(logger *logutil.ComponentLogger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithOnSuccess registers a callback run on the attempt goroutine after the
// state becomes Succeeded.
func WithOnSuccess(fn func(State)) Option {
	return func(c *Controller) {
		c.onSuccess = fn
	}
}

// Controller runs login attempts and publishes their state.
type Controller struct {
	client    AuthClient
	store     *Store
	log       *logutil.ComponentLogger
	onSuccess func(State)

	// mu serializes Submit and guards done and closed.
	mu     sync.Mutex
	done   chan struct{}
	closed bool
}

// NewController returns an idle controller that authenticates through client.
func NewController(client AuthClient, opts ...Option) *Controller {
	c := &Controller{
		client: client,
		store:  NewStore(State{Phase: PhaseIdle}),
		log:    logutil.NewLogger("login"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current attempt snapshot.
func (c *Controller) State() State {
	return c.store.State()
}

// Subscribe streams state transitions; see Store.Subscribe.
func (c *Controller) Subscribe() (<-chan State, func()) {
	return c.store.Subscribe()
}

// Submit starts a login attempt for form.
//
// Validation and URL failures are recorded as a Failed state before Submit
// returns and never reach the AuthClient. Otherwise the normalized URL is
// written back to form.InstanceURL, the state becomes InFlight and the
// AuthClient is called once on a new goroutine. The call is detached from
// ctx cancellation; it is bounded only by the client's own timeout.
//
// A nil return means the attempt was accepted or failed synchronously; the
// outcome is read from State.
func (c *Controller) Submit(ctx context.Context, form *loginform.Form) error {
	if form == nil {
		return ErrNilForm
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.store.State().InProgress() {
		c.log.Debug("submit rejected, attempt in flight")
		return ErrAttemptInFlight
	}

	st, _ := c.store.Dispatch(Event{Type: EventReset})
	attempt := st.Attempt
	log := c.log.WithOperation("submit").WithFields("attempt", attempt)

	fields, err := loginform.Validate(*form)
	if err != nil {
		log.Debug("form rejected", "error", err.Error())
		c.store.Dispatch(Event{Type: EventRejected, Attempt: attempt, Err: newError(KindValidation, err)})
		return nil
	}

	instance, err := urlutil.Normalize(fields.InstanceURL)
	if err != nil {
		log.Debug("instance URL rejected", "error", err.Error())
		c.store.Dispatch(Event{Type: EventRejected, Attempt: attempt, Err: newError(KindURL, err)})
		return nil
	}
	form.InstanceURL = instance.String()

	log = log.WithInstance(instance.Host())
	if instance.IsInsecure() {
		log.Warn("instance URL uses plain http; credentials are sent unencrypted", "url", instance.String())
	}

	c.store.Dispatch(Event{Type: EventStarted, Attempt: attempt})
	log.Info("login attempt started", "vendor_id", fields.VendorID, "username", fields.Username)

	done := make(chan struct{})
	c.done = done
	go c.run(context.WithoutCancel(ctx), done, attempt, instance, fields, log)
	return nil
}

func (c *Controller) run(ctx context.Context, done chan struct{}, attempt uint64, instance urlutil.NormalizedURL, fields loginform.Fields, log *logutil.ComponentLogger) {
	defer close(done)

	session, err := c.authenticate(ctx, instance, fields)
	if err != nil {
		log.LogError("login attempt failed", err)
		c.store.Dispatch(Event{Type: EventFailed, Attempt: attempt, Err: newError(KindAuth, err)})
		return
	}

	st, _ := c.store.Dispatch(Event{Type: EventSucceeded, Attempt: attempt, Session: session})
	log.Info("login attempt succeeded")
	if c.onSuccess != nil && st.Succeeded() {
		c.onSuccess(st)
	}
}

// authenticate turns a panicking client into an ordinary failure so the
// attempt still resolves.
func (c *Controller) authenticate(ctx context.Context, instance urlutil.NormalizedURL, fields loginform.Fields) (session *authclient.Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			session = nil
			err = fmt.Errorf("auth client panicked: %v", r)
		}
	}()
	return c.client.Login(ctx, instance, fields.VendorID, fields.Username, fields.Password)
}

// Wait blocks until the most recent attempt goroutine has finished,
// including any success callback, or ctx ends. It returns the state at that
// point.
func (c *Controller) Wait(ctx context.Context) (State, error) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return c.State(), ctx.Err()
		}
	}
	return c.State(), nil
}

// SubmitAndWait submits form and waits for the attempt to resolve.
func (c *Controller) SubmitAndWait(ctx context.Context, form *loginform.Form) (State, error) {
	if err := c.Submit(ctx, form); err != nil {
		return c.State(), err
	}
	return c.Wait(ctx)
}

// Close rejects further submissions, waits for a running attempt to finish
// and closes every subscriber channel.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
	c.store.Close()
}
