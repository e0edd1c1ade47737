package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MalcoreHardcore698/authdemo/authapi"
)

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers an observer for finished actions.
func WithObserver(o Observer) ControllerOption {
	return func(c *Controller) { c.observer = o }
}

// Controller is the session state machine for one mounted UI root.
//
// Every action that changes who is signed in (bootstrap, login, register,
// logout, Close) advances a generation counter. An action applies its result
// only if the generation it started under is still current; otherwise the
// result is dropped and, for a successful login, the issued token is
// unlinked instead of persisted.
type Controller struct {
	svc      *Service
	logger   *slog.Logger
	observer Observer

	mu      sync.Mutex
	state   State
	gen     uint64
	subs    map[int]func(State)
	nextSub int
	cancel  context.CancelFunc
	closed  bool

	wg sync.WaitGroup
}

// NewController returns an unmounted controller in the unauthenticated
// state.
func NewController(svc *Service, opts ...ControllerOption) *Controller {
	c := &Controller{
		svc:    svc,
		logger: slog.Default(),
		subs:   map[int]func(State){},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount starts the silent session check in the background. It is a no-op
// after the first call or after Close.
func (c *Controller) Mount(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil || c.closed {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		_ = c.checkCurrentUser(ctx)
	}()
}

// Close cancels the background check, waits for it, and discards the
// results of any action still in flight.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.gen++
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

// State returns the current session snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe calls fn after every state transition. The returned function
// removes the subscription.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Me re-runs the session check: with no stored token nothing changes;
// otherwise the user is loaded, or the token is cleared and the session
// signed out. The returned error is informational; the session is already
// consistent.
func (c *Controller) Me(ctx context.Context) error {
	return c.checkCurrentUser(ctx)
}

func (c *Controller) checkCurrentUser(ctx context.Context) error {
	if !c.svc.HasToken(ctx) {
		return nil
	}

	start := time.Now()
	gen := c.begin(setLoading(true))

	user, err := c.svc.Me(ctx)
	if err != nil {
		authErr := newError(OpBootstrap, err)
		applied := c.commit(gen, func() []action {
			c.svc.Logout(context.WithoutCancel(ctx))
			return []action{logoutAction()}
		})
		if applied {
			c.logger.InfoContext(ctx, "failed to get current user", "error", err)
		}
		c.observe(OpBootstrap, outcome(applied, false), "", authErr, start)
		return authErr
	}

	applied := c.commit(gen, func() []action { return []action{setUser(&user)} })
	c.observe(OpBootstrap, outcome(applied, true), user.ID, nil, start)
	if !applied {
		return ErrSuperseded
	}
	return nil
}

// Login authenticates and, on success, persists the token and moves to the
// authenticated state. Failures are recorded in State.Error and returned as
// *Error.
func (c *Controller) Login(ctx context.Context, req authapi.LoginRequest) error {
	return c.authenticate(ctx, OpLogin, func(ctx context.Context) (authapi.AuthResponse, error) {
		return c.svc.Login(ctx, req)
	})
}

// Register behaves like Login for a new account.
func (c *Controller) Register(ctx context.Context, req authapi.RegisterRequest) error {
	return c.authenticate(ctx, OpRegister, func(ctx context.Context) (authapi.AuthResponse, error) {
		return c.svc.Register(ctx, req)
	})
}

func (c *Controller) authenticate(ctx context.Context, op string, call func(context.Context) (authapi.AuthResponse, error)) error {
	start := time.Now()
	gen := c.begin(setError(""), setLoading(true))

	resp, err := call(ctx)
	if err != nil {
		authErr := newError(op, err)
		applied := c.commit(gen, func() []action { return []action{setError(authErr.Message)} })
		c.observe(op, outcome(applied, false), "", authErr, start)
		return authErr
	}

	user := resp.User
	applied := c.commit(gen, func() []action {
		c.svc.Persist(context.WithoutCancel(ctx), resp.Token)
		return []action{setUser(&user)}
	})
	c.observe(op, outcome(applied, true), user.ID, nil, start)
	if !applied {
		c.svc.Discard(context.WithoutCancel(ctx), resp.Token)
		return ErrSuperseded
	}
	return nil
}

// ResetPassword requests a reset email. It does not change who is signed
// in. IsLoading is cleared when it returns unless a newer session change
// owns the state by then.
func (c *Controller) ResetPassword(ctx context.Context, req authapi.ResetPasswordRequest) (authapi.ResetPasswordResponse, error) {
	start := time.Now()
	gen := c.dispatch(setLoading(true))

	resp, err := c.svc.ResetPassword(ctx, req)
	if err != nil {
		authErr := newError(OpResetPassword, err)
		applied := c.commit(gen, func() []action {
			return []action{setError(authErr.Message), setLoading(false)}
		})
		c.observe(OpResetPassword, outcome(applied, false), "", authErr, start)
		return authapi.ResetPasswordResponse{}, authErr
	}

	applied := c.commit(gen, func() []action {
		return []action{setError(""), setLoading(false)}
	})
	c.observe(OpResetPassword, outcome(applied, true), "", nil, start)
	return resp, nil
}

// Logout signs out synchronously: the token is cleared and unlinked and
// every in-flight action is superseded.
func (c *Controller) Logout(ctx context.Context) {
	start := time.Now()
	var userID string

	c.mu.Lock()
	c.gen++
	if c.state.User != nil {
		userID = c.state.User.ID
	}
	c.svc.Logout(ctx)
	c.state = reduce(c.state, logoutAction())
	snap := c.state
	c.mu.Unlock()

	c.publish(snap)
	c.observe(OpLogout, OutcomeSuccess, userID, nil, start)
}

// begin starts a new generation and applies actions under it.
func (c *Controller) begin(actions ...action) uint64 {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	for _, a := range actions {
		c.state = reduce(c.state, a)
	}
	snap := c.state
	c.mu.Unlock()

	c.publish(snap)
	return gen
}

// dispatch applies actions under the current generation and returns it.
func (c *Controller) dispatch(actions ...action) uint64 {
	c.mu.Lock()
	gen := c.gen
	for _, a := range actions {
		c.state = reduce(c.state, a)
	}
	snap := c.state
	c.mu.Unlock()

	c.publish(snap)
	return gen
}

// commit runs apply and reduces its actions only if gen is still current
// and the controller is open. apply runs under the state lock so its side
// effects are ordered with the transition.
func (c *Controller) commit(gen uint64, apply func() []action) bool {
	c.mu.Lock()
	if c.closed || c.gen != gen {
		c.mu.Unlock()
		return false
	}
	for _, a := range apply() {
		c.state = reduce(c.state, a)
	}
	snap := c.state
	c.mu.Unlock()

	c.publish(snap)
	return true
}

func (c *Controller) publish(s State) {
	c.mu.Lock()
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

func (c *Controller) observe(op string, o Outcome, userID string, err error, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.Observe(Event{Op: op, Outcome: o, UserID: userID, Err: err, Duration: time.Since(start)})
}

func outcome(applied, ok bool) Outcome {
	switch {
	case !applied:
		return OutcomeSuperseded
	case ok:
		return OutcomeSuccess
	default:
		return OutcomeFailure
	}
}
