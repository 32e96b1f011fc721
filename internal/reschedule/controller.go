package reschedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"postplanner/internal/calendar"
	"postplanner/internal/common"
)

const (
	MouseActivationDistance = 5.0
	TouchActivationDelay    = 250 * time.Millisecond
	TouchTolerance          = 5.0

	// StaleDragAfter bounds how long a drag may stay open without a drop or
	// cancel. A client that vanished mid-gesture must not lock the user out.
	StaleDragAfter = 2 * time.Minute
)

var (
	ErrAlreadyDragging = fmt.Errorf("a drag is already in progress: %w", common.ErrBusy)
	ErrNotDragging     = fmt.Errorf("no drag in progress: %w", common.ErrInvalidTransition)
	ErrNotActivated    = fmt.Errorf("activation threshold not reached: %w", common.ErrInvalidTransition)
)

type Pointer string

const (
	PointerMouse Pointer = "mouse"
	PointerTouch Pointer = "touch"
)

// Activation describes the gesture so far: how far the pointer travelled and
// how long it has been held down.
type Activation struct {
	Pointer  Pointer       `json:"pointer"`
	Distance float64       `json:"distance"`
	Held     time.Duration `json:"held"`
}

func (a Activation) Activated() bool {
	if a.Pointer == PointerTouch {
		return a.Held >= TouchActivationDelay && a.Distance <= TouchTolerance
	}
	return a.Distance >= MouseActivationDistance
}

type State int

const (
	Idle State = iota
	Dragging
	Committed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Offset is where inside the block the pointer grabbed it.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Drag is the state captured while a gesture is in flight.
type Drag struct {
	Event     calendar.Event `json:"event"`
	View      calendar.View  `json:"view"`
	Offset    Offset         `json:"offset"`
	MultiDay  bool           `json:"multi_day"`
	Candidate *time.Time     `json:"candidate,omitempty"`
	StartedAt time.Time      `json:"started_at"`
}

// Updater persists a new schedule for a post.
type Updater interface {
	Reschedule(ctx context.Context, postID string, start, end time.Time) error
}

// Outcome is the terminal result of one gesture.
type Outcome struct {
	State   State     `json:"state"`
	Changed bool      `json:"changed"`
	PostID  string    `json:"post_id,omitempty"`
	Start   time.Time `json:"start,omitempty"`
	End     time.Time `json:"end,omitempty"`
}

// Controller tracks a single pointer's drag gesture.
type Controller struct {
	mu      sync.Mutex
	updater Updater
	log     *zap.Logger
	state   State
	drag    *Drag
	now     func() time.Time
}

func NewController(updater Updater, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{updater: updater, log: log, now: time.Now}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active returns a copy of the in-flight drag, or nil when idle.
func (c *Controller) Active() *Drag {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drag == nil {
		return nil
	}
	d := *c.drag
	return &d
}

func (c *Controller) Start(ev calendar.Event, view calendar.View, offset Offset, act Activation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Dragging {
		if !c.stale() {
			return ErrAlreadyDragging
		}
		c.log.Warn("replacing abandoned drag",
			zap.String("post_id", c.drag.Event.PostID),
			zap.Time("started_at", c.drag.StartedAt))
		c.reset()
	}
	if !act.Activated() {
		return ErrNotActivated
	}
	if ev.PostID == "" || !ev.Valid() {
		return common.NewValidationError("event", "must have an id and a positive duration")
	}

	c.state = Dragging
	c.drag = &Drag{
		Event:     ev,
		View:      view,
		Offset:    offset,
		MultiDay:  ev.IsMultiDay(),
		StartedAt: c.now(),
	}
	return nil
}

// Hover records the candidate start for the cell under the pointer.
func (c *Controller) Hover(target Target) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Dragging || c.drag == nil {
		return time.Time{}, ErrNotDragging
	}
	if target.View == "" {
		target.View = c.drag.View
	}

	start, _, _ := Resolve(c.drag.Event, target)
	c.drag.Candidate = &start
	return start, nil
}

// Drop ends the gesture. A nil target cancels it. The update is issued only
// when the post actually moves; the captured drag is cleared on every path.
func (c *Controller) Drop(ctx context.Context, target *Target) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.reset()

	if c.state != Dragging || c.drag == nil {
		return Outcome{State: Idle}, ErrNotDragging
	}

	drag := c.drag
	if target == nil || target.Date.IsZero() {
		c.log.Warn("drop without a target, discarding drag",
			zap.String("post_id", drag.Event.PostID))
		return Outcome{State: Cancelled, PostID: drag.Event.PostID}, nil
	}
	dest := *target
	if dest.View == "" {
		dest.View = drag.View
	}

	start, end, changed := Resolve(drag.Event, dest)
	out := Outcome{State: Committed, Changed: changed, PostID: drag.Event.PostID, Start: start, End: end}
	if !changed {
		c.log.Debug("drop on original slot, nothing to update",
			zap.String("post_id", drag.Event.PostID))
		return out, nil
	}

	if err := c.updater.Reschedule(ctx, drag.Event.PostID, start, end); err != nil {
		c.log.Error("failed to reschedule post",
			zap.String("post_id", drag.Event.PostID),
			zap.Error(err))
		out.State = Cancelled
		out.Changed = false
		return out, &common.MutationError{Step: "post.update", Err: err}
	}

	c.log.Info("post rescheduled",
		zap.String("post_id", drag.Event.PostID),
		zap.Time("start", start),
		zap.Time("end", end))
	return out, nil
}

func (c *Controller) Cancel() Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.reset()

	if c.drag == nil {
		return Outcome{State: Idle}
	}
	return Outcome{State: Cancelled, PostID: c.drag.Event.PostID}
}

// stale must run with mu held.
func (c *Controller) stale() bool {
	return c.drag != nil && c.now().Sub(c.drag.StartedAt) > StaleDragAfter
}

// Reclaimable reports whether the controller holds no live drag.
func (c *Controller) Reclaimable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != Dragging || c.stale()
}

// reset must run with mu held.
func (c *Controller) reset() {
	c.state = Idle
	c.drag = nil
}

// Sessions holds one controller per user.
type Sessions struct {
	mu          sync.Mutex
	updater     Updater
	log         *zap.Logger
	controllers map[string]*Controller
}

func NewSessions(updater Updater, log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sessions{
		updater:     updater,
		log:         log,
		controllers: make(map[string]*Controller),
	}
}

func (s *Sessions) For(userID string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.controllers[userID]
	if !ok {
		c = NewController(s.updater, s.log.With(zap.String("user_id", userID)))
		s.controllers[userID] = c
	}
	return c
}

// Forget drops idle or abandoned controllers so the map does not grow with
// every user seen.
func (s *Sessions) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.controllers[userID]; ok && c.Reclaimable() {
		delete(s.controllers, userID)
	}
}

// IsDragError reports whether err came from an out-of-order gesture call.
func IsDragError(err error) bool {
	return errors.Is(err, ErrNotDragging) || errors.Is(err, ErrAlreadyDragging) || errors.Is(err, ErrNotActivated)
}
