// Package notify delivers best-effort notifications after a course
// transition has committed. Delivery runs on a detached context so a slow
// mail server or audit insert can never fail or delay the transition that
// triggered it.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/tsegaye25/load-tracking/internal/app/models"
	"github.com/tsegaye25/load-tracking/internal/pkg/email"
	"github.com/tsegaye25/load-tracking/internal/pkg/logger"
)

// emitTimeout bounds delivery of a single event.
const emitTimeout = 10 * time.Second

// Event describes one committed course transition.
type Event struct {
	Course     *models.Course
	Actor      *models.User
	Action     string
	FromStatus models.CourseStatus
	ToStatus   models.CourseStatus
	Reason     string
}

// Emitter publishes transition events. Implementations must not block the
// caller and must swallow their own errors.
type Emitter interface {
	Emit(event Event)
}

// AuditStore persists audit records for emitted events.
type AuditStore interface {
	Insert(ctx context.Context, event *models.AuditEvent) error
}

// AsyncEmitter writes an audit event and emails the affected instructor in
// a background goroutine. Failures are logged and dropped.
type AsyncEmitter struct {
	audits AuditStore
	mailer email.EmailService
	wg     sync.WaitGroup
}

// NewAsyncEmitter creates an emitter. mailer may be nil to disable email.
func NewAsyncEmitter(audits AuditStore, mailer email.EmailService) *AsyncEmitter {
	return &AsyncEmitter{audits: audits, mailer: mailer}
}

// Emit publishes the event and returns immediately.
func (e *AsyncEmitter) Emit(event Event) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.deliver(event)
	}()
}

// Wait blocks until all in-flight deliveries finish. Used during shutdown.
func (e *AsyncEmitter) Wait() {
	e.wg.Wait()
}

func (e *AsyncEmitter) deliver(event Event) {
	// Detached from the request context: the transition already committed.
	ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
	defer cancel()

	audit := &models.AuditEvent{
		CourseID:   event.Course.ID,
		CourseCode: event.Course.Code,
		ActorID:    event.Actor.ID,
		ActorRole:  event.Actor.Role,
		Action:     event.Action,
		FromStatus: event.FromStatus,
		ToStatus:   event.ToStatus,
		Reason:     event.Reason,
	}
	if err := e.audits.Insert(ctx, audit); err != nil {
		logger.Warn().
			Err(err).
			Int64("courseId", event.Course.ID).
			Str("action", event.Action).
			Msg("Failed to record audit event")
	}

	if e.mailer == nil {
		return
	}
	recipient := event.Course.Instructor
	if recipient == nil || recipient.Email == "" {
		return
	}
	// The actor already knows what they did; only notify someone else.
	if recipient.ID == event.Actor.ID {
		return
	}
	err := e.mailer.SendTransitionEmail(
		recipient.Email, recipient.Name,
		event.Course.Code, string(event.ToStatus), event.Reason)
	if err != nil {
		logger.Warn().
			Err(err).
			Int64("courseId", event.Course.ID).
			Str("toEmail", recipient.Email).
			Msg("Failed to send transition email")
	}
}

// NopEmitter discards all events.
type NopEmitter struct{}

// Emit implements Emitter.
func (NopEmitter) Emit(Event) {}
