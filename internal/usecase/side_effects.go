package usecase

import (
	"context"
	"time"

	"clinic-frontdesk/internal/delivery/http/middleware"
	"clinic-frontdesk/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const defaultSideEffectTimeout = 3 * time.Second

type sideEffect struct {
	name string
	run  func(ctx context.Context) error
}

// sideEffects runs post-commit work such as audit rows and events. They run
// in parallel under one deadline; failures are logged and never returned.
type sideEffects struct {
	log     *logrus.Logger
	timeout time.Duration
}

func newSideEffects(log *logrus.Logger) sideEffects {
	return sideEffects{log: log, timeout: defaultSideEffectTimeout}
}

func (s sideEffects) run(ctx context.Context, effects ...sideEffect) {
	// the caller may already be gone; committed work still gets announced
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range effects {
		e := e
		g.Go(func() error {
			if err := e.run(gctx); err != nil {
				s.log.Warnf("Failed to %s: %+v", e.name, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Integrations groups the best-effort collaborators shared by the usecases
type Integrations struct {
	Audit    service.AuditService
	Events   service.EventPublisher
	Notifier service.Notifier
	Advisory service.AdvisoryService
	Archiver service.ReportArchiver
	Tokens   service.TokenGate
}

// auditEffect captures the acting user from the request context before the
// effect runs on a detached context.
func auditEffect(ctx context.Context, integ Integrations, db *gorm.DB, clinicID uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) sideEffect {
	actor := middleware.ActorFromContext(ctx)
	return sideEffect{name: "write audit log " + action, run: func(ctx context.Context) error {
		return integ.Audit.Log(ctx, db, service.AuditRecord{
			ClinicID: clinicID,
			ActorID:  actor,
			Action:   action,
			Entity:   entityName,
			EntityID: entityID,
			OldValue: oldValue,
			NewValue: newValue,
		})
	}}
}

func eventEffect(integ Integrations, event service.QueueEvent) sideEffect {
	return sideEffect{name: "publish " + event.Type, run: func(ctx context.Context) error {
		return integ.Events.Publish(ctx, event)
	}}
}
