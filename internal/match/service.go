package match

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Broadcaster fans an event out to every live subscriber of a lobby/match
// channel. Delivery is best-effort, at-most-once; the core never waits on it.
type Broadcaster interface {
	Publish(matchID uuid.UUID, event map[string]interface{})
}

// Service is the live match coordination core: lobby lifecycle, card
// dealing, answer adjudication, the auto-end scheduler and settlement.
// Every externally triggered operation runs as one Store transaction;
// broadcasts and timer mutations happen only after a successful commit.
type Service struct {
	store Store
	hub   Broadcaster
	sched *Scheduler
	log   *logrus.Logger

	// randInt is rand.Intn, swappable in tests.
	randInt func(n int) int
}

func NewService(store Store, hub Broadcaster, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		store:   store,
		hub:     hub,
		sched:   NewScheduler(),
		log:     log,
		randInt: rand.Intn,
	}
}

// Scheduler exposes the auto-end timer registry, mainly for tests and for
// graceful shutdown.
func (s *Service) Scheduler() *Scheduler { return s.sched }

func (s *Service) publish(matchID uuid.UUID, event map[string]interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(matchID, event)
}
