// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler runs the background jobs: a one-second regen tick that keeps
// displayed heart countdowns fresh, and an hourly sweep that rolls quest
// periods over for resident stores. Both are conveniences, not correctness
// requirements — regeneration is lazy and quest generation happens on
// demand, so a missed tick changes nothing.
type Scheduler struct {
	scheduler *gocron.Scheduler
}

var appScheduler *Scheduler

// InitScheduler creates and starts the singleton scheduler.
func InitScheduler() {
	s := &Scheduler{scheduler: gocron.NewScheduler(time.Local)}
	s.Start()
	appScheduler = s
}

// GetScheduler returns the running scheduler, or nil when not started.
func GetScheduler() *Scheduler {
	return appScheduler
}

// Start registers and launches all jobs without blocking.
func (s *Scheduler) Start() {
	if _, err := s.scheduler.Every(1).Second().Do(s.tickRegen); err != nil {
		log.Printf("scheduler: regen tick not registered: %v", err)
	}
	if _, err := s.scheduler.Every(1).Hour().Do(s.sweepQuestPeriods); err != nil {
		log.Printf("scheduler: quest sweep not registered: %v", err)
	}
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) tickRegen() {
	for _, st := range GetStoreManager().Loaded() {
		st.Regenerate()
	}
}

func (s *Scheduler) sweepQuestPeriods() {
	for _, st := range GetStoreManager().Loaded() {
		st.EnsureQuests()
	}
}
