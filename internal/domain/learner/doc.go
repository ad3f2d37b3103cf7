// Package learner contains the learner domain model for the Wordwise
// progress engine.
//
// This is the core of the business logic. The package defines:
//
//   - Entities: Learner (the aggregate root)
//   - Value Objects: Streak, DailyCounters, ActivityKind, QuotaConfig
//   - Repository interfaces: Repository, LearnedWordRepository, Cache
//
// # Architectural principles
//
// The package follows Clean Architecture and DDD:
//
//  1. No infrastructure dependencies - only the standard library and shared
//     domain types
//  2. Dependency Inversion - interfaces defined here are implemented in
//     infrastructure
//  3. Rich Domain Model - business rules live on the entities
//
// # The Learner aggregate
//
// Learner is the single mutation point for all progress state: XP, the
// derived level, the daily streak, per-activity daily counters, and the
// lifetime learned-word total. Every write path goes through one of its
// methods; concurrent writers are detected by the Version field checked
// at persistence time.
//
//	learner, err := NewLearner(NewLearnerParams{
//	    ID:          uuid.New().String(),
//	    DisplayName: "Aliya",
//	})
//
//	rollover := learner.StartDay(time.Now())
//	if err := learner.CheckAndReserve(ActivityFlashcard, quotas); err != nil {
//	    return err // quota exceeded, nothing was mutated
//	}
//	outcome := learner.AddXP(5)
//
// # Day rollover
//
// Streak evaluation and the daily counter reset both hang off the same
// "is this a new day" check. StartDay performs that check exactly once
// per request, before any quota reservation, so the two concerns can
// never observe different day boundaries.
package learner
