// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"regexp"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UUID validation regex (simple version).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// LearnerID represents a unique learner identifier (UUID format).
type LearnerID string

// IsValid checks if the learner ID is a valid UUID.
func (l LearnerID) IsValid() bool {
	return uuidRegex.MatchString(string(l))
}

// String returns the string representation.
func (l LearnerID) String() string {
	return string(l)
}

// IsEmpty checks if the ID is empty.
func (l LearnerID) IsEmpty() bool {
	return l == ""
}

// NewLearnerID creates a new LearnerID with validation.
func NewLearnerID(id string) (LearnerID, error) {
	lid := LearnerID(strings.ToLower(strings.TrimSpace(id)))
	if !lid.IsValid() {
		return "", NewDomainError("shared", "NewLearnerID", ErrInvalidID, "invalid learner ID format")
	}
	return lid, nil
}

// WordID represents a unique word identifier (UUID format).
type WordID string

// IsValid checks if the word ID is a valid UUID.
func (w WordID) IsValid() bool {
	return uuidRegex.MatchString(string(w))
}

// String returns the string representation.
func (w WordID) String() string {
	return string(w)
}

// IsEmpty checks if the ID is empty.
func (w WordID) IsEmpty() bool {
	return w == ""
}

// NewWordID creates a new WordID with validation.
func NewWordID(id string) (WordID, error) {
	wid := WordID(strings.ToLower(strings.TrimSpace(id)))
	if !wid.IsValid() {
		return "", NewDomainError("shared", "NewWordID", ErrInvalidID, "invalid word ID format")
	}
	return wid, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// XP Value Object (Experience Points)
// ═══════════════════════════════════════════════════════════════════════════

// XP represents experience points earned by a learner.
type XP int

const (
	// XP boundaries
	MinXP XP = 0
	MaxXP XP = 1000000 // 1 million XP cap
)

// IsValid checks if the XP value is within valid range.
func (x XP) IsValid() bool {
	return x >= MinXP && x <= MaxXP
}

// Int returns the underlying int value.
func (x XP) Int() int {
	return int(x)
}

// Add adds XP and returns the result, capped at MaxXP.
func (x XP) Add(amount int) XP {
	result := XP(int(x) + amount)
	if result > MaxXP {
		return MaxXP
	}
	if result < MinXP {
		return MinXP
	}
	return result
}

// Subtract subtracts XP and returns the result, floored at MinXP.
func (x XP) Subtract(amount int) XP {
	result := XP(int(x) - amount)
	if result < MinXP {
		return MinXP
	}
	return result
}

// Level derives the level from total XP using the threshold table.
// The level is never stored: it is always recomputed from XP.
func (x XP) Level() Level {
	level := MinLevel
	for l := MinLevel; l <= MaxLevel; l++ {
		if int(x) >= l.RequiredXP() {
			level = l
		} else {
			break
		}
	}
	return level
}

// ProgressToNextLevel returns percentage progress to next level (0-100).
// Returns 100 at the maximum level.
func (x XP) ProgressToNextLevel() int {
	currentLevel := x.Level()
	if currentLevel >= MaxLevel {
		return 100
	}
	currentLevelXP := currentLevel.RequiredXP()
	nextLevelXP := (currentLevel + 1).RequiredXP()

	xpInCurrentLevel := int(x) - currentLevelXP
	xpNeededForLevel := nextLevelXP - currentLevelXP

	if xpNeededForLevel == 0 {
		return 100
	}

	return (xpInCurrentLevel * 100) / xpNeededForLevel
}

// XPToNextLevel returns how much XP remains until the next level.
// Returns 0 at the maximum level.
func (x XP) XPToNextLevel() int {
	currentLevel := x.Level()
	if currentLevel >= MaxLevel {
		return 0
	}
	remaining := (currentLevel + 1).RequiredXP() - int(x)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// NewXP creates a new XP value with validation.
func NewXP(amount int) (XP, error) {
	if amount < int(MinXP) {
		return 0, NewDomainError("shared", "NewXP", ErrNegativeValue, "XP cannot be negative")
	}
	if amount > int(MaxXP) {
		return MaxXP, nil // Cap at max
	}
	return XP(amount), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Level Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Level represents a learner's level, derived from total XP.
type Level int

const (
	MinLevel Level = 1
	MaxLevel Level = 20
)

// levelThresholds holds the cumulative XP required to reach each level.
// Index 0 is level 1.
var levelThresholds = [MaxLevel]int{
	0,     // 1
	100,   // 2
	250,   // 3
	450,   // 4
	700,   // 5
	1000,  // 6
	1400,  // 7
	1850,  // 8
	2350,  // 9
	2900,  // 10
	3500,  // 11
	4150,  // 12
	4850,  // 13
	5600,  // 14
	6400,  // 15
	7250,  // 16
	8150,  // 17
	9100,  // 18
	10100, // 19
	11150, // 20
}

// IsValid checks if the level is within valid range.
func (l Level) IsValid() bool {
	return l >= MinLevel && l <= MaxLevel
}

// Int returns the underlying int value.
func (l Level) Int() int {
	return int(l)
}

// RequiredXP returns the total XP required to reach this level.
func (l Level) RequiredXP() int {
	if l < MinLevel {
		return 0
	}
	if l > MaxLevel {
		return levelThresholds[MaxLevel-1]
	}
	return levelThresholds[l-1]
}

// NextThreshold returns the total XP required for the next level and
// whether a next level exists. At the maximum level there is none.
func (l Level) NextThreshold() (int, bool) {
	if l >= MaxLevel {
		return 0, false
	}
	return (l + 1).RequiredXP(), true
}

// LevelRequirement describes one row of the level catalogue.
type LevelRequirement struct {
	Level      Level
	RequiredXP int
}

// LevelCatalogue returns the full level table in ascending order.
func LevelCatalogue() []LevelRequirement {
	out := make([]LevelRequirement, 0, MaxLevel)
	for l := MinLevel; l <= MaxLevel; l++ {
		out = append(out, LevelRequirement{Level: l, RequiredXP: l.RequiredXP()})
	}
	return out
}

// ═══════════════════════════════════════════════════════════════════════════
// Quality Value Object (spaced-repetition review grade)
// ═══════════════════════════════════════════════════════════════════════════

// Quality represents a self-assessed review grade (0-5).
// Grades of 3 and above count as a successful recall.
type Quality int

const (
	MinQuality Quality = 0
	MaxQuality Quality = 5

	// PassingQuality is the lowest grade that counts as a correct answer.
	PassingQuality Quality = 3
)

// IsValid checks if the quality is within valid range.
func (q Quality) IsValid() bool {
	return q >= MinQuality && q <= MaxQuality
}

// Int returns the underlying int value.
func (q Quality) Int() int {
	return int(q)
}

// IsPassing returns true if the grade counts as a successful recall.
func (q Quality) IsPassing() bool {
	return q >= PassingQuality
}

// NewQuality creates a new Quality with validation.
func NewQuality(value int) (Quality, error) {
	q := Quality(value)
	if !q.IsValid() {
		return 0, ErrInvalidQuality
	}
	return q, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// TimeRange Value Object
// ═══════════════════════════════════════════════════════════════════════════

// TimeRange represents a time period.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// IsValid checks if the time range is valid.
func (t TimeRange) IsValid() bool {
	return !t.From.IsZero() && !t.To.IsZero() && !t.From.After(t.To)
}

// Duration returns the duration of the time range.
func (t TimeRange) Duration() time.Duration {
	return t.To.Sub(t.From)
}

// Contains checks if a time is within the range.
func (t TimeRange) Contains(tm time.Time) bool {
	return (tm.Equal(t.From) || tm.After(t.From)) && (tm.Equal(t.To) || tm.Before(t.To))
}

// NewTimeRange creates a new TimeRange with validation.
func NewTimeRange(from, to time.Time) (TimeRange, error) {
	tr := TimeRange{From: from, To: to}
	if !tr.IsValid() {
		return TimeRange{}, NewDomainError("shared", "NewTimeRange", ErrInvalidInput, "'from' must be before 'to'")
	}
	return tr, nil
}

// Today returns a TimeRange for today (UTC).
func Today() TimeRange {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour).Add(-time.Nanosecond)
	return TimeRange{From: start, To: end}
}

// LastNDays returns a TimeRange for the last N days.
func LastNDays(n int) TimeRange {
	now := time.Now().UTC()
	return TimeRange{
		From: now.AddDate(0, 0, -n),
		To:   now,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// DefaultPagination returns default pagination.
func DefaultPagination() Pagination {
	return NewPagination(1, DefaultPageSize)
}
