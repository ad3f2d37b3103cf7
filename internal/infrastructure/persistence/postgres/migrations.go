package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations in order.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_learners",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_words",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_learned_words",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
		{
			Version: 4,
			Name:    "create_item_states",
			UpSQL:   migration004Up,
			DownSQL: migration004Down,
		},
		{
			Version: 5,
			Name:    "create_badges",
			UpSQL:   migration005Up,
			DownSQL: migration005Down,
		},
	}
}

const migration001Up = `
CREATE TABLE learners (
    id                  UUID PRIMARY KEY,
    display_name        TEXT NOT NULL,
    xp                  INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
    current_streak      INTEGER NOT NULL DEFAULT 0 CHECK (current_streak >= 0),
    longest_streak      INTEGER NOT NULL DEFAULT 0 CHECK (longest_streak >= 0),
    last_activity_at    TIMESTAMP WITH TIME ZONE,
    total_words         INTEGER NOT NULL DEFAULT 0,
    flashcards          INTEGER NOT NULL DEFAULT 0,
    pronunciation       INTEGER NOT NULL DEFAULT 0,
    grammar             INTEGER NOT NULL DEFAULT 0,
    total_words_learned INTEGER NOT NULL DEFAULT 0,
    version             BIGINT NOT NULL DEFAULT 0,
    created_at          TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_learners_xp ON learners (xp DESC);
`

const migration001Down = `
DROP TABLE IF EXISTS learners;
`

const migration002Up = `
CREATE TABLE words (
    id            UUID PRIMARY KEY,
    text          TEXT NOT NULL,
    band          TEXT NOT NULL CHECK (band IN ('beginner', 'intermediate', 'advanced')),
    numeric_level INTEGER NOT NULL CHECK (numeric_level BETWEEN 1 AND 10),
    added_at      TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX idx_words_band_level ON words (band, numeric_level);
`

const migration002Down = `
DROP TABLE IF EXISTS words;
`

const migration003Up = `
CREATE TABLE learned_words (
    learner_id UUID NOT NULL REFERENCES learners (id) ON DELETE CASCADE,
    word_id    UUID NOT NULL REFERENCES words (id) ON DELETE CASCADE,
    activity   TEXT NOT NULL,
    learned_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    PRIMARY KEY (learner_id, word_id)
);

CREATE INDEX idx_learned_words_learned_at ON learned_words (learner_id, learned_at);
`

const migration003Down = `
DROP TABLE IF EXISTS learned_words;
`

const migration004Up = `
CREATE TABLE learner_item_states (
    learner_id      UUID NOT NULL REFERENCES learners (id) ON DELETE CASCADE,
    word_id         UUID NOT NULL REFERENCES words (id) ON DELETE CASCADE,
    is_memorized    BOOLEAN NOT NULL DEFAULT FALSE,
    memorized_at    TIMESTAMP WITH TIME ZONE,
    easiness_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
    interval_days   INTEGER NOT NULL DEFAULT 0,
    repetitions     INTEGER NOT NULL DEFAULT 0,
    correct_count   INTEGER NOT NULL DEFAULT 0,
    incorrect_count INTEGER NOT NULL DEFAULT 0,
    next_review_at  TIMESTAMP WITH TIME ZONE,
    added_at        TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    PRIMARY KEY (learner_id, word_id)
);

CREATE INDEX idx_item_states_due ON learner_item_states (learner_id, next_review_at);
`

const migration004Down = `
DROP TABLE IF EXISTS learner_item_states;
`

const migration005Up = `
CREATE TABLE badges (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    description   TEXT NOT NULL,
    category      TEXT NOT NULL,
    criteria_type TEXT NOT NULL,
    target        INTEGER NOT NULL CHECK (target > 0),
    xp_bonus      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE learner_badges (
    learner_id UUID NOT NULL REFERENCES learners (id) ON DELETE CASCADE,
    badge_id   TEXT NOT NULL REFERENCES badges (id) ON DELETE CASCADE,
    earned_at  TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    PRIMARY KEY (learner_id, badge_id)
);
`

const migration005Down = `
DROP TABLE IF EXISTS learner_badges;
DROP TABLE IF EXISTS badges;
`
