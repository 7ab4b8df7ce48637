// Package score keeps the two point counters the game distinguishes:
// session points, volatile and zeroed when a new match starts, and all-time
// points, which are durable and never reset by session lifecycle events.
// Play statistics (rounds/games played and won) live beside the all-time
// counters in SQLite.
package score

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
)

type Entry struct {
	UserID string
	Points int
}

type Stats struct {
	RoundsPlayed int
	RoundsWon    int
	GamesPlayed  int
	GamesWon     int
}

type Ledger struct {
	mu      sync.Mutex
	session map[string]map[string]int
	order   map[string][]string

	db *sql.DB
}

func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{
		session: make(map[string]map[string]int),
		order:   make(map[string][]string),
		db:      db,
	}
}

// ResetSession zeroes the guild's session points. All-time counters are
// untouched.
func (l *Ledger) ResetSession(guildID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.session[guildID] = make(map[string]int)
	l.order[guildID] = nil
}

// AddPoints increments both the session and the all-time counter.
func (l *Ledger) AddPoints(ctx context.Context, guildID, userID string, points int) error {
	l.mu.Lock()
	g := l.session[guildID]
	if g == nil {
		g = make(map[string]int)
		l.session[guildID] = g
	}
	if _, seen := g[userID]; !seen {
		l.order[guildID] = append(l.order[guildID], userID)
	}
	g[userID] += points
	l.mu.Unlock()

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO all_time_scores (guild_id, user_id, points) VALUES (?, ?, ?)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET points = points + excluded.points
	`, guildID, userID, points)
	if err != nil {
		return fmt.Errorf("updating all-time score: %w", err)
	}
	return nil
}

// SessionPoints returns userID's points in the current match, zero if they
// have not scored.
func (l *Ledger) SessionPoints(guildID, userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session[guildID][userID]
}

// SessionScores returns the guild's scoreboard, descending by points.
// Ties keep the order participants first scored in.
func (l *Ledger) SessionScores(guildID string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	g := l.session[guildID]
	entries := make([]Entry, 0, len(g))
	for _, userID := range l.order[guildID] {
		entries = append(entries, Entry{UserID: userID, Points: g[userID]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	return entries
}

// AllTimePoints returns userID's lifetime total for the guild.
func (l *Ledger) AllTimePoints(ctx context.Context, guildID, userID string) (int, error) {
	var points int
	err := l.db.QueryRowContext(ctx, `
		SELECT points FROM all_time_scores WHERE guild_id = ? AND user_id = ?
	`, guildID, userID).Scan(&points)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying all-time score: %w", err)
	}
	return points, nil
}

func (l *Ledger) AddRoundPlayed(ctx context.Context, guildID, userID string) error {
	return l.bumpStat(ctx, guildID, userID, "rounds_played")
}

func (l *Ledger) AddRoundWon(ctx context.Context, guildID, userID string) error {
	return l.bumpStat(ctx, guildID, userID, "rounds_won")
}

func (l *Ledger) AddGamePlayed(ctx context.Context, guildID, userID string) error {
	return l.bumpStat(ctx, guildID, userID, "games_played")
}

func (l *Ledger) AddGameWon(ctx context.Context, guildID, userID string) error {
	return l.bumpStat(ctx, guildID, userID, "games_won")
}

// bumpStat increments one play_stats column. column is always one of the
// four fixed names above, never user input.
func (l *Ledger) bumpStat(ctx context.Context, guildID, userID, column string) error {
	q := fmt.Sprintf(`
		INSERT INTO play_stats (guild_id, user_id, %[1]s) VALUES (?, ?, 1)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET %[1]s = %[1]s + 1
	`, column)
	if _, err := l.db.ExecContext(ctx, q, guildID, userID); err != nil {
		return fmt.Errorf("updating %s: %w", column, err)
	}
	return nil
}

// PlayStats returns userID's play statistics for the guild.
func (l *Ledger) PlayStats(ctx context.Context, guildID, userID string) (Stats, error) {
	var s Stats
	err := l.db.QueryRowContext(ctx, `
		SELECT rounds_played, rounds_won, games_played, games_won
		FROM play_stats WHERE guild_id = ? AND user_id = ?
	`, guildID, userID).Scan(&s.RoundsPlayed, &s.RoundsWon, &s.GamesPlayed, &s.GamesWon)
	if errors.Is(err, sql.ErrNoRows) {
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("querying play stats: %w", err)
	}
	return s, nil
}
