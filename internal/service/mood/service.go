// Package mood records daily mood check-ins and serves the weekly chart.
package mood

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/model/identity"
	"github.com/otsyhq/otsy-backend/internal/model/wellness"
	"github.com/otsyhq/otsy-backend/internal/store"
)

// historyWindow is the rolling number of entries the chart shows.
const historyWindow = 7

// levels maps mood words to chart levels. Unknown words land on the neutral
// midpoint rather than erroring; logging a mood must never fail on wording.
var levels = map[string]int{
	"happy":   5,
	"great":   5,
	"good":    4,
	"okay":    3,
	"low":     2,
	"bad":     2,
	"anxious": 1,
}

const defaultLevel = 3

var dayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type Service struct {
	sinks  store.Dual
	logger *zap.Logger
	now    func() time.Time
}

func NewService(sinks store.Dual, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sinks: sinks, logger: logger, now: time.Now}
}

// Log records one mood check-in for the identity's own sink.
func (s *Service) Log(ctx context.Context, id identity.Identity, mood string) (wellness.MoodEntry, error) {
	mood = strings.ToLower(strings.TrimSpace(mood))
	level, ok := levels[mood]
	if !ok {
		level = defaultLevel
	}

	now := s.now().UTC()
	entry := wellness.MoodEntry{
		ID:        uuid.NewString(),
		Mood:      mood,
		Level:     level,
		Day:       dayLabels[now.Weekday()],
		CreatedAt: now,
	}

	if err := s.sinks.For(id).AppendMood(ctx, id.ID(), entry); err != nil {
		return wellness.MoodEntry{}, err
	}

	s.logger.Debug("mood logged",
		zap.String("mood", mood), zap.Int("level", level))
	return entry, nil
}

// Week returns the last seven check-ins in chronological order, shaped for
// the overview chart.
func (s *Service) Week(ctx context.Context, id identity.Identity) ([]wellness.DayLevel, error) {
	entries, err := s.sinks.For(id).MoodHistory(ctx, id.ID(), historyWindow)
	if err != nil {
		return nil, err
	}

	overview := make([]wellness.DayLevel, 0, len(entries))
	for _, e := range entries {
		overview = append(overview, wellness.DayLevel{Day: e.Day, Level: e.Level})
	}
	return overview, nil
}
