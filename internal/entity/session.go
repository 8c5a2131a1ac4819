package entity

import (
	"fmt"
	"time"
)

const (
	RecentlySeenLimit = 10
	InsightWindow     = 7
)

type SessionRecord struct {
	ID              string                 `json:"id"`
	SessionID       string                 `json:"session_id"`
	Timestamp       time.Time              `json:"timestamp"`
	InputMode       InputMode              `json:"input_mode"`
	DominantEmotion EmotionCategory        `json:"dominant_emotion"`
	Distribution    PercentageDistribution `json:"percentage_distribution"`
	Recommendations Recommendations        `json:"recommendations_given"`
	SampleImages    [][]byte               `json:"sample_images,omitempty"`
}

type UserPreferenceState struct {
	RecentlySeen []EmotionCategory `json:"recently_seen_emotions"`
	SessionCount int               `json:"session_count"`
}

// MoodSession is the per-user mood state. It is not safe for concurrent use, the session
// store serializes access per id.
type MoodSession struct {
	ID          string              `json:"id"`
	CreatedAt   time.Time           `json:"created_at"`
	History     []SessionRecord     `json:"history"`
	Preferences UserPreferenceState `json:"preferences"`
}

type RecordInput struct {
	Distribution    PercentageDistribution
	Dominant        EmotionCategory
	Recommendations Recommendations
	InputMode       InputMode
	SampleImages    [][]byte
	Timestamp       time.Time
}

type EmotionCount struct {
	Emotion EmotionCategory `json:"emotion"`
	Count   int             `json:"count"`
}

type MoodInsights struct {
	TotalSessions     int             `json:"total_sessions"`
	MostCommonEmotion EmotionCategory `json:"most_common_emotion"`
	EmotionFrequency  int             `json:"emotion_frequency"`
	MoodStability     float64         `json:"mood_stability"`
	RecentTrend       []EmotionCount  `json:"recent_trend"`
	LastSession       *SessionRecord  `json:"last_session,omitempty"`
}

type HistoryStats struct {
	TotalSessions     int                     `json:"total_sessions"`
	MostUsedMode      InputMode               `json:"most_used_mode"`
	MostCommonEmotion EmotionCategory         `json:"most_common_emotion"`
	DaysActive        int                     `json:"days_active"`
	EmotionCounts     map[EmotionCategory]int `json:"emotion_counts"`
	ModeCounts        map[InputMode]int       `json:"mode_counts"`
	FirstSession      time.Time               `json:"first_session"`
	LastSession       time.Time               `json:"last_session"`
}

func NewMoodSession(id string, now time.Time) *MoodSession {
	return &MoodSession{
		ID:          id,
		CreatedAt:   now,
		History:     []SessionRecord{},
		Preferences: UserPreferenceState{RecentlySeen: []EmotionCategory{}},
	}
}

// Record appends one finished run to the history and updates the preference state.
func (s *MoodSession) Record(in RecordInput) SessionRecord {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	dominant := in.Dominant
	if !dominant.IsValid() {
		dominant = FallbackEmotion
	}

	mode := in.InputMode
	if mode == "" {
		mode = InputModeUnknown
	}

	record := SessionRecord{
		ID:              fmt.Sprintf("session_%d", len(s.History)+1),
		SessionID:       s.ID,
		Timestamp:       ts,
		InputMode:       mode,
		DominantEmotion: dominant,
		Distribution:    in.Distribution.Clone(),
		Recommendations: in.Recommendations,
		SampleImages:    in.SampleImages,
	}

	s.History = append(s.History, record)
	s.Preferences.SessionCount++

	seen := append(s.Preferences.RecentlySeen, dominant)
	if len(seen) > RecentlySeenLimit {
		seen = append([]EmotionCategory(nil), seen[len(seen)-RecentlySeenLimit:]...)
	}
	s.Preferences.RecentlySeen = seen

	return record
}

// Insights summarizes the last InsightWindow records. ok is false when the history is empty.
func (s *MoodSession) Insights() (MoodInsights, bool) {
	if len(s.History) == 0 {
		return MoodInsights{}, false
	}

	window := s.History
	if len(window) > InsightWindow {
		window = window[len(window)-InsightWindow:]
	}

	trend := countInOrder(window)

	mostCommon := trend[0]
	for _, c := range trend[1:] {
		if c.Count > mostCommon.Count {
			mostCommon = c
		}
	}

	last := s.History[len(s.History)-1]

	return MoodInsights{
		TotalSessions:     len(s.History),
		MostCommonEmotion: mostCommon.Emotion,
		EmotionFrequency:  mostCommon.Count,
		MoodStability:     float64(len(trend)) / float64(len(window)),
		RecentTrend:       trend,
		LastSession:       &last,
	}, true
}

// Stats aggregates over the whole history. ok is false when the history is empty.
func (s *MoodSession) Stats() (HistoryStats, bool) {
	if len(s.History) == 0 {
		return HistoryStats{}, false
	}

	stats := HistoryStats{
		TotalSessions: len(s.History),
		EmotionCounts: make(map[EmotionCategory]int),
		ModeCounts:    make(map[InputMode]int),
		FirstSession:  s.History[0].Timestamp,
		LastSession:   s.History[0].Timestamp,
	}

	var modeOrder []InputMode
	for _, r := range s.History {
		if _, ok := stats.ModeCounts[r.InputMode]; !ok {
			modeOrder = append(modeOrder, r.InputMode)
		}
		stats.ModeCounts[r.InputMode]++
		stats.EmotionCounts[r.DominantEmotion]++

		if r.Timestamp.Before(stats.FirstSession) {
			stats.FirstSession = r.Timestamp
		}
		if r.Timestamp.After(stats.LastSession) {
			stats.LastSession = r.Timestamp
		}
	}

	for _, m := range modeOrder {
		if stats.MostUsedMode == "" || stats.ModeCounts[m] > stats.ModeCounts[stats.MostUsedMode] {
			stats.MostUsedMode = m
		}
	}

	emotions := countInOrder(s.History)
	best := emotions[0]
	for _, c := range emotions[1:] {
		if c.Count > best.Count {
			best = c
		}
	}
	stats.MostCommonEmotion = best.Emotion

	stats.DaysActive = int(stats.LastSession.Sub(stats.FirstSession).Hours()/24) + 1

	return stats, true
}

// Clear drops the history and resets the preference state.
func (s *MoodSession) Clear() {
	s.History = []SessionRecord{}
	s.Preferences = UserPreferenceState{RecentlySeen: []EmotionCategory{}}
}

func (s *MoodSession) LatestRecord() (SessionRecord, bool) {
	if len(s.History) == 0 {
		return SessionRecord{}, false
	}
	return s.History[len(s.History)-1], true
}

func (s *MoodSession) FindRecord(id string) (SessionRecord, bool) {
	for _, r := range s.History {
		if r.ID == id {
			return r, true
		}
	}
	return SessionRecord{}, false
}

// countInOrder counts dominant emotions keeping first-seen order.
func countInOrder(records []SessionRecord) []EmotionCount {
	index := make(map[EmotionCategory]int)
	var counts []EmotionCount
	for _, r := range records {
		i, ok := index[r.DominantEmotion]
		if !ok {
			index[r.DominantEmotion] = len(counts)
			counts = append(counts, EmotionCount{Emotion: r.DominantEmotion, Count: 1})
			continue
		}
		counts[i].Count++
	}
	return counts
}

// Clone copies the mutable parts of the session. Records are never changed once appended
// so they are shared.
func (s *MoodSession) Clone() *MoodSession {
	out := *s
	out.History = append([]SessionRecord{}, s.History...)
	out.Preferences.RecentlySeen = append([]EmotionCategory{}, s.Preferences.RecentlySeen...)
	return &out
}
