package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/user/report-service/internal/entity"
	"github.com/user/report-service/internal/repository"
)

// dateLayouts are tried in order when normalizing a record's date to day
// granularity. The upstream usually sends plain ISO days, but historical
// rows can carry full timestamps.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// AggregationState pivots a paginated record stream into keyword rows and
// the global set of dates seen across the whole scan. One instance is
// owned by exactly one report job and is never shared.
//
// The full scan is buffered before anything is emitted: headers come from
// the complete date set and every keyword is emitted exactly once, so a
// keyword spanning several pages and a date first appearing on a late
// page are both handled correctly. Memory is bounded by maxKeywords.
type AggregationState struct {
	maxKeywords int

	rows  map[string]*entity.KeywordRow
	order []string
	dates map[string]struct{}

	emptyKeywords  int
	malformedDates int
}

func NewAggregationState(maxKeywords int) *AggregationState {
	return &AggregationState{
		maxKeywords: maxKeywords,
		rows:        make(map[string]*entity.KeywordRow),
		dates:       make(map[string]struct{}),
	}
}

// Consume folds one page of records into the state. Records with an empty
// keyword are discarded; records with an unparseable date are skipped and
// counted before any row exists, so a keyword seen only through skipped
// records never produces a row. Duplicate keyword+date pairs and duplicate
// wordstat rows are last-write-wins, never an error.
func (s *AggregationState) Consume(records []entity.PositionRecord) error {
	for _, rec := range records {
		if rec.Keyword == "" {
			s.emptyKeywords++
			continue
		}

		var day string
		if rec.Source != entity.SourceWordstat {
			parsed, ok := parseDay(rec.Date)
			if !ok {
				s.malformedDates++
				continue
			}
			day = parsed
		}

		row, ok := s.rows[rec.Keyword]
		if !ok {
			if len(s.rows) >= s.maxKeywords {
				return fmt.Errorf("%w: more than %d keywords", repository.ErrAggregationLimit, s.maxKeywords)
			}
			row = &entity.KeywordRow{
				Keyword:   rec.Keyword,
				Positions: make(map[string]*int),
			}
			s.rows[rec.Keyword] = row
			s.order = append(s.order, rec.Keyword)
		}

		if rec.Source == entity.SourceWordstat {
			row.Wordstat = rec.Position
			continue
		}
		s.dates[day] = struct{}{}
		row.Positions[day] = rec.Position
	}
	return nil
}

// Dates returns the complete distinct date set of the scan, sorted
// ascending. Valid only after the last page was consumed.
func (s *AggregationState) Dates() []string {
	dates := make([]string, 0, len(s.dates))
	for d := range s.dates {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Rows returns one row per keyword in first-appearance order. Valid only
// after the last page was consumed.
func (s *AggregationState) Rows() []entity.KeywordRow {
	rows := make([]entity.KeywordRow, 0, len(s.order))
	for _, keyword := range s.order {
		rows = append(rows, *s.rows[keyword])
	}
	return rows
}

// Skipped returns how many records were discarded, by reason.
func (s *AggregationState) Skipped() (emptyKeywords, malformedDates int) {
	return s.emptyKeywords, s.malformedDates
}

func parseDay(raw string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
