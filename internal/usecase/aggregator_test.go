package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/report-service/internal/entity"
	"github.com/user/report-service/internal/repository"
)

func intPtr(i int) *int { return &i }

func TestAggregatorTwoPageScan(t *testing.T) {
	state := NewAggregationState(1000)

	// Page 1: a ranked row and the keyword's search volume.
	err := state.Consume([]entity.PositionRecord{
		{Keyword: "shoes", Date: "2024-01-01", Source: entity.SourceGoogle, Position: intPtr(3)},
		{Keyword: "shoes", Source: entity.SourceWordstat, Position: intPtr(1000)},
	})
	require.NoError(t, err)

	// Page 2: the same keyword again, with a date unseen on page 1.
	err = state.Consume([]entity.PositionRecord{
		{Keyword: "shoes", Date: "2024-01-02", Source: entity.SourceGoogle, Position: intPtr(5)},
	})
	require.NoError(t, err)

	rows := state.Rows()
	require.Len(t, rows, 1, "a keyword spanning pages must yield a single row")

	row := rows[0]
	assert.Equal(t, "shoes", row.Keyword)
	require.NotNil(t, row.Wordstat)
	assert.Equal(t, 1000, *row.Wordstat)
	require.Len(t, row.Positions, 2)
	assert.Equal(t, 3, *row.Positions["2024-01-01"])
	assert.Equal(t, 5, *row.Positions["2024-01-02"])

	// The late date is part of the header set because nothing is emitted
	// before the scan completes.
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, state.Dates())
}

func TestAggregatorNoRecordLoss(t *testing.T) {
	state := NewAggregationState(1000)

	pages := [][]entity.PositionRecord{
		{
			{Keyword: "a", Date: "2024-02-01", Source: entity.SourceGoogle, Position: intPtr(1)},
			{Keyword: "b", Date: "2024-02-01", Source: entity.SourceYandex, Position: intPtr(2)},
			{Keyword: "", Date: "2024-02-01", Source: entity.SourceGoogle, Position: intPtr(9)},
		},
		{
			{Keyword: "a", Date: "2024-02-02", Source: entity.SourceGoogle, Position: nil},
			{Keyword: "b", Source: entity.SourceWordstat, Position: intPtr(300)},
			{Keyword: "c", Date: "2024-02-03", Source: entity.SourceGoogle, Position: intPtr(7)},
		},
	}

	total := 0
	for _, page := range pages {
		require.NoError(t, state.Consume(page))
		total += len(page)
	}

	positionEntries := 0
	wordstatEvents := 0
	for _, row := range state.Rows() {
		positionEntries += len(row.Positions)
		if row.Wordstat != nil {
			wordstatEvents++
		}
	}
	emptyKeywords, malformedDates := state.Skipped()

	assert.Equal(t, 1, emptyKeywords)
	assert.Equal(t, 0, malformedDates)
	assert.Equal(t, total-emptyKeywords, positionEntries+wordstatEvents)
}

func TestAggregatorLastWriteWins(t *testing.T) {
	state := NewAggregationState(1000)

	err := state.Consume([]entity.PositionRecord{
		{Keyword: "boots", Date: "2024-01-05", Source: entity.SourceGoogle, Position: intPtr(10)},
		{Keyword: "boots", Date: "2024-01-05", Source: entity.SourceGoogle, Position: intPtr(4)},
		{Keyword: "boots", Source: entity.SourceWordstat, Position: intPtr(100)},
		{Keyword: "boots", Source: entity.SourceWordstat, Position: intPtr(250)},
	})
	require.NoError(t, err)

	rows := state.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, 4, *rows[0].Positions["2024-01-05"])
	assert.Equal(t, 250, *rows[0].Wordstat)
}

func TestAggregatorSkipsMalformedDates(t *testing.T) {
	state := NewAggregationState(1000)

	err := state.Consume([]entity.PositionRecord{
		{Keyword: "x", Date: "not-a-date", Source: entity.SourceGoogle, Position: intPtr(1)},
		{Keyword: "x", Date: "2024-01-01T10:20:30Z", Source: entity.SourceGoogle, Position: intPtr(2)},
		{Keyword: "x", Date: "2024-01-02 08:00:00", Source: entity.SourceGoogle, Position: intPtr(3)},
	})
	require.NoError(t, err)

	_, malformedDates := state.Skipped()
	assert.Equal(t, 1, malformedDates)

	rows := state.Rows()
	require.Len(t, rows, 1)
	// Timestamps are truncated to day granularity.
	assert.Equal(t, 2, *rows[0].Positions["2024-01-01"])
	assert.Equal(t, 3, *rows[0].Positions["2024-01-02"])
}

func TestAggregatorNeverCreatesEmptyRows(t *testing.T) {
	state := NewAggregationState(1000)

	err := state.Consume([]entity.PositionRecord{
		{Keyword: "", Source: entity.SourceWordstat, Position: intPtr(50)},
		{Keyword: "", Date: "2024-01-01", Source: entity.SourceGoogle, Position: intPtr(1)},
	})
	require.NoError(t, err)

	assert.Empty(t, state.Rows())
	assert.Empty(t, state.Dates())
}

func TestAggregatorMalformedDateOnlyKeywordYieldsNoRow(t *testing.T) {
	state := NewAggregationState(1000)

	err := state.Consume([]entity.PositionRecord{
		{Keyword: "orphan", Date: "not-a-date", Source: entity.SourceGoogle, Position: intPtr(1)},
	})
	require.NoError(t, err)

	// A keyword seen only through skipped records must not turn into an
	// all-blank line in the artifact.
	assert.Empty(t, state.Rows())
	assert.Empty(t, state.Dates())

	_, malformedDates := state.Skipped()
	assert.Equal(t, 1, malformedDates)

	// A later valid record still creates the row as usual.
	require.NoError(t, state.Consume([]entity.PositionRecord{
		{Keyword: "orphan", Date: "2024-01-03", Source: entity.SourceGoogle, Position: intPtr(2)},
	}))
	rows := state.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, 2, *rows[0].Positions["2024-01-03"])
}

func TestAggregatorFirstAppearanceOrder(t *testing.T) {
	state := NewAggregationState(1000)

	require.NoError(t, state.Consume([]entity.PositionRecord{
		{Keyword: "zebra", Date: "2024-01-01", Source: entity.SourceGoogle, Position: intPtr(1)},
		{Keyword: "apple", Date: "2024-01-01", Source: entity.SourceGoogle, Position: intPtr(2)},
	}))
	require.NoError(t, state.Consume([]entity.PositionRecord{
		{Keyword: "mango", Date: "2024-01-01", Source: entity.SourceGoogle, Position: intPtr(3)},
		{Keyword: "zebra", Date: "2024-01-02", Source: entity.SourceGoogle, Position: intPtr(4)},
	}))

	rows := state.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "zebra", rows[0].Keyword)
	assert.Equal(t, "apple", rows[1].Keyword)
	assert.Equal(t, "mango", rows[2].Keyword)
}

func TestAggregatorKeywordLimit(t *testing.T) {
	state := NewAggregationState(2)

	err := state.Consume([]entity.PositionRecord{
		{Keyword: "one", Date: "2024-01-01", Source: entity.SourceGoogle, Position: intPtr(1)},
		{Keyword: "two", Date: "2024-01-01", Source: entity.SourceGoogle, Position: intPtr(2)},
		{Keyword: "three", Date: "2024-01-01", Source: entity.SourceGoogle, Position: intPtr(3)},
	})
	assert.ErrorIs(t, err, repository.ErrAggregationLimit)

	// Existing keywords keep accumulating below the cap.
	err = NewAggregationState(2).Consume([]entity.PositionRecord{
		{Keyword: "one", Date: "2024-01-01", Source: entity.SourceGoogle, Position: intPtr(1)},
		{Keyword: "two", Date: "2024-01-01", Source: entity.SourceGoogle, Position: intPtr(2)},
		{Keyword: "one", Date: "2024-01-02", Source: entity.SourceGoogle, Position: intPtr(5)},
	})
	assert.NoError(t, err)
}

func TestAggregatorDatesSortedAscending(t *testing.T) {
	state := NewAggregationState(1000)

	require.NoError(t, state.Consume([]entity.PositionRecord{
		{Keyword: "k", Date: "2024-03-15", Source: entity.SourceGoogle, Position: intPtr(1)},
		{Keyword: "k", Date: "2024-01-02", Source: entity.SourceGoogle, Position: intPtr(2)},
		{Keyword: "k", Date: "2024-02-10", Source: entity.SourceGoogle, Position: intPtr(3)},
	}))

	assert.Equal(t, []string{"2024-01-02", "2024-02-10", "2024-03-15"}, state.Dates())
}
