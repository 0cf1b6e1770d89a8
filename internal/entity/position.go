package entity

import "time"

// PositionRecord is a single row returned by the position API. Ranked rows
// carry a date and a google/yandex source; search-volume rows carry the
// wordstat pseudo-source and no date. A nil Position means "not ranked".
type PositionRecord struct {
	Keyword  string `json:"keyword"`
	Date     string `json:"date,omitempty"`
	Source   string `json:"source"`
	Position *int   `json:"position"`
}

// PositionBatch is one fixed-size page of a scan. HasMore=false marks the
// end of the scan.
type PositionBatch struct {
	Records []PositionRecord `json:"records"`
	HasMore bool             `json:"has_more"`
}

// StatisticsSummary holds the aggregate counters shown in a report header.
type StatisticsSummary struct {
	TotalKeywords   int      `json:"total_keywords"`
	TotalRecords    int      `json:"total_records"`
	AveragePosition *float64 `json:"average_position"`
	Top10Count      int      `json:"top10_count"`
}

// KeywordRow is the per-keyword aggregation unit: one search-volume figure
// and a date→rank series. Positions is keyed by ISO day (2006-01-02); a
// nil value means the keyword was tracked that day but not ranked.
type KeywordRow struct {
	Keyword   string
	Wordstat  *int
	Positions map[string]*int
}

// ReportData is the finalized aggregation result handed to an exporter
// after the full scan: the complete sorted date set and one row per
// keyword in first-appearance order.
type ReportData struct {
	Summary     *StatisticsSummary
	Dates       []string
	Rows        []KeywordRow
	GeneratedAt time.Time
}
