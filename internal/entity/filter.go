package entity

import (
	"strconv"
	"time"
)

const (
	// pageSizeCap is always sent to the position API as a safety cap,
	// regardless of what the caller asked for.
	pageSizeCap = 500

	defaultLookbackDays = 30

	DeviceDesktop = "desktop"
	DeviceTablet  = "tablet"
	DeviceMobile  = "mobile"

	SourceGoogle = "google"
	SourceYandex = "yandex"
	// SourceWordstat is a pseudo-source carried by result rows only;
	// it is never a valid filter value.
	SourceWordstat = "wordstat"
)

// FilterParams is the raw, independently-nullable filter mapping as it is
// persisted on a report (JSON) or received from a submit request.
type FilterParams struct {
	KeywordID         *int64     `json:"keyword_id,omitempty"`
	GroupID           *int64     `json:"group_id,omitempty"`
	FilterGroupID     *int64     `json:"filter_group_id,omitempty"`
	Device            *string    `json:"device,omitempty"`
	Source            *string    `json:"source,omitempty"`
	Country           *string    `json:"country,omitempty"`
	Lang              *string    `json:"lang,omitempty"`
	OS                *string    `json:"os,omitempty"`
	Ads               *bool      `json:"ads,omitempty"`
	DateFrom          *time.Time `json:"date_from,omitempty"`
	DateTo            *time.Time `json:"date_to,omitempty"`
	RankFrom          *int       `json:"rank_from,omitempty"`
	RankTo            *int       `json:"rank_to,omitempty"`
	DateSort          *string    `json:"date_sort,omitempty"`
	SortType          *string    `json:"sort_type,omitempty"`
	WordstatSort      *string    `json:"wordstat_sort,omitempty"`
	WordstatQueryType *string    `json:"wordstat_query_type,omitempty"`
}

// PositionFilterSpec is the immutable, defaulted filter a report job scans
// with. Build it once per job with NewPositionFilterSpec and pass it by
// value from there on.
type PositionFilterSpec struct {
	SiteID   int64
	Params   FilterParams
	DateFrom time.Time
	DateTo   time.Time
}

// NewPositionFilterSpec merges persisted filter params with defaults.
// An absent date bound falls back to the standard reporting window:
// thirty days back up to tomorrow.
func NewPositionFilterSpec(siteID int64, params FilterParams) PositionFilterSpec {
	spec := PositionFilterSpec{SiteID: siteID, Params: params}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if params.DateFrom != nil {
		spec.DateFrom = params.DateFrom.UTC().Truncate(24 * time.Hour)
	} else {
		spec.DateFrom = today.AddDate(0, 0, -defaultLookbackDays)
	}
	if params.DateTo != nil {
		spec.DateTo = params.DateTo.UTC().Truncate(24 * time.Hour)
	} else {
		spec.DateTo = today.AddDate(0, 0, 1)
	}

	return spec
}

// QueryParams serializes the spec to the flat wire parameters of the
// position API. Unset optional fields are omitted entirely; the limit cap
// is always present.
func (s PositionFilterSpec) QueryParams() map[string]string {
	params := map[string]string{
		"site_id":   strconv.FormatInt(s.SiteID, 10),
		"date_from": s.DateFrom.Format("2006-01-02"),
		"date_to":   s.DateTo.Format("2006-01-02"),
		"limit":     strconv.Itoa(pageSizeCap),
	}

	putInt64 := func(key string, v *int64) {
		if v != nil {
			params[key] = strconv.FormatInt(*v, 10)
		}
	}
	putInt := func(key string, v *int) {
		if v != nil {
			params[key] = strconv.Itoa(*v)
		}
	}
	putString := func(key string, v *string) {
		if v != nil {
			params[key] = *v
		}
	}

	putInt64("keyword_id", s.Params.KeywordID)
	putInt64("group_id", s.Params.GroupID)
	putInt64("filter_group_id", s.Params.FilterGroupID)
	putString("device", s.Params.Device)
	putString("source", s.Params.Source)
	putString("country", s.Params.Country)
	putString("lang", s.Params.Lang)
	putString("os", s.Params.OS)
	putInt("rank_from", s.Params.RankFrom)
	putInt("rank_to", s.Params.RankTo)
	putString("date_sort", s.Params.DateSort)
	putString("sort_type", s.Params.SortType)
	putString("wordstat_sort", s.Params.WordstatSort)
	putString("wordstat_query_type", s.Params.WordstatQueryType)
	if s.Params.Ads != nil {
		if *s.Params.Ads {
			params["ads"] = "1"
		} else {
			params["ads"] = "0"
		}
	}

	return params
}

// ValidDevice reports whether v is an accepted device filter value.
func ValidDevice(v string) bool {
	return v == DeviceDesktop || v == DeviceTablet || v == DeviceMobile
}

// ValidSource reports whether v is an accepted source filter value.
func ValidSource(v string) bool {
	return v == SourceGoogle || v == SourceYandex
}
