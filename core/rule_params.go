package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Index threshold limits
const (
	MaxGroups    = 1000
	MaxIntervals = 1000
)

// AggType is the metric aggregation applied to matching documents
type AggType string

const (
	AggTypeCount AggType = "count"
	AggTypeAvg   AggType = "avg"
	AggTypeMin   AggType = "min"
	AggTypeMax   AggType = "max"
	AggTypeSum   AggType = "sum"
)

// IsValid checks if the aggregation type is known
func (a AggType) IsValid() bool {
	switch a {
	case AggTypeCount, AggTypeAvg, AggTypeMin, AggTypeMax, AggTypeSum:
		return true
	default:
		return false
	}
}

// GroupBy selects whether results are reported as a whole or per term
type GroupBy string

const (
	GroupByAll GroupBy = "all"
	GroupByTop GroupBy = "top"
)

// IsValid checks if the group-by mode is known
func (g GroupBy) IsValid() bool {
	return g == GroupByAll || g == GroupByTop
}

// TimeUnit is the unit of the rule's time window
type TimeUnit string

const (
	TimeUnitSeconds TimeUnit = "s"
	TimeUnitMinutes TimeUnit = "m"
	TimeUnitHours   TimeUnit = "h"
	TimeUnitDays    TimeUnit = "d"
)

// Duration returns the length of one unit
func (u TimeUnit) Duration() (time.Duration, bool) {
	switch u {
	case TimeUnitSeconds:
		return time.Second, true
	case TimeUnitMinutes:
		return time.Minute, true
	case TimeUnitHours:
		return time.Hour, true
	case TimeUnitDays:
		return 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Comparator compares an aggregated value against the rule's thresholds
type Comparator string

const (
	ComparatorGT         Comparator = ">"
	ComparatorLT         Comparator = "<"
	ComparatorGTE        Comparator = ">="
	ComparatorLTE        Comparator = "<="
	ComparatorBetween    Comparator = "between"
	ComparatorNotBetween Comparator = "notBetween"
)

// Comparators lists every supported comparator
var Comparators = []Comparator{
	ComparatorGT, ComparatorLT, ComparatorGTE, ComparatorLTE, ComparatorBetween, ComparatorNotBetween,
}

// IsValid checks if the comparator is known
func (c Comparator) IsValid() bool {
	for _, known := range Comparators {
		if c == known {
			return true
		}
	}
	return false
}

// RequiredThresholds returns how many threshold values the comparator takes
func (c Comparator) RequiredThresholds() int {
	if c == ComparatorBetween || c == ComparatorNotBetween {
		return 2
	}
	return 1
}

// Evaluate reports whether value meets the condition.
// Range comparators are inclusive of their bounds, in either order.
func (c Comparator) Evaluate(value float64, thresholds []float64) bool {
	if len(thresholds) < c.RequiredThresholds() {
		return false
	}
	switch c {
	case ComparatorGT:
		return value > thresholds[0]
	case ComparatorLT:
		return value < thresholds[0]
	case ComparatorGTE:
		return value >= thresholds[0]
	case ComparatorLTE:
		return value <= thresholds[0]
	case ComparatorBetween, ComparatorNotBetween:
		lo, hi := thresholds[0], thresholds[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		inside := value >= lo && value <= hi
		if c == ComparatorBetween {
			return inside
		}
		return !inside
	default:
		return false
	}
}

// RuleParams are the parameters of an index threshold rule, as edited by the
// rule expression editor
type RuleParams struct {
	Index               []string   `json:"index"`
	TimeField           string     `json:"timeField"`
	AggType             AggType    `json:"aggType,omitempty"`
	AggField            string     `json:"aggField,omitempty"`
	GroupBy             GroupBy    `json:"groupBy,omitempty"`
	TermField           string     `json:"termField,omitempty"`
	TermSize            int        `json:"termSize,omitempty"`
	TimeWindowSize      int        `json:"timeWindowSize"`
	TimeWindowUnit      TimeUnit   `json:"timeWindowUnit"`
	ThresholdComparator Comparator `json:"thresholdComparator"`
	Threshold           []float64  `json:"threshold"`
	FilterKuery         string     `json:"filterKuery,omitempty"`
}

// ApplyDefaults fills in the optional enums
func (p *RuleParams) ApplyDefaults() {
	if p.AggType == "" {
		p.AggType = AggTypeCount
	}
	if p.GroupBy == "" {
		p.GroupBy = GroupByAll
	}
}

// TimeWindow returns the rule's window as a duration
func (p *RuleParams) TimeWindow() time.Duration {
	unit, ok := p.TimeWindowUnit.Duration()
	if !ok {
		return 0
	}
	return time.Duration(p.TimeWindowSize) * unit
}

// Validate checks the parameters and returns every problem found.
// Defaults should be applied first.
func (p *RuleParams) Validate() []string {
	var problems []string
	problems = append(problems, p.validateQuery()...)
	problems = append(problems, p.validateThreshold()...)
	return problems
}

// validateQuery checks the parts shared with time series queries
func (p *RuleParams) validateQuery() []string {
	var problems []string

	if len(p.Index) == 0 {
		problems = append(problems, "[index]: must have at least one value")
	}
	for i, idx := range p.Index {
		if strings.TrimSpace(idx) == "" {
			problems = append(problems, fmt.Sprintf("[index.%d]: must not be empty", i))
		}
	}
	if strings.TrimSpace(p.TimeField) == "" {
		problems = append(problems, "[timeField]: must not be empty")
	}

	if !p.AggType.IsValid() {
		problems = append(problems, fmt.Sprintf("[aggType]: invalid aggType: %q", p.AggType))
	} else if p.AggType != AggTypeCount && p.AggField == "" {
		problems = append(problems, fmt.Sprintf("[aggField]: must have a value when [aggType] is %q", p.AggType))
	}

	if !p.GroupBy.IsValid() {
		problems = append(problems, fmt.Sprintf("[groupBy]: invalid groupBy: %q", p.GroupBy))
	} else if p.GroupBy == GroupByTop {
		if p.TermField == "" {
			problems = append(problems, "[termField]: must have a value when [groupBy] is \"top\"")
		}
		if p.TermSize == 0 {
			problems = append(problems, "[termSize]: must have a value when [groupBy] is \"top\"")
		}
	}
	if p.TermSize < 0 || p.TermSize > MaxGroups {
		problems = append(problems, fmt.Sprintf("[termSize]: must be between 1 and %d", MaxGroups))
	}

	if p.TimeWindowSize < 1 {
		problems = append(problems, "[timeWindowSize]: must be at least 1")
	}
	if _, ok := p.TimeWindowUnit.Duration(); !ok {
		problems = append(problems, fmt.Sprintf("[timeWindowUnit]: invalid timeWindowUnit: %q", p.TimeWindowUnit))
	}

	return problems
}

func (p *RuleParams) validateThreshold() []string {
	if !p.ThresholdComparator.IsValid() {
		return []string{fmt.Sprintf("[thresholdComparator]: invalid thresholdComparator specified: %s", p.ThresholdComparator)}
	}
	want := p.ThresholdComparator.RequiredThresholds()
	if len(p.Threshold) != want {
		return []string{fmt.Sprintf("[threshold]: must have %d elements for the %q comparator", want, p.ThresholdComparator)}
	}
	return nil
}

// TimeSeriesParams are the parameters of a preview query
type TimeSeriesParams struct {
	Index          []string `json:"index"`
	TimeField      string   `json:"timeField"`
	AggType        AggType  `json:"aggType,omitempty"`
	AggField       string   `json:"aggField,omitempty"`
	GroupBy        GroupBy  `json:"groupBy,omitempty"`
	TermField      string   `json:"termField,omitempty"`
	TermSize       int      `json:"termSize,omitempty"`
	TimeWindowSize int      `json:"timeWindowSize"`
	TimeWindowUnit TimeUnit `json:"timeWindowUnit"`
	DateStart      string   `json:"dateStart,omitempty"`
	DateEnd        string   `json:"dateEnd,omitempty"`
	Interval       string   `json:"interval,omitempty"`
	FilterKuery    string   `json:"filterKuery,omitempty"`
}

// ruleParams views the shared query fields as RuleParams
func (p *TimeSeriesParams) ruleParams() RuleParams {
	return RuleParams{
		Index:          p.Index,
		TimeField:      p.TimeField,
		AggType:        p.AggType,
		AggField:       p.AggField,
		GroupBy:        p.GroupBy,
		TermField:      p.TermField,
		TermSize:       p.TermSize,
		TimeWindowSize: p.TimeWindowSize,
		TimeWindowUnit: p.TimeWindowUnit,
	}
}

// ApplyDefaults fills in the optional enums
func (p *TimeSeriesParams) ApplyDefaults() {
	if p.AggType == "" {
		p.AggType = AggTypeCount
	}
	if p.GroupBy == "" {
		p.GroupBy = GroupByAll
	}
}

// TimeWindow returns the window as a duration
func (p *TimeSeriesParams) TimeWindow() time.Duration {
	rp := p.ruleParams()
	return rp.TimeWindow()
}

// Validate checks the parameters and returns every problem found
func (p *TimeSeriesParams) Validate() []string {
	rp := p.ruleParams()
	problems := rp.validateQuery()
	if p.DateStart != "" {
		if _, err := time.Parse(time.RFC3339, p.DateStart); err != nil {
			problems = append(problems, fmt.Sprintf("[dateStart]: invalid date %q", p.DateStart))
		}
	}
	if p.DateEnd != "" {
		if _, err := time.Parse(time.RFC3339, p.DateEnd); err != nil {
			problems = append(problems, fmt.Sprintf("[dateEnd]: invalid date %q", p.DateEnd))
		}
	}
	if p.Interval != "" {
		if _, err := ParseInterval(p.Interval); err != nil {
			problems = append(problems, fmt.Sprintf("[interval]: %v", err))
		}
	}
	return problems
}

// ParseInterval parses a duration written as <n><unit>, unit being one of s, m, h, d
func ParseInterval(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	unit, ok := TimeUnit(s[len(s)-1:]).Duration()
	if !ok {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return time.Duration(n) * unit, nil
}

// DateRange is one bucket of a time series, [From, To)
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// DateRangeInfo computes the buckets of a time series query. One bucket ends at
// every interval step from DateEnd back to DateStart, and each bucket spans the
// rule's time window. Buckets are returned oldest first.
func DateRangeInfo(p *TimeSeriesParams, now time.Time) ([]DateRange, error) {
	end := now.UTC()
	if p.DateEnd != "" {
		t, err := time.Parse(time.RFC3339, p.DateEnd)
		if err != nil {
			return nil, fmt.Errorf("invalid dateEnd %q: %w", p.DateEnd, err)
		}
		end = t.UTC()
	}
	start := end
	if p.DateStart != "" {
		t, err := time.Parse(time.RFC3339, p.DateStart)
		if err != nil {
			return nil, fmt.Errorf("invalid dateStart %q: %w", p.DateStart, err)
		}
		start = t.UTC()
	}
	if start.After(end) {
		return nil, fmt.Errorf("dateStart %s is after dateEnd %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	window := p.TimeWindow()
	if window <= 0 {
		return nil, fmt.Errorf("invalid time window %d%s", p.TimeWindowSize, p.TimeWindowUnit)
	}

	var interval time.Duration
	if p.Interval != "" {
		d, err := ParseInterval(p.Interval)
		if err != nil {
			return nil, err
		}
		interval = d
	}
	if !start.Equal(end) && interval == 0 {
		return nil, fmt.Errorf("interval must be specified if dateStart and dateEnd differ")
	}

	var dates []time.Time
	if interval == 0 {
		dates = []time.Time{end}
	} else {
		for d := end; !d.Before(start); d = d.Add(-interval) {
			dates = append(dates, d)
			if len(dates) > MaxIntervals {
				return nil, fmt.Errorf("calculated number of intervals exceeds maximum of %d", MaxIntervals)
			}
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	ranges := make([]DateRange, 0, len(dates))
	for _, d := range dates {
		ranges = append(ranges, DateRange{From: d.Add(-window), To: d})
	}
	return ranges, nil
}

// TimeSeriesResult is the result of a preview query
type TimeSeriesResult struct {
	Results []TimeSeriesGroup `json:"results"`
}

// TimeSeriesGroup is one series; Group is "all documents" when not grouped
type TimeSeriesGroup struct {
	Group   string            `json:"group"`
	Metrics []TimeSeriesPoint `json:"metrics"`
}

// TimeSeriesPoint is a [date, value] pair. A nil Value is a bucket with no
// metric and encodes as null.
type TimeSeriesPoint struct {
	Date  time.Time
	Value *float64
}

// AllDocumentsGroup names the single series of an ungrouped query
const AllDocumentsGroup = "all documents"

// MarshalJSON encodes the point as [epoch millis, value]
func (p TimeSeriesPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Date.UnixMilli(), p.Value})
}

// UnmarshalJSON decodes a [epoch millis, value] pair
func (p *TimeSeriesPoint) UnmarshalJSON(data []byte) error {
	var pair [2]*float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("time series point: %w", err)
	}
	if pair[0] == nil {
		return fmt.Errorf("time series point: missing date")
	}
	p.Date = time.UnixMilli(int64(*pair[0])).UTC()
	p.Value = pair[1]
	return nil
}
