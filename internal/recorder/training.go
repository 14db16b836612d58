package recorder

import (
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// TrainingListHeader is the fixed header of the training list log.
var TrainingListHeader = []string{
	"counter",
	"timestamp",
	"status_code",
	"response_time_ms",
	"total_trainings",
	"page",
	"limit",
	"has_next_page",
	"training_titles",
}

// TitleSeparator joins training titles in the training_titles column.
const TitleSeparator = " | "

// timestampLayout is ISO 8601 local time with microseconds.
const timestampLayout = "2006-01-02T15:04:05.000000"

// TrainingListSummary is the subset of a list response that gets logged.
// Page, Limit and HasNext are empty when the response omits them.
type TrainingListSummary struct {
	Total   int
	Page    string
	Limit   string
	HasNext string
	Titles  []string
}

// TrainingListRecord is one persisted outcome of a list request.
type TrainingListRecord struct {
	Sequence   int64
	Timestamp  time.Time
	StatusCode int
	Latency    time.Duration
	Summary    TrainingListSummary
}

// SummarizeTrainingList extracts counts, pagination and titles from a parsed
// list response.
func SummarizeTrainingList(body gjson.Result) TrainingListSummary {
	trainings := body.Get("response.training")
	pagination := body.Get("response.pagination")

	var s TrainingListSummary
	if trainings.IsArray() {
		for _, t := range trainings.Array() {
			s.Titles = append(s.Titles, t.Get("title").String())
		}
		s.Total = len(s.Titles)
	}
	s.Page = scalar(pagination.Get("page"))
	s.Limit = scalar(pagination.Get("limit"))
	s.HasNext = scalar(pagination.Get("hasNext"))
	return s
}

// Row renders the record in TrainingListHeader column order.
func (r TrainingListRecord) Row() []string {
	ms := float64(r.Latency) / float64(time.Millisecond)
	return []string{
		strconv.FormatInt(r.Sequence, 10),
		r.Timestamp.Format(timestampLayout),
		strconv.Itoa(r.StatusCode),
		strconv.FormatFloat(ms, 'f', 3, 64),
		strconv.Itoa(r.Summary.Total),
		r.Summary.Page,
		r.Summary.Limit,
		r.Summary.HasNext,
		strings.Join(r.Summary.Titles, TitleSeparator),
	}
}

func scalar(v gjson.Result) string {
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return v.String()
}
