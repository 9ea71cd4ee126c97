package web

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/umputun/jobdash/app/backend"
	"github.com/umputun/jobdash/app/enums"
)

// never is shown for timestamps the backend reports as null
const never = "Never"

// backend timestamps come without zone in most cases, parsed in local time
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// supported display locales, first one is the fallback
var (
	localeTags = []language.Tag{
		language.AmericanEnglish,
		language.BritishEnglish,
		language.German,
		language.French,
		language.Spanish,
		language.Japanese,
	}
	localeLayouts = []string{
		"1/2/2006, 3:04:05 PM",
		"02/01/2006, 15:04:05",
		"2.1.2006, 15:04:05",
		"02/01/2006 15:04:05",
		"2/1/2006, 15:04:05",
		"2006/1/2 15:04:05",
	}
	localeMatcher = language.NewMatcher(localeTags)
	titleCaser    = cases.Title(language.English)
)

// dateLayout picks the date-time layout for the request's Accept-Language
func dateLayout(r *http.Request) string {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return localeLayouts[0]
	}
	_, idx, _ := localeMatcher.Match(tags...)
	if idx < 0 || idx >= len(localeLayouts) {
		return localeLayouts[0]
	}
	return localeLayouts[idx]
}

// formatTimestamp renders a nullable backend timestamp. Values that can't be parsed are shown as is.
func formatTimestamp(ts *string, layout string) string {
	if ts == nil || *ts == "" {
		return never
	}
	for _, l := range timestampLayouts {
		if t, err := time.ParseInLocation(l, *ts, time.Local); err == nil {
			return t.In(time.Local).Format(layout)
		}
	}
	return *ts
}

// statusBadge is the label and css class of a job status
type statusBadge struct {
	Label string
	Class string
}

func badgeFor(status string) statusBadge {
	switch status {
	case backend.StatusRunning, backend.StatusFailed, backend.StatusPaused:
		return statusBadge{Label: titleCaser.String(status), Class: "badge-" + status}
	}
	return statusBadge{Label: status, Class: "badge-default"}
}

// jobRow is the view model of a single job table row
type jobRow struct {
	backend.Job
	Category       enums.Category
	LastSuccessful string
	LastSensing    string
	Badge          statusBadge
	Action         string // Pause or Resume
	Confirm        string
}

func newJobRow(job backend.Job, cat enums.Category, layout string) jobRow {
	action, verb := "Pause", "pause"
	if job.IsPaused() {
		action, verb = "Resume", "resume"
	}
	confirm := fmt.Sprintf("Are you sure you want to %s the job \"%s\"?", verb, job.JobName)
	if !job.IsPaused() {
		confirm += " This will stop the job from running on its scheduled intervals."
	}
	return jobRow{
		Job:            job,
		Category:       cat,
		LastSuccessful: formatTimestamp(job.LastSuccessfulAttempt, layout),
		LastSensing:    formatTimestamp(job.LastSensingAttempt, layout),
		Badge:          badgeFor(job.Status),
		Action:         action,
		Confirm:        confirm,
	}
}

func newJobRows(list []backend.Job, cat enums.Category, layout string) []jobRow {
	res := make([]jobRow, 0, len(list))
	for _, j := range list {
		res = append(res, newJobRow(j, cat, layout))
	}
	return res
}

// toast is a transient notification rendered into the toasts container
type toast struct {
	Title   string
	Message string
	Error   bool
}

func successToast(msg string) toast { return toast{Title: "Success", Message: msg} }

func errorToast(msg string) toast { return toast{Title: "Error", Message: msg, Error: true} }
