// ABOUTME: Data models for aggregated daily work activity
// ABOUTME: Defines Commit, ReviewItem, IssueItem, ActivityPayload, CalendarEvent, DayActivity
package models

import "time"

// ReviewAction constants.
const (
	ReviewCreated   = "created"
	ReviewReviewed  = "reviewed"
	ReviewApproved  = "approved"
	ReviewCommented = "commented"
	ReviewClosed    = "closed"
	ReviewMerged    = "merged"
)

// IssueAction constants.
const (
	IssueCommented     = "commented"
	IssueStatusChanged = "status_changed"
	IssueAssigned      = "assigned"
	IssueOpened        = "opened"
	IssueClosed        = "closed"
)

type Commit struct {
	Message string `json:"message"`
	Project string `json:"project"`
	Branch  string `json:"branch,omitempty"`

	// Distributed marks a commit relocated into a gap day by the
	// distributor. Marker marks the synthetic zero-effect note the
	// distributor prepends to a source day; markers never count as
	// activity and are never redistributed.
	Distributed bool `json:"distributed,omitempty"`
	Marker      bool `json:"marker,omitempty"`
}

type ReviewItem struct {
	Action      string `json:"action"`
	Title       string `json:"title"`
	Project     string `json:"project"`
	ID          string `json:"id,omitempty"`
	Distributed bool   `json:"distributed,omitempty"`
}

type IssueItem struct {
	Action      string `json:"action"`
	Title       string `json:"title"`
	Project     string `json:"project"`
	ID          string `json:"id,omitempty"`
	Detail      string `json:"detail,omitempty"`
	Distributed bool   `json:"distributed,omitempty"`
}

// ActivityPayload is the unit of work recorded for one provider on one day.
// Insertion order is preserved: the first item of each list is treated as
// representative of what the day was about.
type ActivityPayload struct {
	Commits []Commit     `json:"commits,omitempty"`
	Reviews []ReviewItem `json:"reviews,omitempty"`
	Issues  []IssueItem  `json:"issues,omitempty"`
}

// Append concatenates other onto p, preserving insertion order.
func (p *ActivityPayload) Append(other ActivityPayload) {
	p.Commits = append(p.Commits, other.Commits...)
	p.Reviews = append(p.Reviews, other.Reviews...)
	p.Issues = append(p.Issues, other.Issues...)
}

// IsEmpty reports whether the payload records no work at all.
func (p ActivityPayload) IsEmpty() bool {
	return len(p.Commits) == 0 && len(p.Reviews) == 0 && len(p.Issues) == 0
}

// WorkCommits counts commits excluding distribution markers.
func (p ActivityPayload) WorkCommits() int {
	n := 0
	for _, c := range p.Commits {
		if !c.Marker {
			n++
		}
	}
	return n
}

// CalendarEvent is a meeting signal; duration is not accounted.
type CalendarEvent struct {
	Title         string    `json:"title"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	AttendeeCount int       `json:"attendee_count"`
}

// DayActivity is the aggregate record for one local calendar day: its
// meetings, the merged payload from every code provider, and a description
// filled in later by an external renderer.
type DayActivity struct {
	Day         string          `json:"day"`
	Events      []CalendarEvent `json:"events,omitempty"`
	Activity    ActivityPayload `json:"activity"`
	Description string          `json:"description,omitempty"`
}

// HasActivity reports whether the day shows any recorded work: at least one
// meeting, commit, review item, or issue item. Distribution markers do not
// count.
func (d DayActivity) HasActivity() bool {
	return len(d.Events) > 0 ||
		d.Activity.WorkCommits() > 0 ||
		len(d.Activity.Reviews) > 0 ||
		len(d.Activity.Issues) > 0
}

// DistributionSummary describes what a distribution pass did.
type DistributionSummary struct {
	GapDays         int    `json:"gap_days"`
	DistributedDays int    `json:"distributed_days"`
	Message         string `json:"message,omitempty"`
}
