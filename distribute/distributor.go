// ABOUTME: Gap-filling activity distributor
// ABOUTME: Spreads or phase-labels catch-up day activity backward across preceding empty days
package distribute

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/punchcard/models"
)

// Mode selects how a gap is backfilled.
type Mode string

const (
	// ModeProportional relocates a floor-divided share of the source day's
	// items into each empty day, tagging relocated text with [Distributed].
	ModeProportional Mode = "proportional"
	// ModePhased leaves the source day intact and fills each empty day with
	// one phase-labeled synthetic commit derived from the source day's work.
	ModePhased Mode = "phased"
)

// Synthetic project/branch pair reserved for distributed entries.
const (
	DistributedProject = "distributed-work"
	DistributedBranch  = "estimated"
)

// DistributedTag marks relocated item text.
const DistributedTag = "[Distributed]"

const summaryMaxLen = 50

// Phase-name progressions by gap size.
var (
	phasesGap1  = []string{"Research & Planning"}
	phasesGap2  = []string{"Analysis", "Development"}
	phasesGap3  = []string{"Planning", "Implementation", "Testing"}
	phasesCycle = []string{"Planning", "Research", "Design", "Implementation", "Testing", "Refinement", "Documentation"}
)

// ParseMode validates a mode string from the CLI.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeProportional, ModePhased:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid distribution mode %q (valid: proportional, phased)", s)
	}
}

// Distribute scans the day records in ascending-day order and backfills each
// run of empty days from the nearest following day with activity. Trailing
// empty days have no source day and are never backfilled. The input is
// mutated in place and returned along with a summary of what happened.
// Unsorted input is re-sorted before scanning.
func Distribute(days []models.DayActivity, mode Mode) ([]models.DayActivity, models.DistributionSummary) {
	var summary models.DistributionSummary
	if len(days) == 0 {
		return days, summary
	}

	sort.SliceStable(days, func(a, b int) bool { return days[a].Day < days[b].Day })

	for i := 0; i < len(days); {
		if days[i].HasActivity() {
			i++
			continue
		}

		// Nearest following day with activity; without one this is a
		// trailing gap and stays empty.
		j := i + 1
		for j < len(days) && !days[j].HasActivity() {
			j++
		}
		if j == len(days) {
			break
		}

		gap := j - i
		summary.GapDays += gap

		var filled int
		switch mode {
		case ModePhased:
			filled = fillPhased(days, i, j)
		default:
			filled = fillProportional(days, i, j)
		}
		summary.DistributedDays += filled

		i = j
	}

	if summary.DistributedDays > 0 {
		convention := DistributedTag + " markers"
		if mode == ModePhased {
			convention = "[Phase: X] entries"
		}
		summary.Message = fmt.Sprintf("Distributed activity across %d day(s) using %s", summary.DistributedDays, convention)
	}

	return days, summary
}

// fillProportional relocates a floor share of the source day's commits,
// reviews, and issues independently into each gap day. Returns how many gap
// days received at least one item.
func fillProportional(days []models.DayActivity, i, j int) int {
	gap := j - i
	src := &days[j]

	// Markers from an earlier pass are a distinct kind and never move.
	var markers, work []models.Commit
	for _, c := range src.Activity.Commits {
		if c.Marker {
			markers = append(markers, c)
		} else {
			work = append(work, c)
		}
	}

	perDayCommits := len(work) / (gap + 1)
	perDayReviews := len(src.Activity.Reviews) / (gap + 1)
	perDayIssues := len(src.Activity.Issues) / (gap + 1)

	received := make([]bool, gap)
	nextCommit, nextReview, nextIssue := 0, 0, 0

	for d := 0; d < gap; d++ {
		target := &days[i+d]

		for n := 0; n < perDayCommits && nextCommit < len(work); n++ {
			c := work[nextCommit]
			nextCommit++
			c.Message = DistributedTag + " " + c.Message
			c.Distributed = true
			target.Activity.Commits = append(target.Activity.Commits, c)
			received[d] = true
		}
		for n := 0; n < perDayReviews && nextReview < len(src.Activity.Reviews); n++ {
			r := src.Activity.Reviews[nextReview]
			nextReview++
			r.Title = DistributedTag + " " + r.Title
			r.Distributed = true
			target.Activity.Reviews = append(target.Activity.Reviews, r)
			received[d] = true
		}
		for n := 0; n < perDayIssues && nextIssue < len(src.Activity.Issues); n++ {
			is := src.Activity.Issues[nextIssue]
			nextIssue++
			is.Title = DistributedTag + " " + is.Title
			is.Distributed = true
			target.Activity.Issues = append(target.Activity.Issues, is)
			received[d] = true
		}
	}

	filled := 0
	for _, r := range received {
		if r {
			filled++
		}
	}
	if filled == 0 {
		return 0
	}

	// Whatever was not relocated stays on the source day, behind a
	// zero-effect marker noting the distribution.
	note := models.Commit{
		Message: fmt.Sprintf("Note: activity from this day was distributed across %d prior day(s)", filled),
		Project: DistributedProject,
		Branch:  DistributedBranch,
		Marker:  true,
	}
	remaining := append([]models.Commit{note}, markers...)
	src.Activity.Commits = append(remaining, work[nextCommit:]...)
	src.Activity.Reviews = src.Activity.Reviews[nextReview:]
	src.Activity.Issues = src.Activity.Issues[nextIssue:]

	return filled
}

// fillPhased writes one phase-labeled synthetic commit into each gap day.
// The source day is left untouched.
func fillPhased(days []models.DayActivity, i, j int) int {
	gap := j - i
	work := workSummary(days[j].Activity)
	phases := phaseNames(gap)

	for d := 0; d < gap; d++ {
		phase := phases[d%len(phases)]
		days[i+d].Activity.Commits = append(days[i+d].Activity.Commits, models.Commit{
			Message:     fmt.Sprintf("[Phase: %s] %s", phase, work),
			Project:     DistributedProject,
			Branch:      DistributedBranch,
			Distributed: true,
		})
	}
	return gap
}

func phaseNames(gap int) []string {
	switch gap {
	case 1:
		return phasesGap1
	case 2:
		return phasesGap2
	case 3:
		return phasesGap3
	default:
		return phasesCycle
	}
}

// workSummary derives a short human-readable description of what the source
// day was about from its first commit, review, and issue.
func workSummary(p models.ActivityPayload) string {
	var parts []string
	for _, c := range p.Commits {
		if !c.Marker {
			parts = append(parts, truncate(c.Message, summaryMaxLen))
			break
		}
	}
	if len(p.Reviews) > 0 {
		parts = append(parts, truncate(p.Reviews[0].Title, summaryMaxLen))
	}
	if len(p.Issues) > 0 {
		parts = append(parts, truncate(p.Issues[0].Title, summaryMaxLen))
	}
	if len(parts) == 0 {
		return "project work"
	}
	return strings.Join(parts, ", ")
}

// truncate cuts on runes so a multi-byte character is never split.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
