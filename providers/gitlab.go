// ABOUTME: GitLab activity adapter over the user events API
// ABOUTME: Resolves project names through a per-fetch memoized lookup
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/harperreed/punchcard/models"
)

const gitlabBaseURL = "https://gitlab.com/api/v4"

// GitLabProvider pulls the authenticated user's contribution events.
type GitLabProvider struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewGitLabProvider(token string) *GitLabProvider {
	return &GitLabProvider{
		token:   token,
		baseURL: gitlabBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *GitLabProvider) Kind() string { return KindGitLab }

type gitlabEvent struct {
	ActionName  string    `json:"action_name"`
	TargetType  string    `json:"target_type"`
	TargetTitle string    `json:"target_title"`
	TargetIID   int       `json:"target_iid"`
	ProjectID   int       `json:"project_id"`
	CreatedAt   time.Time `json:"created_at"`
	PushData    *struct {
		CommitTitle string `json:"commit_title"`
		CommitCount int    `json:"commit_count"`
		Ref         string `json:"ref"`
	} `json:"push_data"`
	Note *struct {
		NoteableType string `json:"noteable_type"`
	} `json:"note"`
}

// FetchActivity returns the user's GitLab activity for dayKey. Events only
// carry a numeric project id, so names are resolved through a memo map that
// lives for exactly one fetch pass.
func (p *GitLabProvider) FetchActivity(ctx context.Context, dayKey string) (models.ActivityPayload, error) {
	day, err := models.ParseDayKey(dayKey)
	if err != nil {
		return models.ActivityPayload{}, err
	}

	// The events API filters with exclusive bounds on whole dates.
	after := day.AddDate(0, 0, -1).Format(models.DayKeyLayout)
	before := day.AddDate(0, 0, 1).Format(models.DayKeyLayout)

	events, err := p.fetchEvents(ctx, after, before)
	if err != nil {
		return models.ActivityPayload{}, err
	}

	projectNames := make(map[int]string)
	var payload models.ActivityPayload

	for _, ev := range events {
		if models.DayKeyOf(ev.CreatedAt) != dayKey {
			continue
		}
		project := p.projectName(ctx, projectNames, ev.ProjectID)
		p.appendEvent(&payload, ev, project)
	}

	return payload, nil
}

func (p *GitLabProvider) fetchEvents(ctx context.Context, after, before string) ([]gitlabEvent, error) {
	url := fmt.Sprintf("%s/events?after=%s&before=%s&per_page=100", p.baseURL, after, before)

	var events []gitlabEvent
	err := retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		req.Header.Set("PRIVATE-TOKEN", p.token)

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			return retry.Unrecoverable(fmt.Errorf("gitlab returned 401: check GITLAB_TOKEN"))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("gitlab returned %d", resp.StatusCode)
		}

		events = events[:0]
		return json.NewDecoder(resp.Body).Decode(&events)
	},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gitlab events: %w", err)
	}
	return events, nil
}

// projectName resolves a project id, memoizing within the current fetch so a
// burst of events against one project costs a single lookup.
func (p *GitLabProvider) projectName(ctx context.Context, memo map[int]string, id int) string {
	if name, ok := memo[id]; ok {
		return name
	}

	name := fmt.Sprintf("project-%d", id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/projects/%d", p.baseURL, id), nil)
	if err == nil {
		req.Header.Set("PRIVATE-TOKEN", p.token)
		if resp, err := p.client.Do(req); err == nil {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				var proj struct {
					PathWithNamespace string `json:"path_with_namespace"`
				}
				if json.NewDecoder(resp.Body).Decode(&proj) == nil && proj.PathWithNamespace != "" {
					name = proj.PathWithNamespace
				}
			}
		}
	}

	memo[id] = name
	return name
}

func (p *GitLabProvider) appendEvent(payload *models.ActivityPayload, ev gitlabEvent, project string) {
	if ev.PushData != nil && ev.PushData.CommitCount > 0 {
		payload.Commits = append(payload.Commits, models.Commit{
			Message: firstLine(ev.PushData.CommitTitle),
			Project: project,
			Branch:  ev.PushData.Ref,
		})
		return
	}

	action := strings.TrimSpace(ev.ActionName)
	id := ""
	if ev.TargetIID > 0 {
		id = fmt.Sprintf("!%d", ev.TargetIID)
	}

	switch ev.TargetType {
	case "MergeRequest":
		mapped := ""
		switch action {
		case "opened", "created":
			mapped = models.ReviewCreated
		case "approved":
			mapped = models.ReviewApproved
		case "merged", "accepted":
			mapped = models.ReviewMerged
		case "closed":
			mapped = models.ReviewClosed
		default:
			return
		}
		payload.Reviews = append(payload.Reviews, models.ReviewItem{
			Action:  mapped,
			Title:   ev.TargetTitle,
			Project: project,
			ID:      id,
		})

	case "Issue":
		mapped := ""
		switch action {
		case "opened", "created":
			mapped = models.IssueOpened
		case "closed":
			mapped = models.IssueClosed
		default:
			mapped = models.IssueStatusChanged
		}
		payload.Issues = append(payload.Issues, models.IssueItem{
			Action:  mapped,
			Title:   ev.TargetTitle,
			Project: project,
			ID:      strings.Replace(id, "!", "#", 1),
		})

	case "Note", "DiffNote", "DiscussionNote":
		if ev.Note != nil && ev.Note.NoteableType == "MergeRequest" {
			payload.Reviews = append(payload.Reviews, models.ReviewItem{
				Action:  models.ReviewCommented,
				Title:   ev.TargetTitle,
				Project: project,
			})
		} else {
			payload.Issues = append(payload.Issues, models.IssueItem{
				Action:  models.IssueCommented,
				Title:   ev.TargetTitle,
				Project: project,
			})
		}
	}
}
