// ABOUTME: GitHub activity adapter over the public events API
// ABOUTME: Decodes typed event payloads into the common activity shape
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/harperreed/punchcard/models"
)

const (
	githubBaseURL  = "https://api.github.com"
	githubPerPage  = 100
	githubMaxPages = 3
)

// GitHubProvider pulls a user's public and private event stream and buckets
// it into local calendar days.
type GitHubProvider struct {
	username string
	token    string
	baseURL  string
	client   *http.Client
}

func NewGitHubProvider(username, token string) *GitHubProvider {
	return &GitHubProvider{
		username: username,
		token:    token,
		baseURL:  githubBaseURL,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *GitHubProvider) Kind() string { return KindGitHub }

// githubEvent is the tagged envelope the events API returns. The payload is
// decoded once per event type; nothing downstream sees GitHub shapes.
type githubEvent struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Repo      struct {
		Name string `json:"name"`
	} `json:"repo"`
	Payload json.RawMessage `json:"payload"`
}

type githubPushPayload struct {
	Ref     string `json:"ref"`
	Commits []struct {
		Message string `json:"message"`
	} `json:"commits"`
}

type githubPullRequestPayload struct {
	Action      string `json:"action"`
	PullRequest struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Merged bool   `json:"merged"`
	} `json:"pull_request"`
}

type githubReviewPayload struct {
	Review struct {
		State string `json:"state"`
	} `json:"review"`
	PullRequest struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
	} `json:"pull_request"`
}

type githubIssuePayload struct {
	Action string `json:"action"`
	Issue  struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
	} `json:"issue"`
}

// FetchActivity returns everything the user did on dayKey according to the
// event stream. The stream is newest-first, so paging stops as soon as a page
// ends before the requested day.
func (p *GitHubProvider) FetchActivity(ctx context.Context, dayKey string) (models.ActivityPayload, error) {
	dayStart, err := models.ParseDayKey(dayKey)
	if err != nil {
		return models.ActivityPayload{}, err
	}

	var payload models.ActivityPayload

	for page := 1; page <= githubMaxPages; page++ {
		events, err := p.fetchEventPage(ctx, page)
		if err != nil {
			return models.ActivityPayload{}, err
		}
		if len(events) == 0 {
			break
		}

		pastDay := false
		for _, ev := range events {
			key := models.DayKeyOf(ev.CreatedAt)
			if key == dayKey {
				p.appendEvent(&payload, ev)
			} else if ev.CreatedAt.Before(dayStart) {
				pastDay = true
			}
		}
		if pastDay {
			break
		}
	}

	return payload, nil
}

func (p *GitHubProvider) fetchEventPage(ctx context.Context, page int) ([]githubEvent, error) {
	url := fmt.Sprintf("%s/users/%s/events?per_page=%d&page=%d", p.baseURL, p.username, githubPerPage, page)

	var events []githubEvent
	err := retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		if p.token != "" {
			req.Header.Set("Authorization", "Bearer "+p.token)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return retry.Unrecoverable(fmt.Errorf("github returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("github returned %d", resp.StatusCode)
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
		return nil, fmt.Errorf("failed to fetch github events page %d: %w", page, err)
	}
	return events, nil
}

func (p *GitHubProvider) appendEvent(payload *models.ActivityPayload, ev githubEvent) {
	switch ev.Type {
	case "PushEvent":
		var push githubPushPayload
		if json.Unmarshal(ev.Payload, &push) != nil {
			return
		}
		branch := strings.TrimPrefix(push.Ref, "refs/heads/")
		for _, c := range push.Commits {
			payload.Commits = append(payload.Commits, models.Commit{
				Message: firstLine(c.Message),
				Project: ev.Repo.Name,
				Branch:  branch,
			})
		}

	case "PullRequestEvent":
		var pr githubPullRequestPayload
		if json.Unmarshal(ev.Payload, &pr) != nil {
			return
		}
		action := ""
		switch pr.Action {
		case "opened":
			action = models.ReviewCreated
		case "closed":
			action = models.ReviewClosed
			if pr.PullRequest.Merged {
				action = models.ReviewMerged
			}
		default:
			return
		}
		payload.Reviews = append(payload.Reviews, models.ReviewItem{
			Action:  action,
			Title:   pr.PullRequest.Title,
			Project: ev.Repo.Name,
			ID:      fmt.Sprintf("#%d", pr.PullRequest.Number),
		})

	case "PullRequestReviewEvent":
		var rv githubReviewPayload
		if json.Unmarshal(ev.Payload, &rv) != nil {
			return
		}
		action := models.ReviewReviewed
		switch rv.Review.State {
		case "approved":
			action = models.ReviewApproved
		case "commented":
			action = models.ReviewCommented
		}
		payload.Reviews = append(payload.Reviews, models.ReviewItem{
			Action:  action,
			Title:   rv.PullRequest.Title,
			Project: ev.Repo.Name,
			ID:      fmt.Sprintf("#%d", rv.PullRequest.Number),
		})

	case "IssuesEvent":
		var is githubIssuePayload
		if json.Unmarshal(ev.Payload, &is) != nil {
			return
		}
		action := ""
		switch is.Action {
		case "opened":
			action = models.IssueOpened
		case "closed":
			action = models.IssueClosed
		case "assigned":
			action = models.IssueAssigned
		case "reopened", "labeled":
			action = models.IssueStatusChanged
		default:
			return
		}
		payload.Issues = append(payload.Issues, models.IssueItem{
			Action:  action,
			Title:   is.Issue.Title,
			Project: ev.Repo.Name,
			ID:      fmt.Sprintf("#%d", is.Issue.Number),
		})

	case "IssueCommentEvent":
		var is githubIssuePayload
		if json.Unmarshal(ev.Payload, &is) != nil {
			return
		}
		payload.Issues = append(payload.Issues, models.IssueItem{
			Action:  models.IssueCommented,
			Title:   is.Issue.Title,
			Project: ev.Repo.Name,
			ID:      fmt.Sprintf("#%d", is.Issue.Number),
		})
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
