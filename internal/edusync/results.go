package edusync

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// SubmitResult records a graded attempt. It is never retried.
func (c *Client) SubmitResult(ctx context.Context, in SubmitResultRequest) (*Result, error) {
	var out Result
	err := c.do(ctx, call{
		op: "submit result", fallback: "Failed to submit result. Please try again.",
		method: http.MethodPost, path: "/api/results", body: in, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResultsForUser(ctx context.Context, userID string) ([]Result, error) {
	var out []Result
	err := c.do(ctx, call{
		op:       "results for user",
		fallback: fmt.Sprintf("Failed to fetch results for user %s. Please try again.", userID),
		method:   http.MethodGet, path: "/api/results/user/" + url.PathEscape(userID), out: &out,
	})
	return out, err
}

func (c *Client) ResultsForAssessment(ctx context.Context, assessmentID string) ([]Result, error) {
	var out []Result
	err := c.do(ctx, call{
		op:       "results for assessment",
		fallback: fmt.Sprintf("Failed to fetch results for assessment %s. Please try again.", assessmentID),
		method:   http.MethodGet, path: "/api/results/assessment/" + url.PathEscape(assessmentID), out: &out,
	})
	return out, err
}
