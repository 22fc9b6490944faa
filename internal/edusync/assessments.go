package edusync

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListAssessments returns the assessments of one course.
func (c *Client) ListAssessments(ctx context.Context, courseID string) ([]Assessment, error) {
	var out []Assessment
	err := c.do(ctx, call{
		op:       "list assessments",
		fallback: fmt.Sprintf("Failed to fetch assessments for course %s. Please try again.", courseID),
		method:   http.MethodGet, path: "/api/courses/" + url.PathEscape(courseID) + "/assessments", out: &out,
	})
	return out, err
}

func (c *Client) GetAssessment(ctx context.Context, assessmentID string) (*Assessment, error) {
	var out Assessment
	err := c.do(ctx, call{
		op:       "get assessment",
		fallback: fmt.Sprintf("Failed to fetch assessment with ID %s. Please try again.", assessmentID),
		method:   http.MethodGet, path: "/api/assessments/" + url.PathEscape(assessmentID), out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAssessment(ctx context.Context, in CreateAssessmentRequest) (*Assessment, error) {
	var out Assessment
	err := c.do(ctx, call{
		op: "create assessment", fallback: "Failed to create assessment. Please try again.",
		method: http.MethodPost, path: "/api/assessments", body: in, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAssessment(ctx context.Context, assessmentID string, in UpdateAssessmentRequest) error {
	return c.do(ctx, call{
		op:       "update assessment",
		fallback: fmt.Sprintf("Failed to update assessment with ID %s. Please try again.", assessmentID),
		method:   http.MethodPut, path: "/api/assessments/" + url.PathEscape(assessmentID), body: in,
	})
}

func (c *Client) DeleteAssessment(ctx context.Context, assessmentID string) error {
	return c.do(ctx, call{
		op:       "delete assessment",
		fallback: fmt.Sprintf("Failed to delete assessment with ID %s. Please try again.", assessmentID),
		method:   http.MethodDelete, path: "/api/assessments/" + url.PathEscape(assessmentID),
	})
}
