package edusync

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	var out []Course
	err := c.do(ctx, call{
		op: "list courses", fallback: "Failed to fetch courses. Please try again.",
		method: http.MethodGet, path: "/api/courses", out: &out,
	})
	return out, err
}

func (c *Client) GetCourse(ctx context.Context, courseID string) (*Course, error) {
	var out Course
	err := c.do(ctx, call{
		op:       "get course",
		fallback: fmt.Sprintf("Failed to fetch course with ID %s. Please try again.", courseID),
		method:   http.MethodGet, path: "/api/courses/" + url.PathEscape(courseID), out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCourse(ctx context.Context, in CourseInput) (*Course, error) {
	var out Course
	err := c.do(ctx, call{
		op: "create course", fallback: "Failed to create course. Please try again.",
		method: http.MethodPost, path: "/api/courses", body: in, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCourse expects 204 No Content.
func (c *Client) UpdateCourse(ctx context.Context, courseID string, in CourseInput) error {
	return c.do(ctx, call{
		op:       "update course",
		fallback: fmt.Sprintf("Failed to update course with ID %s. Please try again.", courseID),
		method:   http.MethodPut, path: "/api/courses/" + url.PathEscape(courseID), body: in,
	})
}

func (c *Client) DeleteCourse(ctx context.Context, courseID string) error {
	return c.do(ctx, call{
		op:       "delete course",
		fallback: fmt.Sprintf("Failed to delete course with ID %s. Please try again.", courseID),
		method:   http.MethodDelete, path: "/api/courses/" + url.PathEscape(courseID),
	})
}
