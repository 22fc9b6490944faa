package edusync

import (
	"context"
	"net/http"
)

// Login exchanges credentials for the user record.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*User, error) {
	var out User
	err := c.do(ctx, call{
		op: "login", fallback: "Login failed. Please try again.",
		method: http.MethodPost, path: "/api/auth/login", body: in, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a Student or Instructor account.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	var out User
	err := c.do(ctx, call{
		op: "register", fallback: "Registration failed. Please try again.",
		method: http.MethodPost, path: "/api/auth/register", body: in, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ForgotPassword(ctx context.Context, in ForgotPasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{
		op: "forgot password", fallback: "Forgot password request failed. Please try again.",
		method: http.MethodPost, path: "/api/auth/forgot-password", body: in, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResetPassword(ctx context.Context, in ResetPasswordRequest) (*MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, call{
		op: "reset password", fallback: "Password reset failed. Please try again.",
		method: http.MethodPost, path: "/api/auth/reset-password", body: in, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
