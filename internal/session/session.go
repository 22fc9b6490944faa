// Package session holds the authenticated-user context. A Context is created
// explicitly, initialised once from its Store, and passed to whatever needs
// the current user; nothing here is global.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/rs/zerolog"
)

// DefaultKey is the storage key the CLI keeps its login under.
const DefaultKey = "eduSyncAuthUser"

var ErrInvalidUser = errors.New("user record needs a userId and a role")

// User is the persisted current-user record.
type User struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	Token  string `json:"token,omitempty"`
}

// FromAPI converts a login response into a session user.
func FromAPI(u *edusync.User) User {
	return User{UserID: u.UserID, Name: u.Name, Email: u.Email, Role: u.Role, Token: u.Token}
}

// Context is the lifecycle owner of one current-user record:
// Init loads it once, Login writes it, Logout clears it.
type Context struct {
	store Store
	key   string
	log   zerolog.Logger

	mu     sync.RWMutex
	user   *User
	loaded bool
}

func NewContext(store Store, key string, log zerolog.Logger) *Context {
	return &Context{store: store, key: key, log: log}
}

// Init reads the stored record. It only touches the store on the first call.
// A record that cannot be parsed is deleted and the context starts logged out.
func (c *Context) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}

	data, err := c.store.Load(ctx, c.key)
	switch {
	case errors.Is(err, ErrNotFound):
		c.loaded = true
		return nil
	case err != nil:
		return err
	}

	var u User
	if err := json.Unmarshal(data, &u); err != nil || u.UserID == "" {
		c.log.Warn().Err(err).Str("key", c.key).Msg("Discarding unreadable session record")
		if delErr := c.store.Delete(ctx, c.key); delErr != nil {
			return delErr
		}
		c.loaded = true
		return nil
	}

	c.user = &u
	c.loaded = true
	return nil
}

// Login persists u as the current user. If it cannot be written the stored
// record is cleared so memory and storage never disagree.
func (c *Context) Login(ctx context.Context, u User) error {
	if u.UserID == "" || u.Role == "" {
		return ErrInvalidUser
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	if err := c.store.Save(ctx, c.key, data); err != nil {
		c.user = nil
		_ = c.store.Delete(ctx, c.key)
		return err
	}
	c.user = &u
	return nil
}

// Logout clears the current user from memory and storage.
func (c *Context) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.loaded = true
	return c.store.Delete(ctx, c.key)
}

// Current returns the logged-in user, if any.
func (c *Context) Current() (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return User{}, false
	}
	return *c.user, true
}

func (c *Context) IsInstructor() bool {
	u, ok := c.Current()
	return ok && u.Role == edusync.RoleInstructor
}

// Owns reports whether the current user is the given course instructor.
func (c *Context) Owns(instructorID string) bool {
	u, ok := c.Current()
	return ok && instructorID != "" && u.UserID == instructorID
}
