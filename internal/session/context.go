// internal/session/context.go
package session

import (
	"fmt"
	"sync"
)

// Actor names one of the two independent session slots
type Actor string

const (
	ActorStaff    Actor = "staff"
	ActorCustomer Actor = "customer"
)

// Actors lists both slots in load order
var Actors = []Actor{ActorStaff, ActorCustomer}

// ParseActor validates an actor name from a route or form
func ParseActor(s string) (Actor, error) {
	switch Actor(s) {
	case ActorStaff, ActorCustomer:
		return Actor(s), nil
	default:
		return "", fmt.Errorf("unknown actor %q", s)
	}
}

// User is the signed-in profile held in a slot
type User struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Roles   []string `json:"roles,omitempty"`
	Phone   string   `json:"phone,omitempty"`
	Address string   `json:"address,omitempty"`
	Token   string   `json:"access_token,omitempty"`
}

// HasRole reports whether the user carries role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Context holds the staff and customer sessions of one device.
// Reads happen on every API call; writes only on login, logout and reset.
type Context struct {
	mu       sync.RWMutex
	staff    *User
	customer *User
}

// New creates an empty session context
func New() *Context {
	return &Context{}
}

// Staff returns a copy of the staff slot, or nil
func (c *Context) Staff() *User {
	return c.User(ActorStaff)
}

// Customer returns a copy of the customer slot, or nil
func (c *Context) Customer() *User {
	return c.User(ActorCustomer)
}

// User returns a copy of the given slot, or nil
func (c *Context) User(actor Actor) *User {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u := *c.slot(actor)
	if u == nil {
		return nil
	}
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp
}

// Token returns the bearer token of a slot, or ""
func (c *Context) Token(actor Actor) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if u := *c.slot(actor); u != nil {
		return u.Token
	}
	return ""
}

// Set signs a user into a slot
func (c *Context) Set(actor Actor, user User) {
	c.mu.Lock()
	defer c.mu.Unlock()

	user.Roles = append([]string(nil), user.Roles...)
	*c.slot(actor) = &user
}

// Clear signs a slot out
func (c *Context) Clear(actor Actor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.slot(actor) = nil
}

// Reset signs both slots out
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staff = nil
	c.customer = nil
}

// StaffToken implements api.TokenSource
func (c *Context) StaffToken() string {
	return c.Token(ActorStaff)
}

// CustomerToken implements api.TokenSource
func (c *Context) CustomerToken() string {
	return c.Token(ActorCustomer)
}

func (c *Context) slot(actor Actor) **User {
	if actor == ActorStaff {
		return &c.staff
	}
	return &c.customer
}
