// Package store defines the persisted record types and the persistence
// contract the rest of the application is written against. Production uses
// the gormstore adapter; tests use the memory adapter.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no record matches the given identity.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a user insert violates the unique
	// email constraint.
	ErrDuplicateEmail = errors.New("email already registered")
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Client struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Category struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attachment is embedded in its policy record. Data holds the base64
// encoded file content; its lifecycle is tied to the owning policy.
type Attachment struct {
	Data        string
	ContentType string
	Filename    string
	Size        int64
}

type Policy struct {
	ID         string
	ClientID   string
	CategoryID string
	PolicyName string
	IssueDate  time.Time
	ExpiryDate time.Time
	Amount     float64
	Attachment *Attachment
	OwnerID    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)
}

type ClientStore interface {
	CreateClient(ctx context.Context, client *Client) error
	ClientsByOwner(ctx context.Context, ownerID string) ([]Client, error)
	ClientByID(ctx context.Context, id string) (*Client, error)
	UpdateClient(ctx context.Context, client *Client) (bool, error)
	DeleteClient(ctx context.Context, id string) (bool, error)
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, category *Category) error
	CategoriesByOwner(ctx context.Context, ownerID string) ([]Category, error)
	CategoryByID(ctx context.Context, id string) (*Category, error)
	UpdateCategory(ctx context.Context, category *Category) (bool, error)
	DeleteCategory(ctx context.Context, id string) (bool, error)
}

type PolicyStore interface {
	CreatePolicy(ctx context.Context, policy *Policy) error
	PoliciesByOwner(ctx context.Context, ownerID string) ([]Policy, error)
	PolicyByID(ctx context.Context, id string) (*Policy, error)
	UpdatePolicy(ctx context.Context, policy *Policy) (bool, error)
	DeletePolicy(ctx context.Context, id string) (bool, error)
}

// Store is the full persistence surface a deployment provides.
type Store interface {
	UserStore
	ClientStore
	CategoryStore
	PolicyStore
}
