package model

import (
	"time"

	"mandalart/internal/grid"
)

// DefaultDisplayName is shown for mandalarts created without a name.
const DefaultDisplayName = "Anonymous"

type UserKind string

const (
	// UserKindAnonymous is a browser session created on first write.
	UserKindAnonymous UserKind = "anonymous"
	// UserKindCLI is the persistent local identity of the command line.
	UserKindCLI UserKind = "cli"
)

type User struct {
	ID          string    `json:"id"`
	Kind        UserKind  `json:"kind"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Mandalart is a stored grid with its ownership and publishing metadata.
// The grid's center and themes are inlined into the JSON object.
type Mandalart struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	grid.Grid

	IsPublic        bool     `json:"is_public"`
	UserDisplayName string   `json:"user_display_name"`
	Tags            []string `json:"tags"`
	OGImageURL      string   `json:"og_image_url,omitempty"`
	ViewCount       int64    `json:"view_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName falls back to DefaultDisplayName.
func (m Mandalart) DisplayName() string {
	if m.UserDisplayName == "" {
		return DefaultDisplayName
	}
	return m.UserDisplayName
}

// Summary is the subset shown in lists and joined into delete requests.
func (m Mandalart) Summary() MandalartSummary {
	return MandalartSummary{
		ID:              m.ID,
		Center:          m.Center,
		UserDisplayName: m.DisplayName(),
		IsPublic:        m.IsPublic,
		ViewCount:       m.ViewCount,
		CreatedAt:       m.CreatedAt,
	}
}

type MandalartSummary struct {
	ID              string    `json:"id"`
	Center          string    `json:"center"`
	UserDisplayName string    `json:"user_display_name"`
	IsPublic        bool      `json:"is_public"`
	ViewCount       int64     `json:"view_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// MandalartPatch lists the fields an owner may change. Nil fields are kept.
type MandalartPatch struct {
	Grid            *grid.Grid `json:"grid,omitempty"`
	IsPublic        *bool      `json:"is_public,omitempty"`
	UserDisplayName *string    `json:"user_display_name,omitempty"`
	Tags            *[]string  `json:"tags,omitempty"`
}

func (p MandalartPatch) Empty() bool {
	return p.Grid == nil && p.IsPublic == nil && p.UserDisplayName == nil && p.Tags == nil
}

// Apply returns m with p's fields written over it.
func (p MandalartPatch) Apply(m Mandalart) Mandalart {
	if p.Grid != nil {
		m.Grid = *p.Grid
	}
	if p.IsPublic != nil {
		m.IsPublic = *p.IsPublic
	}
	if p.UserDisplayName != nil {
		m.UserDisplayName = *p.UserDisplayName
	}
	if p.Tags != nil {
		m.Tags = append([]string(nil), (*p.Tags)...)
	}
	return m
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	default:
		return false
	}
}

type DeleteRequest struct {
	ID          string        `json:"id"`
	MandalartID string        `json:"mandalart_id"`
	Reason      string        `json:"reason"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// DeleteRequestView is a request joined with the mandalart it targets.
// Mandalart is nil once the mandalart has been deleted.
type DeleteRequestView struct {
	DeleteRequest
	Mandalart *MandalartSummary `json:"mandalarts"`
}

// Target describes the joined mandalart for display.
func (v DeleteRequestView) Target() string {
	if v.Mandalart == nil {
		return "deleted"
	}
	return v.Mandalart.Center
}
