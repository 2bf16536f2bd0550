package backend

import "time"

// User is the account record returned by the backend for POST /login and GET /user.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	UserType int    `json:"user_type"`
}

// LoginResult is the body of a successful POST /login.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Organization is the public profile of a club or league.
type Organization struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
	Teams       []Team `json:"teams,omitempty"`
}

// Team is the public profile of a single team.
type Team struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Sport          string `json:"sport,omitempty"`
	AgeGroup       string `json:"age_group,omitempty"`
	LogoURL        string `json:"logo_url,omitempty"`
	OrganizationID int64  `json:"organization_id,omitempty"`
}

// Event is a scheduled game, practice or stream on a team calendar.
type Event struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	TeamID      *int64     `json:"team_id,omitempty"`
}

// EventInput holds the writable fields of an event.
type EventInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	TeamID      *int64     `json:"team_id,omitempty"`
}
