package model

// UserSnapshot is a denormalized display projection of a user owned by the
// external identity service. It is assembled at read time for rendering and
// may go stale; no store invariant depends on it.
type UserSnapshot struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
	IsVerified bool    `json:"is_verified"`
	IsOnline   bool    `json:"is_online"`
}
