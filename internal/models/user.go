package models

// User is the brief shown next to requests, friends, blocks and
// conversations. Accounts themselves are owned by another service.
type User struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	AvatarURL string `db:"avatar_url" json:"avatar_url,omitempty"`
}

// UnknownUser stands in for an id whose account row is gone.
func UnknownUser(id int64) User {
	return User{ID: id}
}
