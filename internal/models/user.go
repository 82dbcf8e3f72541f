package models

import "time"

type User struct {
	ID        string
	Username  string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserInfo is the profile created alongside every user.
type UserInfo struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Job       string
	Location  string
	Timezone  string
	Languages string
	Bio       string
	JoinedAt  time.Time
}
