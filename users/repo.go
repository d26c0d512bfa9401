package users

import "time"

type UserRepo interface {
	Upsert(user *User) error
	Delete(username string) error
	GetByUsername(username string) (*User, error)
	GetByID(ID string) (*User, error)
	SetBlocked(username string, blocked bool) error
	SetLastLogin(username string, at time.Time) error
}
