// Package models defines data models persisted in the account database.
package models

import "time"

// User is an account record. DateOfBirthday is kept as a calendar date.
type User struct {
	ID             string
	Name           string
	Surname        string
	Email          string
	DateOfBirthday time.Time
	HashedPassword string
	IsActive       bool
	CreatedAt      time.Time
}

// DateOfBirthdayString formats the birth date as YYYY-MM-DD.
func (u *User) DateOfBirthdayString() string {
	return u.DateOfBirthday.Format(time.DateOnly)
}
