package entity

import "time"

// User is a row of the `users` table. PasswordHash is a PHC string and is
// never serialized.
type User struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	Surname      string     `db:"surname" json:"surname"`
	Fone         string     `db:"fone" json:"fone"`
	Active       bool       `db:"active" json:"active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	ActivatedAt  *time.Time `db:"activated_at" json:"activated_at,omitempty"`
}

// Profile is the client-facing projection of a user; it has no secret fields.
type Profile struct {
	Username    string     `db:"username" json:"username"`
	Name        string     `db:"name" json:"name"`
	Surname     string     `db:"surname" json:"surname"`
	Email       string     `db:"email" json:"email"`
	Fone        string     `db:"fone" json:"fone"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	Active      bool       `db:"active" json:"active"`
	ActivatedAt *time.Time `db:"activated_at" json:"activated_at,omitempty"`
}

// Credentials is the minimal projection needed to check a password.
type Credentials struct {
	ID           int64  `db:"id"`
	PasswordHash string `db:"password_hash"`
}

// ProfileUpdate carries the optional fields of a partial profile update.
// A nil field is left untouched.
type ProfileUpdate struct {
	Name    *string
	Surname *string
	Fone    *string
}

// Empty reports whether no field was provided.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.Surname == nil && u.Fone == nil
}
