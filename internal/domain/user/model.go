package user

import "time"

// User is an account holder. Password holds the bcrypt hash and is kept out
// of every serialized form; stores may still read it for credential checks.
type User struct {
	ID        int64     `json:"id"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
