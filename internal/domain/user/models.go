package user

import (
	"time"
)

// User is an application user. The payments-service customer linkage is
// created during registration, before the row exists, so both fields are
// populated for every successfully registered user.
type User struct {
	ID                  int64     `json:"id"`
	Email               string    `json:"email"`
	FirstName           string    `json:"firstName"`
	LastName            string    `json:"lastName"`
	PasswordHash        string    `json:"-"`
	PaymentsCustomerID  string    `json:"-"`
	PaymentsCustomerURL string    `json:"-"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// FullName returns the legal name used on transfer authorizations.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type CreateUserParams struct {
	Email               string
	FirstName           string
	LastName            string
	PasswordHash        string
	PaymentsCustomerID  string
	PaymentsCustomerURL string
}
