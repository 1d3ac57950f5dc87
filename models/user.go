package models

import "strings"

// UsersCollection is the backend auth collection for shoppers and admins.
const UsersCollection = "users"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps form input to a Role, defaulting to RoleUser.
func ParseRole(value string) Role {
	if Role(strings.TrimSpace(value)) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// User represents a user record in the backend auth collection
type User struct {
	ID              string   `json:"id"`
	CollectionID    string   `json:"collectionId"`
	CollectionName  string   `json:"collectionName"`
	Created         DateTime `json:"created"`
	Updated         DateTime `json:"updated"`
	Email           string   `json:"email"`
	EmailVisibility bool     `json:"emailVisibility"`
	Verified        bool     `json:"verified"`
	Firstname       string   `json:"firstname"`
	Lastname        string   `json:"lastname"`
	Avatar          string   `json:"avatar"`
	PhoneNo         string   `json:"phone_no"`
	Role            Role     `json:"role"`
	Credit          float64  `json:"credit"`
	Address         string   `json:"address"`
	VerifyPhone     bool     `json:"verify_phone"`
}

// FullName joins first and last name, or returns "N/A" when both are blank.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.Firstname + " " + u.Lastname)
	if name == "" {
		return "N/A"
	}
	return name
}

// DisplayName is the full name, or the email when no name is set.
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.Firstname + " " + u.Lastname); name != "" {
		return name
	}
	return u.Email
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
