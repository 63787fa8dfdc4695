package models

// User is the stored user document. The password hash and session list
// never leave the server; responses carry the Public projection instead.
type User struct {
	Username    string         `json:"username"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Collections []string       `json:"collections"`
	Sets        []string       `json:"sets"`
	Password    string         `json:"password"` // argon2id hash
	Sessions    []SessionToken `json:"sessions"`
}

// PublicUser is the public-safe projection of a user document.
type PublicUser struct {
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Collections []string `json:"collections"`
	Sets        []string `json:"sets"`
}

// Public strips the password hash and session list.
func (u *User) Public() PublicUser {
	return PublicUser{
		Username:    u.Username,
		Name:        u.Name,
		Email:       u.Email,
		Collections: u.Collections,
		Sets:        u.Sets,
	}
}
