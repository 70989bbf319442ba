package models

// User is a profile as returned by the backend. Balance ("saldo") is a whole
// Rupiah amount.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Avatar  string `json:"avatar,omitempty"`
	Balance int64  `json:"saldo"`
}

// Initial returns the upper-cased first letter of the name, used when the
// user has no avatar.
func (u User) Initial() string {
	for _, r := range u.Name {
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		return string(r)
	}
	return "?"
}
