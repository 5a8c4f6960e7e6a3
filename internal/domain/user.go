// Package domain contains the core entities, ports and errors of bragctl.
package domain

// AuthenticatedUser is the signed-in identity as returned by GET /user.
type AuthenticatedUser struct {
	ID             int64  `json:"id"`
	Login          string `json:"login"`
	Name           string `json:"name"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	HasGitHubToken bool   `json:"hasGitHubToken"`
}

// DisplayName returns the first word of the user's name, falling back to the login.
func (u *AuthenticatedUser) DisplayName() string {
	if u == nil {
		return ""
	}
	name := u.Name
	if name == "" {
		name = u.Login
	}
	for i, r := range name {
		if r == ' ' {
			return name[:i]
		}
	}
	return name
}
