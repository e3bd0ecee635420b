package domain

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       int64  `json:"userId"`
	MemberName   string `json:"memberName"`
}

// Profile describes the logged-in administrator.
type Profile struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}
