package dto

// AdminCheckResponse reports whether the caller is on the admin allowlist.
type AdminCheckResponse struct {
	IsAdmin       bool   `json:"isAdmin"`
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
}

// CreateUserRequest provisions a new account.
type CreateUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UpdateUserRequest changes an account email and/or display name. A nil Name leaves
// the name untouched.
type UpdateUserRequest struct {
	UserID string  `json:"userId"`
	Email  *string `json:"email"`
	Name   *string `json:"name"`
}

// DeleteUserRequest is the optional body of an account delete.
type DeleteUserRequest struct {
	UserID string `json:"userId"`
}

// SendCredentialsRequest re-sends an account setup link.
type SendCredentialsRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	SetupLink string `json:"setupLink"`
}

// UserSummary is the account view returned after provisioning.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CreateUserResponse is returned by account provisioning.
type CreateUserResponse struct {
	Success       bool        `json:"success"`
	Message       string      `json:"message"`
	User          UserSummary `json:"user"`
	EmailNotified bool        `json:"emailNotified"`
}

// StatisticsQuery binds the supplier statistics query string.
type StatisticsQuery struct {
	Search string `form:"search"`
}
