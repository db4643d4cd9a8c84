package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	Phone string `json:"phone,omitempty"`
}

// Session is the locally persisted proof of authentication.
type Session struct {
	Token string
	User  *User
}

func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

func (s Session) IsAdmin() bool {
	return s.User != nil && s.User.Role == RoleAdmin
}

// Label renders "name (role)" for report headers.
func (s Session) Label() string {
	if s.User == nil {
		return "Not logged in"
	}
	name := s.User.Name
	if name == "" {
		name = "Unknown"
	}
	role := s.User.Role
	if role == "" {
		role = RoleUser
	}
	return name + " (" + string(role) + ")"
}

// AuthResult is what login and register return. Token may be empty after register.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type Credentials struct {
	Email    string
	Password string
}

type Registration struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"-" validate:"required,eqfield=Password"`
}

// Preferences are the two UI toggles kept apart from the session.
type Preferences struct {
	Notifications bool `json:"notifications"`
	DarkMode      bool `json:"dark_mode"`
}
