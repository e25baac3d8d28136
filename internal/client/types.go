package client

// User is the account summary returned with a session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is the body of a successful login or registration.
type Session struct {
	User User `json:"user"`
	Credentials
}
