package viewmodel

// User represents the authenticated user context exposed to templates.
type User struct {
	ID    string
	Email string
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	CurrentPage     string
	CSRFToken       string
	IsAuthenticated bool
	IsLoading       bool
	User            *User
}
