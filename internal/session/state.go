package session

// State is what the page shows for a session
type State string

const (
	// StateInput means the upload form is shown
	StateInput State = "Input"

	// StateLoading means a prediction request is in flight
	StateLoading State = "Loading"

	// StateResult means a prediction is shown
	StateResult State = "Result"

	// StateError means the upload form is shown with an error message
	StateError State = "Error"
)

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// IsBusy reports whether the session refuses new input
func (s State) IsBusy() bool {
	return s == StateLoading
}

// ShowsForm reports whether the upload form is visible
func (s State) ShowsForm() bool {
	return s == StateInput || s == StateError
}
