package viewmodels

// AuthScreenViewData renders a role's login or signup form.
type AuthScreenViewData struct {
	Layout LayoutData

	Role        string
	Mode        string
	Title       string
	Description string
	FormAction  string
	SubmitLabel string
	HomeHref    string

	ToggleLabel    string
	ToggleHref     string
	TogglePostPath string
	ToggleMode     string

	Email                string
	Password             string
	PasswordAutocomplete string
	ErrorMessage         string
	Submitting           bool
}
