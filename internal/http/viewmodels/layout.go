package viewmodels

type LayoutData struct {
	Title      string
	CSRFToken  string
	UserEmail  string
	UserRole   string
	SignedIn   bool
	Toast      *ToastViewData
	ActivePath string
}
