package viewmodels

// LandingViewData backs the post-auth dashboard and profile setup pages.
type LandingViewData struct {
	Layout           LayoutData
	Role             string
	Page             string
	Heading          string
	Email            string
	ProfileCompleted bool
	DashboardHref    string
	ProfileSetupHref string
}

const (
	LandingPageDashboard    = "dashboard"
	LandingPageProfileSetup = "profile-setup"
)
