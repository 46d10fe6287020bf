package viewmodels

type HomeViewData struct {
	Layout  LayoutData
	Screens []HomeScreenLink
}

type HomeScreenLink struct {
	Role        string
	Label       string
	Description string
	Href        string
}
