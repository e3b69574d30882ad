package dashboard

type KPITile struct {
	Label string
	Value int
}

type UpcomingBooking struct {
	ID           string
	CustomerName string
	ServiceName  string
	Status       string
	// StartLabel is the start time formatted in the organization's zone.
	StartLabel string
}

type DashboardData struct {
	OrgName       string
	Timezone      string
	GeneratedAt   string
	LastSyncAt    string
	Tiles         []KPITile
	Upcoming      []UpcomingBooking
	UpcomingTotal int
}
