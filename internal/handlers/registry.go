package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	HireHandler         *HireHandler
	ReviewHandler       *ReviewHandler
	NotificationHandler *NotificationHandler
	HealthHandler       *HealthHandler
}
