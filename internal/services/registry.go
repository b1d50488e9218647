package services

// ServiceContainer holds every service the handlers and workers depend on.
type ServiceContainer struct {
	HireService         HireService
	ReviewTokenService  ReviewTokenService
	ReviewService       ReviewService
	RatingService       RatingService
	NotificationService NotificationService
	Notifier            Notifier
}
