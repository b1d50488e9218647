package models

type UserRole string
type HireStatus string

const (
	UserRoleClient UserRole = "client"
	UserRoleWorker UserRole = "worker"
	UserRoleAdmin  UserRole = "admin"

	HireStatusPending   HireStatus = "pending"
	HireStatusAccepted  HireStatus = "accepted"
	HireStatusRejected  HireStatus = "rejected"
	HireStatusCompleted HireStatus = "completed"
)

// SubscriptionTierFeatured is the plan that allows clients to hire.
const SubscriptionTierFeatured = "featured"

// IsTerminal reports whether no further transition is possible.
func (s HireStatus) IsTerminal() bool {
	return s == HireStatusRejected || s == HireStatusCompleted
}

func (s HireStatus) IsValid() bool {
	switch s {
	case HireStatusPending, HireStatusAccepted, HireStatusRejected, HireStatusCompleted:
		return true
	}
	return false
}

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleClient, UserRoleWorker, UserRoleAdmin:
		return true
	}
	return false
}
