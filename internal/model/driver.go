package model

// Driver links a user to the driver role. The row exists from the moment
// the user registers their first vehicle; trip creation and request
// acceptance resolve ownership through it.
type Driver struct {
	ID     uint64 // drivers.id
	UserID uint64 // drivers.user_id (unique)
}

// Passenger links a user to the passenger role. Created at signup so that
// every user can request seats without a separate registration step.
type Passenger struct {
	ID     uint64 // passengers.id
	UserID uint64 // passengers.user_id (unique)
}
