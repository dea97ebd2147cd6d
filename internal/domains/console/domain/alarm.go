package domain

// AlarmStatus is the alarm as reported to console views.
type AlarmStatus struct {
	Ringing    bool
	Playing    bool
	Primed     bool
	RetryArmed bool
	Generation uint64
}

// Snapshot is everything a console view needs to render the notification surface.
type Snapshot struct {
	State        State
	PendingCount int
	Alarm        AlarmStatus
	// Refresh asks views showing the new-orders list to reload it.
	Refresh bool
}

// NewOrderEvent is broadcast to other terminals when an order triggers the alarm.
type NewOrderEvent struct {
	OrderID     string
	OrderNumber string
	Status      string
}
