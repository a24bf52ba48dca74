package wellness

import "time"

// Therapist is one entry in the marketplace directory.
type Therapist struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Specialty string  `json:"specialty"`
	Rating    float64 `json:"rating"`
	Reviews   int     `json:"reviews"`
	Price     string  `json:"price"`
	Image     string  `json:"image,omitempty"`
}

// AppointmentStatus tracks the booking lifecycle. Bookings are written as
// confirmed; cancellation flows belong to the practitioner side and are out
// of scope here.
type AppointmentStatus string

const (
	AppointmentConfirmed AppointmentStatus = "confirmed"
)

// Appointment records a booked slot with a snapshot of the therapist's
// display fields, so the listing survives directory edits.
type Appointment struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	TherapistID string            `json:"therapistId"`
	Therapist   string            `json:"therapistName"`
	Specialty   string            `json:"specialty"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Status      AppointmentStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// SeedTherapists provides the launch directory.
func SeedTherapists() []Therapist {
	return []Therapist{
		{ID: "t-sarah-jenkins", Name: "Dr. Sarah Jenkins", Specialty: "Anxiety & Stress", Rating: 4.9, Reviews: 120, Price: "$50/hr"},
		{ID: "t-michael-chen", Name: "Dr. Michael Chen", Specialty: "Depression & Trauma", Rating: 4.8, Reviews: 85, Price: "$60/hr"},
		{ID: "t-emily-carter", Name: "Emily Carter, LMFT", Specialty: "Relationship Counseling", Rating: 5.0, Reviews: 200, Price: "$55/hr"},
		{ID: "t-james-wilson", Name: "Dr. James Wilson", Specialty: "Child Psychology", Rating: 4.7, Reviews: 90, Price: "$70/hr"},
	}
}
