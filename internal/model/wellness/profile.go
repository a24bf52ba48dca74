package wellness

import "time"

// IntakeResponse pairs an onboarding question with the user's answer.
type IntakeResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Profile is the intake record collected by the onboarding interview.
type Profile struct {
	Name      string           `json:"name"`
	Age       string           `json:"age"`
	Gender    string           `json:"gender"`
	Responses []IntakeResponse `json:"responses"`
	CreatedAt time.Time        `json:"createdAt"`
}
