package api

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type PublishAvailabilityRequest struct {
	Date string `json:"date"`
}

type ReserveRequest struct {
	Date    string `json:"date"`
	Vaccine string `json:"vaccine"`
}

type ReserveResponse struct {
	ID        int64  `json:"id"`
	Caregiver string `json:"caregiver"`
}

type AddDosesRequest struct {
	Count int `json:"count"`
}

type AppointmentResponse struct {
	ID        int64  `json:"id"`
	Caregiver string `json:"caregiver"`
	Patient   string `json:"patient"`
	Vaccine   string `json:"vaccine"`
	Date      string `json:"date"`
}

type VaccineResponse struct {
	Name  string `json:"name"`
	Doses int    `json:"doses"`
}

type ScheduleResponse struct {
	Date       string            `json:"date"`
	Caregivers []string          `json:"caregivers"`
	Vaccines   []VaccineResponse `json:"vaccines"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
