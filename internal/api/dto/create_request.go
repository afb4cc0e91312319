package dto

// CreateRequest is the body of a notification creation request.
type CreateRequest struct {
	SenderEmail   string `json:"sender_email" validate:"required,email"`
	ReceiverEmail string `json:"receiver_email" validate:"required,email"`
	Content       string `json:"content" validate:"required"`
	Date          string `json:"date" validate:"omitempty,datetime=2006-01-02"` // first occurrence date
	Time          string `json:"time" validate:"omitempty,datetime=15:04"`      // first occurrence time of day
	Future        bool   `json:"future"`
	Recurring     bool   `json:"recurring"`
	Frequency     string `json:"frequency" validate:"required_if=Recurring true"` // e.g. "2 days"
}

// StatusResponse reports whether a notification is still active.
type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
