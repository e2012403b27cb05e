package mailer

import "time"

// Config holds the SMTP settings the dispatcher needs. MissingSettings lists
// the environment variables that were absent at startup.
type Config struct {
	Host            string
	Port            int
	Secure          bool
	StartTLS        bool
	User            string
	Password        string
	From            string
	Timeout         time.Duration
	MissingSettings []string
}

// Request is the validated send-email payload.
type Request struct {
	Recipients []string `json:"recipients" validate:"required,min=1,dive,email" msg:"min=At least one recipient"`
	Subject    string   `json:"subject" validate:"required"`
	Body       string   `json:"body" validate:"required"`
}

// Response is returned after a successful send.
type Response struct {
	OK bool `json:"ok"`
}

// Message is a single outgoing email addressed to every recipient at once.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}
