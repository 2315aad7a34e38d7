package domain

import "time"

// Event is a catalogue entry. Name is unique and is the key users register by.
type Event struct {
	ID           string
	Name         string
	Coordinator  string
	Mobile       string
	Date         string
	Timings      string
	WhatsappLink string
	Link         string
	Rules        string
	Image        string
	Description  string
	Prize        string
	Category     string
	Capacity     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
