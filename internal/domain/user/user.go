package user

import (
	"time"

	"github.com/geocoder89/impactfest/internal/domain/registration"
)

// User is the signed-in participant as reported by the backend.
type User struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Profile struct {
	User          User                  `json:"user"`
	Registrations []registration.Record `json:"registrations"`
}
