package synth

import (
	"fmt"
	"math/rand"

	"trainload/internal/data"
)

// RegistrationBody is the JSON payload of the registration endpoint.
type RegistrationBody struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	CompanyName   string `json:"companyName"`
	Designation   string `json:"designation"`
	LastEducation string `json:"lastEducation"`
	Training      string `json:"training"`
}

// Meta carries the constant placeholder fields of a registration.
type Meta struct {
	Designation   string
	LastEducation string
}

// UniqueEmail prefixes email with the request counter so an actor never
// repeats an address.
func UniqueEmail(n int64, email string) string {
	return fmt.Sprintf("test%d_%s", n, email)
}

// NewRegistration fills a registration for user, attempt n and trainingID.
func NewRegistration(user data.UserFixture, n int64, trainingID string, meta Meta) RegistrationBody {
	return RegistrationBody{
		FullName:      user.FullName,
		Email:         UniqueEmail(n, user.Email),
		ContactNumber: user.Phone,
		CompanyName:   user.Company,
		Designation:   meta.Designation,
		LastEducation: meta.LastEducation,
		Training:      trainingID,
	}
}

// PostContent returns "{prefix} {k}" with k uniform in [1, max].
func PostContent(prefix string, rng *rand.Rand, max int) string {
	if max < 1 {
		max = 1
	}
	return fmt.Sprintf("%s %d", prefix, rng.Intn(max)+1)
}
