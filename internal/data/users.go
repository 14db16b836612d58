// Package data loads the fixtures actors are bound to at startup.
package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
)

// ErrNoUsers is returned when a dataset yields no usable rows.
var ErrNoUsers = errors.New("no valid users in dataset")

// userColumns is the number of columns in a user row: email, company, fullName, phone.
const userColumns = 4

// UserFixture is one row of the registration dataset.
type UserFixture struct {
	Email    string
	Company  string
	FullName string
	Phone    string
}

// Users is an immutable set of user fixtures.
type Users struct {
	rows []UserFixture
}

// Len returns the number of usable rows.
func (u *Users) Len() int {
	return len(u.rows)
}

// Pick returns a uniformly random fixture.
func (u *Users) Pick(rng *rand.Rand) UserFixture {
	return u.rows[rng.Intn(len(u.rows))]
}

// LoadUsers reads a CSV dataset of [email, company, fullName, phone] rows.
// A leading header row whose first column is "email" is dropped, rows with
// fewer than four fields are skipped and fields are trimmed.
func LoadUsers(path string) (*Users, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening users file: %w", err)
	}
	defer f.Close()

	users, err := ReadUsers(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return users, nil
}

// ReadUsers parses a user dataset from r.
func ReadUsers(r io.Reader) (*Users, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) > 0 && isHeader(records[0]) {
		records = records[1:]
	}

	rows := make([]UserFixture, 0, len(records))
	for _, rec := range records {
		if len(rec) < userColumns {
			continue
		}
		row := UserFixture{
			Email:    strings.TrimSpace(rec[0]),
			Company:  strings.TrimSpace(rec[1]),
			FullName: strings.TrimSpace(rec[2]),
			Phone:    strings.TrimSpace(rec[3]),
		}
		if row.Email == "" {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoUsers
	}
	return &Users{rows: rows}, nil
}

func isHeader(rec []string) bool {
	return len(rec) == userColumns && strings.TrimSpace(rec[0]) == "email"
}
