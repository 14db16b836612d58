package data

import (
	"errors"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadUsers_WithHeader(t *testing.T) {
	path := writeFile(t, "registration.csv", `email,company,fullName,phone
a@x.com,Acme,Ann,111
b@y.com, Beta ,Bob,222
`)

	users, err := LoadUsers(path)
	if err != nil {
		t.Fatalf("LoadUsers: %v", err)
	}
	if users.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", users.Len())
	}
	if users.rows[0] != (UserFixture{Email: "a@x.com", Company: "Acme", FullName: "Ann", Phone: "111"}) {
		t.Errorf("unexpected first row %+v", users.rows[0])
	}
	if users.rows[1].Company != "Beta" {
		t.Errorf("expected trimmed company, got %q", users.rows[1].Company)
	}
}

func TestReadUsers_WithoutHeader(t *testing.T) {
	users, err := ReadUsers(strings.NewReader("a@x.com,Acme,Ann,111\n"))
	if err != nil {
		t.Fatalf("ReadUsers: %v", err)
	}
	if users.Len() != 1 || users.rows[0].Email != "a@x.com" {
		t.Errorf("unexpected rows %+v", users.rows)
	}
}

func TestReadUsers_SkipsShortRows(t *testing.T) {
	users, err := ReadUsers(strings.NewReader("email,company,fullName,phone\nbroken,row\nc@z.com,Corp,Cat,333,extra\n"))
	if err != nil {
		t.Fatalf("ReadUsers: %v", err)
	}
	if users.Len() != 1 || users.rows[0].Email != "c@z.com" {
		t.Errorf("expected only the complete row, got %+v", users.rows)
	}
}

func TestReadUsers_Empty(t *testing.T) {
	for name, content := range map[string]string{
		"truly empty": "",
		"header only": "email,company,fullName,phone\n",
		"all short":   "a@x.com,Acme\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadUsers(strings.NewReader(content))
			if !errors.Is(err, ErrNoUsers) {
				t.Errorf("expected ErrNoUsers, got %v", err)
			}
		})
	}
}

func TestReadUsers_Malformed(t *testing.T) {
	_, err := ReadUsers(strings.NewReader("a@x.com,\"unterminated,Ann,111\n"))
	if err == nil {
		t.Fatal("expected CSV parse error")
	}
	if errors.Is(err, ErrNoUsers) {
		t.Error("parse error should not be reported as ErrNoUsers")
	}
}

func TestLoadUsers_MissingFile(t *testing.T) {
	_, err := LoadUsers(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestUsers_PickIsUniformAndDeterministic(t *testing.T) {
	users, err := ReadUsers(strings.NewReader("a@x.com,A,Ann,1\nb@x.com,B,Bob,2\nc@x.com,C,Cat,3\n"))
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]int)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 3000; i++ {
		seen[users.Pick(rng).Email]++
	}
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		if seen[email] < 800 || seen[email] > 1200 {
			t.Errorf("%s picked %d times out of 3000", email, seen[email])
		}
	}

	a := users.Pick(rand.New(rand.NewSource(99)))
	b := users.Pick(rand.New(rand.NewSource(99)))
	if a != b {
		t.Errorf("same seed picked %v and %v", a, b)
	}
}

func TestLoadUpload_FromUsersSuite(t *testing.T) {
	path := writeFile(t, "dummy.JPG", "\xff\xd8\xff\xe0binary")

	up, err := LoadUpload(path)
	if err != nil {
		t.Fatalf("LoadUpload: %v", err)
	}
	if string(up.Content) != "\xff\xd8\xff\xe0binary" {
		t.Errorf("unexpected content %q", up.Content)
	}

	if _, err := LoadUpload(filepath.Join(t.TempDir(), "nope.JPG")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}
