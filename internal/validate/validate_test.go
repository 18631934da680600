package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	valid := []string{
		"test@example.com",
		"user.name@example.com",
		"user+tag@example.co.uk",
		"123@example.com",
		"Test@Example.COM",
	}
	for _, email := range valid {
		assert.Empty(t, Email(email), email)
	}

	invalid := []string{
		"notanemail",
		"@example.com",
		"user@",
		"user @example.com",
		"user@.com",
		"",
	}
	for _, email := range invalid {
		assert.NotEmpty(t, Email(email), email)
	}

	assert.Equal(t, "Invalid email address format", Email("invalid"))
	assert.Equal(t, "Email address is too long", Email(strings.Repeat("a", 250)+"@example.com"))
}

func TestPassword(t *testing.T) {
	for _, pw := range []string{"Password123!", "SuperSecure1@", "MyP@ssw0rd", "Test1234#"} {
		assert.Empty(t, Password(pw), pw)
	}

	complexity := "Password must contain uppercase, lowercase, number, and special character"
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"too short", "Pass1!", "Password must be at least 8 characters long"},
		{"no uppercase", "password123!", complexity},
		{"no lowercase", "PASSWORD123!", complexity},
		{"no number", "Password!", complexity},
		{"no special", "Password123", complexity},
		{"empty", "", "Password is required"},
		{"too long", "Aa1!" + strings.Repeat("x", 70), "Password must be less than 72 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Password(tt.password))
		})
	}
}

func TestBoundedText(t *testing.T) {
	assert.Empty(t, Name("Frodo Baggins"))
	assert.Equal(t, "Name must be at least 2 characters long", Name(" F "))
	assert.Equal(t, "Name must be less than 100 characters", Name(strings.Repeat("n", 101)))
	assert.Equal(t, "Name contains invalid characters", Name("<script>alert(1)</script>"))

	assert.Equal(t, "Project name must be at least 3 characters long", ProjectName("ab"))
	assert.Empty(t, ProjectName("Hobbiton Outreach"))

	assert.Equal(t, "Contact name is required", ContactName("   "))
	assert.Equal(t, "Contact name contains invalid characters", ContactName("Bob onerror=x"))
}

func TestNotes(t *testing.T) {
	assert.Equal(t, "Notes are required", Notes(""))
	assert.Equal(t, "Notes must be at least 10 characters long", Notes("too short"))
	assert.Equal(t, "Notes must be less than 10,000 characters", Notes(strings.Repeat("n", 10001)))
	assert.Equal(t, "Notes contain invalid content", Notes("visit <iframe src=x> later"))
	assert.Equal(t, "Notes contain invalid content", Notes("click JAVASCRIPT:void(0) here"))
	assert.Empty(t, Notes("Interested in the community garden."))
}

func TestOptionalEmailAndDescription(t *testing.T) {
	assert.Empty(t, OptionalEmail(""))
	assert.Empty(t, OptionalEmail("  "))
	assert.NotEmpty(t, OptionalEmail("nope"))

	assert.Empty(t, Description(""))
	assert.Equal(t, "Description must be less than 500 characters", Description(strings.Repeat("d", 501)))
}

func TestErrors(t *testing.T) {
	errs := Errors{}
	assert.False(t, errs.Any())

	errs.Add("email", "")
	assert.False(t, errs.Any())

	errs.Add("email", "first")
	errs.Add("email", "second")
	assert.Equal(t, "first", errs["email"])
	assert.Equal(t, "first", errs.First())

	errs.Add("form", "whole form")
	assert.Equal(t, "whole form", errs.First())
}
