// Package validation holds the domain rules checked before any entity is
// persisted. Every rule is a pure function: it reads its arguments and
// returns either nil or an *Error naming the offending field.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"airport-service/internal/models"
)

const (
	MaxRouteDistance = 20000
	DefaultLeadTime  = 10 * time.Minute
)

// Error is a field-scoped validation failure.
type Error struct {
	Fields map[string]string
}

func Field(field, message string) *Error {
	return &Error{Fields: map[string]string{field: message}}
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", k, e.Fields[k])
	}
	return "validation failed: " + b.String()
}

// Add records a failure for field, keeping the first message per field.
func (e *Error) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// Prefixed returns a copy with every field renamed to prefix+field.
// Nested payloads use it, e.g. "tickets.2." + "row".
func (e *Error) Prefixed(prefix string) *Error {
	out := &Error{Fields: make(map[string]string, len(e.Fields))}
	for k, v := range e.Fields {
		out.Fields[prefix+k] = v
	}
	return out
}

// OrNil lets callers collect several failures and return a clean nil error.
func (e *Error) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Join merges the field failures of errs. The first non-validation error,
// if any, is returned unchanged.
func Join(errs ...error) error {
	out := &Error{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		verr, ok := err.(*Error)
		if !ok {
			return err
		}
		for k, v := range verr.Fields {
			out.Add(k, v)
		}
	}
	return out.OrNil()
}

const requiredMessage = "This field is required."

// Required reports every name whose present flag is false.
func Required(present map[string]bool) error {
	verr := &Error{}
	for name, ok := range present {
		if !ok {
			verr.Add(name, requiredMessage)
		}
	}
	return verr.OrNil()
}

func notBlank(verr *Error, field, value, message string) {
	if strings.TrimSpace(value) == "" {
		verr.Add(field, message)
	}
}

func Airport(name, closestBigCity string) error {
	verr := &Error{}
	notBlank(verr, "name", name, "Airport name may not be blank.")
	notBlank(verr, "closest_big_city", closestBigCity, "Closest big city may not be blank.")
	return verr.OrNil()
}

func AirplaneType(name string) error {
	verr := &Error{}
	notBlank(verr, "name", name, "Airplane type name may not be blank.")
	return verr.OrNil()
}

func Airplane(name string, rows, seatsInRow int) error {
	verr := &Error{}
	notBlank(verr, "name", name, "Airplane name may not be blank.")
	if rows < 1 {
		verr.Add("rows", "Rows must be a positive number.")
	}
	if seatsInRow < 1 {
		verr.Add("seats_in_row", "Seats in row must be a positive number.")
	}
	return verr.OrNil()
}

func Crew(firstName, lastName string) error {
	verr := &Error{}
	notBlank(verr, "first_name", firstName, "First name may not be blank.")
	notBlank(verr, "last_name", lastName, "Last name may not be blank.")
	return verr.OrNil()
}

func Route(source, destination uuid.UUID, distance int) error {
	if source == destination {
		return Field("destination", "Source and destination airports cannot be the same.")
	}
	if distance < 1 {
		return Field("distance", "Distance must be a positive number.")
	}
	if distance > MaxRouteDistance {
		return Field("distance", "Distance cannot exceed 20,000 km.")
	}
	return nil
}

func FlightTimes(departure, arrival time.Time) error {
	if !arrival.After(departure) {
		return Field("arrival_time", "Arrival time must be after departure time.")
	}
	return nil
}

// TicketPosition checks the seat exists in the airplane layout. Row is
// checked before seat and only the first failure is reported.
func TicketPosition(row, seat int, airplane models.Airplane) error {
	checks := []struct {
		value, max int
		field      string
	}{
		{row, airplane.Rows, "row"},
		{seat, airplane.SeatsInRow, "seat"},
	}
	for _, c := range checks {
		if c.value < 1 || c.value > c.max {
			return Field(c.field, fmt.Sprintf("%s must be between 1 and %d.", c.field, c.max))
		}
	}
	return nil
}

// TicketTiming rejects tickets for flights that departed or depart within
// leadTime of now. Both cases are hard failures on the flight field.
func TicketTiming(departure, now time.Time, leadTime time.Duration) error {
	if !departure.After(now) {
		return Field("flight", "Cannot create ticket. Flight has already departed.")
	}
	if !departure.After(now.Add(leadTime)) {
		return Field("flight", fmt.Sprintf(
			"Flight departs in less than %d minutes. There is not enough time to board.",
			int(leadTime/time.Minute)))
	}
	return nil
}

// UserNames requires both names to be non-blank after trimming and made of letters only.
func UserNames(firstName, lastName string) error {
	verr := &Error{}
	for _, f := range []struct{ field, value, label string }{
		{"first_name", firstName, "First name"},
		{"last_name", lastName, "Last name"},
	} {
		v := strings.TrimSpace(f.value)
		switch {
		case v == "":
			verr.Add(f.field, f.label+" is required.")
		case strings.IndexFunc(v, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0:
			verr.Add(f.field, f.label+" should only contain letters.")
		}
	}
	return verr.OrNil()
}

const MinPasswordLength = 8

func Password(password string) error {
	if len(password) < MinPasswordLength {
		return Field("password", fmt.Sprintf("Password must be at least %d characters long.", MinPasswordLength))
	}
	return nil
}
