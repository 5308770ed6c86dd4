package tests

import (
	"errors"
	"time"
)

const (
	DefaultFullName    = "John Doe"
	DefaultFirstName   = "John"
	DefaultLastName    = "Doe"
	AnotherFullName    = "Mary Jane"
	AnotherFirstName   = "Mary"
	AnotherLastName    = "Jane"
	UpdatedFullName    = "John Smith"
	NonExistingName    = "Absent Name"
	MalformedName      = "Cher"
	DefaultToken       = "C0rr3ctT0k3n"
	DefaultMeasurement = "testMeasurement"
	TinyTimeout        = 10 * time.Millisecond
	ShortTimeout       = 100 * time.Millisecond
)

var ErrDefault = errors.New("an error occurred")
