package domain

import (
	"time"
)

const (
	StatusValid    = "Valid"
	StatusUnstable = "Unstable"
	StatusInvalid  = "Invalid"
)

type Check struct {
	Link      RawLink
	Protocol  string
	Status    string
	Canonical string
	Error     error
	TimeStamp time.Time
}

type CheckResult struct {
	Check     Check
	Duration  time.Duration
	Completed time.Time
}

// Exporter forwards a check outcome to an external system.
type Exporter interface {
	Export(Check) error
}

// Dispatcher routes a check to the exporters watching its node.
type Dispatcher interface {
	Dispatch(Check)
}
