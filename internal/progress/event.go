// Package progress defines the event stream emitted during a
// validation run.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the type of milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart  Stage = "RUN_START"
	StageCheckDone Stage = "CHECK_DONE"
	StageRunDone   Stage = "RUN_DONE"
)

// StatusClass is a coarse HTTP response grouping.
type StatusClass string

// Supported HTTP status classes. StatusNone marks verdicts without a
// status code (transport errors and timeouts).
const (
	Status2xx   StatusClass = "2xx"
	Status3xx   StatusClass = "3xx"
	Status4xx   StatusClass = "4xx"
	Status5xx   StatusClass = "5xx"
	StatusOther StatusClass = "other"
	StatusNone  StatusClass = "none"
)

// Event captures a single milestone of a validation run.
type Event struct {
	// RunID uniquely identifies a run using the 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// RecordID and Name identify the dataset record for check events.
	RecordID string
	Name     string
	// URL is the final URL the verdict applies to.
	URL string
	// StatusClass groups the terminal HTTP status, if any.
	StatusClass StatusClass
	// Valid carries the verdict for check events.
	Valid bool
	// Reason holds the invalid-verdict explanation, if any.
	Reason string
	// Completed and Total track run progress.
	Completed int
	Total     int
	// Dur is the elapsed run time for RUN_DONE events.
	Dur time.Duration
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone:
		if e.Total <= 0 {
			return errors.New("run events require total")
		}
	case StageCheckDone:
		if e.URL == "" {
			return errors.New("check done requires url")
		}
		if e.Total <= 0 || e.Completed <= 0 {
			return errors.New("check done requires progress counts")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}

// ClassifyStatus groups HTTP status codes for check events.
func ClassifyStatus(code int) StatusClass {
	switch {
	case code >= 200 && code < 300:
		return Status2xx
	case code >= 300 && code < 400:
		return Status3xx
	case code >= 400 && code < 500:
		return Status4xx
	case code >= 500 && code < 600:
		return Status5xx
	case code <= 0:
		return StatusNone
	default:
		return StatusOther
	}
}
