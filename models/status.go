package models

import (
	"errors"
	"strings"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusApproved   Status = "Approved"
	StatusDeclined   Status = "Declined"
	StatusRemoved    Status = "Removed"
	StatusReturned   Status = "Returned"
)

// StatusAll is the dashboard filter value that disables status filtering.
const StatusAll Status = "All"

var ErrUnknownStatus = errors.New("unknown status")

// NormalizeStatus maps the spellings used by older views onto the canonical set.
// An empty value is treated as Pending, matching documents written before the field existed.
func NormalizeStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "pending":
		return StatusPending, nil
	case "processing", "process":
		return StatusProcessing, nil
	case "approved", "approve":
		return StatusApproved, nil
	case "declined", "decline", "rejected", "reject":
		return StatusDeclined, nil
	case "removed", "remove":
		return StatusRemoved, nil
	case "returned", "return":
		return StatusReturned, nil
	}
	return "", ErrUnknownStatus
}

// ParseFilterStatus accepts "All" (or empty) in addition to the canonical statuses.
func ParseFilterStatus(raw string) (Status, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, string(StatusAll)) {
		return StatusAll, nil
	}
	return NormalizeStatus(s)
}

// Resolved reports whether a report no longer blocks its PC.
func (s Status) Resolved() bool { return s == StatusApproved || s == StatusRemoved }

func (s Status) String() string { return string(s) }
