package requests

import (
	"errors"
	"strings"

	"comlab_tool/models"
)

var (
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrRemarksRequired   = errors.New("remarks are required to remove a request")
)

type edges map[models.Status][]models.Status

var transitions = map[models.CatalogKind]edges{
	models.KindReport: {
		models.StatusPending:    {models.StatusProcessing, models.StatusApproved, models.StatusRemoved},
		models.StatusProcessing: {models.StatusApproved, models.StatusRemoved},
	},
	models.KindBorrow: {
		models.StatusPending:    {models.StatusProcessing, models.StatusApproved, models.StatusDeclined, models.StatusRemoved},
		models.StatusProcessing: {models.StatusApproved, models.StatusDeclined, models.StatusRemoved},
		models.StatusApproved:   {models.StatusReturned},
	},
}

// CanTransition reports whether a request of the given kind may move from one
// status to another.
func CanTransition(kind models.CatalogKind, from, to models.Status) bool {
	for _, s := range transitions[kind][from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition validates a disposition and returns the trimmed remarks to
// persist (nil when none were given).
func CheckTransition(kind models.CatalogKind, from, to models.Status, remarks string) (*string, error) {
	if !CanTransition(kind, from, to) {
		return nil, ErrInvalidTransition
	}
	r := strings.TrimSpace(remarks)
	if to == models.StatusRemoved && r == "" {
		return nil, ErrRemarksRequired
	}
	if r == "" {
		return nil, nil
	}
	return &r, nil
}
