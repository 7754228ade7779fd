package requests

import "comlab_tool/models"

// PCAvailability derives a PC's status from every report filed against it.
// A PC is available only when each of those reports is resolved.
func PCAvailability(statuses []models.Status) string {
	for _, s := range statuses {
		if !s.Resolved() {
			return models.PCNotAvailable
		}
	}
	return models.PCAvailable
}
