package models

import "strings"

// Service is an offering a visitor can request a consultation for.
type Service struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Services is the service catalog in display order.
var Services = []Service{
	{ID: "ai-integration", Name: "AI Integration"},
	{ID: "custom-software", Name: "Custom Software"},
	{ID: "server-maintenance", Name: "Server Maintenance"},
	{ID: "customer-support", Name: "Customer Support"},
}

// TimeSlots are the bookable consultation times.
var TimeSlots = []string{
	"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM",
}

// IsKnownService reports whether id is in the catalog.
func IsKnownService(id string) bool {
	for _, s := range Services {
		if s.ID == id {
			return true
		}
	}
	return false
}

// IsValidTimeSlot reports whether slot is one of TimeSlots.
func IsValidTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// ServiceDisplayName returns the catalog name, or the id with hyphens
// replaced by spaces for ids outside the catalog.
func ServiceDisplayName(id string) string {
	for _, s := range Services {
		if s.ID == id {
			return s.Name
		}
	}
	return strings.ReplaceAll(id, "-", " ")
}

// ServiceDisplayNames maps ids to display names preserving order.
func ServiceDisplayNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, ServiceDisplayName(id))
	}
	return names
}
