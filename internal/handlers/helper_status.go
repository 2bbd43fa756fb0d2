package handlers

import "strings"

// normalizeStatus lowercases a requested complaint status. Clients send the
// display form ("Under Review") as often as the stored one.
func normalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	return strings.ReplaceAll(status, " ", "_")
}
