package roster

import (
	"database/sql"
	"sort"
	"time"
)

// Member represents a team member who can hold on-call shifts.
type Member struct {
	ID             int64
	Name           string
	Phone          string         // E.164, primary paging address
	SecondaryPhone sql.NullString // optional second device
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Addresses returns the member's deliverable addresses, primary first.
func (m *Member) Addresses() []string {
	addrs := make([]string, 0, 2)
	if m.Phone != "" {
		addrs = append(addrs, m.Phone)
	}
	if m.SecondaryPhone.Valid && m.SecondaryPhone.String != "" {
		addrs = append(addrs, m.SecondaryPhone.String)
	}
	return addrs
}

// SortByID returns a copy of the roster ordered by stable member ID.
// Rotation position is always derived from this order, never from slice
// order, so removing a member never shifts the survivors' positions.
func SortByID(members []Member) []Member {
	sorted := make([]Member, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}

// MaskPhone hides the last four digits of a phone number for log output.
func MaskPhone(phone string) string {
	if len(phone) < 4 {
		return "***"
	}
	return phone[:len(phone)-4] + "XXXX"
}
