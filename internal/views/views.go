// Package views derives read-only views from store collections. Every
// function is pure and leaves its inputs unmodified.
package views

import (
	"sort"
	"strings"

	"robinhoodarmy/internal/models"
)

// LeaderboardSize is the number of entries on the child and robin leaderboards
const LeaderboardSize = 10

// Leaderboard returns the first n items sorted by counter, highest first.
// Equal counters keep their original order.
func Leaderboard[T any](items []T, counter func(T) int, n int) []T {
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return counter(sorted[i]) > counter(sorted[j])
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ChildLeaderboard ranks children by attendance
func ChildLeaderboard(children []models.Child) []models.Child {
	return Leaderboard(children, func(c models.Child) int { return c.AttendanceCount }, LeaderboardSize)
}

// RobinLeaderboard ranks robins by drives attended
func RobinLeaderboard(robins []models.Robin) []models.Robin {
	return Leaderboard(robins, func(r models.Robin) int { return r.DriveCount }, LeaderboardSize)
}

// RobinParticipant is a robin together with their participation record
type RobinParticipant struct {
	Robin         models.Robin
	Participation models.RobinDrive
}

// DriveParticipants are the robins and children recorded at a drive
type DriveParticipants struct {
	Robins   []RobinParticipant
	Children []models.Child
}

// Participants resolves the join records of a drive to their robins and
// children. Records whose parent is missing are skipped.
func Participants(driveID string, robinDrives []models.RobinDrive, robins []models.Robin, attendance []models.ChildAttendance, children []models.Child) DriveParticipants {
	robinsByID := make(map[string]models.Robin, len(robins))
	for _, r := range robins {
		robinsByID[r.ID] = r
	}
	childrenByID := make(map[string]models.Child, len(children))
	for _, c := range children {
		childrenByID[c.ID] = c
	}

	var result DriveParticipants
	for _, rd := range robinDrives {
		if rd.DriveID == nil || *rd.DriveID != driveID {
			continue
		}
		if robin, ok := robinsByID[rd.RobinID]; ok {
			result.Robins = append(result.Robins, RobinParticipant{Robin: robin, Participation: rd})
		}
	}
	for _, a := range attendance {
		if a.DriveID == nil || *a.DriveID != driveID {
			continue
		}
		if child, ok := childrenByID[a.ChildID]; ok {
			result.Children = append(result.Children, child)
		}
	}
	return result
}

// SearchChildren keeps children whose name or any tag contains term,
// ignoring case, in locality when one is given
func SearchChildren(children []models.Child, term, locality string) []models.Child {
	needle := strings.ToLower(term)
	var out []models.Child
	for _, c := range children {
		matches := strings.Contains(strings.ToLower(c.Name), needle) || c.Tags.Contains(needle)
		if matches && (locality == "" || c.LocationName() == locality) {
			out = append(out, c)
		}
	}
	return out
}

// SearchRobins keeps robins whose name contains term, ignoring case, who are
// assigned to or live in locality when one is given
func SearchRobins(robins []models.Robin, term, locality string) []models.Robin {
	needle := strings.ToLower(term)
	var out []models.Robin
	for _, r := range robins {
		if !strings.Contains(strings.ToLower(r.Name), needle) {
			continue
		}
		if locality == "" || r.ServesLocality(locality) {
			out = append(out, r)
		}
	}
	return out
}

// Drive list sizes
const (
	upcomingDrivesLimit = 5
	pastDrivesLimit     = 10
)

// DrivesOn returns the drives held on date
func DrivesOn(drives []models.Drive, date string) []models.Drive {
	return filterDrives(drives, func(d models.Drive) bool { return d.Date == date }, -1)
}

// UpcomingDrives returns up to five drives after today, in collection order
func UpcomingDrives(drives []models.Drive, today string) []models.Drive {
	return filterDrives(drives, func(d models.Drive) bool { return d.Date > today }, upcomingDrivesLimit)
}

// PastDrives returns up to ten drives before today, in collection order
func PastDrives(drives []models.Drive, today string) []models.Drive {
	return filterDrives(drives, func(d models.Drive) bool { return d.Date < today }, pastDrivesLimit)
}

func filterDrives(drives []models.Drive, keep func(models.Drive) bool, limit int) []models.Drive {
	var out []models.Drive
	for _, d := range drives {
		if limit >= 0 && len(out) == limit {
			break
		}
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// IsFirstTimeRobin reports whether a robin has attended at most one drive
func IsFirstTimeRobin(robin models.Robin) bool {
	return robin.DriveCount <= 1
}

// Availability counts today's assigned robins by availability
type Availability struct {
	Available   int
	Unavailable int
}

// AvailabilitySummary counts available and unavailable robins among today's assignments
func AvailabilitySummary(assignments []models.TodayAssignment) Availability {
	var a Availability
	for _, assignment := range assignments {
		if assignment.IsUnavailable {
			a.Unavailable++
		} else {
			a.Available++
		}
	}
	return a
}
