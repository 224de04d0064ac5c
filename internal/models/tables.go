package models

// Remote table names
const (
	TableChildren            = "children"
	TableRobins              = "robins"
	TableDrives              = "drives"
	TableChildAttendance     = "child_attendance"
	TableRobinDrives         = "robin_drives"
	TableRobinUnavailability = "robin_unavailability"
	TableEducationalContent  = "educational_content"
)

// PhotosBucket is the only storage bucket; photos of every entity live in it
const PhotosBucket = "photos"

// Tables lists every table exposed to clients
var Tables = []string{
	TableChildren,
	TableRobins,
	TableDrives,
	TableChildAttendance,
	TableRobinDrives,
	TableRobinUnavailability,
	TableEducationalContent,
}

// IsTable reports whether name is an exposed table
func IsTable(name string) bool {
	return contains(Tables, name)
}
