package models

import "strings"

// Localities is the closed set of places drives are run in
var Localities = []string{
	"Raghubir Nagar",
	"Delhi Cantt",
	"Janakpuri",
	"Dwarka",
	"Rohini",
	"Lajpat Nagar",
	"Connaught Place",
	"Karol Bagh",
	"Uttam Nagar",
}

// CommuteMethods lists how a robin can travel to a drive
var CommuteMethods = []string{
	"Metro",
	"4-Wheeler (Car)",
	"2-Wheeler (Bike/Scooter)",
	"Bus",
	"Walking",
	"Cycle",
	"Auto-Rickshaw",
}

// Skills lists the skills a robin can declare at registration
var Skills = []string{
	"Teaching",
	"First Aid",
	"Cooking",
	"Transportation",
	"Organization",
	"Communication",
	"Technical Skills",
	"Medical Knowledge",
	"Child Care",
	"Event Planning",
}

// Subjects lists the subjects offered for generated content
var Subjects = []string{
	"Mathematics",
	"English",
	"Science",
	"Hindi",
	"Environmental Studies",
	"General Knowledge",
	"Arts & Crafts",
	"Moral Stories",
}

// IsLocality reports whether name is a known locality
func IsLocality(name string) bool {
	return contains(Localities, name)
}

// IsCommuteMethod reports whether method is a known commute option
func IsCommuteMethod(method string) bool {
	return contains(CommuteMethods, method)
}

// IsSkill reports whether skill is a known skill
func IsSkill(skill string) bool {
	return contains(Skills, skill)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func containsFold(list []string, value string) (string, bool) {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return item, true
		}
	}
	return "", false
}
