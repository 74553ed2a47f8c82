package event

// Catalogue is the fixed list of festival events open for registration.
var Catalogue = []string{
	"Battle of Bands",
	"Classical Dance",
	"Open Mic Night",
	"Art Exhibition",
	"Photography Walk",
	"Hackathon",
	"Street Dance",
	"Fashion Show",
	"Debate Competition",
	"Quiz Championship",
}

func IsKnown(name string) bool {
	for _, e := range Catalogue {
		if e == name {
			return true
		}
	}
	return false
}
