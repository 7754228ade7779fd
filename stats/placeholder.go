package stats

// Shown when a range has no data, so the charts never render empty.
var (
	placeholderReported = []Entry{
		{Name: "Keyboard", Count: 15, Percentage: 30},
		{Name: "Monitor", Count: 12, Percentage: 24},
		{Name: "Mouse", Count: 10, Percentage: 20},
		{Name: "CPU", Count: 8, Percentage: 16},
		{Name: "Headset", Count: 5, Percentage: 10},
	}
	placeholderBorrowed = []Entry{
		{Name: "Projector", Count: 12, Percentage: 30},
		{Name: "Laptop", Count: 10, Percentage: 25},
		{Name: "Tablet", Count: 8, Percentage: 20},
		{Name: "Speaker", Count: 6, Percentage: 15},
		{Name: "Microphone", Count: 4, Percentage: 10},
	}
	placeholderRooms = []Entry{
		{Name: "517", Count: 5, Percentage: 34},
		{Name: "518", Count: 4, Percentage: 27},
		{Name: "519", Count: 3, Percentage: 20},
		{Name: "520", Count: 2, Percentage: 13},
		{Name: "521", Count: 1, Percentage: 6},
	}
)

func sumCounts(entries []Entry) int {
	n := 0
	for _, e := range entries {
		n += e.Count
	}
	return n
}
