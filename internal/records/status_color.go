package records

const neutralStatusColor = "bg-gray-100 text-gray-800 border-gray-200"

var statusColors = map[string]string{
	"available":     "bg-green-100 text-green-800 border-green-200",
	"loaned":        "bg-yellow-100 text-yellow-800 border-yellow-200",
	"sold":          "bg-blue-100 text-blue-800 border-blue-200",
	"trade_in":      "bg-purple-100 text-purple-800 border-purple-200",
	"active":        "bg-green-100 text-green-800 border-green-200",
	"returned":      neutralStatusColor,
	"expired":       "bg-red-100 text-red-800 border-red-200",
	"expiring_soon": "bg-yellow-100 text-yellow-800 border-yellow-200",
}

// StatusColor maps a status to its badge class. Unknown statuses get the neutral badge.
func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return neutralStatusColor
}
