package taxonomy

// DefaultVersion identifies the compiled-in vocabulary. Bump it whenever
// the default sets below change; cached analyses are keyed by it.
const DefaultVersion = "2024-06"

// Default returns the built-in municipal taxonomy. Callers must treat the
// result as read-only.
func Default() *Taxonomy {
	return &Taxonomy{
		Version: DefaultVersion,
		Categories: []Category{
			{
				Slug: "water",
				Name: "Water Department",
				Tags: []string{"Pipe Burst", "Low Pressure", "Quality Issue", "Meter Problem", "Billing Issue"},
				Route: Route{
					Department:     "Water Department",
					ContactEmail:   "water@city.gov",
					ContactPhone:   "+1-555-WATER",
					EmergencyPhone: "+1-555-WATER-911",
					ResponseWindow: "24-48 hours",
				},
			},
			{
				Slug: "roads",
				Name: "Roads and Transportation Department",
				Tags: []string{"Pothole", "Traffic Signal", "Street Light", "Road Damage", "Drainage"},
				Route: Route{
					Department:     "Roads and Transportation Department",
					ContactEmail:   "roads@city.gov",
					ContactPhone:   "+1-555-ROADS",
					EmergencyPhone: "+1-555-ROADS-911",
					ResponseWindow: "12-24 hours",
				},
			},
			{
				Slug: "waste",
				Name: "Waste Management Department",
				Tags: []string{"Collection Delay", "Bin Overflow", "Illegal Dumping", "Recycling", "Hazardous Waste"},
				Route: Route{
					Department:     "Waste Management Department",
					ContactEmail:   "waste@city.gov",
					ContactPhone:   "+1-555-WASTE",
					EmergencyPhone: "+1-555-WASTE-911",
					ResponseWindow: "24-72 hours",
				},
			},
			{
				Slug: "electricity",
				Name: "Electricity Department",
				Tags: []string{"Power Outage", "Voltage Issues", "Meter Reading", "Billing", "Street Light Electricity"},
				Route: Route{
					Department:     "Electricity Department",
					ContactEmail:   "electricity@city.gov",
					ContactPhone:   "+1-555-POWER",
					EmergencyPhone: "+1-555-POWER-911",
					ResponseWindow: "2-12 hours",
				},
			},
			{
				Slug: "other",
				Name: "General Services",
				Tags: []string{"Other"},
				Route: Route{
					Department:     "General Services",
					ContactEmail:   "services@city.gov",
					ContactPhone:   "+1-555-CITY",
					ResponseWindow: "48-72 hours",
				},
			},
		},
		Severities: []string{"low", "medium", "high", "critical"},
		SeverityFloor: map[string]string{
			"Pipe Burst":               "critical",
			"Low Pressure":             "medium",
			"Quality Issue":            "high",
			"Meter Problem":            "low",
			"Billing Issue":            "low",
			"Pothole":                  "high",
			"Traffic Signal":           "critical",
			"Street Light":             "medium",
			"Road Damage":              "high",
			"Drainage":                 "medium",
			"Collection Delay":         "low",
			"Bin Overflow":             "medium",
			"Illegal Dumping":          "high",
			"Recycling":                "low",
			"Hazardous Waste":          "critical",
			"Power Outage":             "critical",
			"Voltage Issues":           "high",
			"Meter Reading":            "low",
			"Billing":                  "low",
			"Street Light Electricity": "medium",
		},
	}
}
