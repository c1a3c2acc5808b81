package lead

import "strings"

var cityAliases = map[string]string{
	"bangalore":    "bengaluru",
	"bangaluru":    "bengaluru",
	"bombay":       "mumbai",
	"madras":       "chennai",
	"calcutta":     "kolkata",
	"gurgaon":      "gurugram",
	"trivandrum":   "thiruvananthapuram",
	"cochin":       "kochi",
	"ernakulam":    "kochi",
	"mysore":       "mysuru",
	"mangalore":    "mangaluru",
	"poona":        "pune",
	"baroda":       "vadodara",
	"benares":      "varanasi",
	"banaras":      "varanasi",
	"vizag":        "visakhapatnam",
	"pondicherry":  "puducherry",
	"trichy":       "tiruchirappalli",
	"calicut":      "kozhikode",
	"new delhi":    "delhi",
	"secunderabad": "hyderabad",
	"allahabad":    "prayagraj",
	"hubli":        "hubballi",
	"belgaum":      "belagavi",
	"gulbarga":     "kalaburagi",
}

// cityStates maps a country code to its canonical city -> state table.
var cityStates = map[string]map[string]string{
	"IN": {
		"bengaluru":          "Karnataka",
		"mysuru":             "Karnataka",
		"mangaluru":          "Karnataka",
		"hubballi":           "Karnataka",
		"belagavi":           "Karnataka",
		"kalaburagi":         "Karnataka",
		"mumbai":             "Maharashtra",
		"pune":               "Maharashtra",
		"nagpur":             "Maharashtra",
		"nashik":             "Maharashtra",
		"thane":              "Maharashtra",
		"aurangabad":         "Maharashtra",
		"chennai":            "Tamil Nadu",
		"coimbatore":         "Tamil Nadu",
		"madurai":            "Tamil Nadu",
		"tiruchirappalli":    "Tamil Nadu",
		"salem":              "Tamil Nadu",
		"kolkata":            "West Bengal",
		"howrah":             "West Bengal",
		"siliguri":           "West Bengal",
		"delhi":              "Delhi",
		"gurugram":           "Haryana",
		"faridabad":          "Haryana",
		"noida":              "Uttar Pradesh",
		"ghaziabad":          "Uttar Pradesh",
		"lucknow":            "Uttar Pradesh",
		"kanpur":             "Uttar Pradesh",
		"varanasi":           "Uttar Pradesh",
		"prayagraj":          "Uttar Pradesh",
		"agra":               "Uttar Pradesh",
		"hyderabad":          "Telangana",
		"warangal":           "Telangana",
		"visakhapatnam":      "Andhra Pradesh",
		"vijayawada":         "Andhra Pradesh",
		"guntur":             "Andhra Pradesh",
		"tirupati":           "Andhra Pradesh",
		"thiruvananthapuram": "Kerala",
		"kochi":              "Kerala",
		"kozhikode":          "Kerala",
		"thrissur":           "Kerala",
		"ahmedabad":          "Gujarat",
		"surat":              "Gujarat",
		"vadodara":           "Gujarat",
		"rajkot":             "Gujarat",
		"jaipur":             "Rajasthan",
		"jodhpur":            "Rajasthan",
		"udaipur":            "Rajasthan",
		"kota":               "Rajasthan",
		"bhopal":             "Madhya Pradesh",
		"indore":             "Madhya Pradesh",
		"gwalior":            "Madhya Pradesh",
		"jabalpur":           "Madhya Pradesh",
		"patna":              "Bihar",
		"ranchi":             "Jharkhand",
		"jamshedpur":         "Jharkhand",
		"bhubaneswar":        "Odisha",
		"cuttack":            "Odisha",
		"raipur":             "Chhattisgarh",
		"chandigarh":         "Chandigarh",
		"ludhiana":           "Punjab",
		"amritsar":           "Punjab",
		"jalandhar":          "Punjab",
		"dehradun":           "Uttarakhand",
		"guwahati":           "Assam",
		"panaji":             "Goa",
		"puducherry":         "Puducherry",
		"srinagar":           "Jammu and Kashmir",
		"jammu":              "Jammu and Kashmir",
		"shimla":             "Himachal Pradesh",
	},
}

// LookupState resolves a free-text city to its state within country. The
// boolean is false when the city is unknown.
func LookupState(country, city string) (string, bool) {
	table, ok := cityStates[strings.ToUpper(country)]
	if !ok {
		return "", false
	}
	key := strings.ToLower(strings.Join(strings.Fields(city), " "))
	if canonical, ok := cityAliases[key]; ok {
		key = canonical
	}
	state, ok := table[key]
	return state, ok
}
