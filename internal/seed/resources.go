package seed

import resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"

type demoResource struct {
	ResourceType resourcedomain.ResourceType
	ProviderName string
	Quantity     int
	Latitude     float64
	Longitude    float64
	LocationName string
}

// demoResources is a fixed Mumbai registry for local runs and demos.
var demoResources = []demoResource{
	{resourcedomain.TypeMedical, "Lilavati Hospital Ambulance Service", 5, 19.0504, 72.8291, "Bandra West, Mumbai"},
	{resourcedomain.TypeMedical, "Cooper Hospital Trauma Center", 8, 19.1075, 72.8362, "Juhu, Mumbai"},
	{resourcedomain.TypeMedical, "Sion Hospital ER Unit", 12, 19.0357, 72.8611, "Sion, Mumbai"},
	{resourcedomain.TypeMedical, "Bombay Hospital Rapid Response", 4, 18.9405, 72.8282, "Marine Lines, Mumbai"},
	{resourcedomain.TypeMedical, "Hiranandani Hospital", 50, 19.1150, 72.9050, "Powai"},
	{resourcedomain.TypeMedical, "Municipal Ambulance Service", 10, 18.9400, 72.8350, "CST"},
	{resourcedomain.TypeRescue, "Mumbai Fire Brigade - Byculla HQ", 10, 18.9723, 72.8335, "Byculla, Mumbai"},
	{resourcedomain.TypeRescue, "NDRF Unit 5 - Ghatkopar Base", 40, 19.0860, 72.9090, "Ghatkopar, Mumbai"},
	{resourcedomain.TypeRescue, "Civil Defence Corps - Dadar", 25, 19.0178, 72.8478, "Dadar West, Mumbai"},
	{resourcedomain.TypeRescue, "Thane Disaster Response Force", 15, 19.2183, 72.9781, "Teen Hath Naka, Thane"},
	{resourcedomain.TypeShelter, "St. Xavier's College Hall", 200, 18.9427, 72.8315, "Dhobi Talao, Mumbai"},
	{resourcedomain.TypeShelter, "Andheri Sports Complex", 500, 19.1245, 72.8360, "Andheri West, Mumbai"},
	{resourcedomain.TypeShelter, "NESCO Center Goregaon", 1000, 19.1550, 72.8533, "Goregaon East, Mumbai"},
	{resourcedomain.TypeFood, "Akshaya Patra Mumbai", 5000, 19.0435, 72.8227, "Worli, Mumbai"},
	{resourcedomain.TypeFood, "Roti Bank Foundation", 200, 19.0166, 72.8304, "Lower Parel, Mumbai"},
	{resourcedomain.TypeFood, "Food Distribution Center Dharavi", 1500, 19.0300, 72.8500, "Dharavi"},
	{resourcedomain.TypeWater, "Khalsa Aid Mumbai Team", 1000, 19.0805, 72.8950, "Vidyavihar, Mumbai"},
	{resourcedomain.TypeWater, "Municipal Water Tanker - Powai", 8000, 19.1150, 72.9050, "Powai"},
	{resourcedomain.TypeWater, "Municipal Tanker Goregaon", 6000, 19.1600, 72.8600, "Goregaon"},
	{resourcedomain.TypeBlankets, "Goonj Relief Store", 800, 19.0728, 72.8826, "Kurla, Mumbai"},
	{resourcedomain.TypeTransport, "BEST Emergency Bus Depot", 12, 19.0176, 72.8562, "Dadar East, Mumbai"},
}
