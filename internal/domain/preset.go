package domain

// PresetTrip is a frequently driven route with its known mileage.
// Clients use presets to pre-fill the trip and miles fields of the form.
type PresetTrip struct {
	Name        string
	OneWayMiles float64
	RoundMiles  float64
}

// PresetTrips lists the built-in routes in display order.
var PresetTrips = []PresetTrip{
	{Name: "Roos <-> Wash", OneWayMiles: 2.2, RoundMiles: 4.4},
	{Name: "Roos <-> Kerp", OneWayMiles: 0.3, RoundMiles: 0.6},
	{Name: "Wash <-> Roos", OneWayMiles: 2.2, RoundMiles: 4.4},
	{Name: "Wash <-> Kerp", OneWayMiles: 2.0, RoundMiles: 4.0},
	{Name: "Kerp <-> Roos", OneWayMiles: 0.3, RoundMiles: 0.6},
	{Name: "Kerp <-> Wash", OneWayMiles: 2.0, RoundMiles: 4.0},
}
