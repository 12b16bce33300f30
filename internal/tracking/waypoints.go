package tracking

import "github.com/luxebite/luxebite-backend/internal/order"

// Waypoints is the demo delivery route. Orders leave from the first entry;
// each dispatched order is placed at the next stop along the rest, in turn.
var Waypoints = []order.TrackingLocation{
	{Lat: 19.0760, Lng: 72.8777, Address: "LuxeBite Kitchen, Mumbai"},
	{Lat: 19.0720, Lng: 72.8740, Address: "Near Bandra Station"},
	{Lat: 19.0680, Lng: 72.8700, Address: "Linking Road Junction"},
	{Lat: 19.0640, Lng: 72.8660, Address: "Carter Road"},
}
