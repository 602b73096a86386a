package models

// Hospital is a facility entry from the county health directory. Facility
// names act as the natural key; referral ingestion validates them once at the
// boundary rather than trusting free text throughout.
type Hospital struct {
	Name              string   `bson:"_id" json:"name"`
	Position          Location `bson:"position" json:"position"`
	FacilityType      string   `bson:"facility_type" json:"facility_type"`
	Capacity          int      `bson:"capacity" json:"capacity"`
	AmbulanceServices string   `bson:"ambulance_services" json:"ambulance_services"`
	ContactNumber     string   `bson:"contact_number" json:"contact_number"`
}
