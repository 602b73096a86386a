// Package directory holds the county health facility register. Referral
// ingestion resolves facility names here once, so the rest of the system
// never works from unvalidated free-text hospital names.
package directory

import (
	"errors"
	"fmt"

	"github.com/kisumu-dev/referral-dispatch/internal/models"
)

// ErrUnknownFacility is returned when a facility name is not in the register.
var ErrUnknownFacility = errors.New("unknown facility")

// Directory maps facility names to their register entries.
type Directory struct {
	byName  map[string]models.Hospital
	ordered []models.Hospital
}

// New builds a directory from the given facilities. Duplicate names keep the
// first entry.
func New(facilities []models.Hospital) *Directory {
	d := &Directory{byName: make(map[string]models.Hospital, len(facilities))}
	for _, h := range facilities {
		if _, exists := d.byName[h.Name]; exists {
			continue
		}
		d.byName[h.Name] = h
		d.ordered = append(d.ordered, h)
	}
	return d
}

// Kisumu returns the directory seeded with the Kisumu County register.
func Kisumu() *Directory {
	return New(kisumuFacilities)
}

// Lookup returns the register entry for a facility name.
func (d *Directory) Lookup(name string) (models.Hospital, bool) {
	h, ok := d.byName[name]
	return h, ok
}

// Position returns the coordinates of a facility, or nil when the facility
// is unknown.
func (d *Directory) Position(name string) *models.Location {
	h, ok := d.byName[name]
	if !ok {
		return nil
	}
	pos := h.Position
	return &pos
}

// Validate confirms a facility name exists in the register.
func (d *Directory) Validate(name string) error {
	if _, ok := d.byName[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFacility, name)
	}
	return nil
}

// All returns every facility in register order.
func (d *Directory) All() []models.Hospital {
	out := make([]models.Hospital, len(d.ordered))
	copy(out, d.ordered)
	return out
}

var kisumuFacilities = []models.Hospital{
	{Name: "Jaramogi Oginga Odinga Teaching & Referral Hospital (JOOTRH)", Position: models.Location{Lat: -0.0754, Lon: 34.7695}, FacilityType: "Referral Hospital", Capacity: 500, AmbulanceServices: "Available", ContactNumber: "+254-57-2055000"},
	{Name: "Kisumu County Referral Hospital", Position: models.Location{Lat: -0.0754, Lon: 34.7695}, FacilityType: "Referral Hospital", Capacity: 400, AmbulanceServices: "Available", ContactNumber: "+254-57-2021578"},
	{Name: "Lumumba Sub-County Hospital", Position: models.Location{Lat: -0.1058, Lon: 34.7568}, FacilityType: "Sub-County Hospital", Capacity: 100, AmbulanceServices: "Limited", ContactNumber: "+254-57-2023456"},
	{Name: "Ahero Sub-County Hospital", Position: models.Location{Lat: -0.1743, Lon: 34.9169}, FacilityType: "Sub-County Hospital", Capacity: 100, AmbulanceServices: "Limited", ContactNumber: "+254-57-2034567"},
	{Name: "Kombewa Sub-County / District Hospital", Position: models.Location{Lat: -0.1813, Lon: 34.6326}, FacilityType: "Sub-County Hospital", Capacity: 100, AmbulanceServices: "Limited", ContactNumber: "+254-57-2045678"},
	{Name: "Muhoroni County Hospital", Position: models.Location{Lat: -0.1551, Lon: 35.1985}, FacilityType: "County Hospital", Capacity: 75, AmbulanceServices: "Limited", ContactNumber: "+254-57-2056789"},
	{Name: "Nyakach Sub-County Hospital", Position: models.Location{Lat: -0.2670, Lon: 35.0569}, FacilityType: "Sub-County Hospital", Capacity: 75, AmbulanceServices: "Limited", ContactNumber: "+254-57-2067890"},
	{Name: "Chulaimbo Sub-County Hospital", Position: models.Location{Lat: -0.1848, Lon: 34.6163}, FacilityType: "Sub-County Hospital", Capacity: 78, AmbulanceServices: "Limited", ContactNumber: "+254-57-2078901"},
	{Name: "Masogo Sub-County (Sub-District) Hospital", Position: models.Location{Lat: -0.1855, Lon: 35.0386}, FacilityType: "Sub-County Hospital", Capacity: 77, AmbulanceServices: "Limited", ContactNumber: "+254-57-2089012"},
	{Name: "Nyando District Hospital", Position: models.Location{Lat: -0.3573, Lon: 35.0006}, FacilityType: "District Hospital", Capacity: 80, AmbulanceServices: "Limited", ContactNumber: "+254-57-2090123"},
	{Name: "Ober Kamoth Sub-County Hospital", Position: models.Location{Lat: -0.3789, Lon: 35.0299}, FacilityType: "Sub-County Hospital", Capacity: 70, AmbulanceServices: "Limited", ContactNumber: "+254-57-2101234"},
	{Name: "Rabuor Sub-County Hospital", Position: models.Location{Lat: -0.2138, Lon: 34.8817}, FacilityType: "Sub-County Hospital", Capacity: 60, AmbulanceServices: "Limited", ContactNumber: "+254-57-2112345"},
	{Name: "Nyangoma Sub-County Hospital", Position: models.Location{Lat: -0.1625, Lon: 34.7794}, FacilityType: "Sub-County Hospital", Capacity: 65, AmbulanceServices: "Limited", ContactNumber: "+254-57-2123456"},
	{Name: "Nyahera Sub-County Hospital", Position: models.Location{Lat: -0.1565, Lon: 34.7508}, FacilityType: "Sub-County Hospital", Capacity: 50, AmbulanceServices: "Limited", ContactNumber: "+254-57-2134567"},
	{Name: "Katito Sub-County Hospital", Position: models.Location{Lat: -0.4533, Lon: 34.9561}, FacilityType: "Sub-County Hospital", Capacity: 52, AmbulanceServices: "Limited", ContactNumber: "+254-57-2145678"},
	{Name: "Gita Sub-County Hospital", Position: models.Location{Lat: -0.3735, Lon: 34.9676}, FacilityType: "Sub-County Hospital", Capacity: 40, AmbulanceServices: "Limited", ContactNumber: "+254-57-2156789"},
	{Name: "Masogo Health Centre", Position: models.Location{Lat: -0.1855, Lon: 35.0386}, FacilityType: "Health Centre", Capacity: 42, AmbulanceServices: "Limited", ContactNumber: "+254-57-2167890"},
	{Name: "Victoria Hospital (public) Kisumu", Position: models.Location{Lat: -0.0878, Lon: 34.7686}, FacilityType: "Private Hospital", Capacity: 30, AmbulanceServices: "Limited", ContactNumber: "+254-57-2178901"},
	{Name: "Kodiaga Prison Health Centre", Position: models.Location{Lat: -0.0607, Lon: 34.7509}, FacilityType: "Prison Health Centre", Capacity: 35, AmbulanceServices: "Limited", ContactNumber: "+254-57-2189012"},
	{Name: "Kisumu District Hospital", Position: models.Location{Lat: -0.0916, Lon: 34.7647}, FacilityType: "District Hospital", Capacity: 20, AmbulanceServices: "Limited", ContactNumber: "+254-57-2190123"},
	{Name: "Migosi Health Centre", Position: models.Location{Lat: -0.1073, Lon: 34.7794}, FacilityType: "Health Centre", Capacity: 20, AmbulanceServices: "Limited", ContactNumber: "+254-57-2201234"},
	{Name: "Katito Health Centre", Position: models.Location{Lat: -0.4533, Lon: 34.9561}, FacilityType: "Health Centre", Capacity: 25, AmbulanceServices: "Limited", ContactNumber: "+254-57-2212345"},
	{Name: "Mbaka Oromo Health Centre", Position: models.Location{Lat: -0.2628, Lon: 34.6061}, FacilityType: "Health Centre", Capacity: 15, AmbulanceServices: "Limited", ContactNumber: "+254-57-2223456"},
	{Name: "Migere Health Centre", Position: models.Location{Lat: -0.1225, Lon: 34.7553}, FacilityType: "Health Centre", Capacity: 24, AmbulanceServices: "Limited", ContactNumber: "+254-57-2234567"},
	{Name: "Milenye Health Centre", Position: models.Location{Lat: -0.1872, Lon: 34.7781}, FacilityType: "Health Centre", Capacity: 15, AmbulanceServices: "Limited", ContactNumber: "+254-57-2245678"},
	{Name: "Minyange Dispensary", Position: models.Location{Lat: -0.2192, Lon: 34.8331}, FacilityType: "Dispensary", Capacity: 10, AmbulanceServices: "Limited", ContactNumber: "+254-57-2256789"},
	{Name: "Nduru Kadero Health Centre", Position: models.Location{Lat: -0.1356, Lon: 34.7381}, FacilityType: "Health Centre", Capacity: 19, AmbulanceServices: "Limited", ContactNumber: "+254-57-2267890"},
	{Name: "Newa Dispensary", Position: models.Location{Lat: -0.2014, Lon: 34.8289}, FacilityType: "Dispensary", Capacity: 5, AmbulanceServices: "Limited", ContactNumber: "+254-57-2278901"},
	{Name: "Nyakoko Dispensary", Position: models.Location{Lat: -0.2678, Lon: 34.9981}, FacilityType: "Dispensary", Capacity: 19, AmbulanceServices: "Limited", ContactNumber: "+254-57-2289012"},
	{Name: "Ojola Sub-County Hospital", Position: models.Location{Lat: -0.1578, Lon: 34.8419}, FacilityType: "Sub-County Hospital", Capacity: 10, AmbulanceServices: "Limited", ContactNumber: "+254-57-2290123"},
	{Name: "Simba Opepo Health Centre", Position: models.Location{Lat: -0.3381, Lon: 34.9456}, FacilityType: "Health Centre", Capacity: 5, AmbulanceServices: "Limited", ContactNumber: "+254-57-2301234"},
	{Name: "Songhor Health Centre", Position: models.Location{Lat: -0.2131, Lon: 35.1611}, FacilityType: "Health Centre", Capacity: 15, AmbulanceServices: "Limited", ContactNumber: "+254-57-2312345"},
	{Name: "St Marks Lela Health Centre", Position: models.Location{Lat: -0.0803, Lon: 34.6569}, FacilityType: "Health Centre", Capacity: 17, AmbulanceServices: "Limited", ContactNumber: "+254-57-2323456"},
	{Name: "Maseno University Health Centre", Position: models.Location{Lat: -0.0025, Lon: 34.6053}, FacilityType: "University Health Centre", Capacity: 16, AmbulanceServices: "Limited", ContactNumber: "+254-57-2334567"},
	{Name: "Geta Health Centre", Position: models.Location{Lat: -0.4739, Lon: 34.9519}, FacilityType: "Health Centre", Capacity: 45, AmbulanceServices: "Limited", ContactNumber: "+254-57-2345678"},
	{Name: "Kadinda Health Centre", Position: models.Location{Lat: -0.2167, Lon: 34.8419}, FacilityType: "Health Centre", Capacity: 30, AmbulanceServices: "Limited", ContactNumber: "+254-57-2356789"},
	{Name: "Kochieng Health Centre", Position: models.Location{Lat: -0.3658, Lon: 34.9606}, FacilityType: "Health Centre", Capacity: 29, AmbulanceServices: "Limited", ContactNumber: "+254-57-2367890"},
	{Name: "Kodingo Health Centre", Position: models.Location{Lat: -0.0956, Lon: 34.7658}, FacilityType: "Health Centre", Capacity: 55, AmbulanceServices: "Limited", ContactNumber: "+254-57-2378901"},
	{Name: "Kolenyo Health Centre", Position: models.Location{Lat: -0.4536, Lon: 34.9564}, FacilityType: "Health Centre", Capacity: 30, AmbulanceServices: "Limited", ContactNumber: "+254-57-2389012"},
	{Name: "Kandu Health Centre", Position: models.Location{Lat: -0.2314, Lon: 34.8489}, FacilityType: "Health Centre", Capacity: 30, AmbulanceServices: "Limited", ContactNumber: "+254-57-2390123"},
}
