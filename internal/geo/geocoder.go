package geo

import "strings"

// UnspecifiedLabel is the label returned when no table entry matches.
const UnspecifiedLabel = "Localização não especificada"

// DefaultCoordinate is returned for text that matches no known place
// (São Paulo city centre).
var DefaultCoordinate = Coordinate{Latitude: -23.5505, Longitude: -46.6333}

// Place is one entry of the geocoding table.
type Place struct {
	Name       string
	Coordinate Coordinate
}

// Result is the outcome of a geocode lookup. Matched is false when the
// default coordinate was used.
type Result struct {
	Coordinate Coordinate `json:"coordinates"`
	Label      string     `json:"label"`
	Matched    bool       `json:"matched"`
}

// places is scanned in order and the first name contained in the input wins,
// so entries whose names embed other names must come first.
var places = []Place{
	{"SÃO PAULO", Coordinate{-23.5505, -46.6333}},
	{"RIO DE JANEIRO", Coordinate{-22.9068, -43.1729}},
	{"BELO HORIZONTE", Coordinate{-19.9167, -43.9345}},
	{"BRASÍLIA", Coordinate{-15.7939, -47.8828}},
	{"SALVADOR", Coordinate{-12.9714, -38.5014}},
	{"FORTALEZA", Coordinate{-3.7319, -38.5267}},
	{"CURITIBA", Coordinate{-25.4284, -49.2733}},
	{"RECIFE", Coordinate{-8.0476, -34.8770}},
	{"PORTO ALEGRE", Coordinate{-30.0346, -51.2177}},
	{"MANAUS", Coordinate{-3.1190, -60.0217}},
	{"BELÉM", Coordinate{-1.4558, -48.4902}},
	{"GOIÂNIA", Coordinate{-16.6869, -49.2648}},
	{"CAMPINAS", Coordinate{-22.9099, -47.0626}},
	{"SÃO LUÍS", Coordinate{-2.5391, -44.2829}},
	{"MACEIÓ", Coordinate{-9.6658, -35.7353}},
	{"NATAL", Coordinate{-5.7945, -35.2110}},
	{"TERESINA", Coordinate{-5.0920, -42.8038}},
	{"JOÃO PESSOA", Coordinate{-7.1195, -34.8450}},
	{"FLORIANÓPOLIS", Coordinate{-27.5954, -48.5480}},
	{"VITÓRIA", Coordinate{-20.3155, -40.3128}},
}

// Geocoder resolves free text to approximate city coordinates using a frozen
// lookup table. It holds no mutable state and is safe for concurrent use.
type Geocoder struct {
	table []Place
}

// NewGeocoder returns a Geocoder over the built-in city table.
func NewGeocoder() *Geocoder {
	return &Geocoder{table: places}
}

// Places returns a copy of the lookup table in match order.
func (g *Geocoder) Places() []Place {
	out := make([]Place, len(g.table))
	copy(out, g.table)
	return out
}

// Geocode never fails: unknown text resolves to DefaultCoordinate with
// UnspecifiedLabel.
func (g *Geocoder) Geocode(text string) Result {
	upper := strings.ToUpper(text)
	for _, p := range g.table {
		if strings.Contains(upper, p.Name) {
			return Result{Coordinate: p.Coordinate, Label: p.Name, Matched: true}
		}
	}
	return Result{Coordinate: DefaultCoordinate, Label: UnspecifiedLabel}
}
