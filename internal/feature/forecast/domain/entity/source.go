package entity

// Source is a web citation attached to a grounded answer.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Forecast is the normalized result of one fetch cycle.
type Forecast struct {
	Instruments []Instrument
	Sources     []Source
}
