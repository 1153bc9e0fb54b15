package forklifts

// Forklift represents one unit in the equipment registry.
type Forklift struct {
	ID           int64
	Brand        string
	Type         string
	EqNo         string
	SerialNumber string
	Location     string
	Powertrain   string
	Owner        string
	MfgYear      int
	Status       string
}
