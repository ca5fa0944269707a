package models

// Site represents a monitored geographic location
type Site struct {
	ID   string  `json:"id" yaml:"id"`
	Name string  `json:"name" yaml:"name"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Lon  float64 `json:"lon" yaml:"lon"`
}

// SiteStatus holds the current risk label and display color of a site
type SiteStatus struct {
	Risk  string `json:"risk"`
	Color string `json:"color"`
}

// PendingStatus is reported for a site until its first reading is classified
var PendingStatus = SiteStatus{Risk: "Calculating...", Color: "#333"}

// Snapshot maps every site ID to its current status
type Snapshot map[string]SiteStatus

// SiteState combines a site with its current status for first render
type SiteState struct {
	Site
	Status SiteStatus `json:"status"`
}
