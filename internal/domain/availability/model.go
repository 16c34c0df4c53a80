package availability

// PeriodAvailability is the read-model slice for one area and one period.
// Remaining never goes negative and is forced to zero while the period is
// blocked.
type PeriodAvailability struct {
	Capacity    int  `json:"capacity"`
	Used        int  `json:"used"`
	Remaining   int  `json:"remaining"`
	Blocked     bool `json:"blocked"`
	IsAvailable bool `json:"is_available"`
}

// AreaAvailability aggregates both periods plus the whole-day view for one
// area on one calendar day. Static area metadata is passed through so the
// booking widget renders the picker from a single call.
type AreaAvailability struct {
	AreaID      string             `json:"area_id"`
	AreaName    string             `json:"area_name"`
	Photo       string             `json:"photo,omitempty"`
	Description string             `json:"description,omitempty"`
	Icon        string             `json:"icon,omitempty"`
	Afternoon   PeriodAvailability `json:"afternoon"`
	Night       PeriodAvailability `json:"night"`
	Day         PeriodAvailability `json:"day"`
}
