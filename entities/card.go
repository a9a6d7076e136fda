package entities

// CardStatus is the bridge-local snapshot of the smart-card session. It is
// owned by the card actor, updated by its polling loop and pushed to every
// connected bridge client on each transition. Never persisted.
type CardStatus struct {
	Slot            int    `json:"slot"`
	ReaderName      string `json:"readerName"`
	SerialNumber    string `json:"serialNumber"`
	Initialized     bool   `json:"initialized"`
	ReaderConnected bool   `json:"readerConnected"`
	CardInserted    bool   `json:"cardInserted"`
	DemoMode        bool   `json:"demoMode"`
	LastError       string `json:"lastError,omitempty"`
}
