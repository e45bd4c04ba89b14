package contagion

// NetworkSpec is the list form of a network handed over by data loaders
// (spreadsheets, YAML or JSON files, request bodies).
type NetworkSpec struct {
	Banks     []BankSpec     `json:"banks" yaml:"banks"`
	Exposures []ExposureSpec `json:"exposures" yaml:"exposures"`
}

type BankSpec struct {
	ID     int     `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Equity float64 `json:"equity" yaml:"equity"`
}

type ExposureSpec struct {
	From     int     `json:"from" yaml:"from"`
	To       int     `json:"to" yaml:"to"`
	Exposure float64 `json:"exposure" yaml:"exposure"`
}

func (s NetworkSpec) Build() (*Network, error) {
	banks := make([]Bank, 0, len(s.Banks))
	for _, b := range s.Banks {
		banks = append(banks, Bank{ID: b.ID, Name: b.Name, Equity: b.Equity})
	}
	exposures := make([]Exposure, 0, len(s.Exposures))
	for _, e := range s.Exposures {
		exposures = append(exposures, Exposure{From: e.From, To: e.To, Amount: e.Exposure})
	}
	return NewNetwork(banks, exposures)
}
