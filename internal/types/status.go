package types

// InstrumentStatus is one row of the instrument-status source used to resolve
// export universes.
type InstrumentStatus struct {
	Instrument       string
	Exchange         string
	Delisted         bool
	Suspended        bool
	SpecialTreatment bool
}
