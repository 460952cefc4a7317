package module

// Bypass passes audio through unchanged and never allocates.
// The pipeline installs it when no loadable preset is left.
type Bypass struct{}

// Allocate implements Module.
func (Bypass) Allocate(*Env) error { return nil }

// AdvanceControlRate implements Module.
func (Bypass) AdvanceControlRate(*Env) {}

// ProcessSample implements Module.
func (Bypass) ProcessSample(in float32) float32 { return in }

// Release implements Module.
func (Bypass) Release(*Env) error { return nil }

// Name implements Namer.
func (Bypass) Name() string { return "bypass" }
