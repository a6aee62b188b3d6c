package gshclient

import "github.com/WilliamRagstad/gsh/pkg/wire"

// NullDriver is a PresentationDriver that records applied frames and
// emits input only when Emit is called, used by this package's own
// tests and as a minimal smoke-test driver for cmd/gsh.
type NullDriver struct {
	events chan wire.UserInput
	Frames []wire.Frame
	Closed []uint32
}

// NewNullDriver returns a NullDriver with an open, empty event channel
// buffered for 16 events; call Emit to simulate local input during a
// test and Stop to close the channel.
func NewNullDriver() *NullDriver {
	return &NullDriver{events: make(chan wire.UserInput, 16)}
}

func (d *NullDriver) ApplyFrame(f wire.Frame) error {
	d.Frames = append(d.Frames, f)
	return nil
}

func (d *NullDriver) Events() <-chan wire.UserInput { return d.events }

func (d *NullDriver) Close(windowID uint32) error {
	d.Closed = append(d.Closed, windowID)
	return nil
}

// Emit simulates a local input event arriving from the (absent) window
// system.
func (d *NullDriver) Emit(ev wire.UserInput) { d.events <- ev }

// Stop closes the event channel, causing Run to return.
func (d *NullDriver) Stop() { close(d.events) }
