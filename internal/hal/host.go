package hal

// NewHostBoard assembles a board for running the daemon on a development
// host: real wall clock, simulated peripherals. The radio accepts any
// credentials, since the host machine's own connectivity carries the
// traffic; GPIO-backed signals (relay, sensor, reset button) stay
// simulated.
func NewHostBoard() *Board {
	clock := SystemClock{}
	radio := NewSimRadio(clock)
	radio.AcceptAny = true

	relay := &SimOutputPin{}
	relay.Write(true)

	return &Board{
		Radio:    radio,
		Clock:    clock,
		Rebooter: &SimRebooter{},
		LED:      &SimOutputPin{},
		Reset:    NewSimInputPin(true),
		Relay:    relay,
		Trigger:  &SimOutputPin{},
		Echo:     NewSimInputPin(false),
	}
}
