package hal

import "time"

// MockPort implements Port in memory for tests and bench runs.
type MockPort struct {
	ReadData    []byte
	WrittenData []byte
	ReadError   error
	WriteError  error
	CloseError  error
	Closed      bool
}

// Read drains from ReadData. With nothing pending it returns n == 0
// immediately, matching the polled Port contract.
func (m *MockPort) Read(p []byte) (n int, err error) {
	if m.ReadError != nil {
		return 0, m.ReadError
	}
	if len(m.ReadData) == 0 {
		return 0, nil
	}
	n = copy(p, m.ReadData)
	m.ReadData = m.ReadData[n:]
	return n, nil
}

// Write records everything written.
func (m *MockPort) Write(p []byte) (n int, err error) {
	if m.WriteError != nil {
		return 0, m.WriteError
	}
	m.WrittenData = append(m.WrittenData, p...)
	return len(p), nil
}

// Close implements io.Closer.
func (m *MockPort) Close() error {
	m.Closed = true
	return m.CloseError
}

// MockActuator records pulse width writes and disables.
type MockActuator struct {
	Pulses   []uint32
	Disables int
	Err      error
}

// WritePulseWidth implements Actuator.
func (m *MockActuator) WritePulseWidth(us uint32) error {
	if m.Err != nil {
		return m.Err
	}
	m.Pulses = append(m.Pulses, us)
	return nil
}

// Disable implements Actuator.
func (m *MockActuator) Disable() error {
	if m.Err != nil {
		return m.Err
	}
	m.Disables++
	return nil
}

// MockAngleSensor returns scripted samples, repeating the last one when
// the script runs out.
type MockAngleSensor struct {
	Samples []int16
	Err     error

	pos int
}

// Read implements AngleSensor.
func (m *MockAngleSensor) Read() (int16, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	if len(m.Samples) == 0 {
		return 0, nil
	}
	s := m.Samples[m.pos]
	if m.pos+1 < len(m.Samples) {
		m.pos++
	}
	return s, nil
}

// MockClock is a manually advanced Clock for tests.
type MockClock struct {
	Current time.Time
	Slept   []time.Duration
}

// Now implements Clock.
func (c *MockClock) Now() time.Time { return c.Current }

// Sleep implements Clock by advancing the clock.
func (c *MockClock) Sleep(d time.Duration) {
	c.Current = c.Current.Add(d)
	c.Slept = append(c.Slept, d)
}

// Advance moves the clock forward without recording a sleep.
func (c *MockClock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}
