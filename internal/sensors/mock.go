package sensors

import (
	"errors"

	"github.com/relabs-tech/balance_robot/internal/imu"
)

// ErrScriptExhausted is returned by the mock once every scripted sample
// has been consumed and no Steady fallback is set.
var ErrScriptExhausted = errors.New("sensors: mock sample script exhausted")

// Mock is a scripted six-axis reader for tests and bench runs without
// hardware. Samples are served in order; once the script runs out the
// Steady sample repeats forever (or ErrScriptExhausted if unset).
type Mock struct {
	Script     []imu.RawSample
	Steady     *imu.RawSample
	ConnectErr error
	ReadErr    error // returned after the script is exhausted, if set

	reads int
}

func (m *Mock) Connect() error { return m.ConnectErr }

func (m *Mock) ReadRaw() (imu.RawSample, error) {
	if m.reads < len(m.Script) {
		s := m.Script[m.reads]
		m.reads++
		return s, nil
	}
	m.reads++
	if m.ReadErr != nil {
		return imu.RawSample{}, m.ReadErr
	}
	if m.Steady != nil {
		return *m.Steady, nil
	}
	return imu.RawSample{}, ErrScriptExhausted
}

// Reads reports how many times ReadRaw has been called.
func (m *Mock) Reads() int { return m.reads }
