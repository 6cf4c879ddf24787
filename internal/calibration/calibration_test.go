package calibration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/balance_robot/internal/imu"
	"github.com/relabs-tech/balance_robot/internal/sensors"
	"github.com/relabs-tech/balance_robot/internal/status"
)

// fakeSleeper counts sleeps instead of performing them.
type fakeSleeper struct {
	calls int
	last  time.Duration
}

func (s *fakeSleeper) Sleep(d time.Duration) {
	s.calls++
	s.last = d
}

// blinkRecorder verifies the indicator brackets the run.
type blinkRecorder struct {
	started, stopped int
}

func (b *blinkRecorder) StartBlink() { b.started++ }
func (b *blinkRecorder) StopBlink()  { b.stopped++ }

func steady(s imu.RawSample) *sensors.Mock {
	return &sensors.Mock{Steady: &s}
}

func TestConstantBiasIsExactOffset(t *testing.T) {
	// 512 identical samples: the integer mean is the value itself,
	// no rounding (512 is a power of two).
	mock := steady(imu.RawSample{Ax: 16500, Ay: -37, Az: 255, Gx: 13, Gy: -101, Gz: 7})

	res, err := New(mock, &fakeSleeper{}, status.Nop{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int16(-37), res.Offsets.Ay)
	assert.Equal(t, int16(255), res.Offsets.Az)
	assert.Equal(t, int16(13), res.Offsets.Gx)
	assert.Equal(t, int16(-101), res.Offsets.Gy)
	assert.Equal(t, int16(7), res.Offsets.Gz)
	assert.Equal(t, Samples, mock.Reads())
}

func TestGravityAxisUp(t *testing.T) {
	// Mean 16500 > 0: axis points toward gravity, the 1g constant is
	// split off the bias.
	mock := steady(imu.RawSample{Ax: 16500})

	res, err := New(mock, &fakeSleeper{}, status.Nop{}).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Up)
	assert.Equal(t, int16(16500-imu.FullScaleGravity), res.Offsets.Ax)
	assert.Equal(t, 90.0, res.SeedAngle())
}

func TestGravityAxisDownRestScenario(t *testing.T) {
	// Robot resting flat with the reference axis down: ax=-16200,
	// everything else zero, across all 512 samples.
	mock := steady(imu.RawSample{Ax: -16200})

	res, err := New(mock, &fakeSleeper{}, status.Nop{}).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Up)
	assert.Equal(t, int16(-16200+imu.FullScaleGravity), res.Offsets.Ax)
	assert.Equal(t, -90.0, res.SeedAngle())

	// The offset cancels the bias: a corrected resting sample reads
	// exactly -1g on the gravity axis.
	corrected := imu.RawSample{Ax: -16200}.Corrected(res.Offsets)
	assert.Equal(t, int16(-imu.FullScaleGravity), corrected.Ax)
}

func TestZeroMeanResolvesToDown(t *testing.T) {
	// Boundary: a gravity-axis mean of exactly zero takes the sign
	// test's default branch.
	mock := steady(imu.RawSample{Ax: 0})

	res, err := New(mock, &fakeSleeper{}, status.Nop{}).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Up)
	assert.Equal(t, int16(imu.FullScaleGravity), res.Offsets.Ax)
}

func TestMeanOfMixedSamples(t *testing.T) {
	// Half the samples read 100, half read 300 on Gy: mean 200.
	mock := &sensors.Mock{}
	for i := 0; i < Samples; i++ {
		v := int16(100)
		if i%2 == 1 {
			v = 300
		}
		mock.Script = append(mock.Script, imu.RawSample{Ax: -16384, Gy: v})
	}

	res, err := New(mock, &fakeSleeper{}, status.Nop{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int16(200), res.Offsets.Gy)
}

func TestSamplePacing(t *testing.T) {
	sleeper := &fakeSleeper{}
	_, err := New(steady(imu.RawSample{Ax: -16000}), sleeper, status.Nop{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Samples, sleeper.calls)
	assert.Equal(t, SampleInterval, sleeper.last)
}

func TestBlinkBracketsRun(t *testing.T) {
	blink := &blinkRecorder{}
	_, err := New(steady(imu.RawSample{Ax: -16000}), &fakeSleeper{}, blink).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, blink.started)
	assert.Equal(t, 1, blink.stopped)
}

func TestReadErrorAborts(t *testing.T) {
	readErr := errors.New("bus glitch")
	mock := &sensors.Mock{
		Script:  []imu.RawSample{{Ax: -16000}, {Ax: -16000}},
		ReadErr: readErr,
	}

	_, err := New(mock, &fakeSleeper{}, status.Nop{}).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)
}

func TestContextCancelAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(steady(imu.RawSample{Ax: -16000}), &fakeSleeper{}, status.Nop{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
