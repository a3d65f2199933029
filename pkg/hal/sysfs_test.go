package hal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func readAttr(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(b)
}

func TestSysfsPWM(t *testing.T) {
	dir := t.TempDir()
	pwm, err := NewSysfsPWM(dir, 50)
	require.NoError(t, err)
	require.Equal(t, "20000000", readAttr(t, dir, "period"))
	require.Equal(t, "0", readAttr(t, dir, "enable"))

	require.NoError(t, pwm.WritePulseWidth(1500))
	require.Equal(t, "1500000", readAttr(t, dir, "duty_cycle"))
	require.Equal(t, "1", readAttr(t, dir, "enable"))

	require.NoError(t, pwm.Disable())
	require.Equal(t, "0", readAttr(t, dir, "enable"))

	// re-enabling happens on the next pulse write
	require.NoError(t, pwm.WritePulseWidth(500))
	require.Equal(t, "1", readAttr(t, dir, "enable"))
}

func TestSysfsADC(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in_voltage0_raw")
	require.NoError(t, os.WriteFile(path, []byte("2048\n"), 0644))

	adc := &SysfsADC{Path: path}
	v, err := adc.Read()
	require.NoError(t, err)
	require.Equal(t, int16(2048), v)

	require.NoError(t, os.WriteFile(path, []byte("junk"), 0644))
	_, err = adc.Read()
	require.Error(t, err)

	adc.Path = filepath.Join(dir, "missing")
	_, err = adc.Read()
	require.Error(t, err)
}

func TestMockAngleSensorRepeatsLast(t *testing.T) {
	s := &MockAngleSensor{Samples: []int16{1, 2}}
	for _, want := range []int16{1, 2, 2, 2} {
		v, err := s.Read()
		require.NoError(t, err)
		require.Equal(t, want, v)
	}
}
