package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, 6, cfg.CodeLen)
	require.Equal(t, 5*time.Minute, cfg.LeaveGrace)
	require.Equal(t, 30*time.Second, cfg.DropGrace)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JMD_ADDR", ":9090")
	t.Setenv("JMD_CODE_LEN", "4")
	t.Setenv("JMD_LEAVE_GRACE", "1m")
	t.Setenv("JMD_DROP_GRACE", "10s")

	cfg := Load()

	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, 4, cfg.CodeLen)
	require.Equal(t, time.Minute, cfg.LeaveGrace)
	require.Equal(t, 10*time.Second, cfg.DropGrace)
}

func TestLoad_GarbageFallsBackToDefaults(t *testing.T) {
	t.Setenv("JMD_CODE_LEN", "zero")
	t.Setenv("JMD_LEAVE_GRACE", "-3m")
	t.Setenv("JMD_DROP_GRACE", "soon")

	cfg := Load()

	require.Equal(t, 6, cfg.CodeLen)
	require.Equal(t, 5*time.Minute, cfg.LeaveGrace)
	require.Equal(t, 30*time.Second, cfg.DropGrace)
}
