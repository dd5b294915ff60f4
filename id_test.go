package fleetctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"a1", true},
		{"abc", true},
		{"7", true},
		{"", false},
		{"abcd", false},
		{"all", false},
		{".", false},
		{"..", false},
		{"a/b", false},
		{"a\\b", false},
		{"a\x00", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidID(tt.id))
		})
	}
}

func TestFilterIDs(t *testing.T) {
	got := FilterIDs([]string{"b2", "toolong", "a1", "", "../"})
	assert.Equal(t, []string{"b2", "a1"}, got)
	assert.Empty(t, FilterIDs(nil))
}

func TestLayoutPaths(t *testing.T) {
	l := DefaultLayout("fleetd")

	assert.Equal(t, "/etc/fleetd/fleetd-a1.conf", l.ConfigPath("a1"))
	assert.Equal(t, "/run/fleetd/fleetd-a1.pid", l.PIDPath("a1"))
	assert.Equal(t, "/run/lock/fleetd/fleetd-a1.lock", l.LockPath("a1"))
}

func TestLayoutIDExtraction(t *testing.T) {
	l := DefaultLayout("fleetd")

	tests := []struct {
		name   string
		id     string
		ok     bool
		fromID func(string) (string, bool)
	}{
		{"fleetd-a1.conf", "a1", true, l.IDFromConfig},
		{"fleetd-long-id.conf", "long-id", true, l.IDFromConfig},
		{"fleetd-.conf", "", false, l.IDFromConfig},
		{"other-a1.conf", "", false, l.IDFromConfig},
		{"fleetd-a1.conf.bak", "", false, l.IDFromConfig},
		{"fleetd-b2.pid", "b2", true, l.IDFromPID},
		{"fleetd-b2.conf", "", false, l.IDFromPID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := tt.fromID(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}
