package sysinfo

import "testing"

func TestCollectFillsStaticFields(t *testing.T) {
	info := Collect()
	if info.OSType == "" {
		t.Error("OSType empty")
	}
	if info.Architecture == "" {
		t.Error("Architecture empty")
	}
}

func TestNewInstallationKeyIsUniqueAndNonEmpty(t *testing.T) {
	a := NewInstallationKey()
	b := NewInstallationKey()
	if a == "" || b == "" {
		t.Fatal("generated empty installation key")
	}
	if a == b {
		t.Error("installation keys collide")
	}
}
