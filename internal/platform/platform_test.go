package platform

import (
	"context"
	"runtime"
	"testing"
)

func TestDescribe(t *testing.T) {
	p := New()
	h, err := p.Describe(context.Background())
	if err != nil {
		t.Skipf("host info not readable here: %v", err)
	}
	if h.OS != runtime.GOOS {
		t.Errorf("OS = %q, want %q", h.OS, runtime.GOOS)
	}
	if h.Arch == "" {
		t.Error("Arch is empty")
	}
}

func TestCheck(t *testing.T) {
	err := New().Check()
	if runtime.GOOS == "linux" && err != nil {
		t.Errorf("Check() on linux = %v", err)
	}
	if runtime.GOOS != "linux" && err == nil {
		t.Error("Check() should fail off linux")
	}
}

func TestHostString(t *testing.T) {
	h := Host{OS: "linux", Platform: "ubuntu", PlatformVersion: "24.04", KernelVersion: "6.8.0", Arch: "x86_64"}
	want := "ubuntu 24.04 (linux 6.8.0, x86_64)"
	if got := h.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
