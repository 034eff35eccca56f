package logging

import "testing"

func TestNew(t *testing.T) {
	for _, dev := range []bool{true, false} {
		l, err := New(dev)
		if err != nil {
			t.Fatalf("New(%v): %v", dev, err)
		}
		if got := l.Core().Enabled(-1); got != dev {
			t.Errorf("debug enabled = %v for dev=%v", got, dev)
		}
	}
}
