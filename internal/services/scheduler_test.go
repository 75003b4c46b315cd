package services

import (
	"context"
	"testing"
)

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler()
	if err := s.Add("bad", "every now and then", func(context.Context) error { return nil }); err == nil {
		t.Error("expected error for invalid spec")
	}
	if err := s.Add("sweep", "@every 10m", func(context.Context) error { return nil }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	s.Start()
	s.Stop()
}
