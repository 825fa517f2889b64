package cron

import "testing"

func TestRegistryKeepsOrderAndSkipsNil(t *testing.T) {
	first := &testJob{name: "outbox-retention"}
	second := &testJob{name: "other"}
	registry := NewRegistry(first, nil)
	registry.Register(nil)
	registry.Register(second)

	jobs := registry.Jobs()
	if len(jobs) != 2 || jobs[0] != first || jobs[1] != second {
		t.Fatalf("unexpected jobs %v", jobs)
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
}
