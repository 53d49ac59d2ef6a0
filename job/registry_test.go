package job_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/bossbat/id"
	"github.com/xraph/bossbat/job"
)

func noop(_ context.Context) error { return nil }

func TestRegistry_PutAndGet(t *testing.T) {
	r := job.NewRegistry()
	r.Put(job.Definition{Name: "daily", Trigger: job.Every(time.Second), Work: noop})

	def, ok := r.Get("daily")
	if !ok {
		t.Fatal("expected definition to be registered")
	}
	if def.Trigger.Kind != job.KindInterval {
		t.Errorf("Kind = %v, want %v", def.Trigger.Kind, job.KindInterval)
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := job.NewRegistry()
	if _, ok := r.Get("nonexistent"); ok {
		t.Fatal("expected no definition for unregistered job")
	}
}

func TestRegistry_ReplaceWholesale(t *testing.T) {
	r := job.NewRegistry()
	r.Put(job.Definition{
		Name:     "report",
		Trigger:  job.Every(time.Second),
		Work:     func(_ context.Context) error { return errors.New("old") },
		Metadata: map[string]string{"owner": "ops"},
	})
	r.Put(job.Definition{
		Name:    "report",
		Trigger: job.Manual(),
		Work:    func(_ context.Context) error { return errors.New("new") },
	})

	def, _ := r.Get("report")
	if def.Trigger.Recurring() {
		t.Error("expected replacement trigger to be manual")
	}
	if def.Metadata != nil {
		t.Errorf("expected metadata to be dropped on replace, got %v", def.Metadata)
	}
	if err := def.Work(context.Background()); err == nil || err.Error() != "new" {
		t.Fatalf("expected 'new' error, got %v", err)
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := job.NewRegistry()
	for _, n := range []string{"job-c", "job-a", "job-b"} {
		r.Put(job.Definition{Name: n, Work: noop})
	}

	names := r.Names()
	expected := []string{"job-a", "job-b", "job-c"}
	if len(names) != len(expected) {
		t.Fatalf("expected %d names, got %d", len(expected), len(names))
	}
	for i, want := range expected {
		if names[i] != want {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want)
		}
	}
}

func TestRegistry_Reset(t *testing.T) {
	r := job.NewRegistry()
	r.Put(job.Definition{Name: "a", Work: noop})
	r.Reset()
	if len(r.Names()) != 0 {
		t.Errorf("expected empty registry after Reset, got %v", r.Names())
	}
}

func TestTrigger_Recurring(t *testing.T) {
	tests := []struct {
		trigger job.Trigger
		want    bool
	}{
		{job.Every(200), true},
		{job.Cron("* * * * *", ""), true},
		{job.Manual(), false},
		{job.Trigger{}, false},
	}
	for _, tt := range tests {
		if got := tt.trigger.Recurring(); got != tt.want {
			t.Errorf("%v.Recurring() = %v, want %v", tt.trigger.Kind, got, tt.want)
		}
	}
}

func TestDefinition_CloneIsolatesMetadata(t *testing.T) {
	def := job.Definition{Name: "x", Work: noop, Metadata: map[string]string{"k": "v"}}
	cp := def.Clone()
	cp.Metadata["k"] = "changed"
	cp.Name = "y"

	if def.Metadata["k"] != "v" {
		t.Errorf("original metadata mutated: %v", def.Metadata)
	}
	if def.Name != "x" {
		t.Errorf("original name mutated: %q", def.Name)
	}
}

func TestNewOccurrence(t *testing.T) {
	wid := id.NewWorkerID()
	def := job.Definition{Name: "x", Work: noop, Metadata: map[string]string{"k": "v"}}
	occ := job.NewOccurrence(wid, def, true)

	if occ.ID.Prefix() != id.PrefixOccurrence {
		t.Errorf("ID prefix = %q, want %q", occ.ID.Prefix(), id.PrefixOccurrence)
	}
	if occ.WorkerID.String() != wid.String() {
		t.Errorf("WorkerID = %q, want %q", occ.WorkerID, wid)
	}
	if !occ.Demand || occ.Name != "x" {
		t.Errorf("unexpected occurrence %+v", occ)
	}
	occ.Definition.Metadata["k"] = "changed"
	if def.Metadata["k"] != "v" {
		t.Error("occurrence definition shares metadata with the registered one")
	}
}
