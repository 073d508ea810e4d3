package simd

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/wavesim/wavesim/pkg/models"
)

func TestRunStoreCreateAndGet(t *testing.T) {
	store := NewRunStore()

	run, err := store.Create("", models.RawInput{Points: models.Int(500)}, models.RunOptions{Validate: true})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if run.ID == "" {
		t.Fatalf("expected generated run id")
	}
	if !strings.HasPrefix(run.ID, "run-") {
		t.Fatalf("expected run- prefix, got %q", run.ID)
	}
	if run.Status != models.RunStatusPending {
		t.Fatalf("expected status pending, got %v", run.Status)
	}
	if run.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	got, ok := store.Get(run.ID)
	if !ok {
		t.Fatalf("expected run to exist")
	}
	if got.ID != run.ID || *got.Input.Points != 500 || !got.Options.Validate {
		t.Fatalf("unexpected stored run %+v", got)
	}
	if store.Count() != 1 {
		t.Fatalf("expected count 1, got %d", store.Count())
	}
}

func TestRunStoreGetReturnsCopy(t *testing.T) {
	store := NewRunStore()
	if _, err := store.Create("run-1", models.RawInput{}, models.RunOptions{}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	got, _ := store.Get("run-1")
	got.Status = models.RunStatusFailed

	again, _ := store.Get("run-1")
	if again.Status != models.RunStatusPending {
		t.Fatalf("mutating a returned run changed the store")
	}
}

func TestRunStoreCreateDuplicate(t *testing.T) {
	store := NewRunStore()
	if _, err := store.Create("run-1", models.RawInput{}, models.RunOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := store.Create("run-1", models.RawInput{}, models.RunOptions{})
	if !errors.Is(err, ErrRunExists) {
		t.Fatalf("expected ErrRunExists, got %v", err)
	}
}

func TestRunStoreCreateInvalidID(t *testing.T) {
	store := NewRunStore()
	for _, id := range []string{"a/b", "a b", "tab\tid", "line\n"} {
		if _, err := store.Create(id, models.RawInput{}, models.RunOptions{}); !errors.Is(err, ErrRunIDInvalid) {
			t.Errorf("Create(%q): expected ErrRunIDInvalid, got %v", id, err)
		}
	}
}

func TestRunStoreFinishTransitions(t *testing.T) {
	store := NewRunStore()
	if _, err := store.Create("run-1", models.RawInput{}, models.RunOptions{}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	params := models.Parameters{Amplitude: 1, Frequency: 1, Points: 1000}
	result := &models.SimulationResult{Time: []float64{0}, Values: []float64{0}}
	run, err := store.Complete("run-1", params, params, nil, result, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if run.Status != models.RunStatusCompleted {
		t.Fatalf("expected completed, got %v", run.Status)
	}
	if run.EndedAt.IsZero() || run.Duration != 5*time.Millisecond {
		t.Fatalf("expected end time and duration to be set")
	}
	if run.Result != result {
		t.Fatalf("expected result to be stored")
	}

	if _, err := store.Fail("run-1", params, params, nil, errors.New("boom"), 0); !errors.Is(err, ErrRunTerminal) {
		t.Fatalf("expected ErrRunTerminal, got %v", err)
	}
	if _, err := store.Decline("missing", params, nil, 0); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := store.Finish("run-1", models.RunStatusPending, nil); err == nil {
		t.Fatalf("expected error for non-terminal status")
	}
}

func TestRunStoreDeclineRecordsReason(t *testing.T) {
	store := NewRunStore()
	if _, err := store.Create("run-1", models.RawInput{}, models.RunOptions{}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	validation := &models.ValidationResult{Valid: false, Reason: "Amplitude must be positive"}
	run, err := store.Decline("run-1", models.Parameters{Points: 1000}, validation, 0)
	if err != nil {
		t.Fatalf("Decline error: %v", err)
	}
	if run.Status != models.RunStatusDeclined || run.Error != "Amplitude must be positive" {
		t.Fatalf("unexpected declined run %+v", run)
	}
	if run.Parameters != nil || run.Result != nil {
		t.Fatalf("declined run must not carry run parameters or result")
	}
}

func TestRunStoreListFiltered(t *testing.T) {
	store := NewRunStore()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("run-%d", i)
		if _, err := store.Create(id, models.RawInput{}, models.RunOptions{}); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	if _, err := store.Fail("run-1", models.Parameters{}, models.Parameters{}, nil, errors.New("x"), 0); err != nil {
		t.Fatalf("Fail error: %v", err)
	}
	if _, err := store.Fail("run-3", models.Parameters{}, models.Parameters{}, nil, errors.New("x"), 0); err != nil {
		t.Fatalf("Fail error: %v", err)
	}

	all := store.ListFiltered(10, 0, "")
	if len(all) != 5 || all[0].ID != "run-4" || all[4].ID != "run-0" {
		t.Fatalf("expected newest first, got %v", ids(all))
	}

	page := store.ListFiltered(2, 1, "")
	if len(page) != 2 || page[0].ID != "run-3" || page[1].ID != "run-2" {
		t.Fatalf("unexpected page %v", ids(page))
	}

	failed := store.ListFiltered(10, 0, models.RunStatusFailed)
	if len(failed) != 2 || failed[0].ID != "run-3" || failed[1].ID != "run-1" {
		t.Fatalf("unexpected failed runs %v", ids(failed))
	}

	if got := store.ListFiltered(10, 1, models.RunStatusFailed); len(got) != 1 || got[0].ID != "run-1" {
		t.Fatalf("unexpected offset within filter %v", ids(got))
	}
	if got := store.ListFiltered(0, 0, ""); len(got) != 5 {
		t.Fatalf("expected default limit to return all runs, got %d", len(got))
	}
}

func ids(runs []*models.Run) []string {
	out := make([]string, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.ID)
	}
	return out
}
