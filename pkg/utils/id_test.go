package utils

import (
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	if id1 == id2 {
		t.Error("GenerateRequestID should return unique IDs")
	}
	if _, err := uuid.Parse(id1); err != nil {
		t.Errorf("GenerateRequestID should return a UUID, got %s: %v", id1, err)
	}
}

func TestGenerateRunIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^run-\d{8}-\d{6}-[0-9a-f]{8}$`)
	id := GenerateRunID()
	if !pattern.MatchString(id) {
		t.Errorf("GenerateRunID returned unexpected format: %s", id)
	}
}

func TestGenerateRunIDConcurrency(t *testing.T) {
	const n = 100
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- GenerateRunID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate run ID: %s", id)
		}
		seen[id] = true
	}
}
