package dedup_test

import (
	"testing"
	"time"

	"github.com/jonesrussell/flightwatch/internal/dedup"
	"github.com/jonesrussell/flightwatch/internal/domain"
)

func flight(num string, hour int) domain.Flight {
	scheduled := time.Date(2024, 3, 15, hour, 0, 0, 0, time.UTC)
	return domain.Flight{
		ID:           domain.FlightID(domain.KindArrival, num, scheduled),
		FlightNumber: num,
		Kind:         domain.KindArrival,
		ScheduledAt:  scheduled,
	}
}

func TestPartition(t *testing.T) {
	f1 := flight("WS197", 9)
	f2 := flight("AC8081", 10)
	f3 := flight("QK8425", 11)

	seen := dedup.NewSeenSet([]string{f2.ID})

	fresh, dupes := dedup.Partition(seen, []domain.Flight{f1, f2, f3})

	if len(fresh) != 2 || len(dupes) != 1 {
		t.Fatalf("Partition() = %d fresh, %d dupes, want 2/1", len(fresh), len(dupes))
	}
	if fresh[0].ID != f1.ID || fresh[1].ID != f3.ID {
		t.Error("Partition() did not preserve board order")
	}
	if dupes[0].ID != f2.ID {
		t.Errorf("dupes[0] = %s, want %s", dupes[0].FlightNumber, f2.FlightNumber)
	}
}

func TestPartitionFirstOccurrenceWins(t *testing.T) {
	f1 := flight("WS197", 9)
	repeat := f1
	repeat.Gate = "7" // same identity, later row

	fresh, dupes := dedup.Partition(dedup.NewSeenSet(nil), []domain.Flight{f1, repeat})

	if len(fresh) != 1 {
		t.Fatalf("fresh = %d, want 1", len(fresh))
	}
	if fresh[0].Gate != f1.Gate {
		t.Error("later duplicate displaced the first occurrence")
	}
	if len(dupes) != 1 {
		t.Errorf("dupes = %d, want 1", len(dupes))
	}
}

func TestPartitionIdempotent(t *testing.T) {
	flights := []domain.Flight{flight("WS197", 9), flight("AC8081", 10)}

	seen := dedup.NewSeenSet(nil)
	fresh, _ := dedup.Partition(seen, flights)
	if len(fresh) != 2 {
		t.Fatalf("first pass fresh = %d, want 2", len(fresh))
	}

	// Commit the first pass, then partition the same sequence again.
	for _, f := range fresh {
		seen.Add(f.ID)
	}

	fresh, dupes := dedup.Partition(seen, flights)
	if len(fresh) != 0 {
		t.Errorf("second pass fresh = %d, want 0", len(fresh))
	}
	if len(dupes) != 2 {
		t.Errorf("second pass dupes = %d, want 2", len(dupes))
	}
}

func TestPartitionDoesNotMutateSeenSet(t *testing.T) {
	f1 := flight("WS197", 9)
	seen := dedup.NewSeenSet(nil)

	if fresh, _ := dedup.Partition(seen, []domain.Flight{f1}); len(fresh) != 1 {
		t.Fatal("expected one fresh flight")
	}
	if seen.Contains(f1.ID) {
		t.Error("Partition mutated the seen set; commit is the runner's job")
	}
}
