package repo

import (
	"context"
	"testing"
	"time"

	"github.com/carol444game-cell/quroni-karim/internal/domain"
)

func TestMarkUpdateProcessed_DeduplicatesRedeliveries(t *testing.T) {
	db := newRepoDB(t, &domain.ProcessedUpdate{})
	ctx := context.Background()

	fresh, err := MarkUpdateProcessed(ctx, db, 9001)
	if err != nil || !fresh {
		t.Fatalf("first delivery: fresh=%v err=%v", fresh, err)
	}
	fresh, err = MarkUpdateProcessed(ctx, db, 9001)
	if err != nil {
		t.Fatalf("redelivery should not error: %v", err)
	}
	if fresh {
		t.Fatalf("redelivery should report fresh=false")
	}

	// A different update id is unaffected.
	fresh, err = MarkUpdateProcessed(ctx, db, 9002)
	if err != nil || !fresh {
		t.Fatalf("distinct update: fresh=%v err=%v", fresh, err)
	}
}

func TestPruneProcessedUpdates_RemovesOnlyOldRows(t *testing.T) {
	db := newRepoDB(t, &domain.ProcessedUpdate{})
	ctx := context.Background()

	old := domain.ProcessedUpdate{UpdateID: 1, CreatedAt: time.Now().UTC().Add(-48 * time.Hour)}
	recent := domain.ProcessedUpdate{UpdateID: 2, CreatedAt: time.Now().UTC()}
	for _, r := range []domain.ProcessedUpdate{old, recent} {
		if err := db.Create(&r).Error; err != nil {
			t.Fatalf("seed %d: %v", r.UpdateID, err)
		}
	}

	n, err := PruneProcessedUpdates(ctx, db, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneProcessedUpdates: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pruned row, got %d", n)
	}

	var left []domain.ProcessedUpdate
	if err := db.Find(&left).Error; err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 1 || left[0].UpdateID != 2 {
		t.Fatalf("wrong rows survived: %+v", left)
	}
}
