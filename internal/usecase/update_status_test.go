package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/mahmudalamin/zbooksapp-sub000/internal/entity"
)

func seedOrder(repo *fakeRepo, id string, status domain.Status) *domain.Order {
	o := &domain.Order{
		ID:     id,
		Status: status,
		History: []domain.HistoryEntry{{
			OrderID: id, Status: domain.StatusPending, CreatedAt: time.Now(),
		}},
	}
	repo.orders[id] = o
	return o
}

func newUpdaterFixture() (*StatusUpdater, *fakeRepo, *fakeNotifier, *fakeCache) {
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	cache := newFakeCache()
	return NewStatusUpdater(repo, cache, notifier), repo, notifier, cache
}

func TestTransition_Legal(t *testing.T) {
	u, repo, notifier, cache := newUpdaterFixture()
	seedOrder(repo, "o1", domain.StatusPending)

	out, err := u.Transition(context.Background(), "o1", domain.StatusConfirmed, "looks good")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Status != domain.StatusConfirmed {
		t.Fatalf("returned status = %s, want CONFIRMED", out.Status)
	}

	stored := repo.orders["o1"]
	if stored.Status != domain.StatusConfirmed {
		t.Fatalf("stored status = %s, want CONFIRMED", stored.Status)
	}
	if len(stored.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(stored.History))
	}
	if stored.History[0].Status != domain.StatusConfirmed || stored.History[0].Notes != "looks good" {
		t.Fatalf("head history entry wrong: %+v", stored.History[0])
	}
	if len(notifier.statusUpdates) != 1 || notifier.statusUpdates[0] != "o1:PENDING->CONFIRMED" {
		t.Fatalf("status notification wrong: %v", notifier.statusUpdates)
	}
	if cache.statuses["o1"] != "CONFIRMED" {
		t.Fatalf("cache not refreshed")
	}
}

func TestTransition_SameStatusIsNoOp(t *testing.T) {
	u, repo, notifier, _ := newUpdaterFixture()
	seedOrder(repo, "o1", domain.StatusPending)

	if _, err := u.Transition(context.Background(), "o1", domain.StatusPending, ""); err != nil {
		t.Fatalf("same-status write should be allowed: %v", err)
	}
	if len(repo.orders["o1"].History) != 1 {
		t.Fatalf("no-op write must not append history")
	}
	if len(notifier.statusUpdates) != 0 {
		t.Fatalf("no-op write must not notify")
	}
	if len(repo.touched) != 1 || repo.touched[0] != "o1" {
		t.Fatalf("no-op write should still touch the row")
	}
}

func TestTransition_IllegalIsRejected(t *testing.T) {
	u, repo, notifier, _ := newUpdaterFixture()
	seedOrder(repo, "o1", domain.StatusPending)

	// strict machine: PENDING cannot jump straight to DELIVERED
	_, err := u.Transition(context.Background(), "o1", domain.StatusDelivered, "")
	var illegal *IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("got %v, want IllegalTransitionError", err)
	}
	if illegal.From != domain.StatusPending || illegal.To != domain.StatusDelivered {
		t.Fatalf("error should carry the transition: %+v", illegal)
	}
	if repo.orders["o1"].Status != domain.StatusPending || len(repo.orders["o1"].History) != 1 {
		t.Fatalf("rejected transition must not mutate the order")
	}
	if len(notifier.statusUpdates) != 0 {
		t.Fatalf("rejected transition must not notify")
	}
}

func TestTransition_TerminalStates(t *testing.T) {
	u, repo, _, _ := newUpdaterFixture()
	seedOrder(repo, "c1", domain.StatusCancelled)
	seedOrder(repo, "r1", domain.StatusRefunded)

	for _, id := range []string{"c1", "r1"} {
		_, err := u.Transition(context.Background(), id, domain.StatusConfirmed, "")
		var illegal *IllegalTransitionError
		if !errors.As(err, &illegal) {
			t.Fatalf("%s: terminal state must reject transitions, got %v", id, err)
		}
	}
}

func TestTransition_UnknownStatus(t *testing.T) {
	u, repo, _, _ := newUpdaterFixture()
	seedOrder(repo, "o1", domain.StatusPending)

	if _, err := u.Transition(context.Background(), "o1", domain.Status("LOST"), ""); !errors.Is(err, ErrBadStatus) {
		t.Fatalf("got %v, want ErrBadStatus", err)
	}
}

func TestTransition_NotFound(t *testing.T) {
	u, _, _, _ := newUpdaterFixture()
	if _, err := u.Transition(context.Background(), "missing", domain.StatusConfirmed, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestTransition_NotifyFailureDoesNotRollBack(t *testing.T) {
	u, repo, notifier, _ := newUpdaterFixture()
	seedOrder(repo, "o1", domain.StatusPending)
	notifier.err = errors.New("broker down")

	out, err := u.Transition(context.Background(), "o1", domain.StatusConfirmed, "")
	if err != nil {
		t.Fatalf("notify failure must not fail the transition: %v", err)
	}
	if out.Status != domain.StatusConfirmed || repo.orders["o1"].Status != domain.StatusConfirmed {
		t.Fatalf("status change should persist despite notify failure")
	}
}

func TestUpdatePaymentStatus_NoHistoryNoNotification(t *testing.T) {
	u, repo, notifier, _ := newUpdaterFixture()
	seedOrder(repo, "o1", domain.StatusPending)

	if err := u.UpdatePaymentStatus(context.Background(), "o1", domain.PaymentPaid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o := repo.orders["o1"]
	if o.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("payment status = %s, want PAID", o.PaymentStatus)
	}
	if len(o.History) != 1 {
		t.Fatalf("payment status updates must not append history")
	}
	if len(notifier.statusUpdates) != 0 {
		t.Fatalf("payment status updates must not notify")
	}
}

func TestBulkTransition_PartialFailure(t *testing.T) {
	u, repo, _, _ := newUpdaterFixture()
	seedOrder(repo, "o1", domain.StatusPending)
	seedOrder(repo, "o2", domain.StatusShipped) // SHIPPED -> CONFIRMED is illegal
	seedOrder(repo, "o3", domain.StatusPending)

	results := u.BulkTransition(context.Background(), []string{"o1", "o2", "missing", "o3"}, domain.StatusConfirmed, "")
	if len(results) != 4 {
		t.Fatalf("every id gets a result, got %d", len(results))
	}
	if !results[0].OK || results[0].OrderID != "o1" {
		t.Fatalf("o1 should succeed: %+v", results[0])
	}
	if results[1].OK || results[1].Error == "" {
		t.Fatalf("o2 should fail with an error message: %+v", results[1])
	}
	if results[2].OK {
		t.Fatalf("missing order should fail: %+v", results[2])
	}
	if !results[3].OK {
		t.Fatalf("one failure must not abort the batch: %+v", results[3])
	}
	if repo.orders["o3"].Status != domain.StatusConfirmed {
		t.Fatalf("o3 should have been transitioned")
	}
}
