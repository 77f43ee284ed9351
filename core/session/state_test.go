package session_test

import (
	"testing"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/session"
)

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	sess := newTestSession(t)
	instID, _ := sess.SelectPackage("pkg-room")
	if err := sess.SetInstanceParam(instID, "raumgroesse", 20.0); err != nil {
		t.Fatalf("set param: %v", err)
	}
	itemID := model.LineItemID(instID, "SOCK-STD")
	if err := sess.SetLocalPrice(itemID, floatPtr(3)); err != nil {
		t.Fatalf("set price: %v", err)
	}
	wantTotals := sess.Totals()

	st := sess.Snapshot()

	fresh := newTestSession(t)
	if err := fresh.Restore(st); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := fresh.Totals(); got.Grand != wantTotals.Grand {
		t.Fatalf("restored grand total %v, want %v", got.Grand, wantTotals.Grand)
	}
	cost, ok := fresh.ItemCost(itemID)
	if !ok {
		t.Fatal("restored session lost the item")
	}
	if cost.PurchasePrice != 3 {
		t.Fatalf("restored session lost the override, got %v", cost.PurchasePrice)
	}
}

func TestSnapshot_IsDetached(t *testing.T) {
	sess := newTestSession(t)
	instID, _ := sess.SelectPackage("pkg-room")
	st := sess.Snapshot()

	// Mutating the live session must not leak into the captured state.
	if err := sess.SetInstanceParam(instID, "raumgroesse", 30.0); err != nil {
		t.Fatalf("set param: %v", err)
	}
	if v := st.Instances[0].LocalParams["raumgroesse"]; v.Num != 15 {
		t.Fatalf("snapshot mutated, raumgroesse now %v", v.Num)
	}
}

func TestRestore_UnknownPackageRejectedWholesale(t *testing.T) {
	sess := newTestSession(t)
	instID, _ := sess.SelectPackage("pkg-room")
	before := len(sess.LineItems())

	st := sess.Snapshot()
	st.Instances = append(st.Instances, model.PackageInstance{
		ID: "ghost", PackageID: "pkg-gone", LocalParams: model.Env{},
	})
	if err := sess.Restore(st); err == nil {
		t.Fatal("expected rejection for unknown package")
	}
	if got := len(sess.LineItems()); got != before {
		t.Fatalf("failed restore must leave state untouched: %d vs %d", got, before)
	}
	if _, ok := sess.ItemCost(model.LineItemID(instID, "SOCK-STD")); !ok {
		t.Fatal("previous items must survive a failed restore")
	}
}

func TestRestore_MergesOntoCurrentDefaults(t *testing.T) {
	sess := newTestSession(t)
	_, _ = sess.SelectPackage("pkg-room")
	st := sess.Snapshot()
	// Drop a global from the stored state, the catalog default must fill it.
	delete(st.Global, session.GlobalQualityParam)

	fresh := newTestSession(t)
	if err := fresh.Restore(st); err != nil {
		t.Fatalf("restore: %v", err)
	}
	for _, it := range fresh.LineItems() {
		if it.GroupID == "GRP-SOCKET-1" && it.Quality != model.QualityStandard {
			t.Fatalf("expected default Standard quality got %s", it.Quality)
		}
	}
}
