package playmode

import "testing"

func TestEnterAndActive(t *testing.T) {
	tr := NewTracker()
	if tr.Active("u1", "room-a") { t.Fatalf("fresh tracker should be inactive") }
	tr.Enter("u1", "room-a")
	if !tr.Active("u1", "room-a") { t.Fatalf("should be active in room-a") }
	if tr.Active("u1", "room-b") { t.Fatalf("play mode is scoped to one room") }
	if tr.Active("u2", "room-a") { t.Fatalf("other players unaffected") }
}

func TestEnterSwitchesRoom(t *testing.T) {
	tr := NewTracker()
	tr.Enter("u1", "room-a")
	tr.Enter("u1", "room-b")
	if tr.Active("u1", "room-a") { t.Fatalf("old room should no longer be active") }
	if !tr.Active("u1", "room-b") { t.Fatalf("latest room wins") }
}

func TestLeave(t *testing.T) {
	tr := NewTracker()
	if tr.Leave("u1") { t.Fatalf("leave without enter should report false") }
	tr.Enter("u1", "room-a")
	if !tr.Leave("u1") { t.Fatalf("leave should report true") }
	if tr.Active("u1", "room-a") { t.Fatalf("left player must be inactive") }
}

func TestEmptyRoomNeverActive(t *testing.T) {
	tr := NewTracker()
	tr.Enter("u1", "")
	if tr.Active("u1", "") { t.Fatalf("empty room id must not match") }
}
