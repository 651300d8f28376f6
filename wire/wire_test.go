package wire

import "testing"

func TestSNewAddress(t *testing.T) {
	m := SNew("sine", 1000, 0, 0, []KV{{Name: "freq", Value: float32(440)}})
	if m.Address != "/s_new" {
		t.Fatalf("address = %q, want /s_new", m.Address)
	}
	if len(m.Arguments) != 6 {
		t.Fatalf("got %d arguments, want 6 (name, id, action, target, key, value)", len(m.Arguments))
	}
}

func TestNFreeVariadic(t *testing.T) {
	m := NFree(1000, 1001, 1002)
	if len(m.Arguments) != 3 {
		t.Fatalf("got %d arguments, want 3", len(m.Arguments))
	}
}

func TestDRecvOmitsNilCompletionMessage(t *testing.T) {
	m := DRecv([]byte("SCgf"), nil)
	if len(m.Arguments) != 1 {
		t.Fatalf("got %d arguments, want 1 (no completion message)", len(m.Arguments))
	}
}

func TestQuitAndStatusTakeNoArguments(t *testing.T) {
	if len(Quit().Arguments) != 0 {
		t.Fatal("quit should take no arguments")
	}
	if len(Status().Arguments) != 0 {
		t.Fatal("status should take no arguments")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	m := NSet(1000, []KV{{Name: "freq", Value: float32(880)}})
	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	reply, err := ParseReply(data)
	if err != nil {
		t.Fatalf("ParseReply: %v", err)
	}
	if reply.Address != "/n_set" {
		t.Fatalf("address = %q, want /n_set", reply.Address)
	}
}
