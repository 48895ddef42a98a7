package history

import "testing"

func TestAppendAndAll(t *testing.T) {
	m := NewManager(5)
	userA := int64(1)
	userB := int64(2)

	m.Append(userA, Interaction{Input: "hello", Response: "hi"})
	m.Append(userB, Interaction{Input: "foo", Response: "bar"})

	a := m.All(userA)
	b := m.All(userB)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("unexpected lengths: A=%d B=%d", len(a), len(b))
	}
	if a[0].ID == 0 || a[0].Date == "" || a[0].Weekday == "" {
		t.Fatalf("append did not stamp id/date/weekday: %+v", a[0])
	}

	// returned slice is a copy
	a[0].Response = "mutated"
	if m.All(userA)[0].Response != "hi" {
		t.Fatalf("internal state mutated via returned slice")
	}
}

func TestContextWindowIsBounded(t *testing.T) {
	m := NewManager(3)
	u := int64(1)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		m.Append(u, Interaction{Input: s, Response: s + "!"})
	}

	turns := m.ContextTurns(u)
	if len(turns) != 6 {
		t.Fatalf("turns = %d, want 6 (window 3)", len(turns))
	}
	if turns[0].Content != "c" || turns[0].Role != "user" {
		t.Fatalf("oldest entries not dropped from window: %+v", turns[0])
	}
	if turns[5].Content != "e!" || turns[5].Role != "assistant" {
		t.Fatalf("roles must alternate user/assistant: %+v", turns[5])
	}

	// display log keeps everything
	if len(m.All(u)) != 5 {
		t.Fatalf("display log must be unbounded, got %d", len(m.All(u)))
	}
}

func TestResetClearsOnlyOneUser(t *testing.T) {
	m := NewManager(5)
	m.Append(1, Interaction{Input: "x", Response: "y"})
	m.Append(2, Interaction{Input: "p", Response: "q"})
	m.Reset(1)
	if len(m.All(1)) != 0 {
		t.Fatalf("reset did not clear user 1")
	}
	if len(m.All(2)) != 1 {
		t.Fatalf("reset must not affect other users")
	}
}
