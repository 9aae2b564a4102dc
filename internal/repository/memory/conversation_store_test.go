package memory

import (
	"fmt"
	"sync"
	"testing"
)

func TestCreateConversationIssuesLocalIds(t *testing.T) {
	s := NewConversationStore()

	first := s.CreateConversation("first")
	second := s.CreateConversation("second")

	if first.Id != "local-conv-1" {
		t.Errorf("first.Id = %s, want local-conv-1", first.Id)
	}
	if second.Id != "local-conv-2" {
		t.Errorf("second.Id = %s, want local-conv-2", second.Id)
	}
}

func TestAddMessageOrdering(t *testing.T) {
	s := NewConversationStore()
	conv := s.CreateConversation("chat")

	s.AddMessage(conv.Id, "user", "first")
	s.AddMessage(conv.Id, "assistant", "second")
	s.AddMessage(conv.Id, "user", "third")

	msgs := s.GetMessages(conv.Id)
	if len(msgs) != 3 {
		t.Fatalf("len(msgs) = %d, want 3", len(msgs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if msgs[i].Content != want {
			t.Errorf("msgs[%d].Content = %s, want %s", i, msgs[i].Content, want)
		}
	}
	if msgs[0].Id != "local-msg-1" {
		t.Errorf("msgs[0].Id = %s, want local-msg-1", msgs[0].Id)
	}
}

func TestGetMessagesReturnsCopy(t *testing.T) {
	s := NewConversationStore()
	conv := s.CreateConversation("chat")
	s.AddMessage(conv.Id, "user", "original")

	msgs := s.GetMessages(conv.Id)
	msgs[0] = nil

	again := s.GetMessages(conv.Id)
	if again[0] == nil || again[0].Content != "original" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestDeleteConversationDropsMessages(t *testing.T) {
	s := NewConversationStore()
	conv := s.CreateConversation("chat")
	s.AddMessage(conv.Id, "user", "hello")

	s.DeleteConversation(conv.Id)

	if _, ok := s.GetConversation(conv.Id); ok {
		t.Error("conversation still present after delete")
	}
	if msgs := s.GetMessages(conv.Id); len(msgs) != 0 {
		t.Errorf("len(msgs) = %d after delete, want 0", len(msgs))
	}
}

func TestConcurrentWritesKeepUniqueIds(t *testing.T) {
	s := NewConversationStore()

	const writers = 32
	ids := make(chan string, writers)
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			conv := s.CreateConversation(fmt.Sprintf("conv %d", n))
			ids <- conv.Id
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if len(seen) != writers {
		t.Errorf("unique ids = %d, want %d", len(seen), writers)
	}
}
