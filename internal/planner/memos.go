package planner

import (
	"fmt"

	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/metalagman/taskcanvas/internal/remote"
)

// DefaultMemoColor is used for memos created without a color.
const DefaultMemoColor = "#fff59d"

// AddMemo stores a new memo.
func (s *Store) AddMemo(m model.Memo) model.Memo {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.newID()
	if m.Color == "" {
		m.Color = DefaultMemoColor
	}
	s.memos = append(s.memos, m)
	s.sink.Commit("add memo", memoWrite(m))
	return m
}

// UpdateMemo merges patch into the memo. Local state changes at once; the
// remote write is debounced per memo so dragging does not flood the store.
func (s *Store) UpdateMemo(id string, patch model.MemoPatch) (model.Memo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.memoIndex(id)
	if i < 0 {
		return model.Memo{}, fmt.Errorf("memo %q: %w", id, ErrNotFound)
	}
	s.memos[i] = patch.Apply(s.memos[i])
	s.sink.Debounce(memoKey(id), memoWrite(s.memos[i]))
	return s.memos[i], nil
}

// DeleteMemo removes a memo and cancels its pending write.
func (s *Store) DeleteMemo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.memoIndex(id)
	if i < 0 {
		return fmt.Errorf("memo %q: %w", id, ErrNotFound)
	}
	s.memos = append(s.memos[:i:i], s.memos[i+1:]...)
	s.sink.CancelDebounce(memoKey(id))
	s.sink.Commit("delete memo", remote.Delete(remote.DocPath(remote.CollectionMemos, id)))
	return nil
}

func memoKey(id string) string {
	return remote.DocPath(remote.CollectionMemos, id)
}
