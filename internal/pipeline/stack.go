package pipeline

import "bookfetch/internal/asset"

// pendingStack hands out each id once, in listing order.
type pendingStack struct {
	ids []asset.ID
}

func newPendingStack(ids []asset.ID) *pendingStack {
	reversed := make([]asset.ID, len(ids))
	for i, id := range ids {
		reversed[len(ids)-1-i] = id
	}
	return &pendingStack{ids: reversed}
}

func (s *pendingStack) pop() (asset.ID, bool) {
	if len(s.ids) == 0 {
		return "", false
	}
	last := len(s.ids) - 1
	id := s.ids[last]
	s.ids = s.ids[:last]
	return id, true
}

func (s *pendingStack) len() int {
	return len(s.ids)
}
