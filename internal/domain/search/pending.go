package search

import "sync"

// pendingSet tracks target digests not yet matched. Removal is guarded so
// two workers drawing the same sequence at the same instant cannot both
// retire one digest.
type pendingSet struct {
	mu    sync.Mutex
	want  map[string]struct{}
	found map[string]string
}

func newPendingSet(digests []string) *pendingSet {
	p := &pendingSet{
		want:  make(map[string]struct{}, len(digests)),
		found: make(map[string]string, len(digests)),
	}
	for _, d := range digests {
		p.want[d] = struct{}{}
	}
	return p
}

// claim retires digest for seq if it is still pending. It returns whether
// the claim succeeded and how many digests remain afterwards.
func (p *pendingSet) claim(digest, seq string) (bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.want[digest]; !ok {
		return false, len(p.want)
	}
	delete(p.want, digest)
	p.found[digest] = seq
	return true, len(p.want)
}

func (p *pendingSet) remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.want)
}

// matches returns a copy of the matched pairs.
func (p *pendingSet) matches() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]string, len(p.found))
	for d, s := range p.found {
		out[d] = s
	}
	return out
}
