package registry

import (
	"sort"
	"strings"
)

// Snapshot maps pid to record for one discovery pass.
type Snapshot map[int]*Proc

// Filter narrows a snapshot listing.
type Filter struct {
	PIDs           []int
	AttachableOnly bool
	ManageableOnly bool
	TextSearch     string // substring of the command line or display label
}

func (s Snapshot) has(pid int) bool {
	_, ok := s[pid]
	return ok
}

// PIDs returns the snapshot keys in ascending order.
func (s Snapshot) PIDs() []int {
	pids := make([]int, 0, len(s))
	for pid := range s {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}

// List returns matching records sorted by pid.
func (s Snapshot) List(f Filter) []*Proc {
	pids := s.PIDs()

	if len(f.PIDs) > 0 {
		set := make(map[int]struct{}, len(f.PIDs))
		for _, pid := range f.PIDs {
			set[pid] = struct{}{}
		}
		pids = filterPIDs(pids, func(pid int) bool {
			_, ok := set[pid]
			return ok
		})
	}
	if f.AttachableOnly {
		pids = filterPIDs(pids, func(pid int) bool {
			return s[pid].Attachable
		})
	}
	if f.ManageableOnly {
		pids = filterPIDs(pids, func(pid int) bool {
			return s[pid].Manageable()
		})
	}
	if q := strings.TrimSpace(f.TextSearch); q != "" {
		pids = filterPIDs(pids, func(pid int) bool {
			p := s[pid]
			return strings.Contains(p.Command, q) || strings.Contains(p.Display, q)
		})
	}

	out := make([]*Proc, 0, len(pids))
	for _, pid := range pids {
		out = append(out, s[pid])
	}
	return out
}

func filterPIDs(pids []int, keep func(int) bool) []int {
	dst := pids[:0]
	for _, pid := range pids {
		if keep(pid) {
			dst = append(dst, pid)
		}
	}
	return dst
}
