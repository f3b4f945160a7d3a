package group

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

// AttackerSelector periodically hands free slots to the best-scoring agents.
type AttackerSelector struct {
	scorer   Scorer
	slots    *SlotManager
	interval float64
	nextAt   float64
	logger   *zap.Logger
}

// NewAttackerSelector creates a selector that runs at most once per
// cfg.MinReassignInterval.
//
// Precondition: scorer and slots must be non-nil.
func NewAttackerSelector(scorer Scorer, slots *SlotManager, cfg SelectionSettings, logger *zap.Logger) *AttackerSelector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttackerSelector{
		scorer:   scorer,
		slots:    slots,
		interval: math.Max(0, cfg.MinReassignInterval.Seconds()),
		nextAt:   math.Inf(-1),
		logger:   logger,
	}
}

type candidate struct {
	h     Handle
	score float64
}

// AssignAttackersByScore fills free slots with the highest-scoring alive
// agents that do not already hold one. Equal scores keep registration order.
// Each successful grant stamps the agent's last attack time with now.
//
// Postcondition: returns the handles granted a slot in this call; the next
// run is deferred by the reassign interval whether or not any were granted.
func (s *AttackerSelector) AssignAttackersByScore(st *State, target Target, now float64) []Handle {
	if now < s.nextAt {
		return nil
	}
	s.nextAt = now + s.interval

	free := s.slots.AvailableSlots()
	if free <= 0 {
		return nil
	}

	var cands []candidate
	for _, h := range st.order {
		if s.slots.HasSlot(h) {
			continue
		}
		if _, ok := st.alive(h); !ok {
			continue
		}
		if score := s.scorer.CalculateScore(st, h, target, now); score > 0 {
			cands = append(cands, candidate{h: h, score: score})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].score > cands[j].score })

	var granted []Handle
	for _, c := range cands {
		if len(granted) >= free {
			break
		}
		if !s.slots.RequestSlot(c.h) {
			break
		}
		st.SetLastAttackTime(c.h, now)
		granted = append(granted, c.h)
		s.logger.Debug("attack slot granted",
			zap.Uint64("handle", uint64(c.h)),
			zap.Float64("score", c.score),
			zap.Int("available", s.slots.AvailableSlots()),
		)
	}
	return granted
}
