package models

import "log"

// Snapshot is the full contents of both columns, as mirrored to durable storage.
type Snapshot struct {
	Signal []Task `json:"signal"`
	Noise  []Task `json:"noise"`
}

// Stats holds the per-column counts of tasks that are not ignored.
type Stats struct {
	SignalCount int `json:"signal_count"`
	NoiseCount  int `json:"noise_count"`
}

// Tasks returns the tasks held for column c.
func (s Snapshot) Tasks(c Column) []Task {
	switch c {
	case ColumnSignal:
		return s.Signal
	case ColumnNoise:
		return s.Noise
	default:
		return nil
	}
}

// Len returns the number of tasks across both columns.
func (s Snapshot) Len() int {
	return len(s.Signal) + len(s.Noise)
}

// Normalize makes a decoded snapshot safe to adopt as board state.
// Missing members become empty columns. Records without an id, or whose id was
// already seen earlier in the snapshot, are dropped. It returns the number of
// dropped records.
func (s *Snapshot) Normalize() int {
	seen := make(map[string]struct{}, s.Len())
	dropped := 0

	keep := func(c Column, tasks []Task) []Task {
		out := make([]Task, 0, len(tasks))
		for _, task := range tasks {
			if task.ID == "" {
				log.Printf("dropping %s task without id: %q", c, task.Text)
				dropped++
				continue
			}
			if _, dup := seen[task.ID]; dup {
				log.Printf("dropping duplicate %s task id %s", c, task.ID)
				dropped++
				continue
			}
			seen[task.ID] = struct{}{}
			out = append(out, task)
		}
		return out
	}

	s.Signal = keep(ColumnSignal, s.Signal)
	s.Noise = keep(ColumnNoise, s.Noise)

	return dropped
}
