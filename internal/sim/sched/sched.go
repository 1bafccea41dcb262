package sched

// Scheduler runs periodic tasks against a logical clock in milliseconds.
// It is driven by a single loop goroutine and is not safe for concurrent use.
type Scheduler struct {
	tasks []*Task
}

// Task is a handle to a periodic callback registered with Every.
type Task struct {
	interval  int64
	next      int64
	fn        func(now int64)
	cancelled bool
}

func New() *Scheduler { return &Scheduler{} }

// Every registers fn to run every interval ms, first at now+interval.
func (s *Scheduler) Every(now, interval int64, fn func(now int64)) *Task {
	if interval <= 0 {
		interval = 1
	}
	t := &Task{
		interval: interval,
		next:     now + interval,
		fn:       fn,
	}
	s.tasks = append(s.tasks, t)
	return t
}

// Cancel stops the task. It is safe to call more than once, and from inside
// the task's own callback.
func (t *Task) Cancel() {
	if t == nil {
		return
	}
	t.cancelled = true
}

func (t *Task) Active() bool { return t != nil && !t.cancelled }

func (t *Task) Interval() int64 {
	if t == nil {
		return 0
	}
	return t.interval
}

// Advance runs every due task once, in registration order. A task that fell
// behind by several intervals fires once and is re-armed at now+interval.
// Tasks registered during Advance first run on a later call.
func (s *Scheduler) Advance(now int64) {
	due := s.tasks
	for _, t := range due {
		if t.cancelled || t.next > now {
			continue
		}
		t.next = now + t.interval
		t.fn(now)
	}
	s.compact()
}

// Len returns the number of active tasks.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (s *Scheduler) compact() {
	keep := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled {
			keep = append(keep, t)
		}
	}
	for i := len(keep); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = keep
}
