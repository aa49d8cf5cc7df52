package dispatch

// Stats contains statistics for a Dispatcher.
type Stats struct {
	// Subscriptions is the current number of subscriptions.
	Subscriptions int

	// Dispatched is the number of Dispatch and DispatchSafe calls.
	Dispatched uint64

	// Delivered is the number of handler invocations that succeeded.
	Delivered uint64

	// Filtered is the number of times a predicate rejected a payload.
	Filtered uint64

	// Failed is the number of handlers that returned errors.
	Failed uint64

	// Panicked is the number of handlers or predicates that panicked.
	Panicked uint64

	// Suppressed is the number of failures discarded by DispatchSafe.
	Suppressed uint64
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Subscriptions: s.Subscriptions + o.Subscriptions,
		Dispatched:    s.Dispatched + o.Dispatched,
		Delivered:     s.Delivered + o.Delivered,
		Filtered:      s.Filtered + o.Filtered,
		Failed:        s.Failed + o.Failed,
		Panicked:      s.Panicked + o.Panicked,
		Suppressed:    s.Suppressed + o.Suppressed,
	}
}
