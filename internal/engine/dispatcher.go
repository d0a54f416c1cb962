package engine

import "sync"

// dispatcher runs posted functions one at a time, in order, on a single
// goroutine. Posting never blocks.
type dispatcher struct {
	mu      sync.Mutex
	queue   []func()
	notify  chan struct{}
	done    chan struct{}
	stopped bool
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	go d.loop()

	return d
}

// post queues fn. It reports false once the dispatcher is stopped.
func (d *dispatcher) post(fn func()) bool {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return false
	}

	d.queue = append(d.queue, fn)
	d.mu.Unlock()

	select {
	case d.notify <- struct{}{}:
	default:
	}

	return true
}

// stop drains what is already queued, then ends the loop and waits for it.
func (d *dispatcher) stop() {
	d.mu.Lock()
	alreadyStopped := d.stopped
	d.stopped = true
	d.mu.Unlock()

	if !alreadyStopped {
		select {
		case d.notify <- struct{}{}:
		default:
		}
	}

	<-d.done
}

func (d *dispatcher) loop() {
	defer close(d.done)

	for {
		d.mu.Lock()
		batch := d.queue
		d.queue = nil
		stopped := d.stopped
		d.mu.Unlock()

		for _, fn := range batch {
			fn()
		}

		if len(batch) > 0 {
			continue
		}

		if stopped {
			return
		}

		<-d.notify
	}
}
