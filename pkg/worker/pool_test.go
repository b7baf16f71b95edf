package worker_test

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/rubberduck/pkg/eventstream"
	"github.com/papercomputeco/rubberduck/pkg/worker"
)

// recordingPublisher keeps every published event. When block is set, each
// Publish waits for a value on it.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.ConversationEvent
	err    error
	block  chan struct{}
}

func (r *recordingPublisher) Publish(_ context.Context, ev *eventstream.ConversationEvent) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func (r *recordingPublisher) Events() []*eventstream.ConversationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*eventstream.ConversationEvent(nil), r.events...)
}

var _ = Describe("Worker Pool", func() {
	var pub *recordingPublisher

	BeforeEach(func() {
		pub = &recordingPublisher{}
	})

	It("requires a publisher", func() {
		_, err := worker.NewPool(&worker.Config{})
		Expect(err).To(HaveOccurred())
	})

	It("applies defaults", func() {
		cfg := &worker.Config{Publisher: pub}
		wp, err := worker.NewPool(cfg)
		Expect(err).NotTo(HaveOccurred())
		defer wp.Close()

		Expect(cfg.NumWorkers).To(Equal(uint(2)))
		Expect(cfg.QueueSize).To(Equal(uint(256)))
	})

	It("publishes queued events and drains on Close", func() {
		wp, err := worker.NewPool(&worker.Config{Publisher: pub})
		Expect(err).NotTo(HaveOccurred())

		for range 10 {
			Expect(wp.Enqueue(worker.Job{Event: eventstream.NewEvent(eventstream.EventTypeStateChanged, "c1")})).To(BeTrue())
		}
		wp.Close()

		Expect(pub.Events()).To(HaveLen(10))
	})

	It("drops jobs when the queue is full", func() {
		pub.block = make(chan struct{})
		wp, err := worker.NewPool(&worker.Config{Publisher: pub, NumWorkers: 1, QueueSize: 1})
		Expect(err).NotTo(HaveOccurred())

		accepted := 0
		for range 5 {
			if wp.Enqueue(worker.Job{Event: eventstream.NewEvent(eventstream.EventTypeStateChanged, "c1")}) {
				accepted++
			}
		}
		Expect(accepted).To(BeNumerically("<", 5))

		close(pub.block)
		wp.Close()
		Expect(pub.Events()).To(HaveLen(accepted))
	})

	It("rejects nil events and jobs after Close", func() {
		wp, err := worker.NewPool(&worker.Config{Publisher: pub})
		Expect(err).NotTo(HaveOccurred())

		Expect(wp.Enqueue(worker.Job{})).To(BeFalse())
		wp.Close()
		wp.Close()
		Expect(wp.Enqueue(worker.Job{Event: eventstream.NewEvent(eventstream.EventTypeStateChanged, "c1")})).To(BeFalse())
	})

	It("keeps going after publish failures", func() {
		pub.err = errors.New("broker down")
		wp, err := worker.NewPool(&worker.Config{Publisher: pub})
		Expect(err).NotTo(HaveOccurred())

		Expect(wp.Enqueue(worker.Job{Event: eventstream.NewEvent(eventstream.EventTypeStateChanged, "c1")})).To(BeTrue())
		wp.Close()
		Expect(pub.Events()).To(BeEmpty())
	})
})
