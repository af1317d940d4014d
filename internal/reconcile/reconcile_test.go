package reconcile_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"animator-service/internal/entity"
	"animator-service/internal/reconcile"
	"animator-service/internal/store"
)

func shotWith(id string, results ...entity.ResultRecord) entity.ShotConfig {
	return entity.ShotConfig{
		ID:        id,
		ImageURL:  "https://cdn.example.com/" + id + ".png",
		Results:   results,
		CreatedAt: time.Now(),
	}
}

func pending(id string) entity.ResultRecord {
	return entity.ResultRecord{ID: id, Status: entity.StatusPending, CreatedAt: time.Now()}
}

func statusOf(st *store.Store, shotID, resultID string) entity.ResultStatus {
	shot, ok := st.Get(shotID)
	if !ok {
		return ""
	}
	i := shot.ResultIndex(resultID)
	if i < 0 {
		return ""
	}
	return shot.Results[i].Status
}

var _ = Describe("Poll", func() {
	var (
		ctx     context.Context
		cancel  context.CancelFunc
		st      *store.Store
		querier *fakeQuerier
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		st = store.New()
		querier = newFakeQuerier()
	})

	AfterEach(func() {
		cancel()
	})

	It("does not query when nothing is outstanding", func() {
		poll := reconcile.NewPoll(querier, st, time.Hour, 0)
		Expect(poll.PollOnce(ctx)).To(Equal(0))
		Expect(querier.CallCount()).To(Equal(0))
	})

	It("runs exactly one immediate query on activation", func() {
		st.Add(shotWith("s1", pending("g1")))
		poll := reconcile.NewPoll(querier, st, time.Hour, 0)

		poll.Start(ctx)
		poll.Start(ctx)
		defer poll.Stop()

		Eventually(querier.CallCount).Should(Equal(1))
		Consistently(querier.CallCount, 100*time.Millisecond).Should(Equal(1))
		Expect(poll.Active()).To(BeTrue())
	})

	It("merges polled rows and stops itself once nothing is outstanding", func() {
		st.Add(shotWith("s1", pending("g1")))
		querier.Set(entity.StatusUpdate{JobID: "g1", OutputURL: "https://cdn.example.com/g1.mp4"})
		poll := reconcile.NewPoll(querier, st, 10*time.Millisecond, 0)

		poll.Start(ctx)

		Eventually(func() entity.ResultStatus { return statusOf(st, "s1", "g1") }).Should(Equal(entity.StatusCompleted))
		Eventually(poll.Active).Should(BeFalse())
	})

	It("keeps polling after query errors", func() {
		st.Add(shotWith("s1", pending("g1")))
		querier.failures = 2
		querier.Set(entity.StatusUpdate{JobID: "g1", Status: "failed", ErrorDetail: "nsfw"})
		poll := reconcile.NewPoll(querier, st, 10*time.Millisecond, 0)

		poll.Start(ctx)

		Eventually(func() entity.ResultStatus { return statusOf(st, "s1", "g1") }).Should(Equal(entity.StatusFailed))
		Expect(querier.CallCount()).To(BeNumerically(">=", 3))
	})

	It("can be stopped and restarted", func() {
		st.Add(shotWith("s1", pending("g1")))
		poll := reconcile.NewPoll(querier, st, time.Hour, 0)

		poll.Start(ctx)
		Eventually(querier.CallCount).Should(Equal(1))
		poll.Stop()
		Expect(poll.Active()).To(BeFalse())

		poll.Start(ctx)
		defer poll.Stop()
		Eventually(querier.CallCount).Should(Equal(2))
	})
})

var _ = Describe("Push", func() {
	var (
		ctx        context.Context
		cancel     context.CancelFunc
		st         *store.Store
		subscriber *fakeSubscriber
		push       *reconcile.Push
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		st = store.New()
		subscriber = &fakeSubscriber{}
		push = reconcile.NewPush(subscriber, st, 10*time.Millisecond)
	})

	AfterEach(func() {
		push.Stop()
		cancel()
	})

	It("applies delivered updates to the store", func() {
		st.Add(shotWith("s1", pending("g1")))

		Expect(push.Retarget(ctx, []string{"g1"})).To(BeTrue())
		Eventually(subscriber.Last).ShouldNot(BeNil())

		subscriber.Last().ch <- entity.StatusUpdate{JobID: "g1", OutputURL: "https://cdn.example.com/g1.mp4"}

		Eventually(func() entity.ResultStatus { return statusOf(st, "s1", "g1") }).Should(Equal(entity.StatusCompleted))
	})

	It("resubscribes only when membership changes", func() {
		Expect(push.Retarget(ctx, []string{"g1", "g2"})).To(BeTrue())
		Eventually(subscriber.Calls).Should(HaveLen(1))
		first := subscriber.Last()

		Expect(push.Retarget(ctx, []string{"g1", "g2"})).To(BeFalse())
		Consistently(subscriber.Calls, 50*time.Millisecond).Should(HaveLen(1))

		Expect(push.Retarget(ctx, []string{"g2", "g3"})).To(BeTrue())
		Eventually(subscriber.Calls).Should(HaveLen(2))
		Expect(subscriber.Calls()[1]).To(Equal([]string{"g2", "g3"}))
		Expect(first.IsClosed()).To(BeTrue())
	})

	It("tears down the subscription for an empty set", func() {
		push.Retarget(ctx, []string{"g1"})
		Eventually(subscriber.Last).ShouldNot(BeNil())
		sub := subscriber.Last()

		push.Retarget(ctx, []string{})
		Expect(sub.IsClosed()).To(BeTrue())
		Expect(push.Scope()).To(BeEmpty())
	})

	It("retries a failed subscription after the delay", func() {
		subscriber.failures = 2
		push.Retarget(ctx, []string{"g1"})

		Eventually(subscriber.Calls).Should(HaveLen(3))
		Expect(subscriber.Last()).NotTo(BeNil())
	})

	It("resubscribes when the feed drops", func() {
		push.Retarget(ctx, []string{"g1"})
		Eventually(subscriber.Last).ShouldNot(BeNil())

		close(subscriber.Last().ch)

		Eventually(subscriber.Calls).Should(HaveLen(2))
	})
})

var _ = Describe("Scheduler", func() {
	var (
		ctx        context.Context
		cancel     context.CancelFunc
		st         *store.Store
		subscriber *fakeSubscriber
		querier    *fakeQuerier
		push       *reconcile.Push
		poll       *reconcile.Poll
		done       chan error
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		st = store.New()
		subscriber = &fakeSubscriber{}
		querier = newFakeQuerier()
		push = reconcile.NewPush(subscriber, st, 10*time.Millisecond)
		poll = reconcile.NewPoll(querier, st, time.Hour, 0)

		sched := reconcile.NewScheduler(st, push, poll)
		done = make(chan error, 1)
		go func() { done <- sched.Run(ctx) }()
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})

	It("activates both channels while jobs are outstanding", func() {
		Consistently(poll.Active, 50*time.Millisecond).Should(BeFalse())

		st.Add(shotWith("s1"))
		Expect(st.RecordSubmission("s1", "g1", time.Now())).To(Succeed())

		Eventually(push.Scope).Should(Equal([]string{"g1"}))
		Eventually(poll.Active).Should(BeTrue())
		Eventually(querier.CallCount).Should(Equal(1))
	})

	It("deactivates both channels when the last job completes", func() {
		st.Add(shotWith("s1", pending("g1")))
		Eventually(subscriber.Last).ShouldNot(BeNil())
		Eventually(poll.Active).Should(BeTrue())

		subscriber.Last().ch <- entity.StatusUpdate{JobID: "g1", OutputURL: "https://cdn.example.com/g1.mp4"}

		Eventually(push.Scope).Should(BeEmpty())
		Eventually(poll.Active).Should(BeFalse())
	})

	It("does not restart the poll when membership changes", func() {
		st.Add(shotWith("s1", pending("g1")))
		Eventually(querier.CallCount).Should(Equal(1))

		Expect(st.RecordSubmission("s1", "g2", time.Now())).To(Succeed())

		Eventually(push.Scope).Should(Equal([]string{"g1", "g2"}))
		Consistently(querier.CallCount, 100*time.Millisecond).Should(Equal(1))
	})
})
