package engine_test

import (
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/file-modifier/internal/engine"
)

func TestPercent(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(engine.Percent(0, 0)).To(Equal(100))
	g.Expect(engine.Percent(0, 3)).To(Equal(0))
	g.Expect(engine.Percent(1, 3)).To(Equal(33))
	g.Expect(engine.Percent(2, 3)).To(Equal(66))
	g.Expect(engine.Percent(3, 3)).To(Equal(100))
	g.Expect(engine.Percent(5, 3)).To(Equal(100))
}

func TestProgress_NeverDecreases(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	progress := engine.NewProgress(engine.NewManualClock(time.Unix(0, 0)))

	percent, changed := progress.Update(50, 100)
	g.Expect(percent).To(Equal(50))
	g.Expect(changed).To(BeTrue())

	percent, changed = progress.Update(10, 100)
	g.Expect(percent).To(Equal(50))
	g.Expect(changed).To(BeFalse())

	_, changed = progress.Update(50, 100)
	g.Expect(changed).To(BeFalse())

	g.Expect(progress.Finish()).To(BeTrue())
	g.Expect(progress.Finish()).To(BeFalse())
	g.Expect(progress.Percent()).To(Equal(100))
}

func TestProgress_EstimatedTimeLeft(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	clock := engine.NewManualClock(time.Unix(1000, 0))
	progress := engine.NewProgress(clock)

	g.Expect(progress.EstimatedTimeLeft()).To(BeZero())

	clock.Advance(10 * time.Second)
	progress.Update(25, 100)

	g.Expect(progress.EstimatedTimeLeft()).To(Equal(30 * time.Second))

	progress.Update(100, 100)

	g.Expect(progress.EstimatedTimeLeft()).To(BeZero())
}
