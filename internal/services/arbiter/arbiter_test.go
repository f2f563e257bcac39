package arbiter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/aseguradoss/internal/dependencies/mocks"
	"github.com/mcoot/aseguradoss/internal/model"
	"github.com/mcoot/aseguradoss/internal/testutil"
)

type ArbiterSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	arbiter *Arbiter

	mu     sync.Mutex
	opened []Interaction
}

func TestArbiterSuite(t *testing.T) {
	suite.Run(t, new(ArbiterSuite))
}

func (s *ArbiterSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.arbiter = New(s.clock, testutil.NopLogger())
	s.opened = nil
	s.arbiter.Subscribe(func(it Interaction) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.opened = append(s.opened, it)
	})
}

func (s *ArbiterSuite) openedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.opened)
}

func (s *ArbiterSuite) waitForOpen(n int) Interaction {
	s.Require().Eventually(func() bool { return s.openedCount() >= n }, time.Second, time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened[n-1]
}

func (s *ArbiterSuite) TestPostOpensImmediatelyWhenIdle() {
	it := s.arbiter.Post(model.Notice{Message: "hola", Severity: model.SeverityInfo})

	s.NotEmpty(it.ID)
	s.Equal(s.clock.Now(), it.OpenedAt)

	current, ok := s.arbiter.Current()
	s.Require().True(ok)
	s.Equal(it.ID, current.ID)
	s.Equal(0, s.arbiter.Pending())
	s.Equal(1, s.openedCount())
}

func (s *ArbiterSuite) TestSecondRequestWaitsForFirst() {
	first := s.arbiter.Post(model.Notice{Message: "primero"})
	second := s.arbiter.Post(model.Notice{Message: "segundo"})

	s.True(second.OpenedAt.IsZero())
	s.Equal(1, s.arbiter.Pending())
	s.Equal(1, s.openedCount())

	current, _ := s.arbiter.Current()
	s.Equal(first.ID, current.ID)

	s.clock.Advance(time.Minute)
	s.Require().NoError(s.arbiter.Resolve(first.ID, model.OutcomeNext))

	current, ok := s.arbiter.Current()
	s.Require().True(ok)
	s.Equal(second.ID, current.ID)
	s.Equal(s.clock.Now(), current.OpenedAt)
	s.Equal(0, s.arbiter.Pending())
	s.Equal(2, s.openedCount())
}

func (s *ArbiterSuite) TestRequestsServedInSubmissionOrder() {
	ctx := context.Background()

	var wg sync.WaitGroup
	for i, msg := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.arbiter.Request(ctx, model.Notice{Message: msg})
			s.NoError(err)
		}()
		// Ensure submission order
		s.Require().Eventually(func() bool {
			_, open := s.arbiter.Current()
			return open && s.arbiter.Pending() == i
		}, time.Second, time.Millisecond)
	}

	var order []string
	for i := 1; i <= 3; i++ {
		it := s.waitForOpen(i)
		order = append(order, it.Decision.(model.Notice).Message)
		s.Require().NoError(s.arbiter.Resolve(it.ID, model.OutcomeNext))
	}
	wg.Wait()

	s.Equal([]string{"a", "b", "c"}, order)
}

func (s *ArbiterSuite) TestRequestReturnsOutcome() {
	done := make(chan model.Outcome, 1)
	go func() {
		out, err := s.arbiter.Request(context.Background(), model.InsurancePurchase{Insurance: model.InsuranceCar, Price: 400})
		s.NoError(err)
		done <- out
	}()

	it := s.waitForOpen(1)
	s.Equal(model.DecisionInsurancePurchase, it.Decision.Kind())
	s.Require().NoError(s.arbiter.Resolve(it.ID, model.OutcomeBuy))

	select {
	case out := <-done:
		s.Equal(model.OutcomeBuy, out)
	case <-time.After(time.Second):
		s.Fail("request never returned")
	}
}

func (s *ArbiterSuite) TestResolveErrors() {
	s.ErrorIs(s.arbiter.Resolve("nope", model.OutcomeNext), model.ErrNoOpenDecision)

	it := s.arbiter.Post(model.InsurancePurchase{Insurance: model.InsuranceHome, Price: 500})

	s.ErrorIs(s.arbiter.Resolve("nope", model.OutcomeBuy), model.ErrDecisionMismatch)
	s.ErrorIs(s.arbiter.Resolve(it.ID, model.OutcomeNext), model.ErrInvalidOutcome)

	// Still open after rejected answers
	current, ok := s.arbiter.Current()
	s.Require().True(ok)
	s.Equal(it.ID, current.ID)

	s.NoError(s.arbiter.Resolve(it.ID, model.OutcomeDecline))
	_, ok = s.arbiter.Current()
	s.False(ok)
}

func (s *ArbiterSuite) TestResolveWithEmptyQueueThenNewRequestOpens() {
	first := s.arbiter.Post(model.Notice{Message: "uno"})
	s.Require().NoError(s.arbiter.Resolve(first.ID, model.OutcomeNext))

	second := s.arbiter.Post(model.Notice{Message: "dos"})
	current, ok := s.arbiter.Current()
	s.Require().True(ok)
	s.Equal(second.ID, current.ID)
}

func (s *ArbiterSuite) TestCancelledQueuedRequestLeavesQueue() {
	open := s.arbiter.Post(model.Notice{Message: "abierto"})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := s.arbiter.Request(ctx, model.Notice{Message: "cola"})
		errCh <- err
	}()
	s.Require().Eventually(func() bool { return s.arbiter.Pending() == 1 }, time.Second, time.Millisecond)

	cancel()
	s.ErrorIs(<-errCh, context.Canceled)
	s.Equal(0, s.arbiter.Pending())

	s.Require().NoError(s.arbiter.Resolve(open.ID, model.OutcomeNext))
	_, ok := s.arbiter.Current()
	s.False(ok)
}

func (s *ArbiterSuite) TestCancelledOpenRequestPromotesNext() {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := s.arbiter.Request(ctx, model.Notice{Message: "abierto"})
		errCh <- err
	}()
	s.waitForOpen(1)

	queued := s.arbiter.Post(model.Notice{Message: "siguiente"})
	cancel()
	s.ErrorIs(<-errCh, context.Canceled)

	current, ok := s.arbiter.Current()
	s.Require().True(ok)
	s.Equal(queued.ID, current.ID)
}

func (s *ArbiterSuite) TestClear() {
	s.arbiter.Post(model.Notice{Message: "uno"})
	s.arbiter.Post(model.Notice{Message: "dos"})

	s.arbiter.Clear()

	_, ok := s.arbiter.Current()
	s.False(ok)
	s.Equal(0, s.arbiter.Pending())
}
