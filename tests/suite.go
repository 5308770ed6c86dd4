package tests

import (
	"bytes"
	"context"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/stretchr/testify/suite"
)

// MemoryLeakTestSuite fails a test if it leaves more goroutines behind than it announced
// with ExpectedGoroutineIncrease. TestCtx is cancelled after every test.
type MemoryLeakTestSuite struct {
	suite.Suite
	ExpectedGoroutineIncrease int
	TestCtx                   context.Context
	testCtxCancel             context.CancelFunc
	goroutineCountBefore      int
	goroutinesBefore          *bytes.Buffer
}

func (s *MemoryLeakTestSuite) SetupTest() {
	// Goroutines of previous tests may still be finishing.
	runtime.Gosched()
	<-time.After(TinyTimeout)

	s.ExpectedGoroutineIncrease = 0
	s.goroutinesBefore = &bytes.Buffer{}
	err := pprof.Lookup("goroutine").WriteTo(s.goroutinesBefore, 1)
	s.Require().NoError(err)
	s.goroutineCountBefore = runtime.NumGoroutine()

	ctx, cancel := context.WithCancel(context.Background())
	s.TestCtx = ctx
	s.testCtxCancel = cancel
}

func (s *MemoryLeakTestSuite) TearDownTest() {
	s.testCtxCancel()

	goroutinesAfter := s.waitForGoroutines(s.goroutineCountBefore+s.ExpectedGoroutineIncrease, ShortTimeout)
	if !s.LessOrEqual(goroutinesAfter, s.goroutineCountBefore+s.ExpectedGoroutineIncrease) {
		s.T().Log("Goroutines before the test:\n" + s.goroutinesBefore.String())
		goroutinesAfterTest := &bytes.Buffer{}
		if err := pprof.Lookup("goroutine").WriteTo(goroutinesAfterTest, 1); err == nil {
			s.T().Log("Goroutines after the test:\n" + goroutinesAfterTest.String())
		}
	}
}

// waitForGoroutines polls until at most expected goroutines are running or the timeout expires.
func (s *MemoryLeakTestSuite) waitForGoroutines(expected int, timeout time.Duration) int {
	deadline := time.After(timeout)
	for {
		count := runtime.NumGoroutine()
		if count <= expected {
			return count
		}
		select {
		case <-deadline:
			return count
		case <-time.After(TinyTimeout):
		}
	}
}
