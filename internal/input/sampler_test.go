package input

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMissingKeyIsNotHeld(t *testing.T) {
	var s State
	assert.False(t, s.Held("w"))
	assert.False(t, s.Active(Forward))
}

func TestStateAliases(t *testing.T) {
	cases := []struct {
		Name string
		Keys []string
		Dir  Direction
	}{
		{Name: "letter forward", Keys: []string{"w"}, Dir: Forward},
		{Name: "arrow forward", Keys: []string{"ArrowUp"}, Dir: Forward},
		{Name: "letter back", Keys: []string{"S"}, Dir: Back},
		{Name: "arrow back", Keys: []string{"arrowdown"}, Dir: Back},
		{Name: "letter left", Keys: []string{"a"}, Dir: Left},
		{Name: "arrow left", Keys: []string{"ArrowLeft"}, Dir: Left},
		{Name: "letter right", Keys: []string{"d"}, Dir: Right},
		{Name: "arrow right", Keys: []string{"ARROWRIGHT"}, Dir: Right},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			s := Of(tc.Keys...)
			for _, d := range Directions {
				assert.Equal(t, d == tc.Dir, s.Active(d), "direction %s", d)
			}
		})
	}
}

func TestSamplerLastWriteWins(t *testing.T) {
	s := NewSampler()
	s.Press("W")
	s.Release("w")
	s.Press("w")

	snap := s.Snapshot()
	assert.True(t, snap.Held("w"))

	s.Release("W")
	assert.False(t, s.Snapshot().Held("w"))
}

func TestSamplerSnapshotIsACopy(t *testing.T) {
	s := NewSampler()
	s.Press("d")
	snap := s.Snapshot()
	s.Release("d")

	assert.True(t, snap.Held("d"), "snapshot must not observe later writes")
	assert.False(t, s.Snapshot().Held("d"))
}

func TestSamplerUnknownKeysIgnoredByDirections(t *testing.T) {
	s := NewSampler()
	s.Press("q")
	s.Press("")
	snap := s.Snapshot()

	for _, d := range Directions {
		assert.False(t, snap.Active(d))
	}
	assert.False(t, IsMovementKey("q"))
	assert.True(t, IsMovementKey("ArrowUp"))
}

func TestSamplerReset(t *testing.T) {
	s := NewSampler()
	s.Press("w")
	s.Press("a")
	s.Reset()
	assert.Empty(t, s.Snapshot())
}

func TestSubscribeReleaseDropsHeldKeys(t *testing.T) {
	s := NewSampler()

	var sink Sink
	stopped := 0
	src := FuncSource(func(k Sink) func() {
		sink = k
		return func() { stopped++ }
	})

	release := s.Subscribe(src)
	require.NotNil(t, sink)

	sink.Press("w")
	sink.Press("d")
	sink.Release("d")
	assert.True(t, s.Snapshot().Active(Forward))

	release()
	release()

	assert.Equal(t, 1, stopped, "source must be stopped exactly once")
	assert.False(t, s.Snapshot().Active(Forward))

	sink.Press("s")
	assert.False(t, s.Snapshot().Active(Back), "presses after release are ignored")
}

func TestSubscribeKeepsOtherSourcesKeys(t *testing.T) {
	s := NewSampler()
	s.Press("a")

	var sink Sink
	release := s.Subscribe(FuncSource(func(k Sink) func() {
		sink = k
		return nil
	}))
	sink.Press("w")
	release()

	snap := s.Snapshot()
	assert.True(t, snap.Active(Left))
	assert.False(t, snap.Active(Forward))
}

func TestSamplerConcurrentWrites(t *testing.T) {
	s := NewSampler()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if (i+j)%2 == 0 {
					s.Press("w")
				} else {
					s.Release("w")
				}
				_ = s.Snapshot()
			}
		}(i)
	}
	wg.Wait()
	s.Release("w")
	assert.False(t, s.Snapshot().Held("w"))
}

func TestReleaseRacingPressesLeavesNothingHeld(t *testing.T) {
	for round := 0; round < 50; round++ {
		s := NewSampler()
		var sink Sink
		release := s.Subscribe(FuncSource(func(k Sink) func() {
			sink = k
			return nil
		}))

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					sink.Press("w")
				}
			}()
		}
		release()
		wg.Wait()

		require.False(t, s.Snapshot().Held("w"), "round %d", round)
	}
}
