package refdata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atinyakov/formresume/internal/models"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type fakeLoader struct {
	statesCalls atomic.Int32
	citiesCalls atomic.Int32
	release     chan struct{}
	states      []models.State
	cities      map[string][]models.City
	err         error
}

func (f *fakeLoader) States(ctx context.Context) ([]models.State, error) {
	f.statesCalls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.states, nil
}

func (f *fakeLoader) Cities(ctx context.Context, state string) ([]models.City, error) {
	f.citiesCalls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.cities[state], nil
}

type mapStore struct {
	mu   sync.Mutex
	data map[string]any
}

func (m *mapStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]models.State:
		*d = v.([]models.State)
	case *[]models.City:
		*d = v.([]models.City)
	}
	return true, nil
}

func (m *mapStore) Set(ctx context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

var texas = []models.State{{Code: "TX", Name: "Texas"}}

func TestStates_ConcurrentCallersShareOneLoad(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	loader := &fakeLoader{states: texas, release: make(chan struct{})}
	cache := NewCache(loader, nil, zap.NewNop())

	var wg sync.WaitGroup
	results := make([][]models.State, 2)
	errs := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.States(context.Background())
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(loader.release)
	wg.Wait()

	if got := loader.statesCalls.Load(); got != 1 {
		t.Fatalf("loader called %d times; want 1", got)
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d error: %v", i, errs[i])
		}
		if diff := cmp.Diff(texas, results[i]); diff != "" {
			t.Errorf("caller %d states mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestStates_CancelledCallerDoesNotFailOthers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	loader := &fakeLoader{states: texas, release: make(chan struct{})}
	cache := NewCache(loader, nil, zap.NewNop())

	firstCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.States(firstCtx)
		firstErr <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for loader.statesCalls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("loader never started")
		}
		time.Sleep(time.Millisecond)
	}

	var (
		got []models.State
		err error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		got, err = cache.States(context.Background())
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller error = %v; want context.Canceled", err)
	}

	close(loader.release)
	<-done

	if err != nil {
		t.Fatalf("waiting caller error: %v", err)
	}
	if diff := cmp.Diff(texas, got); diff != "" {
		t.Errorf("states mismatch (-want +got):\n%s", diff)
	}
	if got := loader.statesCalls.Load(); got != 1 {
		t.Errorf("loader called %d times; want 1", got)
	}
}

func TestStates_ServedFromMemory(t *testing.T) {
	loader := &fakeLoader{states: texas}
	cache := NewCache(loader, nil, zap.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := cache.States(context.Background()); err != nil {
			t.Fatalf("States: %v", err)
		}
	}
	if got := loader.statesCalls.Load(); got != 1 {
		t.Errorf("loader called %d times; want 1", got)
	}

	cache.Reset()
	if _, err := cache.States(context.Background()); err != nil {
		t.Fatalf("States after Reset: %v", err)
	}
	if got := loader.statesCalls.Load(); got != 2 {
		t.Errorf("loader called %d times after Reset; want 2", got)
	}
}

func TestStates_ErrorNotCached(t *testing.T) {
	loader := &fakeLoader{err: errors.New("backend down")}
	cache := NewCache(loader, nil, zap.NewNop())

	if _, err := cache.States(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	loader.err = nil
	loader.states = texas
	got, err := cache.States(context.Background())
	if err != nil {
		t.Fatalf("States retry: %v", err)
	}
	if diff := cmp.Diff(texas, got); diff != "" {
		t.Errorf("states mismatch (-want +got):\n%s", diff)
	}
}

func TestCities_KeyedPerState(t *testing.T) {
	loader := &fakeLoader{cities: map[string][]models.City{
		"TX": {{Name: "Austin", StateCode: "TX"}},
		"CA": {{Name: "Fresno", StateCode: "CA"}},
	}}
	cache := NewCache(loader, nil, zap.NewNop())

	tx, err := cache.Cities(context.Background(), "TX")
	if err != nil {
		t.Fatalf("Cities(TX): %v", err)
	}
	if _, err := cache.Cities(context.Background(), "tx"); err != nil {
		t.Fatalf("Cities(tx): %v", err)
	}
	ca, err := cache.Cities(context.Background(), "CA")
	if err != nil {
		t.Fatalf("Cities(CA): %v", err)
	}

	if got := loader.citiesCalls.Load(); got != 2 {
		t.Errorf("loader called %d times; want 2", got)
	}
	if tx[0].Name != "Austin" || ca[0].Name != "Fresno" {
		t.Errorf("unexpected cities %v %v", tx, ca)
	}
}

func TestCities_UnknownStateIsEmpty(t *testing.T) {
	cache := NewCache(&fakeLoader{}, nil, zap.NewNop())
	got, err := cache.Cities(context.Background(), "ZZ")
	if err != nil {
		t.Fatalf("Cities: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Cities(ZZ) = %#v; want empty non-nil", got)
	}
}

func TestStoreTier(t *testing.T) {
	store := &mapStore{data: map[string]any{}}
	loader := &fakeLoader{states: texas}

	first := NewCache(loader, store, zap.NewNop())
	if _, err := first.States(context.Background()); err != nil {
		t.Fatalf("States: %v", err)
	}

	second := NewCache(loader, store, zap.NewNop())
	got, err := second.States(context.Background())
	if err != nil {
		t.Fatalf("States: %v", err)
	}
	if loader.statesCalls.Load() != 1 {
		t.Errorf("second cache hit the loader; want store hit")
	}
	if diff := cmp.Diff(texas, got); diff != "" {
		t.Errorf("states mismatch (-want +got):\n%s", diff)
	}
}
