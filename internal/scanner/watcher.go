package scanner

import (
	"context"
	"log"
	"sync"
	"time"
)

// Watcher rescans the library on a fixed interval.
type Watcher struct {
	scanner  *Scanner
	interval time.Duration
	onChange func(*Summary)

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

// NewWatcher creates a polling watcher. onChange (may be nil) fires
// after every run that changed the catalog.
func NewWatcher(scanner *Scanner, interval time.Duration, onChange func(*Summary)) *Watcher {
	return &Watcher{
		scanner:  scanner,
		interval: interval,
		onChange: onChange,
		stopChan: make(chan struct{}),
	}
}

// Start launches the polling loop. A non-positive interval disables
// the watcher.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started || w.interval <= 0 {
		return
	}
	w.started = true

	w.wg.Add(1)
	go w.loop()
	log.Printf("[Watcher] Library watcher started, interval=%s", w.interval)
}

// Stop terminates the polling loop and waits for it.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()
	log.Println("[Watcher] Library watcher stopped")
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			summary, err := w.scanner.Run(context.Background(), true)
			if err != nil {
				if err != ErrScanInProgress {
					log.Printf("[Watcher] Rescan failed: %v", err)
				}
				continue
			}
			if w.onChange != nil && (summary.Added > 0 || summary.Removed > 0) {
				w.onChange(summary)
			}
		case <-w.stopChan:
			return
		}
	}
}
