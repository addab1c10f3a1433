package work

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/raksha-app/raksha/server/models"
)

type workerPool struct {
	handlers    map[string]Handler
	workers     []*worker
	concurrency int
	started     bool
}

func newWorkerPool(concurrency int) *workerPool {
	wp := workerPool{handlers: make(map[string]Handler), concurrency: concurrency}

	for i := 0; i < concurrency; i++ {
		wp.workers = append(wp.workers, newWorker([]int64{0, 10, 100, 120}))
	}

	return &wp
}

// registerHandler binds a name to a job handler for all workers in pool
func (wp *workerPool) registerHandler(name string, handler Handler) error {
	if _, ok := wp.handlers[name]; ok {
		return ErrDuplicateHandler
	}
	wp.handlers[name] = handler

	for _, worker := range wp.workers {
		err := worker.registerHandler(name, handler)

		// Only panic on errors that are unexpected i.e. !ErrDuplicateHandler
		if err != nil && !errors.Is(err, ErrDuplicateHandler) {
			logg.Panic(err)
		}
	}
	return nil
}

// enqueue adds a job to the queue(to be executed) by creating a db record
// based on the 'JobParams' provided
func (wp *workerPool) enqueue(job JobParams) error {
	if strings.TrimSpace(job.Name) == "" || strings.TrimSpace(job.Handler) == "" {
		return fmt.Errorf("both a name & handler is required for a job")
	}

	argsAsJSON, err := json.Marshal(job.Args)
	if err != nil {
		return err
	}

	// Ensures all jobs currently in the queue or in-progress are unique by name
	return models.CreateUniqueJobByName(job.Name, job.Handler, string(argsAsJSON))
}

// start starts all workers in pool i.e. the workers can start processing jobs
func (wp *workerPool) start() {
	if wp.started {
		return
	}
	wp.started = true

	for _, worker := range wp.workers {
		worker.start()
	}
}

// stop stops all workers in pool i.e. jobs will stop being processed
func (wp *workerPool) stop() {
	if !wp.started {
		return
	}

	wg := sync.WaitGroup{}
	for _, w := range wp.workers {
		wg.Add(1)
		go func(w *worker) {
			w.stop()
			wg.Done()
		}(w)
	}
	wg.Wait()
	wp.started = false
}
