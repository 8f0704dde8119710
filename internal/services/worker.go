package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/ats-evaluator/internal/models"
)

// Worker serialises evaluations through a bounded queue drained by a fixed
// number of goroutines.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	// Submit queues an evaluation and waits for its report.
	Submit(ctx context.Context, evalID uuid.UUID, inputs models.RawInputs) (*models.FinalReport, error)
}

type job struct {
	ctx    context.Context
	evalID uuid.UUID
	inputs models.RawInputs
	result chan jobResult
}

type jobResult struct {
	report *models.FinalReport
	err    error
}

type worker struct {
	evaluatorService EvaluatorService
	jobQueue         chan job
	concurrency      int
	wg               sync.WaitGroup
	stopChan         chan struct{}
	stopped          chan struct{}
	stopOnce         sync.Once
	log              *zap.Logger
}

func NewWorker(evaluatorService EvaluatorService, concurrency, queueSize int, log *zap.Logger) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &worker{
		evaluatorService: evaluatorService,
		jobQueue:         make(chan job, queueSize),
		concurrency:      concurrency,
		stopChan:         make(chan struct{}),
		stopped:          make(chan struct{}),
		log:              log.Named("worker"),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting worker", zap.Int("concurrency", w.concurrency), zap.Int("queue_size", cap(w.jobQueue)))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}
}

// Stop implements Worker. Queued jobs that have not started are rejected.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping worker")
		close(w.stopChan)
		w.wg.Wait()
		w.drain()
		close(w.stopped)
		w.log.Info("worker stopped")
	})
}

func (w *worker) drain() {
	for {
		select {
		case j := <-w.jobQueue:
			j.result <- jobResult{err: ErrWorkerStopped}
		default:
			return
		}
	}
}

// Submit implements Worker.
func (w *worker) Submit(ctx context.Context, evalID uuid.UUID, inputs models.RawInputs) (*models.FinalReport, error) {
	select {
	case <-w.stopChan:
		return nil, ErrWorkerStopped
	default:
	}

	j := job{ctx: ctx, evalID: evalID, inputs: inputs, result: make(chan jobResult, 1)}
	select {
	case <-w.stopChan:
		return nil, ErrWorkerStopped
	case w.jobQueue <- j:
		w.log.Debug("job enqueued", zap.String("request_id", evalID.String()))
	default:
		w.log.Warn("queue full, rejecting job", zap.String("request_id", evalID.String()))
		return nil, ErrQueueFull
	}

	return w.await(ctx, j)
}

// await waits for the job result. A job enqueued after Stop drained the queue
// is never picked up, so it is answered with ErrWorkerStopped.
func (w *worker) await(ctx context.Context, j job) (*models.FinalReport, error) {
	select {
	case res := <-j.result:
		return res.report, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-w.stopped:
	}

	select {
	case res := <-j.result:
		return res.report, res.err
	default:
		return nil, ErrWorkerStopped
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.With(zap.Int("worker_id", workerID))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case j := <-w.jobQueue:
			if err := j.ctx.Err(); err != nil {
				j.result <- jobResult{err: err}
				continue
			}

			report, err := w.evaluatorService.Evaluate(j.ctx, j.evalID, j.inputs)
			if err != nil {
				log.Error("evaluation failed", zap.String("request_id", j.evalID.String()), zap.Error(err))
			}
			j.result <- jobResult{report: report, err: err}
		}
	}
}
