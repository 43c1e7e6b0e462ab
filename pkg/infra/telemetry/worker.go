package telemetry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/telemetry"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/TrustGuard/pkg/utils"
	"github.com/sirupsen/logrus"
)

const (
	defaultQueueSize = 1000
	exportTimeout    = 10 * time.Second
)

// Worker exports recorded security events off the recording goroutine.
type Worker interface {
	Submit(evt security.Event)
	StartWorkers(n int)
	Shutdown()
}

type WorkerOptions struct {
	Exporters []telemetry.Exporter
	Origin    string
	QueueSize int
	Metrics   *prometheus.SecurityMetrics
}

type worker struct {
	logger    *logrus.Logger
	exporters []telemetry.Exporter
	origin    string
	metrics   *prometheus.SecurityMetrics
	taskChan  chan func()
	ctx       context.Context
	cancel    context.CancelFunc
	closed    atomic.Bool
	wg        sync.WaitGroup
}

func NewWorker(logger *logrus.Logger, opts WorkerOptions) Worker {
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &worker{
		logger:    logger,
		exporters: opts.Exporters,
		origin:    opts.Origin,
		metrics:   opts.Metrics,
		taskChan:  make(chan func(), queueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *worker) Submit(evt security.Event) {
	if len(m.exporters) == 0 {
		return
	}
	m.enqueueTask(func() {
		m.export(m.envelope(evt))
	}, evt)
}

func (m *worker) envelope(evt security.Event) *telemetry.SecurityEnvelope {
	env := telemetry.NewSecurityEnvelope(evt, m.origin)
	if ua := utils.ParseUserAgent(evt.UserAgent()); ua != nil {
		env.Device = ua.Device
		env.OS = ua.OS
		env.Browser = ua.Browser
	}
	return env
}

func (m *worker) export(env *telemetry.SecurityEnvelope) {
	ctx, cancel := context.WithTimeout(m.ctx, exportTimeout)
	defer cancel()

	var failedExporters []string
	for _, exporter := range m.exporters {
		if err := exporter.Handle(ctx, env); err != nil {
			m.logger.WithFields(logrus.Fields{
				"eventID":  env.ID,
				"exporter": exporter.Name(),
			}).WithError(err).Error("exporter failed")
			failedExporters = append(failedExporters, exporter.Name())
		}
	}
	if len(failedExporters) > 0 {
		m.logger.WithField("failedExporters", failedExporters).
			Warnf("%d exporters failed to handle security event", len(failedExporters))
	}
}

func (m *worker) StartWorkers(n int) {
	m.logger.WithField("workers", n).Info("starting telemetry workers")
	for i := 0; i < n; i++ {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for {
				select {
				case task := <-m.taskChan:
					task()
				case <-m.ctx.Done():
					return
				}
			}
		}()
	}
}

// Shutdown drains nothing: queued tasks are discarded once the workers stop.
func (m *worker) Shutdown() {
	if m.closed.Swap(true) {
		return
	}
	m.logger.Info("shutting down telemetry workers")
	m.cancel()
	m.wg.Wait()
	for _, exporter := range m.exporters {
		exporter.Close()
	}
	m.logger.Info("telemetry workers stopped")
}

func (m *worker) enqueueTask(task func(), evt security.Event) {
	if m.closed.Load() {
		return
	}
	select {
	case m.taskChan <- task:
	default:
		if m.metrics != nil {
			m.metrics.ExportDropped.Inc()
		}
		m.logger.WithFields(logrus.Fields{
			"eventID": evt.ID().String(),
			"type":    fmt.Sprint(evt.Type()),
		}).Warn("taskChan is full, dropping security event export")
	}
}
