package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mindStepsAPI/internal/badge"
	"mindStepsAPI/internal/logger"
	"mindStepsAPI/internal/metrics"
	"mindStepsAPI/internal/notification"
)

const (
	DefaultDispatchWorkers = 5
	dispatchQueueSize      = 100
	deviceTokenTTL         = 90 * 24 * time.Hour
)

type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) error
}

type DeviceStore interface {
	DeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error)
	PruneStaleDevices(ctx context.Context, before time.Time) (int64, error)
}

// NotificationDispatcher delivers push messages on a fixed worker pool.
// Pushes are best effort: failures are logged and counted, never returned
// to the request that produced them.
type NotificationDispatcher struct {
	devices      DeviceStore
	log          *logger.Logger
	mu           sync.RWMutex
	pushProvider PushProvider
	workers      int
	enqueueWait  time.Duration
	jobQueue     chan *DispatchJob
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

type DispatchJob struct {
	Message notification.Message
}

func NewNotificationDispatcher(devices DeviceStore, workers int, log *logger.Logger) *NotificationDispatcher {
	if workers <= 0 {
		workers = DefaultDispatchWorkers
	}
	d := &NotificationDispatcher{
		devices:     devices,
		log:         log,
		workers:     workers,
		enqueueWait: 5 * time.Second,
		jobQueue:    make(chan *DispatchJob, dispatchQueueSize),
		stopChan:    make(chan struct{}),
	}

	d.startWorkers()

	d.wg.Add(1)
	go d.cleanupStaleDevices()

	return d
}

// SetPushProvider injects the FCM client. Without one, jobs are dropped.
func (d *NotificationDispatcher) SetPushProvider(provider PushProvider) {
	d.mu.Lock()
	d.pushProvider = provider
	d.mu.Unlock()
}

func (d *NotificationDispatcher) provider() PushProvider {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pushProvider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

func (d *NotificationDispatcher) worker(id int) {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(job *DispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := job.Message
	provider := d.provider()
	if provider == nil {
		metrics.PushesSent.WithLabelValues("skipped").Inc()
		return
	}

	tokens, err := d.devices.DeviceTokens(ctx, msg.UserID)
	if err != nil {
		d.log.Warn("failed to load device tokens", "user_id", msg.UserID.String(), "error", err)
		metrics.PushesSent.WithLabelValues("failed").Inc()
		return
	}
	if len(tokens) == 0 {
		metrics.PushesSent.WithLabelValues("skipped").Inc()
		return
	}

	if err := provider.SendPush(ctx, tokens, msg.Title, msg.Body, msg.Data); err != nil {
		d.log.Warn("push failed", "user_id", msg.UserID.String(), "error", err)
		metrics.PushesSent.WithLabelValues("failed").Inc()
		return
	}
	metrics.PushesSent.WithLabelValues("sent").Inc()
}

// Dispatch queues msg and reports whether it was accepted.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, msg notification.Message) bool {
	select {
	case <-d.stopChan:
		return false
	default:
	}

	timer := time.NewTimer(d.enqueueWait)
	defer timer.Stop()

	select {
	case d.jobQueue <- &DispatchJob{Message: msg}:
		return true
	case <-timer.C:
		d.log.Warn("failed to queue push: queue full", "user_id", msg.UserID.String())
		return false
	case <-ctx.Done():
		return false
	case <-d.stopChan:
		return false
	}
}

// NotifyBadgesEarned queues one push per newly earned badge.
func (d *NotificationDispatcher) NotifyBadgesEarned(ctx context.Context, userID uuid.UUID, earned []badge.Badge) {
	for _, b := range earned {
		d.Dispatch(ctx, notification.BadgeEarnedMessage(userID, b))
	}
}

func (d *NotificationDispatcher) cleanupStaleDevices() {
	defer d.wg.Done()
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.performCleanup()
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) performCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := d.devices.PruneStaleDevices(ctx, time.Now().Add(-deviceTokenTTL))
	if err != nil {
		d.log.Warn("failed to prune stale device tokens", "error", err)
		return
	}
	if removed > 0 {
		d.log.Info("pruned stale device tokens", "count", removed)
	}
}

// Stop terminates the workers. Jobs still queued are dropped.
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
	})
	d.wg.Wait()
}
