package notify

import (
	"context"
	"log"
	"sync"

	"campus-sync/internal/models"
	"campus-sync/internal/observability"
	"campus-sync/internal/repositories"
)

// InboxPusher delivers a stored notification to the recipient's live
// connections.
type InboxPusher interface {
	PushNotification(n models.Notification)
}

// Report summarizes a fan-out run. A run with failures is still a success for
// the recipients that were delivered.
type Report struct {
	Delivered int      `json:"delivered"`
	Failed    []string `json:"failed,omitempty"`
}

// Dispatcher creates notifications and fans announcement notifications out to
// recipient sets.
type Dispatcher struct {
	repo    repositories.NotificationRepository
	users   repositories.UserRepository
	pusher  InboxPusher
	workers int
	retries int
}

// NewDispatcher constructs a Dispatcher. workers and retries fall back to
// sane minimums when not positive.
func NewDispatcher(repo repositories.NotificationRepository, users repositories.UserRepository, pusher InboxPusher, workers, retries int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if retries < 1 {
		retries = 1
	}
	return &Dispatcher{repo: repo, users: users, pusher: pusher, workers: workers, retries: retries}
}

// Notify stores one notification and pushes it to the recipient's inbox.
// Actions on one's own content are suppressed: nothing is written when the
// actor is the recipient.
func (d *Dispatcher) Notify(ctx context.Context, n models.Notification) error {
	if n.RecipientID == "" || n.RecipientID == n.SenderID {
		return nil
	}

	stored, err := d.repo.Create(ctx, n)
	if err != nil {
		return err
	}

	d.pusher.PushNotification(stored)
	observability.IncNotification(string(stored.Type))
	_ = observability.PublishEvent(ctx, "notifications.created", observability.NewEnvelope("notifications", "notification_created", map[string]interface{}{
		"notification_id": stored.ID,
		"recipient_id":    stored.RecipientID,
		"type":            stored.Type,
	}), nil)
	return nil
}

// Broadcast resolves the department audience and writes one notification per
// recipient through a bounded worker pool. Each delivery is retried; failures
// are collected rather than aborting the run.
func (d *Dispatcher) Broadcast(ctx context.Context, department string, template models.Notification) (Report, error) {
	recipients, err := d.users.ListRecipients(ctx, department)
	if err != nil {
		return Report{}, err
	}

	jobs := make(chan models.User, len(recipients))
	for _, u := range recipients {
		jobs <- u
	}
	close(jobs)

	var (
		mu     sync.Mutex
		report Report
		wg     sync.WaitGroup
	)
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				if u.ID == template.SenderID {
					continue
				}
				n := template
				n.RecipientID = u.ID
				if err := d.deliver(ctx, n); err != nil {
					log.Printf("broadcast delivery to %s failed: %v", u.ID, err)
					observability.IncBroadcastDelivery("failed")
					mu.Lock()
					report.Failed = append(report.Failed, u.ID)
					mu.Unlock()
					continue
				}
				observability.IncBroadcastDelivery("delivered")
				mu.Lock()
				report.Delivered++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return report, nil
}

func (d *Dispatcher) deliver(ctx context.Context, n models.Notification) error {
	var err error
	for attempt := 0; attempt < d.retries; attempt++ {
		var stored models.Notification
		stored, err = d.repo.Create(ctx, n)
		if err == nil {
			d.pusher.PushNotification(stored)
			observability.IncNotification(string(stored.Type))
			return nil
		}
	}
	return err
}
