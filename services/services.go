package services

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tune the service graph built by NewServices.
type Options struct {
	BucketSize          int
	ThresholdTTL        time.Duration
	Defaults            Thresholds
	MarkViralOnOverflow bool

	// ProfileCache is optional. Without it user summaries always come from the store.
	ProfileCache redis.Cmdable
	ProfileTTL   time.Duration

	Notifier Notifier
}

// Services holds every service the HTTP layer talks to.
type Services struct {
	Posts         *PostService
	Comments      *CommentService
	Reactions     *ReactionService
	Listing       *ListingService
	Shares        *ShareService
	Notifications *NotificationService
	Thresholds    *ThresholdService
	Buckets       *BucketService
	Directory     *UserDirectory
}

// NewServices wires the services on top of a single store.
func NewServices(store Store, opts Options) *Services {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}

	access := &AccessPolicy{Friends: store}
	thresholds := NewThresholdService(store, opts.ThresholdTTL, opts.Defaults)
	buckets := NewBucketService(store, opts.BucketSize)
	notifications := NewNotificationService(store, store, notifier)
	directory := NewUserDirectory(store, opts.ProfileCache, opts.ProfileTTL)

	return &Services{
		Posts: NewPostService(store, store, access),
		Comments: &CommentService{
			Posts: store, Comments: store, Users: store,
			Buckets: buckets, Thresholds: thresholds, Access: access,
			Notifications: notifications, Notifier: notifier, Now: time.Now,
			MarkViralOnOverflow: opts.MarkViralOnOverflow,
		},
		Reactions: &ReactionService{
			Posts: store, Reactions: store, Users: store,
			Buckets: buckets, Thresholds: thresholds, Access: access,
			Notifications: notifications, Notifier: notifier, Now: time.Now,
		},
		Listing: &ListingService{
			Posts: store, Comments: store, Reactions: store,
			Buckets: buckets, Access: access, Directory: directory,
		},
		Shares: &ShareService{
			Posts: store, Shares: store, Users: store,
			Thresholds: thresholds, Access: access, Directory: directory,
			Notifications: notifications, Now: time.Now,
		},
		Notifications: notifications,
		Thresholds:    thresholds,
		Buckets:       buckets,
		Directory:     directory,
	}
}
