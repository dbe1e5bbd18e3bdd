package consts

const (
	TokenRevokedKey       = "auth:revoked:"
	ProfileByUsernameKey  = "profile:username:"
	NotificationUnreadKey = "notification:unread:"
	MessageUnreadKey      = "message:unread:"
)

const (
	CounterReconcileLock = "lock:job:counter_reconcile"
	StorySweepLock       = "lock:job:story_sweep"
)
