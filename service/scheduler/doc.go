// Package scheduler implements the two-queue FIFO admission policy.
//
// A submitted process goes straight to the ready queue when its memory fits,
// otherwise it waits. Waiting processes are admitted strictly from the head:
// the retry stops at the first head that does not fit, even when a smaller
// process behind it would. This head-of-line blocking is part of the policy,
// and one oversized process can starve everything queued after it.
package scheduler
