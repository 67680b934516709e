package jobs

import (
	"context"
	"time"

	"agentforge-backend/internal/logger"
)

// receiptRetention is how long settled receipts stay queryable after they
// resolve. Pending receipts are never pruned.
const receiptRetention = 24 * time.Hour

// MarkExpiredRentals sweeps rentals whose end time has passed and flips
// their status to EXPIRED. The sweep is bookkeeping only: chat access and
// rental status checks always compare against end_time directly, so a late
// sweep never extends anyone's access.
func (jr *JobRunner) MarkExpiredRentals() {
	jr.runWithRecovery("MarkExpiredRentals", func() {
		ctx := context.Background()

		expired, err := jr.rentalRepo.MarkExpired(ctx, time.Now().Unix())
		if err != nil {
			logger.Error("Failed to mark expired rentals", "error", err)
			return
		}

		logger.Info("Marked rentals as expired", "count", len(expired))
	})
}

// SendRatingReminders mails the ops inbox a digest of rentals that expired
// in the last day and of expired rentals still missing a rating.
func (jr *JobRunner) SendRatingReminders() {
	jr.runWithRecovery("SendRatingReminders", func() {
		ctx := context.Background()
		now := time.Now().Unix()
		dayAgo := now - int64(24*time.Hour/time.Second)

		recent, err := jr.rentalRepo.ListExpiredUnrated(ctx, dayAgo, now)
		if err != nil {
			logger.Error("Failed to list recently expired rentals", "error", err)
			return
		}

		allUnrated, err := jr.rentalRepo.ListExpiredUnrated(ctx, 0, now)
		if err != nil {
			logger.Error("Failed to list unrated rentals", "error", err)
			return
		}

		if len(recent) == 0 && len(allUnrated) == 0 {
			logger.Info("No rating reminders to send")
			return
		}

		if err := jr.email.SendOpsDigest(ctx, len(recent), len(allUnrated)); err != nil {
			logger.Error("Failed to send ops digest", "error", err)
			return
		}

		logger.Info("Ops digest sent", "recently_expired", len(recent), "unrated", len(allUnrated))
	})
}

// PruneReceipts drops settled transaction receipts older than the
// retention window so the receipt map does not grow without bound.
func (jr *JobRunner) PruneReceipts() {
	jr.runWithRecovery("PruneReceipts", func() {
		pruned := jr.submitter.Prune(receiptRetention)
		logger.Info("Pruned settled receipts", "count", pruned)
	})
}
