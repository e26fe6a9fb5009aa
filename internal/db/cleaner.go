package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

const deleteExpiredContacts = `
DELETE FROM contacts
 WHERE created_at < $1
`

// StartRetentionCleaner starts a goroutine that, every interval, deletes
// contact-form submissions whose created_at is older than retention. Form
// sessions are owned by the admin backend and are not touched. A
// retention of zero or less keeps submissions forever and starts nothing.
// The goroutine stops when ctx is cancelled.
func StartRetentionCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	if retention <= 0 {
		log.Info("contact retention disabled")
		return
	}

	log.Info("contact retention cleaner started",
		zap.Duration("retention", retention),
		zap.Duration("interval", interval),
	)
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				removed, err := purgeExpiredContacts(ctx, db, now.Add(-retention))
				if err != nil {
					log.Error("failed to clean expired contacts", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned expired contacts", zap.Int64("removed", removed))
				}
			}
		}
	}()
}

// purgeExpiredContacts deletes submissions created before cutoff and
// returns how many were removed.
func purgeExpiredContacts(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, deleteExpiredContacts, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
