package dbmetrics

import (
	"database/sql"
	"time"
)

// DefaultInterval период опроса статистики пула по умолчанию
const DefaultInterval = 15 * time.Second

// StatsProvider источник статистики пула (*sql.DB, *sqlx.DB)
type StatsProvider interface {
	Stats() sql.DBStats
}

// PoolObserver получатель статистики пула
type PoolObserver interface {
	SetDBStats(stats sql.DBStats)
}

// StartPoolCollector периодически переносит db.Stats() в метрики до закрытия stop
func StartPoolCollector(db StatsProvider, observer PoolObserver, interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	observer.SetDBStats(db.Stats())

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				observer.SetDBStats(db.Stats())
			}
		}
	}()
}
