package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/kds"
	"github.com/yeremiapane/restaurant-ordering/models"
)

// Publisher receives change events. *kds.Hub implements it.
type Publisher interface {
	Publish(ev kds.Event) int
}

// ChangeMonitor polls the DBChange outbox and publishes each row as a realtime
// event. Clients treat an event as a signal to re-fetch.
type ChangeMonitor struct {
	DB        *gorm.DB
	Publisher Publisher
	Interval  time.Duration
	BatchSize int
	Log       *logrus.Logger

	stop chan struct{}
	once sync.Once
}

func NewChangeMonitor(db *gorm.DB, pub Publisher, log *logrus.Logger) *ChangeMonitor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ChangeMonitor{
		DB:        db,
		Publisher: pub,
		Interval:  1 * time.Second,
		BatchSize: 100,
		Log:       log,
		stop:      make(chan struct{}),
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := cm.ProcessPending(context.Background()); err != nil {
					cm.Log.WithError(err).Error("processing change outbox")
				}
			case <-cm.stop:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	cm.once.Do(func() { close(cm.stop) })
}

// ProcessPending publishes up to BatchSize unprocessed changes in the order they
// were recorded and marks them processed.
func (cm *ChangeMonitor) ProcessPending(ctx context.Context) (int, error) {
	var changes []models.DBChange
	if err := cm.DB.WithContext(ctx).
		Where("processed = ?", false).
		Order("id asc").
		Limit(cm.BatchSize).
		Find(&changes).Error; err != nil {
		return 0, err
	}
	if len(changes) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(changes))
	for _, change := range changes {
		cm.Publisher.Publish(kds.Event{
			Table:    change.Source,
			Action:   change.ActionType,
			RecordID: change.RecordID,
			Record:   cm.load(ctx, change),
		})
		ids = append(ids, change.ID)
	}

	if err := cm.DB.WithContext(ctx).Model(&models.DBChange{}).
		Where("id IN ?", ids).
		Update("processed", true).Error; err != nil {
		return 0, err
	}
	cm.Log.WithField("count", len(changes)).Debug("published outbox changes")
	return len(changes), nil
}

// load fetches the current row for inserts and updates. Deletes carry only the id.
func (cm *ChangeMonitor) load(ctx context.Context, change models.DBChange) interface{} {
	if change.ActionType == models.ActionDelete {
		return nil
	}
	var dest interface{}
	switch change.Source {
	case SourceTables:
		dest = &models.Table{}
	case SourceOrders:
		dest = &models.Order{}
	case SourceReservations:
		dest = &models.Reservation{}
	case SourceMenuItems:
		dest = &models.MenuItem{}
	default:
		return nil
	}
	if err := cm.DB.WithContext(ctx).First(dest, change.RecordID).Error; err != nil {
		cm.Log.WithError(err).WithFields(logrus.Fields{
			"table":     change.Source,
			"record_id": change.RecordID,
		}).Warn("change target not found")
		return nil
	}
	return dest
}
